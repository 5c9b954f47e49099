package utils

import (
	"fmt"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"outreachly/models"
)

// Courier sends one rendered outreach email to one recipient. The
// dispatch loop depends on this interface so tests can stand in a
// mock.
type Courier interface {
	SendOutreach(to, subject, body string) error
}

// InvalidAddressError is returned when the recipient fails local
// validation. No connection has been attempted when this is returned.
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid email address provided: %q", e.Address)
}

// OutreachMailer sends over authenticated SMTP, one connection per
// message (dial, send, close). It keeps no pooled state.
type OutreachMailer struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Logger    *logrus.Logger
}

func NewOutreachMailer(host string, port int, username, password, fromEmail, fromName string, logger *logrus.Logger) *OutreachMailer {
	if logger == nil {
		logger = logrus.New()
	}
	return &OutreachMailer{
		Host:      host,
		Port:      port,
		Username:  username,
		Password:  password,
		FromEmail: fromEmail,
		FromName:  fromName,
		Logger:    logger,
	}
}

// ValidateRecipient rejects the no-email sentinel and anything that
// fails the standard address-shape check. It never touches the
// network.
func (m *OutreachMailer) ValidateRecipient(to string) error {
	if to == "" || to == models.NoEmailSentinel {
		return &InvalidAddressError{Address: to}
	}
	if err := checkmail.ValidateFormat(to); err != nil {
		return &InvalidAddressError{Address: to}
	}
	return nil
}

func (m *OutreachMailer) SendOutreach(to, subject, body string) error {
	if err := m.ValidateRecipient(to); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.FromName, m.FromEmail))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := d.DialAndSend(msg); err != nil {
		m.Logger.WithFields(logrus.Fields{
			"to":   to,
			"host": m.Host,
		}).WithError(err).Error("outreach send failed")
		return fmt.Errorf("error sending email: %w", err)
	}

	m.Logger.WithField("to", to).Info("outreach email sent")
	return nil
}
