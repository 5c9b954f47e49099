package controller

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"outreachly/models"
	"outreachly/utils"
)

// SendCampaignEmails dispatches a draft campaign to all of its leads.
// Only one dispatch can ever claim a campaign; the draft to sending
// transition is a compare-and-swap on the status column.
func (cc *CampaignController) SendCampaignEmails(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	if campaign.TemplateID == nil {
		return utils.ErrorResponse(c, fiber.StatusPreconditionFailed, "Campaign has no template assigned", nil)
	}

	result := cc.DB.Model(&models.Campaign{}).
		Where("id = ? AND user_id = ? AND status = ?", campaign.ID, user.ID, models.CampaignStatusDraft).
		Update("status", models.CampaignStatusSending)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to claim campaign", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Campaign has already been dispatched", nil)
	}

	sent, failed, total, err := cc.dispatchCampaign(user, &campaign)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign dispatch failed", err)
	}

	return c.JSON(fiber.Map{
		"sent_count":   sent,
		"failed_count": failed,
		"total":        total,
	})
}

// dispatchCampaign walks the campaign's leads in order and sends one
// email per lead. A failed recipient records a failed email row and the
// loop keeps going. The campaign always ends up completed with its
// sent_count persisted, even when every send failed.
func (cc *CampaignController) dispatchCampaign(user *models.User, campaign *models.Campaign) (int, int, int, error) {
	var template models.Template
	if err := cc.DB.Where("id = ? AND user_id = ?", *campaign.TemplateID, user.ID).First(&template).Error; err != nil {
		// Claim released so the campaign can be fixed and retried
		cc.DB.Model(campaign).Update("status", models.CampaignStatusDraft)
		return 0, 0, 0, fmt.Errorf("failed to load template: %w", err)
	}

	var memberships []models.CampaignLead
	if err := cc.DB.Preload("Lead").
		Where("campaign_id = ?", campaign.ID).
		Order("id ASC").
		Find(&memberships).Error; err != nil {
		cc.DB.Model(campaign).Update("status", models.CampaignStatusDraft)
		return 0, 0, 0, fmt.Errorf("failed to load campaign leads: %w", err)
	}

	// Memberships pointing at a deleted lead carry no recipient and do
	// not count toward the total
	leads := make([]models.Lead, 0, len(memberships))
	for _, membership := range memberships {
		if membership.Lead.ID != 0 {
			leads = append(leads, membership.Lead)
		}
	}

	sent := 0
	failed := 0
	total := len(leads)

	for _, lead := range leads {
		subject := utils.RenderTemplate(template.Subject, &lead)
		body := utils.RenderTemplate(template.Body, &lead)

		email := models.Email{
			UserID:     user.ID,
			CampaignID: campaign.ID,
			LeadID:     lead.ID,
			TemplateID: template.ID,
			MessageID:  uuid.NewString(),
			Subject:    subject,
			Body:       body,
		}

		if err := cc.Mailer.SendOutreach(lead.Email, subject, body); err != nil {
			failed++
			email.Status = models.EmailStatusFailed
			email.ErrorMessage = err.Error()

			sentry.CaptureException(err)
			cc.Logger.WithFields(logrus.Fields{
				"campaign_id": campaign.ID,
				"lead_id":     lead.ID,
				"recipient":   lead.Email,
			}).WithError(err).Error("campaign email failed")
		} else {
			sent++
			now := time.Now()
			email.Status = models.EmailStatusSent
			email.SentAt = &now

			cc.Logger.WithFields(logrus.Fields{
				"campaign_id": campaign.ID,
				"lead_id":     lead.ID,
				"message_id":  email.MessageID,
			}).Info("campaign email sent")
		}

		if err := cc.DB.Create(&email).Error; err != nil {
			cc.Logger.WithFields(logrus.Fields{
				"campaign_id": campaign.ID,
				"lead_id":     lead.ID,
			}).WithError(err).Error("failed to record campaign email")
		}

		cc.Hub.Broadcast(ProgressEvent{
			CampaignID: campaign.ID,
			Sent:       sent,
			Failed:     failed,
			Total:      total,
			Status:     models.CampaignStatusSending,
		})
	}

	if err := cc.DB.Model(campaign).Updates(map[string]interface{}{
		"sent_count": sent,
		"status":     models.CampaignStatusCompleted,
	}).Error; err != nil {
		return sent, failed, total, fmt.Errorf("failed to finalize campaign: %w", err)
	}

	cc.Hub.Broadcast(ProgressEvent{
		CampaignID: campaign.ID,
		Sent:       sent,
		Failed:     failed,
		Total:      total,
		Status:     models.CampaignStatusCompleted,
	})

	cc.Logger.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"sent":        sent,
		"failed":      failed,
		"total":       total,
	}).Info("campaign dispatch finished")

	return sent, failed, total, nil
}
