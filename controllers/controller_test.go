package controller

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"outreachly/config"
	"outreachly/models"
)

// setupTestDB opens a fresh in-memory database with the full schema.
// The DSN is namespaced per test so parallel tests never share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := models.User{
		Email:        fmt.Sprintf("%s@example.com", t.Name()),
		PasswordHash: "x",
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

// newTestApp wires handlers behind a stub that injects the
// authenticated user, standing in for the JWT middleware.
func newTestApp(user *models.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		c.Locals("userID", user.ID)
		return c.Next()
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	resp.Body.Close()
	return resp, body
}

func quietLogrus() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// mockCourier records every recipient and fails the ones listed in
// failFor.
type mockCourier struct {
	sent    []string
	failFor map[string]error
}

func (m *mockCourier) SendOutreach(to, subject, body string) error {
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, to)
	return nil
}
