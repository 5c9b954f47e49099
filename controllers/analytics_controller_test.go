package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/gorm"

	"outreachly/models"
)

func seedEmails(t *testing.T, db *gorm.DB, user *models.User, statuses []string) {
	t.Helper()

	for i, status := range statuses {
		email := models.Email{
			UserID:     user.ID,
			CampaignID: 1,
			LeadID:     uint(i + 1),
			TemplateID: 1,
			Status:     status,
		}
		if err := db.Create(&email).Error; err != nil {
			t.Fatalf("failed to seed email: %v", err)
		}
	}
}

func TestGetEmailStatsEmptyAccountReadsZero(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	ac := NewAnalyticsController(db, quietLogger())

	app := newTestApp(user)
	app.Get("/analytics/emails", ac.GetEmailStats)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/analytics/emails", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var result struct {
		Data EmailStats `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("bad response %s: %v", body, err)
	}
	s := result.Data
	if s.Total != 0 || s.SentRate != 0 || s.OpenRate != 0 || s.ReplyRate != 0 || s.FailureRate != 0 {
		t.Errorf("empty account must read all zeros, got %+v", s)
	}
}

func TestGetEmailStatsCountsAndRates(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	ac := NewAnalyticsController(db, quietLogger())

	// 4 sent, 2 failed, 1 opened, 1 replied
	seedEmails(t, db, user, []string{
		models.EmailStatusSent, models.EmailStatusSent,
		models.EmailStatusSent, models.EmailStatusSent,
		models.EmailStatusFailed, models.EmailStatusFailed,
		models.EmailStatusOpened, models.EmailStatusReplied,
	})

	app := newTestApp(user)
	app.Get("/analytics/emails", ac.GetEmailStats)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/analytics/emails", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var result struct {
		Data EmailStats `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("bad response %s: %v", body, err)
	}
	s := result.Data
	if s.Total != 8 || s.Sent != 4 || s.Failed != 2 || s.Opened != 1 || s.Replied != 1 {
		t.Errorf("counts wrong: %+v", s)
	}

	// Failure rate is taken over all emails, open and reply rates over
	// the sent ones
	if s.SentRate != 50 {
		t.Errorf("sent_rate %v, want 50", s.SentRate)
	}
	if s.FailureRate != 25 {
		t.Errorf("failure_rate %v, want 25", s.FailureRate)
	}
	if s.OpenRate != 25 {
		t.Errorf("open_rate %v, want 25", s.OpenRate)
	}
	if s.ReplyRate != 25 {
		t.Errorf("reply_rate %v, want 25", s.ReplyRate)
	}
}

func TestGetEmailStatsScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	ac := NewAnalyticsController(db, quietLogger())

	other := models.User{Email: "other@example.com", PasswordHash: "x", IsActive: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("failed to create other user: %v", err)
	}
	seedEmails(t, db, &other, []string{models.EmailStatusSent, models.EmailStatusSent})

	app := newTestApp(user)
	app.Get("/analytics/emails", ac.GetEmailStats)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/analytics/emails", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var result struct {
		Data EmailStats `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("bad response %s: %v", body, err)
	}
	if result.Data.Total != 0 {
		t.Errorf("another user's rows leaked into stats: %+v", result.Data)
	}
}

func TestGetDashboardStatsConversionGuarded(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	dc := NewDashboardController(db, quietLogger())

	// Leads but zero emails: conversion must stay zero, not NaN
	lead := models.Lead{UserID: user.ID, Name: "Ana", Email: "ana@example.com"}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("failed to seed lead: %v", err)
	}

	app := newTestApp(user)
	app.Get("/dashboard/stats", dc.GetDashboardStats)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var result struct {
		Data DashboardStats `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("bad response %s: %v", body, err)
	}
	s := result.Data
	if s.TotalLeads != 1 || s.EmailsSent != 0 || s.ConversionRate != 0 {
		t.Errorf("got %+v, want 1 lead, 0 emails, 0 conversion", s)
	}
}

func TestGetRecentActivityReturnsNewestFive(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	dc := NewDashboardController(db, quietLogger())

	lead := models.Lead{UserID: user.ID, Name: "Ana", Email: "ana@example.com"}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("failed to seed lead: %v", err)
	}
	for i := 0; i < 7; i++ {
		email := models.Email{
			UserID: user.ID, CampaignID: 1, LeadID: lead.ID, TemplateID: 1,
			Subject: "s", Status: models.EmailStatusSent,
		}
		if err := db.Create(&email).Error; err != nil {
			t.Fatalf("failed to seed email: %v", err)
		}
	}

	app := newTestApp(user)
	app.Get("/dashboard/recent-activity", dc.GetRecentActivity)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/dashboard/recent-activity", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var result struct {
		Data []RecentActivityItem `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("bad response %s: %v", body, err)
	}
	if len(result.Data) != 5 {
		t.Errorf("expected 5 items, got %d", len(result.Data))
	}
	for _, item := range result.Data {
		if item.LeadName != "Ana" {
			t.Errorf("lead name not joined: %+v", item)
		}
	}
}
