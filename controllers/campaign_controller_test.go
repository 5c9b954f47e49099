package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/gorm"

	"outreachly/models"
)

func seedCampaignWithLeads(t *testing.T, db *gorm.DB, user *models.User, leadCount int) (*models.Campaign, []models.Lead) {
	t.Helper()

	campaign := models.Campaign{UserID: user.ID, Name: "launch", Status: models.CampaignStatusDraft}
	if err := db.Create(&campaign).Error; err != nil {
		t.Fatalf("failed to seed campaign: %v", err)
	}

	leads := make([]models.Lead, 0, leadCount)
	for i := 0; i < leadCount; i++ {
		lead := models.Lead{
			UserID: user.ID,
			Name:   fmt.Sprintf("Lead%d", i),
			Email:  fmt.Sprintf("lead%d@example.com", i),
		}
		if err := db.Create(&lead).Error; err != nil {
			t.Fatalf("failed to seed lead: %v", err)
		}
		leads = append(leads, lead)
	}
	return &campaign, leads
}

func TestAddLeadsUpdatesTotal(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	cc := NewCampaignController(db, quietLogrus(), &mockCourier{}, NewProgressHub())
	campaign, leads := seedCampaignWithLeads(t, db, user, 3)

	app := newTestApp(user)
	app.Post("/campaigns/:id/leads", cc.AddLeads)

	payload := fmt.Sprintf(`{"lead_ids":[%d,%d,%d]}`, leads[0].ID, leads[1].ID, leads[2].ID)
	url := fmt.Sprintf("/campaigns/%d/leads", campaign.ID)
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, body := doRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, body %s", resp.StatusCode, body)
	}

	var updated models.Campaign
	if err := db.First(&updated, campaign.ID).Error; err != nil {
		t.Fatalf("failed to reload campaign: %v", err)
	}
	if updated.TotalLeads != 3 {
		t.Errorf("total_leads %d, want 3", updated.TotalLeads)
	}
}

func TestAddLeadsRejectsDuplicatePair(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	cc := NewCampaignController(db, quietLogrus(), &mockCourier{}, NewProgressHub())
	campaign, leads := seedCampaignWithLeads(t, db, user, 2)

	app := newTestApp(user)
	app.Post("/campaigns/:id/leads", cc.AddLeads)
	url := fmt.Sprintf("/campaigns/%d/leads", campaign.ID)

	first := fmt.Sprintf(`{"lead_ids":[%d]}`, leads[0].ID)
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(first))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := doRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first add: status %d", resp.StatusCode)
	}

	// Same lead again, batched with a fresh one: whole batch rejected
	second := fmt.Sprintf(`{"lead_ids":[%d,%d]}`, leads[1].ID, leads[0].ID)
	req = httptest.NewRequest(http.MethodPost, url, strings.NewReader(second))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = doRequest(t, app, req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate add: status %d, want 409", resp.StatusCode)
	}

	var updated models.Campaign
	if err := db.First(&updated, campaign.ID).Error; err != nil {
		t.Fatalf("failed to reload campaign: %v", err)
	}
	if updated.TotalLeads != 1 {
		t.Errorf("rejected batch must not change total_leads, got %d", updated.TotalLeads)
	}
	var count int64
	db.Model(&models.CampaignLead{}).Where("campaign_id = ?", campaign.ID).Count(&count)
	if count != 1 {
		t.Errorf("rejected batch must not leave memberships, got %d", count)
	}
}

func TestAddLeadsRejectsForeignLeads(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	cc := NewCampaignController(db, quietLogrus(), &mockCourier{}, NewProgressHub())
	campaign, _ := seedCampaignWithLeads(t, db, user, 0)

	other := models.User{Email: "other@example.com", PasswordHash: "x", IsActive: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("failed to create other user: %v", err)
	}
	foreign := models.Lead{UserID: other.ID, Name: "Zed", Email: "zed@example.com"}
	if err := db.Create(&foreign).Error; err != nil {
		t.Fatalf("failed to seed foreign lead: %v", err)
	}

	app := newTestApp(user)
	app.Post("/campaigns/:id/leads", cc.AddLeads)

	payload := fmt.Sprintf(`{"lead_ids":[%d]}`, foreign.ID)
	url := fmt.Sprintf("/campaigns/%d/leads", campaign.ID)
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := doRequest(t, app, req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404 for foreign lead", resp.StatusCode)
	}
}

func TestRemoveLeadRecountsTotal(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	cc := NewCampaignController(db, quietLogrus(), &mockCourier{}, NewProgressHub())
	campaign, leads := seedCampaignWithLeads(t, db, user, 2)

	for _, lead := range leads {
		m := models.CampaignLead{UserID: user.ID, CampaignID: campaign.ID, LeadID: lead.ID}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("failed to seed membership: %v", err)
		}
	}
	if err := db.Model(campaign).Update("total_leads", 2).Error; err != nil {
		t.Fatalf("failed to set total: %v", err)
	}

	app := newTestApp(user)
	app.Delete("/campaigns/:id/leads/:leadId", cc.RemoveLead)

	url := fmt.Sprintf("/campaigns/%d/leads/%d", campaign.ID, leads[0].ID)
	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodDelete, url, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, body %s", resp.StatusCode, body)
	}

	var result struct {
		TotalLeads int64 `json:"total_leads"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("bad response %s: %v", body, err)
	}
	if result.TotalLeads != 1 {
		t.Errorf("total_leads %d, want 1", result.TotalLeads)
	}
}

func TestDeleteCampaignKeepsEmailHistory(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	cc := NewCampaignController(db, quietLogrus(), &mockCourier{}, NewProgressHub())
	campaign, leads := seedCampaignWithLeads(t, db, user, 1)

	m := models.CampaignLead{UserID: user.ID, CampaignID: campaign.ID, LeadID: leads[0].ID}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("failed to seed membership: %v", err)
	}
	email := models.Email{UserID: user.ID, CampaignID: campaign.ID, LeadID: leads[0].ID, TemplateID: 1, Status: models.EmailStatusSent}
	if err := db.Create(&email).Error; err != nil {
		t.Fatalf("failed to seed email: %v", err)
	}

	app := newTestApp(user)
	app.Delete("/campaigns/:id", cc.DeleteCampaign)

	url := fmt.Sprintf("/campaigns/%d", campaign.ID)
	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodDelete, url, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var memberships int64
	db.Model(&models.CampaignLead{}).Where("campaign_id = ?", campaign.ID).Count(&memberships)
	if memberships != 0 {
		t.Errorf("memberships should be gone, got %d", memberships)
	}
	var emails int64
	db.Model(&models.Email{}).Where("campaign_id = ?", campaign.ID).Count(&emails)
	if emails != 1 {
		t.Errorf("email history must survive campaign deletion, got %d", emails)
	}
}

func TestUpdateCampaignBlockedWhileSending(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	cc := NewCampaignController(db, quietLogrus(), &mockCourier{}, NewProgressHub())

	campaign := models.Campaign{UserID: user.ID, Name: "launch", Status: models.CampaignStatusSending}
	if err := db.Create(&campaign).Error; err != nil {
		t.Fatalf("failed to seed campaign: %v", err)
	}

	app := newTestApp(user)
	app.Put("/campaigns/:id", cc.UpdateCampaign)

	url := fmt.Sprintf("/campaigns/%d", campaign.ID)
	req := httptest.NewRequest(http.MethodPut, url, strings.NewReader(`{"name":"renamed"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := doRequest(t, app, req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status %d, want 409 while sending", resp.StatusCode)
	}
}
