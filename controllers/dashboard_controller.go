package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"outreachly/models"
	"outreachly/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type DashboardStats struct {
	TotalLeads      int64   `json:"total_leads"`
	EmailsSent      int64   `json:"emails_sent"`
	Replies         int64   `json:"replies"`
	ConversionRate  float64 `json:"conversion_rate"`
	ActiveCampaigns int64   `json:"active_campaigns"`
}

type RecentActivityItem struct {
	EmailID  uint      `json:"email_id"`
	LeadName string    `json:"lead_name"`
	Subject  string    `json:"subject"`
	Status   string    `json:"status"`
	SentAt   time.Time `json:"sent_at"`
}

// GetDashboardStats returns summary statistics for the dashboard cards
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var stats DashboardStats

	if err := dc.DB.Model(&models.Lead{}).
		Where("user_id = ?", user.ID).
		Count(&stats.TotalLeads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count leads", err)
	}

	// Opened and replied rows started life as sent, so they count here too
	if err := dc.DB.Model(&models.Email{}).
		Where("user_id = ? AND status IN ?", user.ID,
			[]string{models.EmailStatusSent, models.EmailStatusOpened, models.EmailStatusReplied}).
		Count(&stats.EmailsSent).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count emails", err)
	}

	if err := dc.DB.Model(&models.Email{}).
		Where("user_id = ? AND status = ?", user.ID, models.EmailStatusReplied).
		Count(&stats.Replies).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count replies", err)
	}

	if stats.EmailsSent > 0 {
		stats.ConversionRate = float64(stats.Replies) / float64(stats.EmailsSent) * 100
	}

	if err := dc.DB.Model(&models.Campaign{}).
		Where("user_id = ? AND status IN ?", user.ID,
			[]string{models.CampaignStatusActive, models.CampaignStatusSending}).
		Count(&stats.ActiveCampaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count campaigns", err)
	}

	return c.JSON(utils.SuccessResponse(stats))
}

// GetRecentActivity returns the five most recent email attempts
func (dc *DashboardController) GetRecentActivity(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var emails []models.Email
	if err := dc.DB.Preload("Lead").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(5).
		Find(&emails).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch recent activity", err)
	}

	activity := make([]RecentActivityItem, 0, len(emails))
	for _, email := range emails {
		item := RecentActivityItem{
			EmailID:  email.ID,
			LeadName: email.Lead.Name,
			Subject:  email.Subject,
			Status:   email.Status,
			SentAt:   email.CreatedAt,
		}
		if email.SentAt != nil {
			item.SentAt = *email.SentAt
		}
		activity = append(activity, item)
	}

	return c.JSON(utils.SuccessResponse(activity))
}
