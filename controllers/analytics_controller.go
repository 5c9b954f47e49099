package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"outreachly/models"
	"outreachly/utils"
)

type AnalyticsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAnalyticsController(db *gorm.DB, logger *log.Logger) *AnalyticsController {
	return &AnalyticsController{
		DB:     db,
		Logger: logger,
	}
}

type EmailStats struct {
	Total       int64   `json:"total"`
	Sent        int64   `json:"sent"`
	Failed      int64   `json:"failed"`
	Opened      int64   `json:"opened"`
	Replied     int64   `json:"replied"`
	SentRate    float64 `json:"sent_rate"`
	FailureRate float64 `json:"failure_rate"`
	OpenRate    float64 `json:"open_rate"`
	ReplyRate   float64 `json:"reply_rate"`
}

// GetEmailStats returns per-status email counts and derived rates.
// Every rate guards its denominator so an empty account reads as zero.
func (ac *AnalyticsController) GetEmailStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	campaignID := c.Query("campaign_id")

	query := ac.DB.Model(&models.Email{}).Where("user_id = ?", user.ID)
	if campaignID != "" {
		var campaign models.Campaign
		if err := ac.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
		}
		query = query.Where("campaign_id = ?", campaign.ID)
	}

	var stats EmailStats

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := query.Select("status, COUNT(*) as count").Group("status").Scan(&counts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to aggregate email stats", err)
	}

	for _, sc := range counts {
		stats.Total += sc.Count
		switch sc.Status {
		case models.EmailStatusSent:
			stats.Sent += sc.Count
		case models.EmailStatusFailed:
			stats.Failed += sc.Count
		case models.EmailStatusOpened:
			stats.Opened += sc.Count
		case models.EmailStatusReplied:
			stats.Replied += sc.Count
		}
	}

	if stats.Total > 0 {
		stats.SentRate = float64(stats.Sent) / float64(stats.Total) * 100
		stats.FailureRate = float64(stats.Failed) / float64(stats.Total) * 100
	}
	if stats.Sent > 0 {
		stats.OpenRate = float64(stats.Opened) / float64(stats.Sent) * 100
		stats.ReplyRate = float64(stats.Replied) / float64(stats.Sent) * 100
	}

	return c.JSON(utils.SuccessResponse(stats))
}

type CampaignPerformance struct {
	CampaignID uint   `json:"campaign_id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	TotalLeads int    `json:"total_leads"`
	SentCount  int    `json:"sent_count"`
	Failed     int64  `json:"failed"`
	Replies    int64  `json:"replies"`
}

// GetCampaignPerformance returns per-campaign send and reply totals
func (ac *AnalyticsController) GetCampaignPerformance(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var campaigns []models.Campaign
	if err := ac.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}

	performance := make([]CampaignPerformance, 0, len(campaigns))
	for _, campaign := range campaigns {
		row := CampaignPerformance{
			CampaignID: campaign.ID,
			Name:       campaign.Name,
			Status:     campaign.Status,
			TotalLeads: campaign.TotalLeads,
			SentCount:  campaign.SentCount,
		}

		if err := ac.DB.Model(&models.Email{}).
			Where("campaign_id = ? AND status = ?", campaign.ID, models.EmailStatusFailed).
			Count(&row.Failed).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count failures", err)
		}

		if err := ac.DB.Model(&models.Email{}).
			Where("campaign_id = ? AND status = ?", campaign.ID, models.EmailStatusReplied).
			Count(&row.Replies).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count replies", err)
		}

		performance = append(performance, row)
	}

	return c.JSON(utils.SuccessResponse(performance))
}
