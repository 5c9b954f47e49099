package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"outreachly/models"
	"outreachly/utils"
)

type CampaignController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Mailer utils.Courier
	Hub    *ProgressHub
}

func NewCampaignController(db *gorm.DB, logger *logrus.Logger, mailer utils.Courier, hub *ProgressHub) *CampaignController {
	return &CampaignController{
		DB:     db,
		Logger: logger,
		Mailer: mailer,
		Hub:    hub,
	}
}

// CreateCampaign creates a new outreach campaign in draft state
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name       string `json:"name" validate:"required,max=200"`
		TemplateID *uint  `json:"template_id"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Validate input
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.TemplateID != nil {
		var template models.Template
		if err := cc.DB.Where("id = ? AND user_id = ?", *input.TemplateID, user.ID).First(&template).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
	}

	campaign := models.Campaign{
		UserID:     user.ID,
		Name:       input.Name,
		Status:     models.CampaignStatusDraft,
		TemplateID: input.TemplateID,
	}

	if err := cc.DB.Create(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(campaign))
}

// GetCampaigns returns paginated list of campaigns
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	status := c.Query("status")

	query := cc.DB.Model(&models.Campaign{}).Where("user_id = ?", user.ID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count campaigns", err)
	}

	var campaigns []models.Campaign
	if err := query.Preload("Template").Order("created_at DESC").Offset(offset).Limit(limit).Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  campaigns,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetCampaign returns a single campaign with its leads
func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := cc.DB.Preload("Template").Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	var memberships []models.CampaignLead
	if err := cc.DB.Preload("Lead").Where("campaign_id = ?", campaign.ID).Find(&memberships).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign leads", err)
	}

	leads := make([]models.Lead, 0, len(memberships))
	for _, m := range memberships {
		leads = append(leads, m.Lead)
	}

	return c.JSON(fiber.Map{
		"data":  campaign,
		"leads": leads,
	})
}

// UpdateCampaign updates campaign details
func (cc *CampaignController) UpdateCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	var input struct {
		Name       *string `json:"name" validate:"omitempty,max=200"`
		TemplateID *uint   `json:"template_id"`
		Status     *string `json:"status" validate:"omitempty,oneof=draft active paused completed"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Validate input
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// An in-flight dispatch owns the campaign until it finishes
	if campaign.Status == models.CampaignStatusSending {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Campaign is currently sending", nil)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.TemplateID != nil {
		var template models.Template
		if err := cc.DB.Where("id = ? AND user_id = ?", *input.TemplateID, user.ID).First(&template).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		updates["template_id"] = *input.TemplateID
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	if len(updates) > 0 {
		if err := cc.DB.Model(&campaign).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update campaign", err)
		}
	}

	return c.JSON(utils.SuccessResponse(campaign))
}

// DeleteCampaign removes a campaign and its lead memberships while
// keeping the sent email history
func (cc *CampaignController) DeleteCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	if campaign.Status == models.CampaignStatusSending {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Campaign is currently sending", nil)
	}

	tx := cc.DB.Begin()
	if tx.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start transaction", tx.Error)
	}

	if err := tx.Where("campaign_id = ?", campaign.ID).Delete(&models.CampaignLead{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove campaign leads", err)
	}

	if err := tx.Delete(&campaign).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to commit transaction", err)
	}

	return c.JSON(fiber.Map{
		"message": "Campaign deleted successfully",
	})
}

// AddLeads attaches leads to a campaign and refreshes the lead count
func (cc *CampaignController) AddLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	var input struct {
		LeadIDs []uint `json:"lead_ids" validate:"required,min=1"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Validate input
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// Every lead must belong to the caller
	var owned int64
	if err := cc.DB.Model(&models.Lead{}).
		Where("id IN ? AND user_id = ?", input.LeadIDs, user.ID).
		Count(&owned).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to verify leads", err)
	}
	if owned != int64(len(input.LeadIDs)) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "One or more leads not found", nil)
	}

	tx := cc.DB.Begin()
	if tx.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start transaction", tx.Error)
	}

	for _, leadID := range input.LeadIDs {
		var existing models.CampaignLead
		if err := tx.Where("campaign_id = ? AND lead_id = ?", campaign.ID, leadID).First(&existing).Error; err == nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusConflict, "Lead is already in this campaign", nil)
		}

		membership := models.CampaignLead{
			UserID:     user.ID,
			CampaignID: campaign.ID,
			LeadID:     leadID,
		}
		if err := tx.Create(&membership).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add lead to campaign", err)
		}
	}

	// total_leads always mirrors the membership table
	var total int64
	if err := tx.Model(&models.CampaignLead{}).Where("campaign_id = ?", campaign.ID).Count(&total).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count campaign leads", err)
	}

	if err := tx.Model(&campaign).Update("total_leads", total).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead count", err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to commit transaction", err)
	}

	return c.JSON(fiber.Map{
		"message":     "Leads added to campaign",
		"total_leads": total,
	})
}

// RemoveLead detaches a single lead from a campaign
func (cc *CampaignController) RemoveLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")
	leadID := c.Params("leadId")

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	tx := cc.DB.Begin()
	if tx.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start transaction", tx.Error)
	}

	result := tx.Where("campaign_id = ? AND lead_id = ?", campaign.ID, leadID).Delete(&models.CampaignLead{})
	if result.Error != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove lead from campaign", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead is not in this campaign", nil)
	}

	var total int64
	if err := tx.Model(&models.CampaignLead{}).Where("campaign_id = ?", campaign.ID).Count(&total).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count campaign leads", err)
	}

	if err := tx.Model(&campaign).Update("total_leads", total).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead count", err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to commit transaction", err)
	}

	return c.JSON(fiber.Map{
		"message":     "Lead removed from campaign",
		"total_leads": total,
	})
}
