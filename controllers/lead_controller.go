package controller

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"outreachly/models"
	"outreachly/utils"
)

// LeadAnalyzer turns channel URLs into lead records
type LeadAnalyzer interface {
	Analyze(ctx context.Context, urls []string) ([]models.Lead, error)
}

type LeadController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Analyzer LeadAnalyzer
}

func NewLeadController(db *gorm.DB, logger *log.Logger, analyzer LeadAnalyzer) *LeadController {
	return &LeadController{
		DB:       db,
		Logger:   logger,
		Analyzer: analyzer,
	}
}

// CreateLead creates a new lead with validation
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string `json:"name" validate:"required,max=200"`
		Email       string `json:"email" validate:"omitempty,max=320"`
		ChannelName string `json:"channel_name" validate:"omitempty,max=200"`
		Platform    string `json:"platform" validate:"omitempty,max=50"`
		ProfileURL  string `json:"profile_url" validate:"omitempty,url"`
		Niche       string `json:"niche" validate:"omitempty,max=200"`
		Status      string `json:"status" validate:"omitempty,oneof=new contacted replied closed"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Validate input
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		email = models.NoEmailSentinel
	}

	lead := models.Lead{
		UserID:      user.ID,
		Name:        input.Name,
		Email:       email,
		ChannelName: input.ChannelName,
		Platform:    input.Platform,
		ProfileURL:  input.ProfileURL,
		Niche:       input.Niche,
		Status:      input.Status,
	}
	if lead.Status == "" {
		lead.Status = "new"
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// GetLeads returns paginated list of leads with filters
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
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

	// Filters
	status := c.Query("status")
	platform := c.Query("platform")
	hasEmail := c.Query("has_email")
	search := c.Query("search")

	query := lc.DB.Model(&models.Lead{}).Where("user_id = ?", user.ID)

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if hasEmail != "" {
		switch hasEmail {
		case "true":
			query = query.Where("email <> '' AND email <> ?", models.NoEmailSentinel)
		case "false":
			query = query.Where("email = '' OR email = ?", models.NoEmailSentinel)
		default:
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid has_email filter", nil)
		}
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR channel_name LIKE ? OR niche LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count leads", err)
	}

	var leads []models.Lead
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  leads,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetLead returns a single lead by ID
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND user_id = ?", leadID, user.ID).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// UpdateLead updates lead details
func (lc *LeadController) UpdateLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND user_id = ?", leadID, user.ID).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	var input struct {
		Name        *string `json:"name" validate:"omitempty,max=200"`
		Email       *string `json:"email" validate:"omitempty,max=320"`
		ChannelName *string `json:"channel_name" validate:"omitempty,max=200"`
		Platform    *string `json:"platform" validate:"omitempty,max=50"`
		ProfileURL  *string `json:"profile_url" validate:"omitempty,url"`
		Niche       *string `json:"niche" validate:"omitempty,max=200"`
		Status      *string `json:"status" validate:"omitempty,oneof=new contacted replied closed"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Validate input
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			email = models.NoEmailSentinel
		}
		updates["email"] = email
	}
	if input.ChannelName != nil {
		updates["channel_name"] = *input.ChannelName
	}
	if input.Platform != nil {
		updates["platform"] = *input.Platform
	}
	if input.ProfileURL != nil {
		updates["profile_url"] = *input.ProfileURL
	}
	if input.Niche != nil {
		updates["niche"] = *input.Niche
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	if len(updates) > 0 {
		if err := lc.DB.Model(&lead).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", err)
		}
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// DeleteLead removes a lead along with its campaign memberships
func (lc *LeadController) DeleteLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND user_id = ?", leadID, user.ID).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	tx := lc.DB.Begin()
	if tx.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start transaction", tx.Error)
	}

	// Campaign memberships go first, sent email history stays
	if err := tx.Where("lead_id = ?", lead.ID).Delete(&models.CampaignLead{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove lead from campaigns", err)
	}

	if err := tx.Delete(&lead).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to commit transaction", err)
	}

	return c.JSON(fiber.Map{
		"message": "Lead deleted successfully",
	})
}

// AnalyzeChannels sends pasted channel references to the AI gateway
// and stores the returned leads in one batch. Entries are free-form:
// URLs, @handles or whole pasted pages; the gateway extracts the
// candidates itself.
func (lc *LeadController) AnalyzeChannels(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		URLs []string `json:"urls" validate:"required,min=1,max=20,dive,required,max=10000"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Validate input
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	leads, err := lc.Analyzer.Analyze(c.Context(), input.URLs)
	if err != nil {
		lc.Logger.Printf("channel analysis failed for user %d: %v", user.ID, err)
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Channel analysis failed", err)
	}

	// All rows land or none do
	tx := lc.DB.Begin()
	if tx.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start transaction", tx.Error)
	}

	for i := range leads {
		leads[i].UserID = user.ID
		if err := tx.Create(&leads[i]).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save analyzed leads", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to commit transaction", err)
	}

	lc.Logger.Printf("analyzed %d channels into %d leads for user %d", len(input.URLs), len(leads), user.ID)

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(leads))
}
