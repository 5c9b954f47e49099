package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"outreachly/models"
	"outreachly/utils"
)

type TemplateController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTemplateController(db *gorm.DB, logger *log.Logger) *TemplateController {
	return &TemplateController{
		DB:     db,
		Logger: logger,
	}
}

// CreateTemplate creates a new outreach template
func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name    string `json:"name" validate:"required,max=200"`
		Subject string `json:"subject" validate:"required,max=500"`
		Body    string `json:"body" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Validate input
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	template := models.Template{
		UserID:  user.ID,
		Name:    input.Name,
		Subject: input.Subject,
		Body:    input.Body,
	}

	if err := tc.DB.Create(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create template", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(template))
}

// GetTemplates returns paginated list of templates
func (tc *TemplateController) GetTemplates(c *fiber.Ctx) error {
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

	query := tc.DB.Model(&models.Template{}).Where("user_id = ?", user.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count templates", err)
	}

	var templates []models.Template
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&templates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch templates", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  templates,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetTemplate returns a single template by ID
func (tc *TemplateController) GetTemplate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	templateID := c.Params("id")

	var template models.Template
	if err := tc.DB.Where("id = ? AND user_id = ?", templateID, user.ID).First(&template).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch template", err)
	}

	return c.JSON(utils.SuccessResponse(template))
}

// UpdateTemplate updates template details
func (tc *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	templateID := c.Params("id")

	var template models.Template
	if err := tc.DB.Where("id = ? AND user_id = ?", templateID, user.ID).First(&template).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch template", err)
	}

	var input struct {
		Name    *string `json:"name" validate:"omitempty,max=200"`
		Subject *string `json:"subject" validate:"omitempty,max=500"`
		Body    *string `json:"body"`
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
	if input.Subject != nil {
		updates["subject"] = *input.Subject
	}
	if input.Body != nil {
		updates["body"] = *input.Body
	}

	if len(updates) > 0 {
		if err := tc.DB.Model(&template).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update template", err)
		}
	}

	return c.JSON(utils.SuccessResponse(template))
}

// DeleteTemplate removes a template and detaches it from campaigns
func (tc *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	templateID := c.Params("id")

	var template models.Template
	if err := tc.DB.Where("id = ? AND user_id = ?", templateID, user.ID).First(&template).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch template", err)
	}

	tx := tc.DB.Begin()
	if tx.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start transaction", tx.Error)
	}

	// Campaigns referencing this template fall back to no template
	if err := tx.Model(&models.Campaign{}).
		Where("template_id = ? AND user_id = ?", template.ID, user.ID).
		Update("template_id", nil).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to detach template from campaigns", err)
	}

	if err := tx.Delete(&template).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete template", err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to commit transaction", err)
	}

	return c.JSON(fiber.Map{
		"message": "Template deleted successfully",
	})
}
