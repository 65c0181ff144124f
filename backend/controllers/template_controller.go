package controllers

import (
	"strconv"

	"updaily/backend/models"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TemplateController struct {
	DB *gorm.DB
}

func NewTemplateController(db *gorm.DB) *TemplateController {
	return &TemplateController{DB: db}
}

type CreateTemplateRequest struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Description  string          `json:"description"`
	Type         models.RetoType `json:"type" validate:"omitempty,gte=1,lte=3"`
	Category     string          `json:"category" validate:"required"`
	Difficulty   int             `json:"difficulty" validate:"omitempty,gte=1,lte=3"`
	RewardPoints *int            `json:"reward_points" validate:"omitempty,gte=0"`
}

// ListTemplates godoc
// @Summary List active challenge templates
// @Tags templates
// @Produce json
// @Param category query string false "Category"
// @Param difficulty query int false "Difficulty 1-3"
// @Success 200 {array} models.ChallengeTemplate
// @Security ApiKeyAuth
// @Router /templates [get]
func (tc *TemplateController) ListTemplates(c *fiber.Ctx) error {
	category, err := categoryQuery(c)
	if err != nil {
		return err
	}
	query := tc.DB.WithContext(c.UserContext()).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if value := c.Query("difficulty"); value != "" {
		difficulty, err := strconv.Atoi(value)
		if err != nil || difficulty < 1 || difficulty > 3 {
			return validationFailed{"difficulty": "difficulty must be between 1 and 3"}
		}
		query = query.Where("difficulty = ?", difficulty)
	}

	var templates []models.ChallengeTemplate
	if err := query.Order("id").Find(&templates).Error; err != nil {
		return err
	}
	return utils.OK(c, templates)
}

func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var input CreateTemplateRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	category, err := models.ParseCategory(input.Category)
	if err != nil {
		return validationFailed{"category": err.Error()}
	}
	template := models.ChallengeTemplate{
		Name:         input.Name,
		Description:  input.Description,
		Type:         input.Type,
		Category:     category,
		Difficulty:   input.Difficulty,
		RewardPoints: 10,
		IsActive:     true,
	}
	if template.Type == 0 {
		template.Type = models.RetoTypeSimple
	}
	if template.Difficulty == 0 {
		template.Difficulty = 1
	}
	if input.RewardPoints != nil {
		template.RewardPoints = *input.RewardPoints
	}
	if err := tc.DB.WithContext(c.UserContext()).Create(&template).Error; err != nil {
		return err
	}
	return utils.Created(c, template)
}

func (tc *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var patch models.TemplatePatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	db := tc.DB.WithContext(c.UserContext())
	var template models.ChallengeTemplate
	if err := db.First(&template, id).Error; err != nil {
		return err
	}
	patch.Apply(&template)
	if err := db.Save(&template).Error; err != nil {
		return err
	}
	return utils.OK(c, template)
}

func (tc *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db := tc.DB.WithContext(c.UserContext())
	var template models.ChallengeTemplate
	if err := db.First(&template, id).Error; err != nil {
		return err
	}
	if err := db.Delete(&template).Error; err != nil {
		return err
	}
	return utils.NoContent(c)
}
