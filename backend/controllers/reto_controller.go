package controllers

import (
	"updaily/backend/models"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RetoController serves the reto catalog. Writes are admin only.
type RetoController struct {
	DB *gorm.DB
}

func NewRetoController(db *gorm.DB) *RetoController {
	return &RetoController{DB: db}
}

type CreateRetoRequest struct {
	Name           string          `json:"name" validate:"required,max=100"`
	Description    string          `json:"description"`
	Type           models.RetoType `json:"type" validate:"omitempty,gte=1,lte=3"`
	Category       string          `json:"category" validate:"required"`
	IsActive       *bool           `json:"is_active"`
	AssignmentDate string          `json:"assignment_date" validate:"omitempty,datetime=2006-01-02"`
	RewardPoints   *int            `json:"reward_points" validate:"omitempty,gte=0"`
}

// categoryQuery parses an optional category query parameter.
func categoryQuery(c *fiber.Ctx) (models.Category, error) {
	value := c.Query("category")
	if value == "" {
		return "", nil
	}
	category, err := models.ParseCategory(value)
	if err != nil {
		return "", validationFailed{"category": err.Error()}
	}
	return category, nil
}

// ListRetos godoc
// @Summary List retos
// @Tags retos
// @Produce json
// @Param category query string false "SOCIAL, FISICA or INTELECTUAL"
// @Param active query bool false "Filter by active flag"
// @Param include_instances query bool false "Include retos instantiated from templates"
// @Success 200 {array} models.Reto
// @Security ApiKeyAuth
// @Router /retos [get]
func (rc *RetoController) ListRetos(c *fiber.Ctx) error {
	category, err := categoryQuery(c)
	if err != nil {
		return err
	}
	page := utils.ParsePagination(c)

	query := rc.DB.WithContext(c.UserContext())
	if !c.QueryBool("include_instances") {
		query = query.Where("template_id IS NULL")
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	switch c.Query("active") {
	case "true":
		query = query.Where("is_active = ?", true)
	case "false":
		query = query.Where("is_active = ?", false)
	}

	var retos []models.Reto
	if err := query.Order("id").Offset(page.Skip).Limit(page.Limit).Find(&retos).Error; err != nil {
		return err
	}
	return utils.OK(c, retos)
}

func (rc *RetoController) GetReto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var reto models.Reto
	if err := rc.DB.WithContext(c.UserContext()).
		Preload("Criteria", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&reto, id).Error; err != nil {
		return err
	}
	return utils.OK(c, reto)
}

// CreateReto godoc
// @Summary Create reto
// @Tags retos
// @Accept json
// @Produce json
// @Param input body CreateRetoRequest true "Reto"
// @Success 201 {object} models.Reto
// @Failure 403 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /retos [post]
func (rc *RetoController) CreateReto(c *fiber.Ctx) error {
	var input CreateRetoRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	category, err := models.ParseCategory(input.Category)
	if err != nil {
		return validationFailed{"category": err.Error()}
	}

	reto := models.Reto{
		Name:           input.Name,
		Description:    input.Description,
		Type:           input.Type,
		Category:       category,
		IsActive:       true,
		AssignmentDate: input.AssignmentDate,
		RewardPoints:   10,
	}
	if reto.Type == 0 {
		reto.Type = models.RetoTypeSimple
	}
	if input.IsActive != nil {
		reto.IsActive = *input.IsActive
	}
	if input.RewardPoints != nil {
		reto.RewardPoints = *input.RewardPoints
	}
	if err := rc.DB.WithContext(c.UserContext()).Create(&reto).Error; err != nil {
		return err
	}
	return utils.Created(c, reto)
}

func (rc *RetoController) UpdateReto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var patch models.RetoPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	db := rc.DB.WithContext(c.UserContext())
	var reto models.Reto
	if err := db.First(&reto, id).Error; err != nil {
		return err
	}
	patch.Apply(&reto)
	if err := db.Save(&reto).Error; err != nil {
		return err
	}
	return utils.OK(c, reto)
}

// DeleteReto soft-deletes the reto. Existing assignments keep showing it.
func (rc *RetoController) DeleteReto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db := rc.DB.WithContext(c.UserContext())
	var reto models.Reto
	if err := db.First(&reto, id).Error; err != nil {
		return err
	}
	if err := db.Delete(&reto).Error; err != nil {
		return err
	}
	return utils.NoContent(c)
}
