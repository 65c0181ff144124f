package controllers

import (
	"updaily/backend/models"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HabitController struct {
	DB *gorm.DB
}

func NewHabitController(db *gorm.DB) *HabitController {
	return &HabitController{DB: db}
}

type CreateHabitRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Description string           `json:"description"`
	HabitType   models.HabitType `json:"habit_type" validate:"omitempty,oneof=daily weekly monthly"`
	TargetValue float64          `json:"target_value" validate:"gte=0"`
	Unit        string           `json:"unit"`
	Icon        string           `json:"icon"`
	Color       string           `json:"color"`
}

func (hc *HabitController) find(c *fiber.Ctx, userID uint) (*models.Habit, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var habit models.Habit
	if err := hc.DB.WithContext(c.UserContext()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&habit).Error; err != nil {
		return nil, err
	}
	return &habit, nil
}

// ListHabits godoc
// @Summary List habits
// @Description Returns the user's habits. Inactive habits are included with ?active=false.
// @Tags habits
// @Produce json
// @Param active query bool false "Filter by active flag" default(true)
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} models.Habit
// @Security ApiKeyAuth
// @Router /habits [get]
func (hc *HabitController) ListHabits(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	page := utils.ParsePagination(c)

	query := hc.DB.WithContext(c.UserContext()).Where("user_id = ?", userID)
	if c.Query("active", "true") != "false" {
		query = query.Where("is_active = ?", true)
	}

	var habits []models.Habit
	if err := query.Order("id").Offset(page.Skip).Limit(page.Limit).Find(&habits).Error; err != nil {
		return err
	}
	return utils.OK(c, habits)
}

func (hc *HabitController) CreateHabit(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var input CreateHabitRequest
	if err := bind(c, &input); err != nil {
		return err
	}

	habit := models.Habit{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		HabitType:   input.HabitType,
		TargetValue: input.TargetValue,
		Unit:        input.Unit,
		Icon:        input.Icon,
		Color:       input.Color,
		IsActive:    true,
	}
	if habit.HabitType == "" {
		habit.HabitType = models.HabitDaily
	}
	if habit.TargetValue == 0 {
		habit.TargetValue = 1
	}
	if err := hc.DB.WithContext(c.UserContext()).Create(&habit).Error; err != nil {
		return err
	}
	return utils.Created(c, habit)
}

func (hc *HabitController) GetHabit(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	habit, err := hc.find(c, userID)
	if err != nil {
		return err
	}
	return utils.OK(c, habit)
}

func (hc *HabitController) UpdateHabit(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch models.HabitPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	habit, err := hc.find(c, userID)
	if err != nil {
		return err
	}

	patch.Apply(habit)
	if err := hc.DB.WithContext(c.UserContext()).Save(habit).Error; err != nil {
		return err
	}
	return utils.OK(c, habit)
}

// DeleteHabit deactivates the habit; its progress records stay.
func (hc *HabitController) DeleteHabit(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	habit, err := hc.find(c, userID)
	if err != nil {
		return err
	}
	if err := hc.DB.WithContext(c.UserContext()).Model(habit).Update("is_active", false).Error; err != nil {
		return err
	}
	return utils.Message(c, fiber.StatusOK, "Habit deactivated", nil)
}
