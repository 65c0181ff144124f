package controllers

import (
	"time"

	"updaily/backend/models"
	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB    *gorm.DB
	Stats *services.StatsService
}

func NewProgressController(db *gorm.DB, stats *services.StatsService) *ProgressController {
	return &ProgressController{DB: db, Stats: stats}
}

type CreateProgressRequest struct {
	HabitID     *uint      `json:"habit_id"`
	ChallengeID *uint      `json:"challenge_id"`
	Date        *time.Time `json:"date"`
	Value       *float64   `json:"value" validate:"omitempty,gte=0"`
	Notes       string     `json:"notes"`
}

// ListProgress godoc
// @Summary List progress records
// @Description Returns the user's progress records, newest first
// @Tags progress
// @Produce json
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} models.ProgressRecord
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) ListProgress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	return pc.list(c, pc.DB.Where("user_id = ?", userID))
}

// ByHabit returns the records of one owned habit.
func (pc *ProgressController) ByHabit(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := pc.owns(c, &models.Habit{}, id, userID); err != nil {
		return err
	}
	return pc.list(c, pc.DB.Where("user_id = ? AND habit_id = ?", userID, id))
}

func (pc *ProgressController) ByChallenge(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := pc.owns(c, &models.Challenge{}, id, userID); err != nil {
		return err
	}
	return pc.list(c, pc.DB.Where("user_id = ? AND challenge_id = ?", userID, id))
}

func (pc *ProgressController) list(c *fiber.Ctx, query *gorm.DB) error {
	page := utils.ParsePagination(c)
	var records []models.ProgressRecord
	if err := query.WithContext(c.UserContext()).
		Order("date DESC, id DESC").
		Offset(page.Skip).
		Limit(page.Limit).
		Find(&records).Error; err != nil {
		return err
	}
	return utils.OK(c, records)
}

// owns checks that the habit or challenge exists and belongs to userID.
func (pc *ProgressController) owns(c *fiber.Ctx, model interface{}, id, userID uint) error {
	return pc.DB.WithContext(c.UserContext()).
		Select("id").
		Where("id = ? AND user_id = ?", id, userID).
		First(model).Error
}

// CreateProgress godoc
// @Summary Log progress
// @Description Logs progress for exactly one owned habit or personal challenge
// @Tags progress
// @Accept json
// @Produce json
// @Param input body CreateProgressRequest true "Progress record"
// @Success 201 {object} models.ProgressRecord
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [post]
func (pc *ProgressController) CreateProgress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var input CreateProgressRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	if (input.HabitID == nil) == (input.ChallengeID == nil) {
		return validationFailed{"habit_id": "exactly one of habit_id or challenge_id is required"}
	}

	if input.HabitID != nil {
		err = pc.owns(c, &models.Habit{}, *input.HabitID, userID)
	} else {
		err = pc.owns(c, &models.Challenge{}, *input.ChallengeID, userID)
	}
	if err != nil {
		return err
	}

	record := models.ProgressRecord{
		UserID:      userID,
		HabitID:     input.HabitID,
		ChallengeID: input.ChallengeID,
		Date:        time.Now(),
		Value:       1,
		Notes:       input.Notes,
	}
	if input.Date != nil {
		record.Date = *input.Date
	}
	if input.Value != nil {
		record.Value = *input.Value
	}
	if err := pc.DB.WithContext(c.UserContext()).Create(&record).Error; err != nil {
		return err
	}
	return utils.Created(c, record)
}

// GetProgressStats godoc
// @Summary Get progress overview
// @Description Returns habit and personal challenge totals with habit streaks
// @Tags progress
// @Produce json
// @Success 200 {object} services.HabitSummary
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/stats [get]
func (pc *ProgressController) GetProgressStats(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	summary, err := pc.Stats.HabitSummary(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return utils.OK(c, summary)
}

func (pc *ProgressController) find(c *fiber.Ctx, userID uint) (*models.ProgressRecord, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var record models.ProgressRecord
	if err := pc.DB.WithContext(c.UserContext()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (pc *ProgressController) GetRecord(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	record, err := pc.find(c, userID)
	if err != nil {
		return err
	}
	return utils.OK(c, record)
}

// UpdateRecord changes only value and notes.
func (pc *ProgressController) UpdateRecord(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch models.ProgressRecordPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	record, err := pc.find(c, userID)
	if err != nil {
		return err
	}
	patch.Apply(record)
	if err := pc.DB.WithContext(c.UserContext()).Save(record).Error; err != nil {
		return err
	}
	return utils.OK(c, record)
}

func (pc *ProgressController) DeleteRecord(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	record, err := pc.find(c, userID)
	if err != nil {
		return err
	}
	if err := pc.DB.WithContext(c.UserContext()).Delete(record).Error; err != nil {
		return err
	}
	return utils.NoContent(c)
}
