package controllers

import (
	"time"

	"updaily/backend/models"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChallengeController struct {
	DB *gorm.DB
}

func NewChallengeController(db *gorm.DB) *ChallengeController {
	return &ChallengeController{DB: db}
}

type CreateChallengeRequest struct {
	Title          string               `json:"title" validate:"required,max=200"`
	Description    string               `json:"description"`
	ChallengeType  models.ChallengeType `json:"challenge_type" validate:"omitempty,oneof=simple progress checklist"`
	TargetValue    *float64             `json:"target_value" validate:"omitempty,gt=0"`
	Unit           string               `json:"unit"`
	Icon           string               `json:"icon"`
	Color          string               `json:"color"`
	ChecklistItems datatypes.JSON       `json:"checklist_items"`
	StartDate      *time.Time           `json:"start_date"`
	EndDate        *time.Time           `json:"end_date"`
}

type ChallengeProgressRequest struct {
	Value float64 `json:"value" validate:"gt=0"`
	Notes string  `json:"notes"`
}

func (cc *ChallengeController) find(db *gorm.DB, c *fiber.Ctx, userID uint) (*models.Challenge, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var challenge models.Challenge
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ListChallenges godoc
// @Summary List personal challenges
// @Tags challenges
// @Produce json
// @Param status query string false "pending, in_progress, completed or failed"
// @Success 200 {array} models.Challenge
// @Security ApiKeyAuth
// @Router /challenges [get]
func (cc *ChallengeController) ListChallenges(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	page := utils.ParsePagination(c)

	query := cc.DB.WithContext(c.UserContext()).Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var challenges []models.Challenge
	if err := query.Order("id").Offset(page.Skip).Limit(page.Limit).Find(&challenges).Error; err != nil {
		return err
	}
	return utils.OK(c, challenges)
}

func (cc *ChallengeController) CreateChallenge(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var input CreateChallengeRequest
	if err := bind(c, &input); err != nil {
		return err
	}

	challenge := models.Challenge{
		UserID:         userID,
		Title:          input.Title,
		Description:    input.Description,
		ChallengeType:  input.ChallengeType,
		Status:         models.StatusPending,
		TargetValue:    input.TargetValue,
		Unit:           input.Unit,
		Icon:           input.Icon,
		Color:          input.Color,
		ChecklistItems: input.ChecklistItems,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
	}
	if challenge.ChallengeType == "" {
		challenge.ChallengeType = models.ChallengeSimple
	}
	if err := cc.DB.WithContext(c.UserContext()).Create(&challenge).Error; err != nil {
		return err
	}
	return utils.Created(c, challenge)
}

func (cc *ChallengeController) GetChallenge(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	challenge, err := cc.find(cc.DB.WithContext(c.UserContext()), c, userID)
	if err != nil {
		return err
	}
	return utils.OK(c, challenge)
}

func (cc *ChallengeController) UpdateChallenge(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch models.ChallengePatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	db := cc.DB.WithContext(c.UserContext())
	challenge, err := cc.find(db, c, userID)
	if err != nil {
		return err
	}

	patch.Apply(challenge)
	if challenge.Status == models.StatusCompleted && challenge.CompletedAt == nil {
		now := time.Now()
		challenge.CompletedAt = &now
	}
	if err := db.Save(challenge).Error; err != nil {
		return err
	}
	return utils.OK(c, challenge)
}

func (cc *ChallengeController) DeleteChallenge(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	db := cc.DB.WithContext(c.UserContext())
	challenge, err := cc.find(db, c, userID)
	if err != nil {
		return err
	}
	if err := db.Delete(challenge).Error; err != nil {
		return err
	}
	return utils.NoContent(c)
}

// AddProgress godoc
// @Summary Add progress to a challenge
// @Description Adds value to current_value and logs a progress record. Reaching the target completes the challenge.
// @Tags challenges
// @Accept json
// @Produce json
// @Param id path int true "Challenge ID"
// @Param input body ChallengeProgressRequest true "Progress"
// @Success 200 {object} models.Challenge
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /challenges/{id}/progress [post]
func (cc *ChallengeController) AddProgress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var input ChallengeProgressRequest
	if err := bind(c, &input); err != nil {
		return err
	}

	var challenge *models.Challenge
	err = cc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		challenge, err = cc.find(tx, c, userID)
		if err != nil {
			return err
		}
		if challenge.Status == models.StatusCompleted || challenge.Status == models.StatusFailed {
			return fiber.NewError(fiber.StatusConflict, "Challenge is already "+string(challenge.Status))
		}

		now := time.Now()
		challenge.CurrentValue += input.Value
		switch {
		case challenge.TargetValue != nil && challenge.CurrentValue >= *challenge.TargetValue:
			challenge.Status = models.StatusCompleted
			challenge.CompletedAt = &now
		case challenge.Status == models.StatusPending:
			challenge.Status = models.StatusInProgress
		}

		record := models.ProgressRecord{
			UserID:      userID,
			ChallengeID: &challenge.ID,
			Date:        now,
			Value:       input.Value,
			Notes:       input.Notes,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Save(challenge).Error
	})
	if err != nil {
		return err
	}
	return utils.OK(c, challenge)
}
