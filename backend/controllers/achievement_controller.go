package controllers

import (
	"time"

	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AchievementController struct {
	Achievements *services.AchievementService
}

func NewAchievementController(achievements *services.AchievementService) *AchievementController {
	return &AchievementController{Achievements: achievements}
}

type AwardAchievementRequest struct {
	AssignmentID uint       `json:"assignment_id" validate:"required"`
	AwardedAt    *time.Time `json:"awarded_at"`
}

type UpdateAchievementRequest struct {
	AwardedAt *time.Time `json:"awarded_at" validate:"required"`
}

func (ac *AchievementController) ListAchievements(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	achievements, err := ac.Achievements.ListForUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return utils.OK(c, achievements)
}

func (ac *AchievementController) GetAchievement(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	achievement, err := ac.Achievements.Get(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return utils.OK(c, achievement)
}

// CreateForAssignment godoc
// @Summary Award achievement for an assignment
// @Description Returns 201 with the achievement when the assignment is at 100%, the existing one when already awarded, and 200 without data otherwise
// @Tags achievements
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} models.Achievement
// @Success 201 {object} models.Achievement
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /achievements/assignment/{id} [post]
func (ac *AchievementController) CreateForAssignment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	achievement, err := ac.Achievements.CreateIfComplete(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	if achievement == nil {
		return utils.Message(c, fiber.StatusOK, "Assignment is not complete yet", nil)
	}
	return utils.Created(c, achievement)
}

// AwardAchievement godoc
// @Summary Award an achievement manually
// @Description Admin only. Progress is not checked; an assignment holds at most one achievement
// @Tags admin
// @Accept json
// @Produce json
// @Param input body AwardAchievementRequest true "Achievement"
// @Success 201 {object} models.Achievement
// @Failure 409 {object} utils.ErrorResponse "Already awarded"
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/achievements [post]
func (ac *AchievementController) AwardAchievement(c *fiber.Ctx) error {
	var input AwardAchievementRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	var awardedAt time.Time
	if input.AwardedAt != nil {
		awardedAt = *input.AwardedAt
	}
	achievement, err := ac.Achievements.Award(c.UserContext(), input.AssignmentID, awardedAt)
	if err != nil {
		return err
	}
	return utils.Created(c, achievement)
}

func (ac *AchievementController) UpdateAchievement(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var input UpdateAchievementRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	achievement, err := ac.Achievements.SetAwardedAt(c.UserContext(), id, *input.AwardedAt)
	if err != nil {
		return err
	}
	return utils.OK(c, achievement)
}

func (ac *AchievementController) DeleteAchievement(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := ac.Achievements.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return utils.NoContent(c)
}
