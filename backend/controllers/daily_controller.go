package controllers

import (
	"updaily/backend/models"
	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// DailyController serves the daily assignments of the current user.
type DailyController struct {
	Generator   *services.Generator
	Assignments *services.AssignmentService
	Stats       *services.StatsService
}

func NewDailyController(svc *services.Services) *DailyController {
	return &DailyController{
		Generator:   svc.Generator,
		Assignments: svc.Assignments,
		Stats:       svc.Stats,
	}
}

// ListDaily godoc
// @Summary List daily assignments
// @Tags daily
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {array} models.DailyAssignment
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /daily [get]
func (dc *DailyController) ListDaily(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	date, err := dc.Generator.ParseDay(c.Query("date"))
	if err != nil {
		return err
	}
	assignments, err := dc.Assignments.ListForDate(c.UserContext(), userID, dc.Generator.DayKey(date))
	if err != nil {
		return err
	}
	return utils.OK(c, assignments)
}

// Today returns today's assignments, generating them on first access.
func (dc *DailyController) Today(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	assignments, err := dc.Generator.Generate(c.UserContext(), userID, dc.Generator.Today())
	if err != nil {
		return err
	}
	return utils.OK(c, assignments)
}

// Generate godoc
// @Summary Generate daily assignments
// @Description Idempotent: returns the existing set when the day is already generated
// @Tags daily
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {array} models.DailyAssignment
// @Failure 409 {object} utils.ErrorResponse "Not enough active retos in a category"
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /daily/generate [post]
func (dc *DailyController) Generate(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	date, err := dc.Generator.ParseDay(c.Query("date"))
	if err != nil {
		return err
	}
	assignments, err := dc.Generator.Generate(c.UserContext(), userID, date)
	if err != nil {
		return err
	}
	return utils.OK(c, assignments)
}

// Regenerate replaces the set of the given day (today by default).
func (dc *DailyController) Regenerate(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	date, err := dc.Generator.ParseDay(c.Query("date"))
	if err != nil {
		return err
	}
	assignments, err := dc.Generator.Regenerate(c.UserContext(), userID, date)
	if err != nil {
		return err
	}
	return utils.OK(c, assignments)
}

// UpdateDaily godoc
// @Summary Update assignment progress
// @Description Sets progress_value (0-100) or is_completed. Completed assignments cannot change.
// @Tags daily
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param input body models.AssignmentPatch true "Progress"
// @Success 200 {object} services.ProgressResult
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /daily/{id} [put]
func (dc *DailyController) UpdateDaily(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var patch models.AssignmentPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	result, err := dc.Assignments.UpdateProgress(c.UserContext(), userID, id, patch)
	if err != nil {
		return err
	}
	return utils.OK(c, result)
}

func (dc *DailyController) CompleteDaily(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	result, err := dc.Assignments.Complete(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return utils.OK(c, result)
}

func (dc *DailyController) DeleteDaily(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := dc.Assignments.Delete(c.UserContext(), userID, id); err != nil {
		return err
	}
	return utils.NoContent(c)
}

// UserStats returns totals and streaks over all of the user's assignments.
func (dc *DailyController) UserStats(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := dc.Stats.UserStats(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return utils.OK(c, stats)
}

func (dc *DailyController) Progress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	date, err := dc.Generator.ParseDay(c.Query("date"))
	if err != nil {
		return err
	}
	progress, err := dc.Stats.DailyProgress(c.UserContext(), userID, dc.Generator.DayKey(date))
	if err != nil {
		return err
	}
	return utils.OK(c, progress)
}

func (dc *DailyController) CategoryStats(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	category, err := models.ParseCategory(c.Params("category"))
	if err != nil {
		return validationFailed{"category": err.Error()}
	}
	stats, err := dc.Stats.CategoryStats(c.UserContext(), userID, category)
	if err != nil {
		return err
	}
	return utils.OK(c, stats)
}
