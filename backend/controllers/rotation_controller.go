package controllers

import (
	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// RotationController serves the featured reto of each category.
type RotationController struct {
	Rotation  *services.Rotation
	Generator *services.Generator
}

func NewRotationController(svc *services.Services) *RotationController {
	return &RotationController{Rotation: svc.Rotation, Generator: svc.Generator}
}

// Featured godoc
// @Summary Featured retos of the day
// @Tags retos
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {array} models.Reto
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /retos/featured [get]
func (rc *RotationController) Featured(c *fiber.Ctx) error {
	date, err := rc.Generator.ParseDay(c.Query("date"))
	if err != nil {
		return err
	}
	retos, err := rc.Rotation.Featured(c.UserContext(), date)
	if err != nil {
		return err
	}
	return utils.OK(c, retos)
}

// Rotate godoc
// @Summary Rotate featured retos
// @Tags admin
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {array} models.Reto
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/retos/rotate [post]
func (rc *RotationController) Rotate(c *fiber.Ctx) error {
	date, err := rc.Generator.ParseDay(c.Query("date"))
	if err != nil {
		return err
	}
	retos, err := rc.Rotation.Rotate(c.UserContext(), date)
	if err != nil {
		return err
	}
	return utils.Message(c, fiber.StatusOK, "Featured retos rotated", retos)
}
