package controllers

import (
	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// EnrollmentController serves open-ended reto enrollments of the current user.
type EnrollmentController struct {
	Enrollments *services.EnrollmentService
}

func NewEnrollmentController(enrollments *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{Enrollments: enrollments}
}

type EnrollRequest struct {
	RetoID uint `json:"reto_id" validate:"required"`
}

type EnrollmentProgressRequest struct {
	Progress *float64 `json:"progress" validate:"required,gte=0,lte=100"`
}

func (ec *EnrollmentController) ListEnrollments(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	enrollments, err := ec.Enrollments.List(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return utils.OK(c, enrollments)
}

// Enroll godoc
// @Summary Enroll in a reto
// @Tags enrollments
// @Accept json
// @Produce json
// @Param input body EnrollRequest true "Reto"
// @Success 201 {object} models.Enrollment
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse "Already enrolled"
// @Security ApiKeyAuth
// @Router /enrollments [post]
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var input EnrollRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	enrollment, err := ec.Enrollments.Enroll(c.UserContext(), userID, input.RetoID)
	if err != nil {
		return err
	}
	return utils.Created(c, enrollment)
}

func (ec *EnrollmentController) UpdateProgress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var input EnrollmentProgressRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	enrollment, err := ec.Enrollments.UpdateProgress(c.UserContext(), userID, id, *input.Progress)
	if err != nil {
		return err
	}
	return utils.OK(c, enrollment)
}

// Abandon leaves the reto.
func (ec *EnrollmentController) Abandon(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := ec.Enrollments.Abandon(c.UserContext(), userID, id); err != nil {
		return err
	}
	return utils.NoContent(c)
}
