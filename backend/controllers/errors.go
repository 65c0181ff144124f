package controllers

import (
	"errors"
	"strconv"

	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// validationFailed carries field errors from request validation.
type validationFailed map[string]string

func (v validationFailed) Error() string {
	return "validation failed"
}

// ErrorHandler renders handler errors in the common error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.Error(c, fe.Code, fe)
	}

	var vf validationFailed
	if errors.As(err, &vf) {
		return utils.ValidationError(c, vf)
	}

	return utils.Error(c, statusFor(err), publicError(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInsufficientTemplates),
		errors.Is(err, services.ErrDuplicate),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// publicError hides the details of unexpected failures.
func publicError(err error) error {
	if statusFor(err) == fiber.StatusInternalServerError && !errors.Is(err, services.ErrDataIntegrity) {
		return errors.New("internal server error")
	}
	return err
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(dst); errs != nil {
		return validationFailed(errs)
	}
	return nil
}

func currentUser(c *fiber.Ctx) (uint, error) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return userID, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}
