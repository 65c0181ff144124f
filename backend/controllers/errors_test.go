package controllers

import (
	"errors"
	"fmt"
	"testing"

	"updaily/backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", services.ErrValidation), fiber.StatusUnprocessableEntity},
		{services.ErrAlreadyCompleted, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("assignment 1: %w", services.ErrNotFound), fiber.StatusNotFound},
		{gorm.ErrRecordNotFound, fiber.StatusNotFound},
		{&services.InsufficientTemplatesError{Category: "SOCIAL", Available: 1, Required: 2}, fiber.StatusConflict},
		{gorm.ErrDuplicatedKey, fiber.StatusConflict},
		{services.ErrDataIntegrity, fiber.StatusInternalServerError},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestPublicErrorHidesUnexpectedFailures(t *testing.T) {
	assert.Equal(t, "internal server error", publicError(errors.New("pq: connection refused")).Error())

	integrity := fmt.Errorf("%w: assignment 3", services.ErrDataIntegrity)
	assert.Equal(t, integrity, publicError(integrity))

	notFound := fmt.Errorf("reto 9: %w", services.ErrNotFound)
	assert.Equal(t, notFound, publicError(notFound))
}
