package controllers

import (
	"errors"
	"strings"

	"updaily/backend/config"
	"updaily/backend/models"
	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Stats *services.StatsService
}

func NewUserController(db *gorm.DB, cfg *config.Config, stats *services.StatsService) *UserController {
	return &UserController{DB: db, Cfg: cfg, Stats: stats}
}

type UpdateUserRequest struct {
	models.UserPatch
	OldPassword string `json:"old_password"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile with overall stats
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/me [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := uc.DB.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	stats, err := uc.Stats.UserStats(c.UserContext(), userID)
	if err != nil {
		return err
	}

	// Формируем ответ без чувствительных данных
	return utils.OK(c, fiber.Map{
		"user":  user,
		"stats": stats,
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates the authenticated user's profile. Changing the password requires old_password.
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile update data"
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/me [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var input UpdateUserRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	db := uc.DB.WithContext(c.UserContext())

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		input.Email = &email
	}

	// Обновление пароля
	if input.Password != nil {
		if input.OldPassword == "" {
			return utils.BadRequest(c, "Old password is required to set new password")
		}
		if err := utils.ComparePassword(user.PasswordHash, input.OldPassword); err != nil {
			return utils.Unauthorized(c, "Invalid old password")
		}
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}

	input.UserPatch.Apply(&user)

	// Сохраняем изменения
	if err := db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "Email already taken")
		}
		return err
	}

	return utils.OK(c, user)
}

// DeleteAccount deactivates and soft-deletes the authenticated user.
func (uc *UserController) DeleteAccount(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	err = uc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("is_active", false).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return services.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.NoContent(c)
}
