package middleware

import (
	"updaily/backend/config"
	"updaily/backend/models"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware проверяет access токен и сохраняет user_id в Locals
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// AdminMiddleware пропускает только активных администраторов.
// Должен идти после AuthMiddleware.
func AdminMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := utils.CurrentUserID(c)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).Select("id", "role", "is_active").First(&user, userID).Error; err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !user.IsAdmin() || !user.IsActive {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}

		return c.Next()
	}
}
