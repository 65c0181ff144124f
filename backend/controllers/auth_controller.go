package controllers

import (
	"errors"
	"strings"
	"time"

	"updaily/backend/config"
	"updaily/backend/models"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

type RegisterRequest struct {
	Name      string     `json:"name" validate:"required,max=100"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=6"`
	BirthDate *time.Time `json:"birth_date"`
	Phone     string     `json:"phone" validate:"omitempty,max=32"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	User   models.User      `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account and returns a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} AuthResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := bind(c, &input); err != nil {
		return err
	}

	// Hash password
	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Name:         input.Name,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		BirthDate:    input.BirthDate,
		Phone:        input.Phone,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := ac.DB.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "Email already registered")
		}
		return err
	}

	tokens, err := utils.GenerateTokenPair(user.ID, ac.Cfg)
	if err != nil {
		return err
	}
	return utils.Created(c, AuthResponse{User: user, Tokens: tokens})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	db := ac.DB.WithContext(c.UserContext())

	// Find user
	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		return err
	}

	// Check password
	if err := utils.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}
	if !user.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "Account is disabled")
	}

	tokens, err := utils.GenerateTokenPair(user.ID, ac.Cfg)
	if err != nil {
		return err
	}

	// Update login history
	db.Create(&models.LoginHistory{
		UserID:    user.ID,
		LoginTime: time.Now(),
		IP:        c.IP(),
	})

	return utils.OK(c, AuthResponse{User: user, Tokens: tokens})
}

// Refresh godoc
// @Summary Refresh tokens
// @Description Exchanges a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} utils.TokenPair
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/refresh [post]
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	var input RefreshRequest
	if err := bind(c, &input); err != nil {
		return err
	}

	userID, err := utils.ParseToken(input.RefreshToken, utils.TokenTypeRefresh, ac.Cfg)
	if err != nil {
		return err
	}

	var user models.User
	if err := ac.DB.WithContext(c.UserContext()).Select("id", "is_active").First(&user, userID).Error; err != nil || !user.IsActive {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	tokens, err := utils.GenerateTokenPair(user.ID, ac.Cfg)
	if err != nil {
		return err
	}
	return utils.OK(c, tokens)
}
