package utils

import (
	"strings"
	"time"

	"updaily/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPair is returned on login, registration and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func GenerateJWTToken(userID uint, cfg *config.Config) (string, error) {
	return signToken(userID, TokenTypeAccess, cfg.JWT.AccessTTL, cfg)
}

func GenerateRefreshToken(userID uint, cfg *config.Config) (string, error) {
	return signToken(userID, TokenTypeRefresh, cfg.JWT.RefreshTTL, cfg)
}

// GenerateTokenPair issues a fresh access/refresh pair.
func GenerateTokenPair(userID uint, cfg *config.Config) (*TokenPair, error) {
	access, err := GenerateJWTToken(userID, cfg)
	if err != nil {
		return nil, err
	}
	refresh, err := GenerateRefreshToken(userID, cfg)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(cfg.JWT.AccessTTL.Seconds()),
	}, nil
}

func signToken(userID uint, tokenType string, ttl time.Duration, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// ParseToken validates tokenString and returns the user id it was issued for.
func ParseToken(tokenString, expectedType string, cfg *config.Config) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	if tokenType, _ := claims["type"].(string); tokenType != expectedType {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token type")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	return uint(userIDFloat), nil
}

func ExtractUserIDFromToken(c *fiber.Ctx, cfg *config.Config) (uint, error) {
	tokenString := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if tokenString == "" {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
		tokenString = strings.TrimSpace(tokenString[7:])
	}

	return ParseToken(tokenString, TokenTypeAccess, cfg)
}

// CurrentUserID reads the id stored by the auth middleware.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("user_id").(uint)
	return userID, ok && userID != 0
}
