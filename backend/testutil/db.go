// Package testutil provides database fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"updaily/backend/config"
	"updaily/backend/models"
	"updaily/backend/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, utils.Migrate(db))
	return db
}

// Config returns a configuration suitable for tests.
func Config() *config.Config {
	cfg := config.Defaults()
	cfg.Database.Driver = "sqlite"
	cfg.JWT.Secret = "test-secret"
	cfg.Scheduler.Enabled = false
	return cfg
}

// Logger returns a logger that discards output.
func Logger() *zap.Logger {
	return zap.NewNop()
}

// CreateUser inserts an active user.
func CreateUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{Name: "Test", Email: email, PasswordHash: hash, Role: models.RoleUser, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateRetos inserts n active retos in category.
func CreateRetos(t *testing.T, db *gorm.DB, category models.Category, n int) []models.Reto {
	t.Helper()
	retos := make([]models.Reto, 0, n)
	for i := 0; i < n; i++ {
		reto := models.Reto{
			Name:         fmt.Sprintf("%s %d", category, i+1),
			Type:         models.RetoTypeSimple,
			Category:     category,
			IsActive:     true,
			RewardPoints: 10,
		}
		require.NoError(t, db.Create(&reto).Error)
		retos = append(retos, reto)
	}
	return retos
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
