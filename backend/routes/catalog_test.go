package routes

import (
	"fmt"
	"testing"
	"time"

	"updaily/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateInstancesHiddenFromCatalog(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "instances@example.com")
	s.seedRetos(t, 1)
	templateID := uint(3)
	require.NoError(t, s.db.Create(&models.Reto{
		Name:       "instance",
		Category:   models.CategoryFisica,
		IsActive:   true,
		TemplateID: &templateID,
	}).Error)

	_, res := s.do(t, "GET", "/api/v1/retos", token, nil)
	retos := decode[[]models.Reto](t, res)
	assert.Len(t, retos, 3)
	for _, reto := range retos {
		assert.Nil(t, reto.TemplateID)
	}

	_, res = s.do(t, "GET", "/api/v1/retos?include_instances=true", token, nil)
	assert.Len(t, decode[[]models.Reto](t, res), 4)
}

func TestFeaturedAndRotation(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.admin(t)
	_, token := s.user(t, "featured@example.com")
	s.seedRetos(t, 2)

	status, res := s.do(t, "GET", "/api/v1/retos/featured?date=2024-05-01", token, nil)
	require.Equal(t, fiber.StatusOK, status, res.Message)
	featured := decode[[]models.Reto](t, res)
	require.Len(t, featured, 3)

	status, _ = s.do(t, "GET", "/api/v1/retos/featured?date=05/01/2024", token, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = s.do(t, "POST", "/api/v1/admin/retos/rotate?date=2024-05-02", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, res = s.do(t, "POST", "/api/v1/admin/retos/rotate?date=2024-05-02", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status, res.Message)
	rotated := decode[[]models.Reto](t, res)
	require.Len(t, rotated, 3)
	for _, reto := range rotated {
		assert.Equal(t, "2024-05-02", reto.AssignmentDate)
		for _, old := range featured {
			assert.NotEqual(t, old.ID, reto.ID)
		}
	}
}

func TestEnrollments(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "enrolled@example.com")
	_, other := s.user(t, "other@example.com")
	s.seedRetos(t, 1)

	var reto models.Reto
	require.NoError(t, s.db.First(&reto).Error)

	status, res := s.do(t, "POST", "/api/v1/enrollments", token, map[string]interface{}{"reto_id": reto.ID})
	require.Equal(t, fiber.StatusCreated, status, res.Message)
	enrollment := decode[models.Enrollment](t, res)

	status, _ = s.do(t, "POST", "/api/v1/enrollments", token, map[string]interface{}{"reto_id": reto.ID})
	assert.Equal(t, fiber.StatusConflict, status)
	status, _ = s.do(t, "POST", "/api/v1/enrollments", token, map[string]interface{}{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	path := fmt.Sprintf("/api/v1/enrollments/%d", enrollment.ID)
	status, _ = s.do(t, "PUT", path, token, map[string]interface{}{"progress": 101})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	status, _ = s.do(t, "PUT", path, other, map[string]interface{}{"progress": 10})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, res = s.do(t, "PUT", path, token, map[string]interface{}{"progress": 100})
	require.Equal(t, fiber.StatusOK, status, res.Message)
	assert.NotNil(t, decode[models.Enrollment](t, res).CompletedAt)

	_, res = s.do(t, "GET", "/api/v1/enrollments", token, nil)
	assert.Len(t, decode[[]models.Enrollment](t, res), 1)
	_, res = s.do(t, "GET", "/api/v1/enrollments", other, nil)
	assert.Empty(t, decode[[]models.Enrollment](t, res))

	status, _ = s.do(t, "DELETE", path, token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = s.do(t, "DELETE", path, token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdminAchievements(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.admin(t)
	user, token := s.user(t, "awarded@example.com")
	s.seedRetos(t, 1)

	var reto models.Reto
	require.NoError(t, s.db.First(&reto).Error)
	assignment := models.DailyAssignment{UserID: user.ID, RetoID: reto.ID, ChallengeDate: "2024-01-01", ProgressValue: 10}
	require.NoError(t, s.db.Create(&assignment).Error)

	body := map[string]interface{}{"assignment_id": assignment.ID}
	status, _ := s.do(t, "POST", "/api/v1/admin/achievements", token, body)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, res := s.do(t, "POST", "/api/v1/admin/achievements", adminToken, body)
	require.Equal(t, fiber.StatusCreated, status, res.Message)
	achievement := decode[models.Achievement](t, res)
	assert.Equal(t, user.ID, achievement.UserID)

	status, _ = s.do(t, "POST", "/api/v1/admin/achievements", adminToken, body)
	assert.Equal(t, fiber.StatusConflict, status)

	path := fmt.Sprintf("/api/v1/admin/achievements/%d", achievement.ID)
	awardedAt := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	status, res = s.do(t, "PUT", path, adminToken, map[string]interface{}{"awarded_at": awardedAt})
	require.Equal(t, fiber.StatusOK, status, res.Message)
	assert.True(t, awardedAt.Equal(decode[models.Achievement](t, res).AwardedAt))
	status, _ = s.do(t, "PUT", path, adminToken, map[string]interface{}{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	_, res = s.do(t, "GET", "/api/v1/achievements", token, nil)
	assert.Len(t, decode[[]models.Achievement](t, res), 1)

	status, _ = s.do(t, "DELETE", path, adminToken, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = s.do(t, "DELETE", path, adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
