package routes

import (
	"fmt"
	"testing"

	"updaily/backend/models"
	"updaily/backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithoutCatalogIsConflict(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "user@example.com")

	status, res := s.do(t, "POST", "/api/v1/daily/generate?date=2024-03-05", token, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, res.Message, "SOCIAL")
}

func TestGenerateRejectsInvalidDate(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "user@example.com")

	status, _ := s.do(t, "POST", "/api/v1/daily/generate?date=tomorrow", token, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestDailyFlow(t *testing.T) {
	s := newTestServer(t)
	s.seedRetos(t, 3)
	_, token := s.user(t, "user@example.com")

	status, res := s.do(t, "POST", "/api/v1/daily/generate?date=2024-03-05", token, nil)
	require.Equal(t, fiber.StatusOK, status, res.Message)
	assignments := decode[[]models.DailyAssignment](t, res)
	require.Len(t, assignments, 6)

	// Generating again returns the same set.
	_, res = s.do(t, "POST", "/api/v1/daily/generate?date=2024-03-05", token, nil)
	again := decode[[]models.DailyAssignment](t, res)
	assert.Equal(t, assignments[0].ID, again[0].ID)

	status, res = s.do(t, "GET", "/api/v1/daily?date=2024-03-05", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.DailyAssignment](t, res), 6)

	first := assignments[0]
	path := fmt.Sprintf("/api/v1/daily/%d", first.ID)

	status, res = s.do(t, "PUT", path, token, map[string]interface{}{"progress_value": 40})
	require.Equal(t, fiber.StatusOK, status, res.Message)
	partial := decode[services.ProgressResult](t, res)
	assert.False(t, partial.Completed)
	assert.Nil(t, partial.Achievement)

	status, res = s.do(t, "POST", path+"/complete", token, nil)
	require.Equal(t, fiber.StatusOK, status, res.Message)
	done := decode[services.ProgressResult](t, res)
	assert.True(t, done.Completed)
	require.NotNil(t, done.Achievement)
	assert.Equal(t, first.ID, done.Achievement.AssignmentID)

	// Completed assignments are immutable.
	status, _ = s.do(t, "PUT", path, token, map[string]interface{}{"progress_value": 10})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, res = s.do(t, "POST", fmt.Sprintf("/api/v1/achievements/assignment/%d", first.ID), token, nil)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, done.Achievement.ID, decode[models.Achievement](t, res).ID)

	status, res = s.do(t, "GET", "/api/v1/achievements", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Achievement](t, res), 1)

	status, res = s.do(t, "GET", "/api/v1/daily/progress?date=2024-03-05", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	progress := decode[services.DailyProgress](t, res)
	assert.Equal(t, 6, progress.Total)
	assert.Equal(t, 1, progress.Completed)

	status, res = s.do(t, "GET", "/api/v1/daily/stats", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := decode[services.Stats](t, res)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 1, stats.Completed)

	status, _ = s.do(t, "GET", "/api/v1/daily/stats/fisica", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, "GET", "/api/v1/daily/stats/musica", token, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = s.do(t, "DELETE", path, token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = s.do(t, "POST", path+"/complete", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAssignmentsArePrivate(t *testing.T) {
	s := newTestServer(t)
	s.seedRetos(t, 2)
	_, owner := s.user(t, "owner@example.com")
	_, other := s.user(t, "other@example.com")

	_, res := s.do(t, "POST", "/api/v1/daily/generate?date=2024-03-05", owner, nil)
	assignments := decode[[]models.DailyAssignment](t, res)
	require.NotEmpty(t, assignments)

	status, _ := s.do(t, "POST", fmt.Sprintf("/api/v1/daily/%d/complete", assignments[0].ID), other, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestUpdateDailyValidation(t *testing.T) {
	s := newTestServer(t)
	s.seedRetos(t, 2)
	_, token := s.user(t, "user@example.com")
	_, res := s.do(t, "POST", "/api/v1/daily/generate?date=2024-03-05", token, nil)
	assignments := decode[[]models.DailyAssignment](t, res)
	path := fmt.Sprintf("/api/v1/daily/%d", assignments[0].ID)

	status, _ := s.do(t, "PUT", path, token, map[string]interface{}{"progress_value": 150})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = s.do(t, "PUT", path, token, map[string]interface{}{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = s.do(t, "PUT", "/api/v1/daily/abc", token, map[string]interface{}{"progress_value": 10})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAdminGenerateForAllUsers(t *testing.T) {
	s := newTestServer(t)
	s.seedRetos(t, 2)
	s.user(t, "a@example.com")
	_, adminToken := s.admin(t)

	status, res := s.do(t, "POST", "/api/v1/admin/generate?date=2024-03-05", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status, res.Message)
	assert.JSONEq(t, `{"date":"2024-03-05","created":12}`, string(res.Data))
}

func TestCriteriaCompletion(t *testing.T) {
	s := newTestServer(t)
	s.seedRetos(t, 2)
	_, adminToken := s.admin(t)
	_, token := s.user(t, "user@example.com")

	_, res := s.do(t, "POST", "/api/v1/daily/generate?date=2024-03-05", token, nil)
	assignments := decode[[]models.DailyAssignment](t, res)
	assignment := assignments[0]

	status, res := s.do(t, "POST", "/api/v1/criteria", adminToken, map[string]interface{}{
		"reto_id":     assignment.RetoID,
		"description": "Read ten pages",
	})
	require.Equal(t, fiber.StatusCreated, status, res.Message)
	criterion := decode[models.Criterion](t, res)

	// Regular users cannot manage criteria.
	status, _ = s.do(t, "POST", "/api/v1/criteria", token, map[string]interface{}{
		"reto_id": assignment.RetoID, "description": "x",
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(t, "POST", fmt.Sprintf("/api/v1/daily/%d/criteria/%d/complete", assignment.ID, criterion.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, res = s.do(t, "GET", fmt.Sprintf("/api/v1/daily/%d/criteria", assignment.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	statuses := decode[[]services.CriterionStatus](t, res)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Completed)
}
