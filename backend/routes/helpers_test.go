package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"updaily/backend/config"
	"updaily/backend/controllers"
	"updaily/backend/models"
	"updaily/backend/services"
	"updaily/backend/testutil"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
	svc *services.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	svc := services.New(db, cfg, testutil.Logger())

	app := fiber.New(fiber.Config{ErrorHandler: controllers.ErrorHandler})
	SetupRoutes(app, db, cfg, svc, nil)
	return &testServer{app: app, db: db, cfg: cfg, svc: svc}
}

type apiResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

// do sends a JSON request and decodes the response envelope.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// decode unmarshals the data field of a response.
func decode[T any](t *testing.T, res apiResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(res.Data, &v), string(res.Data))
	return v
}

func (s *testServer) user(t *testing.T, email string) (models.User, string) {
	t.Helper()
	user := testutil.CreateUser(t, s.db, email)
	token, err := utils.GenerateJWTToken(user.ID, s.cfg)
	require.NoError(t, err)
	return user, token
}

func (s *testServer) admin(t *testing.T) (models.User, string) {
	t.Helper()
	user, token := s.user(t, "admin@example.com")
	require.NoError(t, s.db.Model(&user).Update("role", models.RoleAdmin).Error)
	return user, token
}

func (s *testServer) seedRetos(t *testing.T, per int) {
	t.Helper()
	for _, category := range models.Categories {
		testutil.CreateRetos(t, s.db, category, per)
	}
}
