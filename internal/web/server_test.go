package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see a different empty :memory: db.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Session{}, &model.Task{}))

	users := repository.NewUserRepository(db)
	auth := service.NewAuthService(users, repository.NewSessionRepository(db),
		"test-secret", 15*time.Minute, time.Hour, time.Hour)
	tasks := service.NewTaskService(repository.NewTaskRepository(db))

	srv, err := New(":0", auth, tasks, users)
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAndLogin creates a user through the API and returns a token pair.
func registerAndLogin(t *testing.T, srv *Server, username string) *service.TokenPair {
	t.Helper()

	resp := doJSON(t, srv.app, "POST", "/api/v1/auth/register", "", registerRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, srv.app, "POST", "/api/v1/auth/login", "", loginRequest{
		Username: username,
		Password: "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair service.TokenPair
	decodeJSON(t, resp, &pair)
	require.NotEmpty(t, pair.AccessToken)
	return &pair
}
