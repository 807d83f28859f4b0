package account_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/udinder/udinder/internal/app"
	"github.com/udinder/udinder/internal/cache"
	"github.com/udinder/udinder/internal/config"
	"github.com/udinder/udinder/internal/db"
	"github.com/udinder/udinder/internal/server"
	"github.com/udinder/udinder/internal/service/account"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(dbase, redisCache, logger)
	router := server.NewRouter(account.NewRegistrar(appCtx))

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func createUser(t *testing.T, ts *httptest.Server, id uint64) (int, map[string]any) {
	t.Helper()
	return doJSON(t, ts, http.MethodPost, "/v1/users", map[string]any{
		"id":       id,
		"email":    fmt.Sprintf("u%d@test.com", id),
		"name":     fmt.Sprintf("user%d", id),
		"password": "secret",
		"gender":   "female",
		"age":      30,
	})
}

// TestCreateAndGetUser registers a user with a caller-assigned id and
// reads it back. The password never appears in responses.
func TestCreateAndGetUser(t *testing.T) {
	ts := setupServer(t)

	status, out := createUser(t, ts, 42)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(42), out["id"])

	status, out = doJSON(t, ts, http.MethodGet, "/v1/users/42", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(42), out["id"])
	assert.Equal(t, "u42@test.com", out["email"])
	assert.Equal(t, "female", out["gender"])
	assert.NotContains(t, out, "password")
}

// TestCreateUserDuplicateID rejects a reused caller-assigned id.
func TestCreateUserDuplicateID(t *testing.T) {
	ts := setupServer(t)

	status, _ := createUser(t, ts, 7)
	require.Equal(t, http.StatusCreated, status)

	status, out := createUser(t, ts, 7)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_exists", out["error"])
}

// TestCreateUserValidation rejects incomplete registrations.
func TestCreateUserValidation(t *testing.T) {
	ts := setupServer(t)

	status, _ := doJSON(t, ts, http.MethodPost, "/v1/users", map[string]any{
		"id": 1, "email": "a@test.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, ts, http.MethodPost, "/v1/users", map[string]any{
		"email": "a@test.com", "name": "a", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

// TestGetUserNotFound maps a missing user to 404.
func TestGetUserNotFound(t *testing.T) {
	ts := setupServer(t)

	status, out := doJSON(t, ts, http.MethodGet, "/v1/users/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", out["error"])
}

// TestUpsertProfile creates and then replaces a profile, keeping a
// single row per user.
func TestUpsertProfile(t *testing.T) {
	ts := setupServer(t)

	status, _ := createUser(t, ts, 1)
	require.Equal(t, http.StatusCreated, status)

	status, out := doJSON(t, ts, http.MethodPut, "/v1/users/1/profile", map[string]any{
		"description": "first version",
		"interests":   "hiking",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "first version", out["description"])

	status, out = doJSON(t, ts, http.MethodPut, "/v1/users/1/profile", map[string]any{
		"description": "second version",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "second version", out["description"])

	// still one profile, now visible on the user
	status, out = doJSON(t, ts, http.MethodGet, "/v1/users/1", nil)
	require.Equal(t, http.StatusOK, status)
	profile, ok := out["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "second version", profile["description"])
}

// TestGrantAdminAndBlock grants an admin record (idempotently) and
// flips its block flag.
func TestGrantAdminAndBlock(t *testing.T) {
	ts := setupServer(t)

	status, _ := createUser(t, ts, 1)
	require.Equal(t, http.StatusCreated, status)

	status, out := doJSON(t, ts, http.MethodPost, "/v1/users/1/admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, out["is_blocked"])

	// granting again returns the existing record
	status, out = doJSON(t, ts, http.MethodPost, "/v1/users/1/admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, out["is_blocked"])

	status, out = doJSON(t, ts, http.MethodPost, "/v1/admins/1/block", map[string]any{"blocked": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["is_blocked"])

	// blocking a user without an admin record is a 404
	status, out = doJSON(t, ts, http.MethodPost, "/v1/admins/999/block", map[string]any{"blocked": true})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", out["error"])
	assert.Equal(t, "user has no admin record", out["message"])
}
