package chat_test

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
	"github.com/udinder/udinder/internal/service/chat"
)

// setupServer wires an in-memory SQLite DB (with foreign keys on, so
// unknown senders/receivers are rejected) and the Chat routes.
func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))
	require.NoError(t, db.SeedMinimalTestData(dbase))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(dbase, redisCache, logger)
	router := server.NewRouter(chat.NewRegistrar(appCtx))

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func sendMessage(t *testing.T, ts *httptest.Server, senderID, receiverID uint64, text string) (int, map[string]any) {
	t.Helper()

	body, _ := json.Marshal(map[string]any{
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"message":     text,
	})
	resp, err := ts.Client().Post(ts.URL+"/v1/messages", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func listConversation(t *testing.T, ts *httptest.Server, userID, peerID uint64, token string) (int, map[string]any) {
	t.Helper()

	url := fmt.Sprintf("%s/v1/conversations?user_id=%d&peer_id=%d", ts.URL, userID, peerID)
	if token != "" {
		url += "&page_token=" + token
	}
	resp, err := ts.Client().Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// TestSendAndListConversation sends a message on top of the seeded
// exchange and reads the conversation back newest first.
func TestSendAndListConversation(t *testing.T) {
	ts := setupServer(t)

	status, out := sendMessage(t, ts, 1, 2, "are you around?")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(1), out["sender_id"])

	status, out = listConversation(t, ts, 1, 2, "")
	require.Equal(t, http.StatusOK, status)

	messages := out["messages"].([]any)
	require.Len(t, messages, 3)
	first := messages[0].(map[string]any)
	assert.Equal(t, "are you around?", first["message"])
	last := messages[2].(map[string]any)
	assert.Equal(t, "hello", last["message"])
}

// TestSendMessageValidation rejects empty bodies and self-messages.
func TestSendMessageValidation(t *testing.T) {
	ts := setupServer(t)

	status, _ := sendMessage(t, ts, 1, 2, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = sendMessage(t, ts, 1, 1, "hi me")
	assert.Equal(t, http.StatusBadRequest, status)
}

// TestSendMessageUnknownUser surfaces the foreign-key violation when a
// participant does not exist.
func TestSendMessageUnknownUser(t *testing.T) {
	ts := setupServer(t)

	status, out := sendMessage(t, ts, 1, 999, "anyone there?")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "unknown_user", out["error"])
}

// TestListConversationIsolation keeps other pairs' messages out.
func TestListConversationIsolation(t *testing.T) {
	ts := setupServer(t)

	status, _ := sendMessage(t, ts, 3, 1, "hey stranger")
	require.Equal(t, http.StatusCreated, status)

	status, out := listConversation(t, ts, 1, 2, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["messages"].([]any), 2) // only the seeded 1↔2 exchange
}
