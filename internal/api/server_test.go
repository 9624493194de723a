package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"catering/internal/auth"
	"catering/internal/config"
	"catering/internal/database"
	"catering/internal/events"
	"catering/internal/live"
	"catering/internal/logger"
	"catering/internal/models"
	"catering/internal/monitoring"
	"catering/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recorder collects published events
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	server *Server
	store  *store.Store
	events *recorder
	token  string
}

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Seed(db))

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Auth.AdminPasswordHash = string(hash)
	cfg.Auth.JWTSecret = "test-secret"
	cfg.WhatsApp.Phone = "+1 555 010 0100"
	cfg.WhatsApp.BusinessName = "Spice Route"

	log := logger.Discard()
	authenticator := auth.NewAuthenticator(cfg.Auth, log)
	rec := &recorder{}
	s := store.New(db)

	server := NewServer(Deps{
		Config:    cfg,
		Store:     s,
		Auth:      authenticator,
		Hub:       live.NewHub(log),
		Publisher: rec,
		Metrics:   monitoring.NewMetricsCollector(),
		Log:       log,
		Location:  time.UTC,
	})
	server.now = func() time.Time { return testNow }

	token, _, err := authenticator.Issue("admin")
	require.NoError(t, err)

	return &testEnv{server: server, store: s, events: rec, token: token}
}

// do sends a request with an optional JSON body. Admin paths carry the token.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (e *testEnv) menuItemID(t *testing.T, query string) uint {
	t.Helper()
	w := e.do(t, http.MethodGet, "/api/v1/menu/items?q="+query, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.MenuItem
	decode(t, w, &items)
	require.Len(t, items, 1, "menu items matching %q", query)
	return items[0].ID
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	decode(t, w, &body)
	msg, _ := body["error"].(string)
	return msg
}
