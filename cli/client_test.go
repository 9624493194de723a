package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"catering/internal/models"
	"catering/internal/reporting"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ApiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewApiClient()
	client.BaseURL = srv.URL
	return client
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLoginStoresToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "admin", body["username"])
			writeJSON(w, http.StatusOK, map[string]string{"token": "tok-123"})
		case "/api/v1/admin/orders":
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, "paid", r.URL.Query().Get("status"))
			writeJSON(w, http.StatusOK, []models.Order{{ID: 4, OrderNumber: "ORD_20261019_001"}})
		default:
			http.NotFound(w, r)
		}
	})

	require.NoError(t, client.Login("admin", "secret"))
	orders, err := client.GetOrders(models.OrderStatusPaid)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD_20261019_001", orders[0].OrderNumber)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestErrorsCarryAPIMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	})

	err := client.Login("admin", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.Contains(t, err.Error(), "401")
}

func TestSetOrderStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/admin/orders/7/status", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, models.Order{ID: 7, Status: models.OrderStatus(body["status"])})
	})

	order, err := client.SetOrderStatus(7, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)
}

func TestDashboardAndTodaysMenu(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/admin/reports/dashboard":
			assert.Equal(t, "7d", r.URL.Query().Get("period"))
			writeJSON(w, http.StatusOK, reporting.Summary{
				Period:       reporting.Period7Days,
				TotalRevenue: decimal.RequireFromString("165"),
				Daily:        []reporting.DailyStat{{Date: "2026-10-19", Orders: 1}},
			})
		case "/api/v1/admin/todays-menu":
			assert.Equal(t, "2026-10-19", r.URL.Query().Get("date"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"date":  "2026-10-19",
				"items": []models.TodaysMenu{{ID: 1, MenuItemID: 3, IsAvailable: true}},
			})
		default:
			http.NotFound(w, r)
		}
	})

	summary, err := client.Dashboard(reporting.Period7Days)
	require.NoError(t, err)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(165)))
	assert.Len(t, summary.Daily, 1)

	entries, err := client.TodaysMenu("2026-10-19")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(3), entries[0].MenuItemID)
}

func TestCheckHealth(t *testing.T) {
	healthy := true
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	assert.NoError(t, client.CheckHealth())
	healthy = false
	assert.Error(t, client.CheckHealth())
}

func TestOrderRows(t *testing.T) {
	rows := orderRows([]models.Order{{
		OrderNumber:  "ORD_20261019_001",
		CustomerName: "Asha",
		DeliveryDate: "2026-10-20",
		DeliveryTime: "18:30",
		Status:       models.OrderStatusReceived,
		TotalAmount:  decimal.RequireFromString("165"),
		TipAmount:    decimal.RequireFromString("5"),
	}})

	require.Len(t, rows, 1)
	assert.Equal(t, table.Row{"ORD_20261019_001", "Asha", "2026-10-20 18:30", "received", "$170.00"}, rows[0])
}

func TestLoginViewMovesToMainMenu(t *testing.T) {
	m := initialModel(NewApiClient())
	assert.Equal(t, viewLogin, m.currentView)

	// q is typed into the username field instead of quitting
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(Model)
	assert.Equal(t, "q", m.username.Value())

	next, _ = m.Update(loggedInMsg{})
	m = next.(Model)
	assert.Equal(t, viewMain, m.currentView)
}
