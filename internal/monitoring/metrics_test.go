package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollectorCounters(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordOrderWrite("create")
	mc.RecordOrderWrite("create")
	mc.RecordOrderWrite("delete")
	mc.RecordOrderWriteFailure("update", "insert_items")
	mc.RecordReview("pending")
	mc.RecordRecipeLookup("unparseable")

	orderWrites := mc.metrics["order_writes"]
	assert.Equal(t, 2, testutil.CollectAndCount(orderWrites))
	assert.Equal(t, 1, testutil.CollectAndCount(mc.metrics["order_write_failures"]))

	expected := `
# HELP catering_order_writes_total Committed order writes
# TYPE catering_order_writes_total counter
catering_order_writes_total{op="create"} 2
catering_order_writes_total{op="delete"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(orderWrites, strings.NewReader(expected)))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	mc := NewMetricsCollector()
	mc.ObserveRequest(http.MethodGet, "/api/v1/menu/items", http.StatusOK, 25*time.Millisecond)
	mc.RecordOrderValue(120)
	mc.SetLiveClients(3)

	rec := httptest.NewRecorder()
	mc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `catering_http_request_duration_seconds_count{method="GET",route="/api/v1/menu/items",status="200"} 1`)
	assert.Contains(t, body, "catering_order_value_count 1")
	assert.Contains(t, body, "catering_live_clients 3")
}
