package live

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catering/internal/events"
	"catering/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/live", hub.ServeWS)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub := NewHub(logger.Discard())
	url := newTestServer(t, hub)

	var counts []int
	done := make(chan struct{}, 4)
	hub.OnClientsChanged = func(n int) {
		counts = append(counts, n)
		done <- struct{}{}
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	<-done
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Publish(context.Background(), events.Event{Type: events.OrderCreated, OrderID: 42, OrderNumber: "ORD_20261019_001"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got events.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, events.OrderCreated, got.Type)
	assert.Equal(t, uint(42), got.OrderID)

	conn.Close()
	<-done
	waitForClients(t, hub, 0)
	assert.Equal(t, []int{1, 0}, counts)
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(logger.Discard())
	url := newTestServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Close())
	assert.Zero(t, hub.Clients())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	assert.Error(t, hub.Publish(context.Background(), events.Event{Type: events.OrderDeleted}))
}

func TestHubPublishWithoutClients(t *testing.T) {
	hub := NewHub(logger.Discard())
	assert.NoError(t, hub.Publish(context.Background(), events.Event{Type: events.OrderUpdated}))
}
