package monitoring

import (
	"sync"
	"time"
)

// Monitor keeps an in-process snapshot of counters and last-seen values for
// the admin dashboard.
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	// Add system metrics
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Increment adds one to a counter metric, starting it at zero
func (m *Monitor) Increment(name string) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	count, _ := m.metrics[name].(int)
	m.metrics[name] = count + 1
}

// RecordActivity records details of something that happened to an entity,
// e.g. an order being created
func (m *Monitor) RecordActivity(entity string, action string, details map[string]interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := entity + "_" + action + "_"

	for k, v := range details {
		m.metrics[prefix+k] = v
	}

	count, _ := m.metrics[prefix+"count"].(int)
	m.metrics[prefix+"count"] = count + 1
	m.metrics[prefix+"last_at"] = time.Now().Format(time.RFC3339)
}
