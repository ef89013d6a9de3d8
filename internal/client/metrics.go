package client

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusTransport = "transport_error"

	refreshOK     = "ok"
	refreshFailed = "failed"
)

// Metrics — счётчики исходящих запросов и обновлений токенов.
// Нулевой *Metrics допустим: методы становятся no-op.
type Metrics struct {
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

// NewMetrics регистрирует счётчики в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticket_client",
			Name:      "backend_requests_total",
			Help:      "Outbound requests to the booking backend by method, path and status class.",
		}, []string{"method", "path", "status"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticket_client",
			Name:      "token_refresh_total",
			Help:      "Token refresh attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.requests, m.refreshes)
	return m
}

func (m *Metrics) request(method, path, status string) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, path, status).Inc()
}

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}

	m.refreshes.WithLabelValues(result).Inc()
}

// statusClass сворачивает код ответа в класс "2xx", "4xx" и т.д.
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
