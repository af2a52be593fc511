// Package metrics exposes Prometheus counters for the account lifecycle.
package metrics

import (
	"net/http"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeSuccess labels calls that returned no error.
const OutcomeSuccess = "success"

// Metrics owns a private registry so several instances (tests, multiple
// apps in one process) never collide. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry       *prometheus.Registry
	operations     *prometheus.CounterVec
	captcha        *prometheus.CounterVec
	sweeperDeleted prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userservice_operations_total",
				Help: "Lifecycle operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		captcha: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userservice_captcha_verifications_total",
				Help: "Captcha verifications by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		sweeperDeleted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "userservice_sweeper_deleted_total",
				Help: "Expired unverified accounts removed by the sweeper",
			},
		),
	}
}

// Outcome turns an operation result into a label value.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return common.Category(err).String()
}

func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
}

func (m *Metrics) ObserveCaptcha(kind string, err error) {
	if m == nil {
		return
	}
	m.captcha.WithLabelValues(kind, Outcome(err)).Inc()
}

func (m *Metrics) AddSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweeperDeleted.Add(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
