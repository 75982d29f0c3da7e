package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Login outcome labels
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultError              = "error"
	ResultValid              = "valid"
)

// Metrics holds the Prometheus collectors updated by Auther. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	LoginAttempts    *prometheus.CounterVec
	TokenValidations *prometheus.CounterVec
	LoginDuration    prometheus.Histogram
}

// NewMetrics creates and registers the auth collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_attempts_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"},
		),
		TokenValidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_token_validations_total",
				Help: "Total number of token validations by result",
			},
			[]string{"result"},
		),
		LoginDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "auth_login_duration_seconds",
				Help:    "Time spent handling login attempts",
				Buckets: prometheus.ExponentialBuckets(0.005, 2.0, 12),
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.LoginAttempts, m.TokenValidations, m.LoginDuration)
	}

	return m
}

func (m *Metrics) observeLogin(result string, started time.Time) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
	m.LoginDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeValidation(result string) {
	if m == nil {
		return
	}
	m.TokenValidations.WithLabelValues(result).Inc()
}
