package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"kind", "result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of tokens issued or refreshed.",
		},
		[]string{"flow", "result"},
	)

	RequestAuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_request_authentications_total",
			Help: "Request authentications by resulting state.",
		},
		[]string{"state"},
	)

	PasswordResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_password_resets_total",
			Help: "Password reset flow steps.",
		},
		[]string{"stage", "result"},
	)

	JanitorClearedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_janitor_reset_codes_cleared_total",
			Help: "Expired reset codes cleared by the janitor.",
		},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		AuthLoginsTotal,
		TokensIssuedTotal,
		RequestAuthTotal,
		PasswordResetsTotal,
		JanitorClearedTotal,
	}
}

// Register adds every collector to reg with a constant service label.
func Register(reg prometheus.Registerer, serviceName string) error {
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, reg)
	for _, c := range collectors() {
		if err := wrapped.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func MustRegister(serviceName string) {
	if err := Register(prometheus.DefaultRegisterer, serviceName); err != nil {
		panic(err)
	}
}

// Result maps an error to the result label value.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
