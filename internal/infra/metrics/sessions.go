package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(sessionsOpenedTotal, sessionsSweptTotal)
}

var (
	sessionsOpenedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_opened_total",
			Help: "Conversation sessions opened, labeled by initial state.",
		},
		[]string{"state"},
	)

	sessionsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_swept_total",
			Help: "Expired sessions deactivated by the background sweeper.",
		},
	)
)

func IncSessionOpened(state string) { sessionsOpenedTotal.WithLabelValues(norm(state)).Inc() }

func AddSessionsSwept(n int64) { sessionsSweptTotal.Add(float64(n)) }
