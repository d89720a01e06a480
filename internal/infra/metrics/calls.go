package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		callsStartedTotal,
		callsEndedTotal,
		exchangesTotal,
		repliesSelectedTotal,
		activeCalls,
	)
}

var (
	callsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "calls_started_total",
			Help: "Count of voice calls that reached the start webhook.",
		},
	)

	callsEndedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "calls_ended_total",
			Help: "Count of voice calls ended by a termination phrase.",
		},
	)

	exchangesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exchanges_total",
			Help: "Count of completed utterance/reply exchanges.",
		},
	)

	repliesSelectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "replies_selected_total",
			Help: "Replies served per selection source (canned, topic, model, fallback, ...).",
		},
		[]string{"source"},
	)

	activeCalls = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_calls",
			Help: "Calls currently in progress.",
		},
	)
)

func IncCallStarted() {
	callsStartedTotal.Inc()
	activeCalls.Inc()
}

func IncCallEnded() {
	callsEndedTotal.Inc()
	activeCalls.Dec()
}

func IncExchange() { exchangesTotal.Inc() }

func IncReplySelected(source string) {
	repliesSelectedTotal.WithLabelValues(source).Inc()
}
