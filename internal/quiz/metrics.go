package quiz

import "github.com/prometheus/client_golang/prometheus"

var startedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "quiz_started_total",
		Help: "How many quizzes have been started.",
	},
)

var completedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quiz_completed_total",
		Help: "How many quizzes have been completed, partitioned by result.",
	},
	[]string{"result"},
)

// Collectors returns the Prometheus metrics of the quiz engine.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{startedTotal, completedTotal}
}
