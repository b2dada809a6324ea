package quiz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quizzesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizzes_generated_total",
		Help: "Number of quizzes successfully assembled.",
	})

	quizzesGraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizzes_graded_total",
		Help: "Number of quizzes graded, by what triggered grading.",
	}, []string{"trigger"})
)
