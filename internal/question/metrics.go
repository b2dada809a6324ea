package question

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "question_generation_attempts_total",
		Help: "Producer attempts by question format and outcome.",
	}, []string{"format", "outcome"})

	slotsExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "question_slots_exhausted_total",
		Help: "Slots that failed after exhausting their attempt budget.",
	}, []string{"format"})
)
