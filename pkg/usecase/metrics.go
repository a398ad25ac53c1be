package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "complior",
		Name:      "runs_submitted_total",
		Help:      "Number of runs accepted by the orchestrator",
	})

	runsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complior",
		Name:      "runs_completed_total",
		Help:      "Number of runs reaching a terminal status",
	}, []string{"status"})

	aiDowngrades = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "complior",
		Name:      "ai_downgrades_total",
		Help:      "Number of controls downgraded to needs_review because the AI response was unusable",
	})

	notifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complior",
		Name:      "notification_failures_total",
		Help:      "Number of failed notification deliveries",
	}, []string{"publisher"})
)
