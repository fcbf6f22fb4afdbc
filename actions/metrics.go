package actions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	actionCreate = "create"
	actionUpdate = "update"
	actionDelete = "delete"
)

var actionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "invoices",
	Name:      "action_outcomes_total",
	Help:      "Invoice mutations by action and outcome.",
}, []string{"action", "outcome"})

var revalidateFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "invoices",
	Name:      "view_revalidate_failures_total",
	Help:      "Cache invalidations that failed after a committed write.",
})
