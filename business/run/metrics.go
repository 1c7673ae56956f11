package run

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_runs_started_total",
			Help: "Count of pipeline runs triggered, by tenant.",
		},
		[]string{"tenant"},
	)

	runsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_runs_completed_total",
			Help: "Count of pipeline runs that reached completed, by tenant.",
		},
		[]string{"tenant"},
	)

	runsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_runs_failed_total",
			Help: "Count of pipeline runs that ended failed, by tenant.",
		},
		[]string{"tenant"},
	)
)

func init() {
	prometheus.MustRegister(runsStartedTotal, runsCompletedTotal, runsFailedTotal)
}
