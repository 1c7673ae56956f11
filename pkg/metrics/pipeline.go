package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency per pipeline stage (scoring, segmentation, recommend, audit,
	// gating, summary).
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_run_stage_duration_seconds",
		Help:    "Latency of each run pipeline stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	RecommendationsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crm_recommendations_generated_total",
		Help: "Total recommendation rows produced across runs",
	})

	ViolationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_audit_violations_total",
		Help: "Audit violations emitted, by severity",
	}, []string{"severity"})

	CampaignDispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_campaign_dispatch_total",
		Help: "Outbound campaign messages, by outcome",
	}, []string{"status"})
)

func Init() {
	prometheus.MustRegister(
		StageDuration,
		RecommendationsGenerated,
		ViolationsTotal,
		CampaignDispatchTotal,
	)
}
