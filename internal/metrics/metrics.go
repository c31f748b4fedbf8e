// Package metrics holds the Prometheus collectors for the lead engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Report sources.
const (
	SourceAI        = "ai"
	SourceRuleBased = "rule_based"
)

var (
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebuyer_reports_generated_total",
			Help: "Total number of reports generated, by source and locale",
		},
		[]string{"source", "locale"},
	)

	AIFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebuyer_ai_fallbacks_total",
			Help: "Total number of AI report attempts that fell back to the rule-based report",
		},
		[]string{"reason"},
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homebuyer_report_duration_seconds",
			Help:    "Duration of report generation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	LeadsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebuyer_leads_classified_total",
			Help: "Total number of classified leads by lead type",
		},
		[]string{"lead_type"},
	)

	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebuyer_lead_submissions_total",
			Help: "Total number of lead submission attempts by channel and status",
		},
		[]string{"channel", "status"},
	)

	CensusLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebuyer_census_lookups_total",
			Help: "Total number of census lookups by result",
		},
		[]string{"result"},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebuyer_side_effect_failures_total",
			Help: "Total number of failed best-effort side effects after lead submission",
		},
		[]string{"effect"},
	)
)
