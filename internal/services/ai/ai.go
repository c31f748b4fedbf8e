// Package ai asks a language model for a richer report narrative.
//
// The rule-based report is always computed first; anything returned here is
// an optional overlay that the engine may discard.
package ai

import (
	"errors"

	"homebuyer-lead-engine/internal/models"
)

var (
	ErrNotConfigured     = errors.New("ai generator not configured")
	ErrEmptyResponse     = errors.New("ai response is empty")
	ErrMalformedResponse = errors.New("ai response is not valid JSON")
	ErrEmptyReport       = errors.New("ai response has no report content")
)

// Request is the evaluated lead handed to the model.
type Request struct {
	Answers            *models.WizardAnswers
	Metrics            models.FinancialMetrics
	Eligibility        models.LoanEligibility
	Profile            models.LeadProfile
	EstimatedPrice     float64
	MonthlyPayment     float64
	DownPaymentPercent float64
	Insights           *models.CensusAreaInsights
	Locale             models.Locale
	// Fallback is the rule-based markdown, given to the model as a baseline.
	Fallback string
}

// Result is the model's narrative and optional numeric overrides. A zero
// override means the model did not supply one.
type Result struct {
	Markdown       string
	EstimatedPrice float64
	MaxAffordable  float64
	MonthlyPayment float64
	Model          string
}
