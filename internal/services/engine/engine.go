// Package engine runs the lead pipeline: metrics, eligibility, classification
// and the report, with an optional AI narrative on top.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"homebuyer-lead-engine/internal/metrics"
	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/ai"
	"homebuyer-lead-engine/internal/services/classifier"
	"homebuyer-lead-engine/internal/services/eligibility"
	"homebuyer-lead-engine/internal/services/financial"
	"homebuyer-lead-engine/internal/services/report"
	"homebuyer-lead-engine/internal/utils"
)

// DefaultAITimeout bounds a single AI report attempt.
const DefaultAITimeout = 20 * time.Second

var errGeneratorPanic = errors.New("ai generator panicked")

// Generator produces an AI narrative for an evaluated lead.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req ai.Request) (*ai.Result, error)
}

// Evaluation is the pure, synchronous part of the pipeline.
type Evaluation struct {
	Metrics            models.FinancialMetrics `json:"metrics"`
	Eligibility        models.LoanEligibility  `json:"eligibility"`
	Profile            models.LeadProfile      `json:"profile"`
	DownPaymentPercent float64                 `json:"downPaymentPercent"`
	EstimatedPrice     float64                 `json:"estimatedPrice"`
	MonthlyPayment     float64                 `json:"monthlyPayment"`
}

// ReportInput is what a report is generated from.
type ReportInput struct {
	Answers  *models.WizardAnswers
	Locale   models.Locale
	Insights *models.CensusAreaInsights
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Calculator *financial.Calculator
	Assembler  *report.Assembler
	Generator  Generator
	AITimeout  time.Duration
	Now        func() time.Time
}

// Engine composes the pipeline stages.
type Engine struct {
	calculator *financial.Calculator
	assembler  *report.Assembler
	generator  Generator
	aiTimeout  time.Duration
	now        func() time.Time
}

// New creates an engine.
func New(opts Options) *Engine {
	e := &Engine{
		calculator: opts.Calculator,
		assembler:  opts.Assembler,
		generator:  opts.Generator,
		aiTimeout:  opts.AITimeout,
		now:        opts.Now,
	}
	if e.calculator == nil {
		e.calculator = financial.NewCalculator(nil)
	}
	if e.assembler == nil {
		e.assembler = report.NewAssembler(nil)
	}
	if e.aiTimeout <= 0 {
		e.aiTimeout = DefaultAITimeout
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Evaluate runs metrics, eligibility and classification. It never fails.
func (e *Engine) Evaluate(answers *models.WizardAnswers) Evaluation {
	if answers == nil {
		answers = &models.WizardAnswers{}
	}

	m := e.calculator.Compute(answers.AnnualIncome, answers.MonthlyDebts, answers.CreditBand)
	price := e.calculator.EstimatePrice(answers, m)
	downPct := answers.DownPaymentPercent(price)

	return Evaluation{
		Metrics: m,
		Eligibility: eligibility.Resolve(eligibility.Input{
			EmploymentType:     answers.EmploymentType,
			BuyerTags:          answers.BuyerTags,
			CreditTier:         m.CreditTier,
			DownPaymentPercent: downPct,
		}),
		Profile: classifier.Classify(classifier.Facts{
			Answers:            answers,
			Metrics:            m,
			DownPaymentPercent: downPct,
		}),
		DownPaymentPercent: downPct,
		EstimatedPrice:     price,
		MonthlyPayment:     e.calculator.MonthlyPayment(answers, price),
	}
}

// GenerateReport builds the rule-based report and, when a generator is
// configured, replaces its narrative with the AI one. Any AI failure leaves
// the rule-based report untouched with AIGenerated false.
func (e *Engine) GenerateReport(ctx context.Context, in ReportInput) (*models.ReportData, *Evaluation) {
	start := time.Now()

	answers := in.Answers
	if answers == nil {
		answers = &models.WizardAnswers{}
	}
	locale := in.Locale
	if locale != models.LocaleSpanish {
		locale = models.LocaleEnglish
	}

	ev := e.Evaluate(answers)
	metrics.LeadsClassified.WithLabelValues(string(ev.Profile.LeadType)).Inc()

	out := e.assembler.Assemble(report.Input{
		Answers:            answers,
		Metrics:            ev.Metrics,
		Eligibility:        ev.Eligibility,
		Profile:            ev.Profile,
		EstimatedPrice:     ev.EstimatedPrice,
		MonthlyPayment:     ev.MonthlyPayment,
		DownPaymentPercent: ev.DownPaymentPercent,
		Insights:           in.Insights,
		Locale:             locale,
	})

	profile := ev.Profile
	data := &models.ReportData{
		ReportID:        uuid.New().String(),
		Locale:          locale,
		EstimatedPrice:  ev.EstimatedPrice,
		MaxAffordable:   ev.Metrics.EstimatedAffordability,
		MonthlyPayment:  ev.MonthlyPayment,
		ProgramFit:      append([]string(nil), ev.Eligibility.Eligible...),
		ActionPlan:      out.ActionPlan,
		Tips:            out.Tips,
		PrimaryLeadType: string(profile.LeadType),
		ReportContent:   out.Markdown,
		LeadProfile:     &profile,
		GeneratedAt:     e.now().UTC(),
	}

	source := metrics.SourceRuleBased
	if e.generator != nil {
		result, err := e.ask(ctx, ai.Request{
			Answers:            answers,
			Metrics:            ev.Metrics,
			Eligibility:        ev.Eligibility,
			Profile:            ev.Profile,
			EstimatedPrice:     ev.EstimatedPrice,
			MonthlyPayment:     ev.MonthlyPayment,
			DownPaymentPercent: ev.DownPaymentPercent,
			Insights:           in.Insights,
			Locale:             locale,
			Fallback:           out.Markdown,
		})
		if err != nil {
			reason := fallbackReason(err)
			metrics.AIFallbacks.WithLabelValues(reason).Inc()
			utils.GetLogger().Warn("AI report unavailable, using rule-based report",
				utils.String("generator", e.generator.Name()),
				utils.String("reason", reason),
				utils.Error(err),
			)
		} else {
			applyResult(data, result)
			source = metrics.SourceAI
		}
	}

	metrics.ReportsGenerated.WithLabelValues(source, string(locale)).Inc()
	metrics.ReportDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	utils.GetLogger().Info("Report generated",
		utils.String("report_id", data.ReportID),
		utils.String("lead_type", data.PrimaryLeadType),
		utils.String("locale", string(locale)),
		utils.Bool("ai_generated", data.AIGenerated),
	)

	return data, &ev
}

// ask calls the generator under the AI timeout. The call runs on its own
// goroutine so a generator that ignores ctx cannot hold the request.
func (e *Engine) ask(ctx context.Context, req ai.Request) (*ai.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.aiTimeout)
	defer cancel()

	type reply struct {
		result *ai.Result
		err    error
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("%w: %v", errGeneratorPanic, r)}
			}
		}()
		result, err := e.generator.Generate(ctx, req)
		done <- reply{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if r.result == nil {
			return nil, ai.ErrEmptyResponse
		}
		markdown := ai.CleanMarkdown(r.result.Markdown)
		if markdown == "" {
			return nil, ai.ErrEmptyReport
		}
		r.result.Markdown = markdown
		return r.result, nil
	}
}

// applyResult overlays the AI narrative. Numeric overrides are taken only
// when finite and positive.
func applyResult(data *models.ReportData, result *ai.Result) {
	data.ReportContent = result.Markdown
	data.AIGenerated = true

	if usable(result.EstimatedPrice) {
		data.EstimatedPrice = result.EstimatedPrice
	}
	if usable(result.MaxAffordable) {
		data.MaxAffordable = result.MaxAffordable
	}
	if usable(result.MonthlyPayment) {
		data.MonthlyPayment = result.MonthlyPayment
	}
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, errGeneratorPanic):
		return "panic"
	case errors.Is(err, ai.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ai.ErrEmptyResponse), errors.Is(err, ai.ErrEmptyReport), errors.Is(err, ai.ErrMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}
