// Package financial derives affordability and debt ratios from wizard answers.
package financial

import (
	"homebuyer-lead-engine/internal/models"
)

// Underwriting heuristics. These are fixed across loan programs.
const (
	FrontEndRatio               = 0.28
	PrincipalInterestShare      = 0.80
	RecommendedDownPaymentShare = 0.20
)

var creditTiers = []struct {
	band models.CreditBand
	tier models.CreditTier
}{
	{models.CreditBandPoor, models.CreditTierPoor},
	{models.CreditBandFair, models.CreditTierFair},
	{models.CreditBandAverage, models.CreditTierFair},
	{models.CreditBandGood, models.CreditTierGood},
	{models.CreditBandVeryGood, models.CreditTierExcellent},
	{models.CreditBandExcellent, models.CreditTierExcellent},
}

// CreditTierFor maps a band to its tier. Unrecognized bands are UNKNOWN.
func CreditTierFor(band models.CreditBand) models.CreditTier {
	for _, ct := range creditTiers {
		if ct.band == band {
			return ct.tier
		}
	}
	return models.CreditTierUnknown
}

// Calculator computes FinancialMetrics with a pluggable affordability model.
type Calculator struct {
	model AffordabilityModel
}

// NewCalculator creates a calculator. A nil model uses LinearModel.
func NewCalculator(model AffordabilityModel) *Calculator {
	if model == nil {
		model = LinearModel{}
	}
	return &Calculator{model: model}
}

// Model returns the affordability model in use.
func (c *Calculator) Model() AffordabilityModel {
	return c.model
}

// Compute derives the metrics. annualIncome of zero is legal and yields an
// undefined debt-to-income ratio.
func (c *Calculator) Compute(annualIncome, monthlyDebts float64, band models.CreditBand) models.FinancialMetrics {
	monthlyIncome := annualIncome / 12

	dti := models.UndefinedDTI()
	if monthlyIncome > 0 {
		dti = models.DefinedDTI(monthlyDebts / monthlyIncome)
	}

	maxHousing := monthlyIncome * FrontEndRatio
	affordability := c.model.PriceForPayment(maxHousing * PrincipalInterestShare)

	var scoreRange models.CreditScoreRange
	if lo, hi, ok := band.Range(); ok {
		scoreRange = models.CreditScoreRange{Min: lo, Max: hi}
	}

	return models.FinancialMetrics{
		MonthlyIncome:          monthlyIncome,
		DebtToIncome:           dti,
		MaxHousingPayment:      maxHousing,
		EstimatedAffordability: affordability,
		RecommendedDownPayment: affordability * RecommendedDownPaymentShare,
		CreditScoreRange:       scoreRange,
		CreditTier:             CreditTierFor(band),
	}
}

// EstimatePrice picks the price the report centers on: the buyer's target
// price, else the price their monthly budget supports, else the computed
// affordability ceiling.
func (c *Calculator) EstimatePrice(answers *models.WizardAnswers, metrics models.FinancialMetrics) float64 {
	if price, ok := answers.TargetPrice(); ok {
		return price
	}
	if monthly, ok := answers.MonthlyBudget(); ok {
		return c.model.PriceForPayment(monthly * PrincipalInterestShare)
	}
	return metrics.EstimatedAffordability
}

// MonthlyPayment is the all-in housing payment for price. A stated monthly
// budget is returned as is.
func (c *Calculator) MonthlyPayment(answers *models.WizardAnswers, price float64) float64 {
	if monthly, ok := answers.MonthlyBudget(); ok {
		return monthly
	}
	return c.model.PaymentForPrice(price) / PrincipalInterestShare
}
