// Package classifier assigns a lead type and advisory tags to a buyer.
package classifier

import (
	"homebuyer-lead-engine/internal/models"
)

// Thresholds used by the rules below.
const (
	HighNetWorthIncome      = 150000.0
	StrongDownPaymentPct    = 20.0
	HighDTIPct              = 43.0
	StrongDTIPct            = 36.0
	ExcellentStabilityFloor = 80000.0
)

// Advisory strings.
const (
	RiskHighDTI             = "High DTI"
	RiskCreditImprovement   = "Credit needs improvement"
	RiskIncomeUnverified    = "Income could not be verified"
	StrengthExcellentCredit = "Excellent credit"
	StrengthStrongDTI       = "Strong DTI"
	StrengthDownPayment     = "Strong down payment"
)

// Facts is everything a rule may look at.
type Facts struct {
	Answers            *models.WizardAnswers
	Metrics            models.FinancialMetrics
	DownPaymentPercent float64
}

func (f Facts) employment() models.EmploymentType { return f.Answers.EmploymentType }
func (f Facts) has(tag models.BuyerTag) bool     { return f.Answers.HasTag(tag) }

// Rule is one entry of the priority table. The first rule whose Matches
// returns true decides the lead type.
type Rule struct {
	Name    string
	Matches func(Facts) bool
	Assign  func(Facts) (models.LeadType, models.PrimaryCategory)
}

// Rules is the lead type priority order.
var Rules = []Rule{
	{
		Name:    "itin",
		Matches: func(f Facts) bool { return f.employment() == models.EmploymentITIN },
		Assign: func(f Facts) (models.LeadType, models.PrimaryCategory) {
			return byIntent(f, models.LeadITINInvestor, models.LeadITINFirstTime, models.LeadITINUpsizing), models.CategoryITIN
		},
	},
	{
		Name:    "veteran",
		Matches: func(f Facts) bool { return f.has(models.TagVeteran) },
		Assign: func(f Facts) (models.LeadType, models.PrimaryCategory) {
			if f.has(models.TagFirstTime) {
				return models.LeadVeteranFirstTime, models.CategoryMilitary
			}
			return models.LeadVeteranUpsizing, models.CategoryMilitary
		},
	},
	{
		Name: "high-net-worth",
		Matches: func(f Facts) bool {
			return f.Answers.AnnualIncome >= HighNetWorthIncome && f.DownPaymentPercent >= StrongDownPaymentPct
		},
		Assign: fixed(models.LeadHighNetWorth, models.CategoryHighNetWorth),
	},
	{
		Name:    "retired",
		Matches: func(f Facts) bool { return f.employment() == models.EmploymentRetired },
		Assign:  fixed(models.LeadRetiredDownsizing, models.CategoryRetired),
	},
	{
		Name:    "self-employed",
		Matches: func(f Facts) bool { return f.employment().IsSelfEmployed() },
		Assign: func(f Facts) (models.LeadType, models.PrimaryCategory) {
			return byIntent(f, models.LeadSelfEmployedInvestor, models.LeadSelfEmployedFirstTime, models.LeadSelfEmployedUpsizing), models.CategorySelfEmployed
		},
	},
	{
		Name:    "mixed",
		Matches: func(f Facts) bool { return f.employment() == models.EmploymentMixed },
		Assign:  fixed(models.LeadMixedIncome, models.CategoryMixed),
	},
	{
		Name:    "w2",
		Matches: func(f Facts) bool { return f.employment() == models.EmploymentW2 },
		Assign: func(f Facts) (models.LeadType, models.PrimaryCategory) {
			switch {
			case f.has(models.TagInvestor):
				return models.LeadW2Investor, models.CategoryW2
			case f.has(models.TagFirstTime) && f.Metrics.CreditTier.NeedsImprovement():
				return models.LeadW2FirstTimeLowCredit, models.CategoryW2
			case f.has(models.TagFirstTime):
				return models.LeadW2FirstTimeGoodCredit, models.CategoryW2
			default:
				return models.LeadW2Upsizing, models.CategoryW2
			}
		},
	},
}

func fixed(lt models.LeadType, cat models.PrimaryCategory) func(Facts) (models.LeadType, models.PrimaryCategory) {
	return func(Facts) (models.LeadType, models.PrimaryCategory) { return lt, cat }
}

func byIntent(f Facts, investor, firstTime, upsizing models.LeadType) models.LeadType {
	switch {
	case f.has(models.TagInvestor):
		return investor
	case f.has(models.TagFirstTime):
		return firstTime
	default:
		return upsizing
	}
}

// Classify builds the lead profile. It never fails; inputs that match no
// rule become STANDARD_BUYER.
func Classify(f Facts) models.LeadProfile {
	if f.Answers == nil {
		f.Answers = &models.WizardAnswers{}
	}

	profile := models.LeadProfile{
		LeadType:              models.LeadStandardBuyer,
		PrimaryCategory:       models.CategoryStandard,
		EmploymentStability:   Stability(f),
		CreditTier:            f.Metrics.CreditTier,
		SpecialConsiderations: []string{},
		RiskFactors:           []string{},
		Strengths:             []string{},
	}
	if profile.CreditTier == "" {
		profile.CreditTier = models.CreditTierUnknown
	}

	for _, rule := range Rules {
		if rule.Matches(f) {
			profile.LeadType, profile.PrimaryCategory = rule.Assign(f)
			break
		}
	}

	profile.SpecialConsiderations = considerations(f, profile.PrimaryCategory)
	profile.RiskFactors = riskFactors(f)
	profile.Strengths = strengths(f)

	return profile
}

// Stability derives employment stability from employment type, credit and income.
func Stability(f Facts) models.EmploymentStability {
	tier := f.Metrics.CreditTier
	switch et := f.employment(); {
	case et == models.EmploymentW2 && tier == models.CreditTierExcellent && f.Answers.AnnualIncome >= ExcellentStabilityFloor:
		return models.StabilityExcellent
	case et == models.EmploymentW2 && tier == models.CreditTierGood:
		return models.StabilityGood
	case et.IsSelfEmployed():
		if tier == models.CreditTierExcellent {
			return models.StabilityGood
		}
		return models.StabilityModerate
	case et == models.EmploymentITIN, et == models.EmploymentMixed:
		return models.StabilityRequiresReview
	default:
		return models.StabilityModerate
	}
}

// Special considerations.
const (
	ConsiderITINLender       = "Needs an ITIN portfolio lender"
	ConsiderITINDocuments    = "Expect 15-20% down and two years of tax returns"
	ConsiderVABenefits       = "VA benefits: no down payment and no PMI"
	ConsiderVACertificate    = "Certificate of Eligibility required"
	ConsiderJumbo            = "Candidate for jumbo financing"
	ConsiderRetirementIncome = "Qualify on retirement, pension and Social Security income"
	ConsiderSelfEmployedDocs = "Needs two years of tax returns or 12-24 months of bank statements"
	ConsiderMixedIncome      = "Each income source must be documented separately"
	ConsiderFirstTimeAid     = "May qualify for first-time buyer assistance"
	ConsiderInvestorReserves = "Investment property pricing and reserves apply"
	ConsiderRelocating       = "Relocating: may need remote showings and closing"
	ConsiderDownsizing       = "Downsizing: equity from current home can fund down payment"
	ConsiderUpsizing         = "Upsizing: may need to sell current home first"
)

var categoryConsiderations = map[models.PrimaryCategory][]string{
	models.CategoryITIN:         {ConsiderITINLender, ConsiderITINDocuments},
	models.CategoryMilitary:     {ConsiderVABenefits, ConsiderVACertificate},
	models.CategoryHighNetWorth: {ConsiderJumbo},
	models.CategoryRetired:      {ConsiderRetirementIncome},
	models.CategorySelfEmployed: {ConsiderSelfEmployedDocs},
	models.CategoryMixed:        {ConsiderMixedIncome},
}

var tagConsiderations = map[models.BuyerTag]string{
	models.TagFirstTime:  ConsiderFirstTimeAid,
	models.TagInvestor:   ConsiderInvestorReserves,
	models.TagRelocating: ConsiderRelocating,
	models.TagDownsizing: ConsiderDownsizing,
	models.TagUpsizing:   ConsiderUpsizing,
}

func considerations(f Facts, cat models.PrimaryCategory) []string {
	var out []string
	for _, c := range categoryConsiderations[cat] {
		out = appendUnique(out, c)
	}
	for _, tag := range f.Answers.BuyerTags {
		if c, ok := tagConsiderations[tag]; ok {
			out = appendUnique(out, c)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func riskFactors(f Facts) []string {
	out := []string{}
	if f.Metrics.DebtToIncome.Above(HighDTIPct) {
		out = appendUnique(out, RiskHighDTI)
	}
	if !f.Metrics.DebtToIncome.Defined {
		out = appendUnique(out, RiskIncomeUnverified)
	}
	if f.Metrics.CreditTier.NeedsImprovement() {
		out = appendUnique(out, RiskCreditImprovement)
	}
	return out
}

func strengths(f Facts) []string {
	out := []string{}
	if f.Metrics.CreditTier == models.CreditTierExcellent {
		out = appendUnique(out, StrengthExcellentCredit)
	}
	if f.Metrics.DebtToIncome.Below(StrongDTIPct) {
		out = appendUnique(out, StrengthStrongDTI)
	}
	if f.DownPaymentPercent >= StrongDownPaymentPct {
		out = appendUnique(out, StrengthDownPayment)
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
