package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/classifier"
	"homebuyer-lead-engine/internal/services/financial"
)

func facts(et models.EmploymentType, income, debts float64, band models.CreditBand, downPct float64, tags ...models.BuyerTag) classifier.Facts {
	answers := &models.WizardAnswers{
		EmploymentType: et,
		AnnualIncome:   income,
		MonthlyDebts:   debts,
		CreditBand:     band,
		BuyerTags:      tags,
	}
	return classifier.Facts{
		Answers:            answers,
		Metrics:            financial.NewCalculator(nil).Compute(income, debts, band),
		DownPaymentPercent: downPct,
	}
}

func TestClassifyW2FirstTimeGoodCredit(t *testing.T) {
	p := classifier.Classify(facts(models.EmploymentW2, 65000, 600, models.CreditBandGood, 10, models.TagFirstTime))

	assert.Equal(t, models.LeadW2FirstTimeGoodCredit, p.LeadType)
	assert.Equal(t, models.CategoryW2, p.PrimaryCategory)
	assert.Equal(t, models.StabilityGood, p.EmploymentStability)
	assert.Equal(t, models.CreditTierGood, p.CreditTier)
	assert.Contains(t, p.Strengths, classifier.StrengthStrongDTI)
	assert.Empty(t, p.RiskFactors)
}

func TestClassifyITINInvestor(t *testing.T) {
	p := classifier.Classify(facts(models.EmploymentITIN, 90000, 0, models.CreditBandExcellent, 30, models.TagInvestor, models.TagVeteran))

	assert.Equal(t, models.LeadITINInvestor, p.LeadType)
	assert.Equal(t, models.CategoryITIN, p.PrimaryCategory)
	assert.Equal(t, models.StabilityRequiresReview, p.EmploymentStability)
}

func TestClassifyHighNetWorthOverridesEmployment(t *testing.T) {
	for _, et := range []models.EmploymentType{models.EmploymentW2, models.EmploymentRetired, models.EmploymentSelfEmployed, models.EmploymentMixed} {
		p := classifier.Classify(facts(et, 200000, 1000, models.CreditBandGood, 25))
		assert.Equal(t, models.LeadHighNetWorth, p.LeadType, "employment %s", et)
		assert.Equal(t, models.CategoryHighNetWorth, p.PrimaryCategory)
		assert.Contains(t, p.Strengths, classifier.StrengthDownPayment)
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		f    classifier.Facts
		want models.LeadType
	}{
		{"itin first time", facts(models.EmploymentITIN, 50000, 0, models.CreditBandUnknown, 5, models.TagFirstTime), models.LeadITINFirstTime},
		{"itin upsizing", facts(models.EmploymentITIN, 50000, 0, models.CreditBandUnknown, 5), models.LeadITINUpsizing},
		{"veteran first time", facts(models.EmploymentW2, 200000, 0, models.CreditBandGood, 30, models.TagVeteran, models.TagFirstTime), models.LeadVeteranFirstTime},
		{"veteran upsizing", facts(models.EmploymentRetired, 60000, 0, models.CreditBandGood, 0, models.TagVeteran), models.LeadVeteranUpsizing},
		{"retired", facts(models.EmploymentRetired, 60000, 0, models.CreditBandGood, 10, models.TagDownsizing), models.LeadRetiredDownsizing},
		{"self-employed investor", facts(models.EmploymentSelfEmployed, 90000, 0, models.CreditBandGood, 10, models.TagInvestor), models.LeadSelfEmployedInvestor},
		{"1099 first time", facts(models.Employment1099, 90000, 0, models.CreditBandGood, 10, models.TagFirstTime), models.LeadSelfEmployedFirstTime},
		{"self-employed upsizing", facts(models.EmploymentSelfEmployed, 90000, 0, models.CreditBandGood, 10), models.LeadSelfEmployedUpsizing},
		{"mixed", facts(models.EmploymentMixed, 90000, 0, models.CreditBandGood, 10, models.TagFirstTime), models.LeadMixedIncome},
		{"w2 investor", facts(models.EmploymentW2, 90000, 0, models.CreditBandGood, 10, models.TagInvestor, models.TagFirstTime), models.LeadW2Investor},
		{"w2 first time fair", facts(models.EmploymentW2, 50000, 0, models.CreditBandAverage, 5, models.TagFirstTime), models.LeadW2FirstTimeLowCredit},
		{"w2 first time poor", facts(models.EmploymentW2, 50000, 0, models.CreditBandPoor, 5, models.TagFirstTime), models.LeadW2FirstTimeLowCredit},
		{"w2 first time unknown credit", facts(models.EmploymentW2, 50000, 0, models.CreditBandUnknown, 5, models.TagFirstTime), models.LeadW2FirstTimeGoodCredit},
		{"w2 upsizing", facts(models.EmploymentW2, 90000, 0, models.CreditBandGood, 10, models.TagUpsizing), models.LeadW2Upsizing},
		{"other", facts(models.EmploymentOther, 90000, 0, models.CreditBandGood, 10), models.LeadStandardBuyer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.f).LeadType)
		})
	}
}

func TestRulesMatchIndependently(t *testing.T) {
	byName := map[string]classifier.Rule{}
	for _, r := range classifier.Rules {
		byName[r.Name] = r
	}
	require.Len(t, byName, len(classifier.Rules))

	assert.True(t, byName["itin"].Matches(facts(models.EmploymentITIN, 0, 0, "", 0)))
	assert.False(t, byName["itin"].Matches(facts(models.EmploymentW2, 0, 0, "", 0)))
	assert.True(t, byName["veteran"].Matches(facts(models.EmploymentOther, 0, 0, "", 0, models.TagVeteran)))
	assert.True(t, byName["high-net-worth"].Matches(facts(models.EmploymentOther, 150000, 0, "", 20)))
	assert.False(t, byName["high-net-worth"].Matches(facts(models.EmploymentOther, 149999, 0, "", 20)))
	assert.False(t, byName["high-net-worth"].Matches(facts(models.EmploymentOther, 150000, 0, "", 19.9)))
	assert.True(t, byName["self-employed"].Matches(facts(models.Employment1099, 0, 0, "", 0)))
}

func TestClassifyNeverFails(t *testing.T) {
	p := classifier.Classify(classifier.Facts{})
	assert.Equal(t, models.LeadStandardBuyer, p.LeadType)
	assert.True(t, p.LeadType.IsValid())
	assert.Equal(t, models.CreditTierUnknown, p.CreditTier)
	assert.NotNil(t, p.RiskFactors)
	assert.NotNil(t, p.Strengths)
	assert.NotNil(t, p.SpecialConsiderations)

	employment := []models.EmploymentType{models.EmploymentW2, models.Employment1099, models.EmploymentSelfEmployed,
		models.EmploymentMixed, models.EmploymentRetired, models.EmploymentITIN, models.EmploymentOther}
	allTags := []models.BuyerTag{models.TagFirstTime, models.TagVeteran, models.TagInvestor, models.TagUpsizing}
	bands := append(models.CreditBands(), models.CreditBandUnknown)

	for _, et := range employment {
		for mask := 0; mask < 1<<len(allTags); mask++ {
			var tags []models.BuyerTag
			for i, tag := range allTags {
				if mask&(1<<i) != 0 {
					tags = append(tags, tag)
				}
			}
			for _, band := range bands {
				p := classifier.Classify(facts(et, 0, 500, band, 0, tags...))
				assert.True(t, p.LeadType.IsValid())
				assert.NotEmpty(t, p.PrimaryCategory)
			}
		}
	}
}

func TestStability(t *testing.T) {
	assert.Equal(t, models.StabilityExcellent, classifier.Stability(facts(models.EmploymentW2, 80000, 0, models.CreditBandExcellent, 0)))
	assert.Equal(t, models.StabilityModerate, classifier.Stability(facts(models.EmploymentW2, 79999, 0, models.CreditBandExcellent, 0)))
	assert.Equal(t, models.StabilityGood, classifier.Stability(facts(models.EmploymentW2, 40000, 0, models.CreditBandGood, 0)))
	assert.Equal(t, models.StabilityGood, classifier.Stability(facts(models.EmploymentSelfEmployed, 40000, 0, models.CreditBandVeryGood, 0)))
	assert.Equal(t, models.StabilityModerate, classifier.Stability(facts(models.Employment1099, 40000, 0, models.CreditBandGood, 0)))
	assert.Equal(t, models.StabilityRequiresReview, classifier.Stability(facts(models.EmploymentMixed, 40000, 0, models.CreditBandExcellent, 0)))
	assert.Equal(t, models.StabilityModerate, classifier.Stability(facts(models.EmploymentRetired, 40000, 0, models.CreditBandExcellent, 0)))
}

func TestAdvisoryTags(t *testing.T) {
	p := classifier.Classify(facts(models.EmploymentW2, 60000, 2500, models.CreditBandPoor, 5, models.TagFirstTime))
	assert.Equal(t, []string{classifier.RiskHighDTI, classifier.RiskCreditImprovement}, p.RiskFactors)
	assert.Empty(t, p.Strengths)

	p = classifier.Classify(facts(models.EmploymentW2, 0, 500, models.CreditBandUnknown, 0))
	assert.Equal(t, []string{classifier.RiskIncomeUnverified}, p.RiskFactors)

	p = classifier.Classify(facts(models.EmploymentW2, 120000, 0, models.CreditBandExcellent, 20))
	assert.Equal(t, []string{classifier.StrengthExcellentCredit, classifier.StrengthStrongDTI, classifier.StrengthDownPayment}, p.Strengths)
}
