package eligibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/eligibility"
)

func tags(t ...models.BuyerTag) []models.BuyerTag { return t }

func TestResolveITINOverride(t *testing.T) {
	combos := [][]models.BuyerTag{
		nil,
		tags(models.TagInvestor),
		tags(models.TagVeteran, models.TagFirstTime),
		tags(models.TagVeteran, models.TagInvestor, models.TagFirstTime),
	}
	for _, c := range combos {
		got := eligibility.Resolve(eligibility.Input{
			EmploymentType: models.EmploymentITIN,
			BuyerTags:      c,
			CreditTier:     models.CreditTierExcellent,
		})
		assert.Equal(t, []string{models.ProgramITIN}, got.Eligible)
		assert.Subset(t, got.ExcludedPrograms(), []string{models.ProgramFHA, models.ProgramVA, models.ProgramConventional})
		assert.Equal(t, models.ProgramITIN, got.Recommended)
		assert.True(t, got.RequiresSpecialDocumentation)
	}
}

func TestResolveVeteranOutranksFirstTime(t *testing.T) {
	got := eligibility.Resolve(eligibility.Input{
		EmploymentType:     models.EmploymentW2,
		BuyerTags:          tags(models.TagFirstTime, models.TagVeteran),
		CreditTier:         models.CreditTierGood,
		DownPaymentPercent: 0,
	})

	assert.Equal(t, []string{models.ProgramVA, models.ProgramFHA, models.ProgramConventional}, got.Eligible)
	assert.Equal(t, models.ProgramVA, got.Recommended)
	assert.NotContains(t, got.ExcludedPrograms(), models.ProgramVA)
}

func TestResolveFirstTime(t *testing.T) {
	got := eligibility.Resolve(eligibility.Input{
		EmploymentType:     models.EmploymentW2,
		BuyerTags:          tags(models.TagFirstTime),
		CreditTier:         models.CreditTierGood,
		DownPaymentPercent: 10,
	})

	assert.Equal(t, []string{models.ProgramFHA, models.ProgramConventional}, got.Eligible)
	assert.Equal(t, models.ProgramFHA, got.Recommended)
	assert.Equal(t, []models.Exclusion{{Program: models.ProgramVA, Reason: eligibility.ReasonNotVeteran}}, got.NotEligible)
	assert.False(t, got.RequiresSpecialDocumentation)
	assert.Contains(t, got.Notes, eligibility.NotePMI)
}

func TestResolveInvestor(t *testing.T) {
	got := eligibility.Resolve(eligibility.Input{
		EmploymentType:     models.EmploymentW2,
		BuyerTags:          tags(models.TagFirstTime, models.TagInvestor),
		DownPaymentPercent: 25,
	})

	assert.Equal(t, []string{models.ProgramConventional}, got.Eligible)
	assert.Equal(t, models.ProgramConventional, got.Recommended)
	assert.Equal(t, "FHA (not allowed for investment properties)", got.NotEligible[0].Label())
	assert.NotContains(t, got.Notes, eligibility.NotePMI)
}

func TestResolveSelfEmployed(t *testing.T) {
	for _, et := range []models.EmploymentType{models.EmploymentSelfEmployed, models.Employment1099} {
		got := eligibility.Resolve(eligibility.Input{EmploymentType: et, DownPaymentPercent: 20})
		assert.Equal(t, []string{models.ProgramConventional, models.ProgramBankStatement}, got.Eligible)
		assert.Equal(t, models.ProgramConventional, got.Recommended)
		assert.True(t, got.RequiresSpecialDocumentation)
	}
}

func TestResolveConventionalAlwaysEligible(t *testing.T) {
	for _, et := range []models.EmploymentType{models.EmploymentW2, models.EmploymentMixed, models.EmploymentRetired, models.EmploymentOther} {
		got := eligibility.Resolve(eligibility.Input{EmploymentType: et})
		assert.True(t, got.IsEligible(models.ProgramConventional))
		assert.NotEmpty(t, got.Recommended)
	}
}

func TestResolveFHACreditFloorNote(t *testing.T) {
	got := eligibility.Resolve(eligibility.Input{
		EmploymentType: models.EmploymentW2,
		BuyerTags:      tags(models.TagFirstTime),
		CreditTier:     models.CreditTierPoor,
	})
	assert.Contains(t, got.Notes, eligibility.NoteFHACreditFloor)
}
