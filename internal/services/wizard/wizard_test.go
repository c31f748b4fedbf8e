package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/wizard"
)

func completeDraft() *models.WizardDraft {
	return &models.WizardDraft{
		Location:       &models.LocationStep{City: " Austin ", Zip: "78701", Priorities: []string{"schools", "beach"}},
		Timeline:       "3-6",
		Budget:         &models.BudgetStep{TargetPrice: "$300,000"},
		AnnualIncome:   "65,000",
		MonthlyDebts:   "600",
		CreditScore:    "680-739",
		DownPayment:    &models.DownPaymentStep{Percent: "10"},
		EmploymentType: "W-2",
		BuyerTags:      []string{"first-time"},
		HouseholdSize:  "3",
	}
}

func TestFinalizeComplete(t *testing.T) {
	answers, err := wizard.Finalize(completeDraft())
	require.NoError(t, err)

	assert.Equal(t, "Austin", answers.Location.City)
	assert.Equal(t, []models.LocationPriority{models.PrioritySchools}, answers.Location.Priorities)
	assert.Equal(t, models.Timeline3To6, answers.Timeline)
	assert.Equal(t, models.Budget{Kind: models.BudgetTargetPrice, Amount: 300000}, answers.Budget)
	assert.Equal(t, 65000.0, answers.AnnualIncome)
	assert.Equal(t, 600.0, answers.MonthlyDebts)
	assert.True(t, answers.DebtsReported)
	assert.Equal(t, models.CreditBandGood, answers.CreditBand)
	assert.Equal(t, models.DownPayment{Kind: models.DownPaymentPercent, Value: 10}, answers.DownPayment)
	assert.Equal(t, models.EmploymentW2, answers.EmploymentType)
	assert.Equal(t, []models.BuyerTag{models.TagFirstTime}, answers.BuyerTags)
	assert.Equal(t, 3, answers.HouseholdSize)
}

func TestFinalizeDefaults(t *testing.T) {
	draft := completeDraft()
	draft.Location = nil
	draft.MonthlyDebts = ""
	draft.HouseholdSize = ""
	draft.CreditScore = "not sure"
	draft.EmploymentType = "astronaut"

	answers, err := wizard.Finalize(draft)
	require.NoError(t, err)
	assert.False(t, answers.DebtsReported)
	assert.Zero(t, answers.MonthlyDebts)
	assert.Equal(t, 1, answers.HouseholdSize)
	assert.Equal(t, models.CreditBandUnknown, answers.CreditBand)
	assert.Equal(t, models.EmploymentOther, answers.EmploymentType)
}

func TestFinalizeZeroIncomeAllowed(t *testing.T) {
	draft := completeDraft()
	draft.AnnualIncome = "0"

	answers, err := wizard.Finalize(draft)
	require.NoError(t, err)
	assert.Zero(t, answers.AnnualIncome)
}

func TestFinalizeUnparseableOptionalNumber(t *testing.T) {
	draft := completeDraft()
	draft.MonthlyDebts = "abc"

	_, err := wizard.Finalize(draft)
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "monthlyDebts", verrs[0].Field)
	assert.Equal(t, models.CodeInvalid, verrs[0].Code)
}

func TestFinalizeReportsEveryField(t *testing.T) {
	draft := &models.WizardDraft{
		Timeline:      "someday",
		Budget:        &models.BudgetStep{TargetPrice: "300000", MonthlyBudget: "2000"},
		AnnualIncome:  "-5",
		MonthlyDebts:  "-1",
		DownPayment:   &models.DownPaymentStep{Percent: "150"},
		HouseholdSize: "11",
	}

	_, err := wizard.Finalize(draft)
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	codes := map[string]string{}
	for _, fe := range verrs {
		codes[fe.Field] = fe.Code
	}
	assert.Equal(t, models.CodeInvalid, codes["timeline"])
	assert.Equal(t, models.CodeConflict, codes["budget"])
	assert.Equal(t, models.CodeCannotBeNegative, codes["annualIncome"])
	assert.Equal(t, models.CodeCannotBeNegative, codes["monthlyDebts"])
	assert.Equal(t, models.CodeOutOfRange, codes["downPayment.percent"])
	assert.Equal(t, models.CodeRequired, codes["employmentType"])
	assert.Equal(t, models.CodeOutOfRange, codes["householdSize"])
}

func TestFinalizeBudgetForms(t *testing.T) {
	draft := completeDraft()
	draft.Budget = &models.BudgetStep{MonthlyBudget: "$2,100"}
	answers, err := wizard.Finalize(draft)
	require.NoError(t, err)
	monthly, ok := answers.MonthlyBudget()
	assert.True(t, ok)
	assert.Equal(t, 2100.0, monthly)
	_, ok = answers.TargetPrice()
	assert.False(t, ok)

	draft.Budget = nil
	_, err = wizard.Finalize(draft)
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "budget", verrs[0].Field)
	assert.Equal(t, models.CodeRequired, verrs[0].Code)

	draft.Budget = &models.BudgetStep{TargetPrice: "0"}
	_, err = wizard.Finalize(draft)
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, models.CodeMustBePositive, verrs[0].Code)
}

func TestFinalizeDownPaymentAmount(t *testing.T) {
	draft := completeDraft()
	draft.DownPayment = &models.DownPaymentStep{Amount: "$60,000"}

	answers, err := wizard.Finalize(draft)
	require.NoError(t, err)
	assert.Equal(t, models.DownPayment{Kind: models.DownPaymentAmount, Value: 60000}, answers.DownPayment)
	assert.InDelta(t, 20.0, answers.DownPaymentPercent(300000), 0.0001)
}

func TestFinalizeNil(t *testing.T) {
	_, err := wizard.Finalize(nil)
	assert.ErrorIs(t, err, models.ErrMissingAnswers)
}
