// Package wizard turns a partially completed wizard into validated answers.
package wizard

import (
	"strings"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/utils"
)

const (
	maxCityLength = 100
	maxZipLength  = 10

	minHouseholdSize     = 1
	maxHouseholdSize     = 10
	defaultHouseholdSize = 1
)

// Finalize validates draft and returns the immutable answers the engine
// runs on. Every failing field is reported in a single models.ValidationErrors.
func Finalize(draft *models.WizardDraft) (*models.WizardAnswers, error) {
	if draft == nil {
		return nil, models.ErrMissingAnswers
	}

	var errs models.ValidationErrors
	answers := &models.WizardAnswers{
		CreditBand:    models.ParseCreditBand(draft.CreditScore),
		BuyerTags:     models.ParseBuyerTags(draft.BuyerTags),
		HouseholdSize: defaultHouseholdSize,
	}

	if draft.Location != nil {
		answers.Location.City, _ = utils.SanitizeString(draft.Location.City, maxCityLength)
		answers.Location.Zip, _ = utils.SanitizeString(draft.Location.Zip, maxZipLength)
		answers.Location.Priorities = models.ParsePriorities(draft.Location.Priorities)
	}

	timeline := models.Timeline(strings.TrimSpace(draft.Timeline))
	switch {
	case timeline == "":
		errs.Add(models.NewFieldError("timeline", models.CodeRequired))
	case !timeline.IsValid():
		errs.Add(models.NewFieldError("timeline", models.CodeInvalid))
	default:
		answers.Timeline = timeline
	}

	if budget, err := finalizeBudget(draft.Budget); err != nil {
		errs.Add(err)
	} else {
		answers.Budget = budget
	}

	income, _, err := utils.ParseNonNegative(draft.AnnualIncome, "annualIncome", true)
	if err != nil {
		errs.Add(err)
	}
	answers.AnnualIncome = income

	debts, reported, err := utils.ParseNonNegative(draft.MonthlyDebts, "monthlyDebts", false)
	if err != nil {
		errs.Add(err)
	}
	answers.MonthlyDebts = debts
	answers.DebtsReported = reported

	if down, err := finalizeDownPayment(draft.DownPayment); err != nil {
		errs.Add(err)
	} else {
		answers.DownPayment = down
	}

	if strings.TrimSpace(draft.EmploymentType) == "" {
		errs.Add(models.NewFieldError("employmentType", models.CodeRequired))
	} else {
		answers.EmploymentType = models.NormalizeEmploymentType(draft.EmploymentType)
	}

	if !draft.HouseholdSize.IsEmpty() {
		size, ok := utils.ParseNumeric(draft.HouseholdSize)
		if !ok || size != float64(int(size)) || size < minHouseholdSize || size > maxHouseholdSize {
			errs.Add(models.NewFieldError("householdSize", models.CodeOutOfRange))
		} else {
			answers.HouseholdSize = int(size)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return answers, nil
}

func finalizeBudget(step *models.BudgetStep) (models.Budget, error) {
	if step == nil || (step.TargetPrice.IsEmpty() && step.MonthlyBudget.IsEmpty()) {
		return models.Budget{}, models.NewFieldError("budget", models.CodeRequired)
	}
	if !step.TargetPrice.IsEmpty() && !step.MonthlyBudget.IsEmpty() {
		return models.Budget{}, models.NewFieldError("budget", models.CodeConflict)
	}

	if !step.TargetPrice.IsEmpty() {
		price, err := utils.ParsePositive(step.TargetPrice, "budget.targetPrice")
		if err != nil {
			return models.Budget{}, err
		}
		return models.Budget{Kind: models.BudgetTargetPrice, Amount: price}, nil
	}

	monthly, err := utils.ParsePositive(step.MonthlyBudget, "budget.monthlyBudget")
	if err != nil {
		return models.Budget{}, err
	}
	return models.Budget{Kind: models.BudgetMonthly, Amount: monthly}, nil
}

func finalizeDownPayment(step *models.DownPaymentStep) (models.DownPayment, error) {
	if step == nil || (step.Amount.IsEmpty() && step.Percent.IsEmpty()) {
		return models.DownPayment{}, models.NewFieldError("downPayment", models.CodeRequired)
	}
	if !step.Amount.IsEmpty() && !step.Percent.IsEmpty() {
		return models.DownPayment{}, models.NewFieldError("downPayment", models.CodeConflict)
	}

	if !step.Percent.IsEmpty() {
		pct, _, err := utils.ParsePercent(step.Percent, "downPayment.percent")
		if err != nil {
			return models.DownPayment{}, err
		}
		return models.DownPayment{Kind: models.DownPaymentPercent, Value: pct}, nil
	}

	amount, _, err := utils.ParseNonNegative(step.Amount, "downPayment.amount", true)
	if err != nil {
		return models.DownPayment{}, err
	}
	return models.DownPayment{Kind: models.DownPaymentAmount, Value: amount}, nil
}
