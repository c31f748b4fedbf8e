// Package eligibility resolves which loan programs a buyer can pursue.
package eligibility

import (
	"homebuyer-lead-engine/internal/models"
)

// Exclusion reasons.
const (
	ReasonRequiresSSN        = "requires a Social Security Number"
	ReasonInvestmentProperty = "not allowed for investment properties"
	ReasonNotVeteran         = "requires military service"
)

// Advisory notes.
const (
	NotePMI            = "Conventional loans with less than 20% down require private mortgage insurance (PMI)."
	NoteFHACreditFloor = "FHA generally requires a 580+ credit score for the 3.5% minimum down payment."
	NoteITINDocuments  = "ITIN loans require an ITIN letter, two years of tax returns, and a larger down payment."
	NoteBankStatements = "Bank statement loans qualify income from 12 to 24 months of deposits instead of tax returns."
)

// Input carries the buyer attributes the resolver looks at.
type Input struct {
	EmploymentType     models.EmploymentType
	BuyerTags          []models.BuyerTag
	CreditTier         models.CreditTier
	DownPaymentPercent float64
}

func (in Input) has(tag models.BuyerTag) bool {
	for _, t := range in.BuyerTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Resolve applies the program cascade. ITIN status overrides everything.
// Otherwise eligible and notEligible accumulate independently while the
// first program to claim the recommended slot keeps it.
func Resolve(in Input) models.LoanEligibility {
	if in.EmploymentType == models.EmploymentITIN {
		return models.LoanEligibility{
			Eligible: []string{models.ProgramITIN},
			NotEligible: []models.Exclusion{
				{Program: models.ProgramFHA, Reason: ReasonRequiresSSN},
				{Program: models.ProgramVA, Reason: ReasonRequiresSSN},
				{Program: models.ProgramConventional, Reason: ReasonRequiresSSN},
			},
			Recommended:                  models.ProgramITIN,
			RequiresSpecialDocumentation: true,
			Notes:                        []string{NoteITINDocuments},
		}
	}

	result := models.LoanEligibility{
		Eligible:    []string{},
		NotEligible: []models.Exclusion{},
	}
	recommend := func(program string) {
		if result.Recommended == "" {
			result.Recommended = program
		}
	}

	veteran := in.has(models.TagVeteran)
	investor := in.has(models.TagInvestor)
	firstTime := in.has(models.TagFirstTime)

	if veteran {
		result.Eligible = append(result.Eligible, models.ProgramVA)
		recommend(models.ProgramVA)
	}

	if firstTime && !investor {
		result.Eligible = append(result.Eligible, models.ProgramFHA)
		recommend(models.ProgramFHA)
	}
	if investor {
		result.NotEligible = append(result.NotEligible, models.Exclusion{
			Program: models.ProgramFHA,
			Reason:  ReasonInvestmentProperty,
		})
	}

	result.Eligible = append(result.Eligible, models.ProgramConventional)
	if !veteran {
		recommend(models.ProgramConventional)
		result.NotEligible = append(result.NotEligible, models.Exclusion{
			Program: models.ProgramVA,
			Reason:  ReasonNotVeteran,
		})
	}

	if in.EmploymentType.IsSelfEmployed() {
		result.Eligible = append(result.Eligible, models.ProgramBankStatement)
		result.RequiresSpecialDocumentation = true
		result.Notes = append(result.Notes, NoteBankStatements)
	}

	if in.DownPaymentPercent < 20 {
		result.Notes = append(result.Notes, NotePMI)
	}
	if in.CreditTier == models.CreditTierPoor && result.IsEligible(models.ProgramFHA) {
		result.Notes = append(result.Notes, NoteFHACreditFloor)
	}

	return result
}
