package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CreditTier is the coarse credit bucket derived from a credit band.
type CreditTier string

const (
	CreditTierExcellent CreditTier = "EXCELLENT"
	CreditTierGood      CreditTier = "GOOD"
	CreditTierFair      CreditTier = "FAIR"
	CreditTierPoor      CreditTier = "POOR"
	CreditTierUnknown   CreditTier = "UNKNOWN"
)

// NeedsImprovement reports whether the tier is FAIR or POOR.
func (t CreditTier) NeedsImprovement() bool {
	return t == CreditTierFair || t == CreditTierPoor
}

// DTIRatio is a debt-to-income ratio that may be undefined when there is no
// income to divide by. Undefined ratios marshal to JSON null.
type DTIRatio struct {
	Value   float64
	Defined bool
}

// DefinedDTI wraps a computed ratio.
func DefinedDTI(v float64) DTIRatio {
	return DTIRatio{Value: v, Defined: true}
}

// UndefinedDTI is the zero-income sentinel.
func UndefinedDTI() DTIRatio {
	return DTIRatio{}
}

// Percent returns the ratio as a percentage, or 0 when undefined.
func (d DTIRatio) Percent() float64 {
	if !d.Defined {
		return 0
	}
	return d.Value * 100
}

// Above reports whether the ratio is defined and strictly above pct.
func (d DTIRatio) Above(pct float64) bool {
	return d.Defined && d.Percent() > pct
}

// Below reports whether the ratio is defined and strictly below pct.
func (d DTIRatio) Below(pct float64) bool {
	return d.Defined && d.Percent() < pct
}

func (d DTIRatio) String() string {
	if !d.Defined {
		return "undefined"
	}
	return fmt.Sprintf("%.1f%%", d.Percent())
}

// MarshalJSON writes the ratio or null.
func (d DTIRatio) MarshalJSON() ([]byte, error) {
	if !d.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(d.Value)
}

// UnmarshalJSON reads a ratio or null.
func (d *DTIRatio) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = UndefinedDTI()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = DefinedDTI(v)
	return nil
}

// CreditScoreRange is the numeric range of a credit band. Both bounds are
// zero for an unknown band.
type CreditScoreRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FinancialMetrics is derived from the wizard answers and never stored on its own.
type FinancialMetrics struct {
	MonthlyIncome          float64          `json:"monthlyIncome"`
	DebtToIncome           DTIRatio         `json:"debtToIncomeRatio"`
	MaxHousingPayment      float64          `json:"maxHousingPayment"`
	EstimatedAffordability float64          `json:"estimatedAffordability"`
	RecommendedDownPayment float64          `json:"recommendedDownPayment"`
	CreditScoreRange       CreditScoreRange `json:"creditScoreRange"`
	CreditTier             CreditTier       `json:"creditTier"`
}

// Loan program names.
const (
	ProgramITIN          = "ITIN Portfolio Loans (Non-QM)"
	ProgramFHA           = "FHA"
	ProgramVA            = "VA"
	ProgramConventional  = "Conventional"
	ProgramBankStatement = "Bank Statement Loans"
)

// Exclusion is a program the buyer does not qualify for and why.
type Exclusion struct {
	Program string `json:"program"`
	Reason  string `json:"reason,omitempty"`
}

// Label renders the exclusion as "FHA (not allowed for investment properties)".
func (e Exclusion) Label() string {
	if e.Reason == "" {
		return e.Program
	}
	return fmt.Sprintf("%s (%s)", e.Program, e.Reason)
}

// LoanEligibility is the set of programs the buyer may pursue.
type LoanEligibility struct {
	Eligible                     []string    `json:"eligible"`
	NotEligible                  []Exclusion `json:"notEligible"`
	Recommended                  string      `json:"recommended"`
	RequiresSpecialDocumentation bool        `json:"requiresSpecialDocumentation"`
	Notes                        []string    `json:"notes,omitempty"`
}

// IsEligible reports whether program is in the eligible list.
func (l *LoanEligibility) IsEligible(program string) bool {
	for _, p := range l.Eligible {
		if p == program {
			return true
		}
	}
	return false
}

// ExcludedPrograms returns the bare program names of NotEligible.
func (l *LoanEligibility) ExcludedPrograms() []string {
	out := make([]string, 0, len(l.NotEligible))
	for _, e := range l.NotEligible {
		out = append(out, e.Program)
	}
	return out
}

// LeadType is the discrete classification of a lead.
type LeadType string

const (
	LeadITINInvestor          LeadType = "ITIN_INVESTOR"
	LeadITINFirstTime         LeadType = "ITIN_FIRST_TIME"
	LeadITINUpsizing          LeadType = "ITIN_UPSIZING"
	LeadVeteranFirstTime      LeadType = "MILITARY_VETERAN_FIRST_TIME"
	LeadVeteranUpsizing       LeadType = "MILITARY_VETERAN_UPSIZING"
	LeadHighNetWorth          LeadType = "HIGH_NET_WORTH"
	LeadRetiredDownsizing     LeadType = "RETIRED_DOWNSIZING"
	LeadSelfEmployedInvestor  LeadType = "SELF_EMPLOYED_INVESTOR"
	LeadSelfEmployedFirstTime LeadType = "SELF_EMPLOYED_FIRST_TIME"
	LeadSelfEmployedUpsizing  LeadType = "SELF_EMPLOYED_UPSIZING"
	LeadMixedIncome           LeadType = "MIXED_INCOME"
	LeadW2Investor            LeadType = "W2_INVESTOR"
	LeadW2FirstTimeLowCredit  LeadType = "W2_FIRST_TIME_LOW_CREDIT"
	LeadW2FirstTimeGoodCredit LeadType = "W2_FIRST_TIME_GOOD_CREDIT"
	LeadW2Upsizing            LeadType = "W2_UPSIZING"
	LeadStandardBuyer         LeadType = "STANDARD_BUYER"
)

// LeadTypes returns every lead type the classifier can produce.
func LeadTypes() []LeadType {
	return []LeadType{
		LeadITINInvestor, LeadITINFirstTime, LeadITINUpsizing,
		LeadVeteranFirstTime, LeadVeteranUpsizing,
		LeadHighNetWorth,
		LeadRetiredDownsizing,
		LeadSelfEmployedInvestor, LeadSelfEmployedFirstTime, LeadSelfEmployedUpsizing,
		LeadMixedIncome,
		LeadW2Investor, LeadW2FirstTimeLowCredit, LeadW2FirstTimeGoodCredit, LeadW2Upsizing,
		LeadStandardBuyer,
	}
}

// IsValid checks if the lead type is in the fixed enumeration.
func (l LeadType) IsValid() bool {
	for _, t := range LeadTypes() {
		if t == l {
			return true
		}
	}
	return false
}

// PrimaryCategory is the coarse grouping of lead types.
type PrimaryCategory string

const (
	CategoryITIN         PrimaryCategory = "ITIN"
	CategorySelfEmployed PrimaryCategory = "SELF_EMPLOYED"
	CategoryW2           PrimaryCategory = "W2"
	CategoryMilitary     PrimaryCategory = "MILITARY"
	CategoryRetired      PrimaryCategory = "RETIRED"
	CategoryMixed        PrimaryCategory = "MIXED"
	CategoryHighNetWorth PrimaryCategory = "HIGH_NET_WORTH"
	CategoryStandard     PrimaryCategory = "STANDARD"
)

// EmploymentStability is how predictable the buyer's income looks to an underwriter.
type EmploymentStability string

const (
	StabilityExcellent      EmploymentStability = "EXCELLENT"
	StabilityGood           EmploymentStability = "GOOD"
	StabilityModerate       EmploymentStability = "MODERATE"
	StabilityRequiresReview EmploymentStability = "REQUIRES_REVIEW"
)

// LeadProfile is the terminal output of classification.
type LeadProfile struct {
	LeadType              LeadType            `json:"leadType"`
	PrimaryCategory       PrimaryCategory     `json:"primaryCategory"`
	EmploymentStability   EmploymentStability `json:"employmentStability"`
	CreditTier            CreditTier          `json:"creditTier"`
	SpecialConsiderations []string            `json:"specialConsiderations"`
	RiskFactors           []string            `json:"riskFactors"`
	Strengths             []string            `json:"strengths"`
}
