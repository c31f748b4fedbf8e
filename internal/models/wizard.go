// Package models defines the data structures for the homebuyer lead engine.
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Timeline is the buyer's purchase horizon in months.
type Timeline string

const (
	Timeline0To3   Timeline = "0-3"
	Timeline3To6   Timeline = "3-6"
	Timeline6To12  Timeline = "6-12"
	Timeline12Plus Timeline = "12+"
)

// IsValid checks if the timeline is one of the wizard options.
func (t Timeline) IsValid() bool {
	switch t {
	case Timeline0To3, Timeline3To6, Timeline6To12, Timeline12Plus:
		return true
	}
	return false
}

// CreditBand is the self-reported credit score range.
type CreditBand string

const (
	CreditBandPoor      CreditBand = "300-579"
	CreditBandFair      CreditBand = "580-619"
	CreditBandAverage   CreditBand = "620-679"
	CreditBandGood      CreditBand = "680-739"
	CreditBandVeryGood  CreditBand = "740-799"
	CreditBandExcellent CreditBand = "800-850"
	CreditBandUnknown   CreditBand = "unknown"
)

// CreditBands returns the recognized bands in ascending order.
func CreditBands() []CreditBand {
	return []CreditBand{
		CreditBandPoor,
		CreditBandFair,
		CreditBandAverage,
		CreditBandGood,
		CreditBandVeryGood,
		CreditBandExcellent,
	}
}

// Range returns the inclusive bounds of the band. ok is false for unknown bands.
func (b CreditBand) Range() (min, max int, ok bool) {
	lo, hi, found := strings.Cut(string(b), "-")
	if !found {
		return 0, 0, false
	}
	minVal, err := strconv.Atoi(lo)
	if err != nil {
		return 0, 0, false
	}
	maxVal, err := strconv.Atoi(hi)
	if err != nil {
		return 0, 0, false
	}
	return minVal, maxVal, true
}

// ParseCreditBand maps free-form band text to a recognized band. A bare
// score such as "712" is placed into the band that contains it. Anything
// else becomes CreditBandUnknown.
func ParseCreditBand(raw string) CreditBand {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "", "–", "-", "—", "-", "to", "-").Replace(normalized)

	for _, band := range CreditBands() {
		if normalized == string(band) {
			return band
		}
	}

	if score, err := strconv.Atoi(normalized); err == nil {
		for _, band := range CreditBands() {
			lo, hi, _ := band.Range()
			if score >= lo && score <= hi {
				return band
			}
		}
	}

	return CreditBandUnknown
}

// EmploymentType is the buyer's income source.
type EmploymentType string

const (
	EmploymentW2           EmploymentType = "w2"
	Employment1099         EmploymentType = "1099"
	EmploymentSelfEmployed EmploymentType = "self-employed"
	EmploymentMixed        EmploymentType = "mixed"
	EmploymentRetired      EmploymentType = "retired"
	EmploymentITIN         EmploymentType = "itin"
	EmploymentOther        EmploymentType = "other"
)

// IsSelfEmployed reports whether income is documented outside of W-2 payroll.
func (e EmploymentType) IsSelfEmployed() bool {
	return e == EmploymentSelfEmployed || e == Employment1099
}

// NormalizeEmploymentType converts various employment type spellings to standard values.
func NormalizeEmploymentType(raw string) EmploymentType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")

	typeMap := map[string]EmploymentType{
		"w2":              EmploymentW2,
		"w-2":             EmploymentW2,
		"employed":        EmploymentW2,
		"salaried":        EmploymentW2,
		"full-time":       EmploymentW2,
		"part-time":       EmploymentW2,
		"1099":            Employment1099,
		"contractor":      Employment1099,
		"freelancer":      Employment1099,
		"gig":             Employment1099,
		"self-employed":   EmploymentSelfEmployed,
		"selfemployed":    EmploymentSelfEmployed,
		"business-owner":  EmploymentSelfEmployed,
		"entrepreneur":    EmploymentSelfEmployed,
		"mixed":           EmploymentMixed,
		"multiple":        EmploymentMixed,
		"retired":         EmploymentRetired,
		"pensioner":       EmploymentRetired,
		"itin":            EmploymentITIN,
		"no-ssn":          EmploymentITIN,
		"other":           EmploymentOther,
		"autonomo":        EmploymentSelfEmployed,
		"independiente":   Employment1099,
		"jubilado":        EmploymentRetired,
		"asalariado":      EmploymentW2,
		"trabajador-w2":   EmploymentW2,
		"ingresos-mixtos": EmploymentMixed,
	}

	if mapped, ok := typeMap[normalized]; ok {
		return mapped
	}
	return EmploymentOther
}

// BuyerTag describes the buyer's situation.
type BuyerTag string

const (
	TagFirstTime  BuyerTag = "first-time"
	TagVeteran    BuyerTag = "veteran"
	TagInvestor   BuyerTag = "investor"
	TagRelocating BuyerTag = "relocating"
	TagDownsizing BuyerTag = "downsizing"
	TagUpsizing   BuyerTag = "upsizing"
	TagRepeat     BuyerTag = "repeat"
)

var knownBuyerTags = map[BuyerTag]bool{
	TagFirstTime: true, TagVeteran: true, TagInvestor: true, TagRelocating: true,
	TagDownsizing: true, TagUpsizing: true, TagRepeat: true,
}

// LocationPriority is something the buyer wants near their new home.
type LocationPriority string

const (
	PrioritySchools     LocationPriority = "schools"
	PriorityCommute     LocationPriority = "commute"
	PrioritySafety      LocationPriority = "safety"
	PriorityWalkability LocationPriority = "walkability"
	PriorityParks       LocationPriority = "parks"
	PriorityShopping    LocationPriority = "shopping"
	PriorityNightlife   LocationPriority = "nightlife"
	PriorityQuiet       LocationPriority = "quiet"
)

var knownPriorities = map[LocationPriority]bool{
	PrioritySchools: true, PriorityCommute: true, PrioritySafety: true, PriorityWalkability: true,
	PriorityParks: true, PriorityShopping: true, PriorityNightlife: true, PriorityQuiet: true,
}

// RawNumber holds numeric form input exactly as the client sent it. The
// wizard posts both JSON numbers and formatted strings like "$65,000".
type RawNumber string

// UnmarshalJSON accepts a JSON string, number, or null.
func (r *RawNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = RawNumber(n.String())
	return nil
}

// IsEmpty reports whether nothing was entered.
func (r RawNumber) IsEmpty() bool {
	return strings.TrimSpace(string(r)) == ""
}

// LocationStep is the first wizard step.
type LocationStep struct {
	City       string   `json:"city,omitempty"`
	Zip        string   `json:"zip,omitempty"`
	Priorities []string `json:"priorities,omitempty"`
}

// BudgetStep holds either a target price or a monthly budget.
type BudgetStep struct {
	TargetPrice   RawNumber `json:"targetPrice,omitempty"`
	MonthlyBudget RawNumber `json:"monthlyBudget,omitempty"`
}

// DownPaymentStep holds either an amount or a percentage.
type DownPaymentStep struct {
	Amount  RawNumber `json:"amount,omitempty"`
	Percent RawNumber `json:"percent,omitempty"`
}

// WizardDraft is the partially completed wizard. Every field is optional
// until the draft is finalized.
type WizardDraft struct {
	Location       *LocationStep    `json:"location,omitempty"`
	Timeline       string           `json:"timeline,omitempty"`
	Budget         *BudgetStep      `json:"budget,omitempty"`
	AnnualIncome   RawNumber        `json:"annualIncome,omitempty"`
	MonthlyDebts   RawNumber        `json:"monthlyDebts,omitempty"`
	CreditScore    string           `json:"creditScore,omitempty"`
	DownPayment    *DownPaymentStep `json:"downPayment,omitempty"`
	EmploymentType string           `json:"employmentType,omitempty"`
	BuyerTags      []string         `json:"buyerTags,omitempty"`
	HouseholdSize  RawNumber        `json:"householdSize,omitempty"`
}

// Location is the finalized location step.
type Location struct {
	City       string             `json:"city,omitempty"`
	Zip        string             `json:"zip,omitempty"`
	Priorities []LocationPriority `json:"priorities,omitempty"`
}

// CacheKey returns the normalized lookup key for area data, or "" when no
// location was given.
func (l Location) CacheKey() string {
	if zip := strings.TrimSpace(l.Zip); zip != "" {
		if len(zip) > 5 {
			zip = zip[:5]
		}
		return "zip:" + zip
	}
	return l.CityKey()
}

// CityKey returns the normalized city key, or "" when no city was given.
func (l Location) CityKey() string {
	if city := strings.ToLower(strings.Join(strings.Fields(l.City), " ")); city != "" {
		return "city:" + city
	}
	return ""
}

// BudgetKind says which budget representation was supplied.
type BudgetKind string

const (
	BudgetTargetPrice BudgetKind = "targetPrice"
	BudgetMonthly     BudgetKind = "monthlyBudget"
)

// Budget is exactly one of target price or monthly budget.
type Budget struct {
	Kind   BudgetKind `json:"kind"`
	Amount float64    `json:"amount"`
}

// DownPaymentKind says which down payment representation was supplied.
type DownPaymentKind string

const (
	DownPaymentAmount  DownPaymentKind = "amount"
	DownPaymentPercent DownPaymentKind = "percent"
)

// DownPayment is exactly one of an amount or a percentage.
type DownPayment struct {
	Kind  DownPaymentKind `json:"kind"`
	Value float64         `json:"value"`
}

// WizardAnswers is the finalized, validated snapshot handed to the engine.
type WizardAnswers struct {
	Location       Location       `json:"location"`
	Timeline       Timeline       `json:"timeline"`
	Budget         Budget         `json:"budget"`
	AnnualIncome   float64        `json:"annualIncome"`
	MonthlyDebts   float64        `json:"monthlyDebts"`
	DebtsReported  bool           `json:"debtsReported"`
	CreditBand     CreditBand     `json:"creditBand"`
	DownPayment    DownPayment    `json:"downPayment"`
	EmploymentType EmploymentType `json:"employmentType"`
	BuyerTags      []BuyerTag     `json:"buyerTags"`
	HouseholdSize  int            `json:"householdSize"`
}

// HasTag reports whether the buyer selected tag.
func (a *WizardAnswers) HasTag(tag BuyerTag) bool {
	for _, t := range a.BuyerTags {
		if t == tag {
			return true
		}
	}
	return false
}

// TargetPrice returns the target price when that budget form was chosen.
func (a *WizardAnswers) TargetPrice() (float64, bool) {
	if a.Budget.Kind == BudgetTargetPrice {
		return a.Budget.Amount, true
	}
	return 0, false
}

// MonthlyBudget returns the monthly budget when that budget form was chosen.
func (a *WizardAnswers) MonthlyBudget() (float64, bool) {
	if a.Budget.Kind == BudgetMonthly {
		return a.Budget.Amount, true
	}
	return 0, false
}

// DownPaymentPercent returns the down payment as a percentage. An amount is
// converted against referencePrice; a non-positive reference yields 0.
func (a *WizardAnswers) DownPaymentPercent(referencePrice float64) float64 {
	if a.DownPayment.Kind == DownPaymentPercent {
		return a.DownPayment.Value
	}
	if referencePrice <= 0 {
		return 0
	}
	pct := a.DownPayment.Value / referencePrice * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// DownPaymentAmount returns the down payment in dollars against referencePrice.
func (a *WizardAnswers) DownPaymentAmount(referencePrice float64) float64 {
	if a.DownPayment.Kind == DownPaymentAmount {
		return a.DownPayment.Value
	}
	return referencePrice * a.DownPayment.Value / 100
}

// ParseBuyerTags keeps the recognized tags in first-seen order, dropping
// duplicates and unknown values.
func ParseBuyerTags(raw []string) []BuyerTag {
	tags := make([]BuyerTag, 0, len(raw))
	seen := make(map[BuyerTag]bool, len(raw))
	for _, r := range raw {
		tag := BuyerTag(strings.ToLower(strings.TrimSpace(r)))
		if tag == "first_time" || tag == "firsttime" {
			tag = TagFirstTime
		}
		if !knownBuyerTags[tag] || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// ParsePriorities keeps the recognized location priorities in first-seen order.
func ParsePriorities(raw []string) []LocationPriority {
	priorities := make([]LocationPriority, 0, len(raw))
	seen := make(map[LocationPriority]bool, len(raw))
	for _, r := range raw {
		p := LocationPriority(strings.ToLower(strings.TrimSpace(r)))
		if !knownPriorities[p] || seen[p] {
			continue
		}
		seen[p] = true
		priorities = append(priorities, p)
	}
	return priorities
}
