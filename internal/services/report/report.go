package report

import (
	"fmt"
	"strings"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/classifier"
	"homebuyer-lead-engine/internal/services/eligibility"
	"homebuyer-lead-engine/internal/utils"
)

// Input is everything the assembler renders. All values are already validated.
type Input struct {
	Answers            *models.WizardAnswers
	Metrics            models.FinancialMetrics
	Eligibility        models.LoanEligibility
	Profile            models.LeadProfile
	EstimatedPrice     float64
	MonthlyPayment     float64
	DownPaymentPercent float64
	Insights           *models.CensusAreaInsights
	Locale             models.Locale
}

// Output is the rule-based narrative.
type Output struct {
	Tips       []string
	ActionPlan []string
	Markdown   string
}

// Assembler renders reports from a catalog.
type Assembler struct {
	catalog Catalog
}

// NewAssembler creates an assembler. A nil catalog uses Messages.
func NewAssembler(catalog Catalog) *Assembler {
	if catalog == nil {
		catalog = Messages
	}
	return &Assembler{catalog: catalog}
}

// Assemble never fails.
func (a *Assembler) Assemble(in Input) Output {
	if in.Answers == nil {
		in.Answers = &models.WizardAnswers{}
	}
	if in.Locale != models.LocaleSpanish {
		in.Locale = models.LocaleEnglish
	}

	out := Output{
		Tips:       a.Tips(in),
		ActionPlan: a.ActionPlan(in),
	}
	out.Markdown = a.markdown(in, out)
	return out
}

func (a *Assembler) text(in Input, key MessageKey, args ...any) string {
	return a.catalog.Text(in.Locale, key, args...)
}

// ActionPlan returns the five base steps, reordered for the buyer's timeline.
func (a *Assembler) ActionPlan(in Input) []string {
	program := in.Eligibility.Recommended
	if program == "" {
		program = models.ProgramConventional
	}

	steps := []string{
		a.text(in, KeyActionReviewCredit),
		a.text(in, KeyActionGatherDocuments),
		a.text(in, KeyActionPreapproval, program),
		a.text(in, KeyActionSetBudget, utils.FormatCurrencyWhole(in.EstimatedPrice)),
		a.text(in, KeyActionConnectAgent, a.areaName(in)),
	}

	switch in.Answers.Timeline {
	case models.Timeline0To3:
		steps = append([]string{a.text(in, KeyActionActQuickly)}, steps...)
	case models.Timeline12Plus:
		steps = append(steps[:1], append([]string{a.text(in, KeyActionImproveProfile)}, steps[1:]...)...)
	}
	return steps
}

// Tips returns buyer-specific advice, most specific first.
func (a *Assembler) Tips(in Input) []string {
	ans := in.Answers
	var keys []MessageKey

	if ans.EmploymentType == models.EmploymentITIN {
		keys = append(keys, KeyTipITINLender)
	}
	if ans.HasTag(models.TagVeteran) {
		keys = append(keys, KeyTipVABenefits)
	}
	if ans.HasTag(models.TagFirstTime) {
		keys = append(keys, KeyTipFirstTimeAssistance)
	}
	if ans.EmploymentType.IsSelfEmployed() {
		keys = append(keys, KeyTipBankStatements)
	}
	if ans.EmploymentType == models.EmploymentRetired {
		keys = append(keys, KeyTipRetirementIncome)
	}
	if ans.HasTag(models.TagInvestor) {
		keys = append(keys, KeyTipInvestorReserves)
	}
	if in.Metrics.CreditTier.NeedsImprovement() {
		keys = append(keys, KeyTipImproveCredit)
	}
	switch {
	case !in.Metrics.DebtToIncome.Defined:
		keys = append(keys, KeyTipVerifyIncome)
	case in.Metrics.DebtToIncome.Above(classifier.StrongDTIPct):
		keys = append(keys, KeyTipReduceDebt)
	}
	if in.DownPaymentPercent < 20 && !ans.HasTag(models.TagVeteran) {
		keys = append(keys, KeyTipSaveDownPayment)
	}
	keys = append(keys, KeyTipShopLenders)

	tips := make([]string, 0, len(keys))
	for _, k := range keys {
		tips = append(tips, a.text(in, k))
	}
	return tips
}

func (a *Assembler) areaName(in Input) string {
	if in.Insights != nil {
		switch {
		case in.Insights.City != "" && in.Insights.State != "":
			return in.Insights.City + ", " + in.Insights.State
		case in.Insights.City != "":
			return in.Insights.City
		}
	}
	if in.Answers.Location.City != "" {
		return in.Answers.Location.City
	}
	if in.Answers.Location.Zip != "" {
		return in.Answers.Location.Zip
	}
	return a.text(in, KeyYourArea)
}

var advisoryKeys = map[string]MessageKey{
	classifier.RiskHighDTI:               KeyRiskHighDTI,
	classifier.RiskCreditImprovement:     KeyRiskCreditImprovement,
	classifier.RiskIncomeUnverified:      KeyRiskIncomeUnverified,
	classifier.StrengthExcellentCredit:   KeyStrengthExcellentCredit,
	classifier.StrengthStrongDTI:         KeyStrengthStrongDTI,
	classifier.StrengthDownPayment:       KeyStrengthDownPayment,
	classifier.ConsiderITINLender:        KeyConsiderITINLender,
	classifier.ConsiderITINDocuments:     KeyConsiderITINDocuments,
	classifier.ConsiderVABenefits:        KeyConsiderVABenefits,
	classifier.ConsiderVACertificate:     KeyConsiderVACertificate,
	classifier.ConsiderJumbo:             KeyConsiderJumbo,
	classifier.ConsiderRetirementIncome:  KeyConsiderRetirementIncome,
	classifier.ConsiderSelfEmployedDocs:  KeyConsiderSelfEmployedDocs,
	classifier.ConsiderMixedIncome:       KeyConsiderMixedIncome,
	classifier.ConsiderFirstTimeAid:      KeyConsiderFirstTimeAid,
	classifier.ConsiderInvestorReserves:  KeyConsiderInvestorReserves,
	classifier.ConsiderRelocating:        KeyConsiderRelocating,
	classifier.ConsiderDownsizing:        KeyConsiderDownsizing,
	classifier.ConsiderUpsizing:          KeyConsiderUpsizing,
	eligibility.ReasonRequiresSSN:        KeyReasonRequiresSSN,
	eligibility.ReasonInvestmentProperty: KeyReasonInvestmentProperty,
	eligibility.ReasonNotVeteran:         KeyReasonNotVeteran,
	eligibility.NotePMI:                  KeyNotePMI,
	eligibility.NoteFHACreditFloor:       KeyNoteFHACreditFloor,
	eligibility.NoteITINDocuments:        KeyNoteITINDocuments,
	eligibility.NoteBankStatements:       KeyNoteBankStatements,
}

var tierKeys = map[models.CreditTier]MessageKey{
	models.CreditTierExcellent: KeyTierExcellent,
	models.CreditTierGood:      KeyTierGood,
	models.CreditTierFair:      KeyTierFair,
	models.CreditTierPoor:      KeyTierPoor,
	models.CreditTierUnknown:   KeyTierUnknown,
}

var stabilityKeys = map[models.EmploymentStability]MessageKey{
	models.StabilityExcellent:      KeyStabilityExcellent,
	models.StabilityGood:           KeyStabilityGood,
	models.StabilityModerate:       KeyStabilityModerate,
	models.StabilityRequiresReview: KeyStabilityRequiresReview,
}

// localize translates an advisory string produced upstream. Unknown
// strings pass through unchanged.
func (a *Assembler) localize(in Input, s string) string {
	if key, ok := advisoryKeys[s]; ok {
		return a.text(in, key)
	}
	return s
}

func (a *Assembler) markdown(in Input, out Output) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	item := func(label, value string) {
		line(fmt.Sprintf("- **%s:** %s", label, value))
	}
	list := func(values []string) {
		for _, v := range values {
			line("- " + a.localize(in, v))
		}
	}

	line(a.text(in, KeyReportTitle))
	line("")

	line(a.text(in, KeySummaryHeading))
	line("")
	line(a.text(in, KeySummaryBody,
		utils.FormatCurrencyWhole(in.Answers.AnnualIncome),
		utils.FormatCurrencyWhole(in.EstimatedPrice),
		utils.FormatCurrencyWhole(in.MonthlyPayment)))
	line("")

	line(a.text(in, KeyNumbersHeading))
	line("")
	item(a.text(in, KeyLabelEstimatedPrice), utils.FormatCurrencyWhole(in.EstimatedPrice))
	item(a.text(in, KeyLabelMaxAffordable), utils.FormatCurrencyWhole(in.Metrics.EstimatedAffordability))
	item(a.text(in, KeyLabelMonthlyPayment), utils.FormatCurrencyWhole(in.MonthlyPayment))
	item(a.text(in, KeyLabelMonthlyIncome), utils.FormatCurrency(in.Metrics.MonthlyIncome))
	dti := a.text(in, KeyValueDTIUndefined)
	if in.Metrics.DebtToIncome.Defined {
		dti = fmt.Sprintf("%.1f%%", in.Metrics.DebtToIncome.Percent())
	}
	item(a.text(in, KeyLabelDTI), dti)
	item(a.text(in, KeyLabelMaxHousing), utils.FormatCurrency(in.Metrics.MaxHousingPayment))
	item(a.text(in, KeyLabelDownPayment), fmt.Sprintf("%s (%.1f%%)",
		utils.FormatCurrencyWhole(in.Answers.DownPaymentAmount(in.EstimatedPrice)), in.DownPaymentPercent))
	item(a.text(in, KeyLabelRecommendedDown), utils.FormatCurrencyWhole(in.Metrics.RecommendedDownPayment))
	line("")

	line(a.text(in, KeyProgramsHeading))
	line("")
	if in.Eligibility.Recommended != "" {
		item(a.text(in, KeyLabelRecommendedProgram), in.Eligibility.Recommended)
	}
	if len(in.Eligibility.Eligible) > 0 {
		item(a.text(in, KeyLabelEligible), strings.Join(in.Eligibility.Eligible, ", "))
	}
	if len(in.Eligibility.NotEligible) > 0 {
		labels := make([]string, 0, len(in.Eligibility.NotEligible))
		for _, e := range in.Eligibility.NotEligible {
			labels = append(labels, models.Exclusion{Program: e.Program, Reason: a.localize(in, e.Reason)}.Label())
		}
		item(a.text(in, KeyLabelNotEligible), strings.Join(labels, ", "))
	}
	if in.Eligibility.RequiresSpecialDocumentation {
		line("")
		line(a.text(in, KeySpecialDocumentation))
	}
	if len(in.Eligibility.Notes) > 0 {
		line("")
		list(in.Eligibility.Notes)
	}
	line("")

	line(a.text(in, KeyProfileHeading))
	line("")
	item(a.text(in, KeyLabelLeadType), "`"+string(in.Profile.LeadType)+"`")
	if key, ok := stabilityKeys[in.Profile.EmploymentStability]; ok {
		item(a.text(in, KeyLabelStability), a.text(in, key))
	}
	if key, ok := tierKeys[in.Profile.CreditTier]; ok {
		item(a.text(in, KeyLabelCreditTier), a.text(in, key))
	}
	for _, group := range []struct {
		key    MessageKey
		values []string
	}{
		{KeyLabelStrengths, in.Profile.Strengths},
		{KeyLabelRisks, in.Profile.RiskFactors},
		{KeyLabelConsiderations, in.Profile.SpecialConsiderations},
	} {
		if len(group.values) == 0 {
			continue
		}
		line("")
		line("**" + a.text(in, group.key) + "**")
		line("")
		list(group.values)
	}
	line("")

	line(a.text(in, KeyActionPlanHeading))
	line("")
	for i, step := range out.ActionPlan {
		line(fmt.Sprintf("%d. %s", i+1, step))
	}
	line("")

	line(a.text(in, KeyTipsHeading))
	line("")
	for _, tip := range out.Tips {
		line("- " + tip)
	}
	line("")

	if ins := in.Insights; ins != nil {
		line(a.text(in, KeyAreaHeading, a.areaName(in)))
		line("")
		if ins.Population > 0 {
			item(a.text(in, KeyLabelPopulation), formatCount(ins.Population))
		}
		if ins.MedianHouseholdIncome > 0 {
			item(a.text(in, KeyLabelMedianIncome), utils.FormatCurrencyWhole(ins.MedianHouseholdIncome))
		}
		if ins.MedianHomeValue > 0 {
			item(a.text(in, KeyLabelMedianHomeValue), utils.FormatCurrencyWhole(ins.MedianHomeValue))
		}
		if ins.MedianAge > 0 {
			item(a.text(in, KeyLabelMedianAge), fmt.Sprintf("%.1f", ins.MedianAge))
		}
		if ins.OwnerOccupiedPct > 0 {
			item(a.text(in, KeyLabelOwnerOccupied), fmt.Sprintf("%.1f%%", ins.OwnerOccupiedPct))
		}
		if ins.MedianHomeValue > 0 && in.EstimatedPrice > 0 {
			line("")
			key := KeyAreaAboveMedian
			if in.EstimatedPrice <= ins.MedianHomeValue {
				key = KeyAreaBelowMedian
			}
			line(a.text(in, key, utils.FormatCurrencyWhole(ins.MedianHomeValue)))
		}
		if ins.Source != "" {
			line("")
			line("_" + a.text(in, KeyAreaSource, ins.Source) + "_")
		}
		line("")
	}

	line("---")
	line("")
	line(a.text(in, KeyDisclaimer))

	return b.String()
}

// formatCount renders an integer with thousands separators.
func formatCount(n int64) string {
	s := utils.FormatCurrencyWhole(float64(n))
	return strings.TrimPrefix(s, "$")
}
