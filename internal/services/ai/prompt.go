package ai

import (
	"fmt"
	"strings"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/utils"
)

const systemPrompt = `You are a mortgage advisor writing a personalized home-buying report.
Respond with a single JSON object and nothing else:
{"reportContent": "<markdown report>", "estimatedPrice": <number>, "maxAffordable": <number>, "monthlyPayment": <number>}
Numbers are US dollars without formatting. Keep the loan programs exactly as given.
Never promise approval. Do not invent rates or fees.`

// BuildPrompt renders the evaluated lead as the user prompt.
func BuildPrompt(req Request) string {
	var b strings.Builder

	language := "English"
	if req.Locale == models.LocaleSpanish {
		language = "Spanish"
	}
	fmt.Fprintf(&b, "Write the report in %s.\n\n", language)

	b.WriteString("## Buyer\n")
	if a := req.Answers; a != nil {
		if a.Location.City != "" || a.Location.Zip != "" {
			fmt.Fprintf(&b, "- Location: %s\n", strings.TrimSpace(a.Location.City+" "+a.Location.Zip))
		}
		fmt.Fprintf(&b, "- Timeline: %s months\n", a.Timeline)
		fmt.Fprintf(&b, "- Annual income: %s\n", utils.FormatCurrencyWhole(a.AnnualIncome))
		fmt.Fprintf(&b, "- Monthly debts: %s\n", utils.FormatCurrencyWhole(a.MonthlyDebts))
		fmt.Fprintf(&b, "- Credit score band: %s\n", a.CreditBand)
		fmt.Fprintf(&b, "- Employment: %s\n", a.EmploymentType)
		if len(a.BuyerTags) > 0 {
			tags := make([]string, len(a.BuyerTags))
			for i, t := range a.BuyerTags {
				tags[i] = string(t)
			}
			fmt.Fprintf(&b, "- Buyer tags: %s\n", strings.Join(tags, ", "))
		}
		fmt.Fprintf(&b, "- Household size: %d\n", a.HouseholdSize)
	}

	b.WriteString("\n## Computed numbers\n")
	fmt.Fprintf(&b, "- Estimated price: %s\n", utils.FormatCurrencyWhole(req.EstimatedPrice))
	fmt.Fprintf(&b, "- Maximum affordable: %s\n", utils.FormatCurrencyWhole(req.Metrics.EstimatedAffordability))
	fmt.Fprintf(&b, "- Monthly payment: %s\n", utils.FormatCurrencyWhole(req.MonthlyPayment))
	fmt.Fprintf(&b, "- Max housing payment: %s\n", utils.FormatCurrencyWhole(req.Metrics.MaxHousingPayment))
	fmt.Fprintf(&b, "- Debt-to-income: %s\n", req.Metrics.DebtToIncome)
	fmt.Fprintf(&b, "- Down payment: %.1f%%\n", req.DownPaymentPercent)
	fmt.Fprintf(&b, "- Credit tier: %s\n", req.Metrics.CreditTier)

	b.WriteString("\n## Loan programs\n")
	fmt.Fprintf(&b, "- Eligible: %s\n", strings.Join(req.Eligibility.Eligible, ", "))
	if len(req.Eligibility.NotEligible) > 0 {
		labels := make([]string, len(req.Eligibility.NotEligible))
		for i, e := range req.Eligibility.NotEligible {
			labels[i] = e.Label()
		}
		fmt.Fprintf(&b, "- Not eligible: %s\n", strings.Join(labels, ", "))
	}
	fmt.Fprintf(&b, "- Recommended: %s\n", req.Eligibility.Recommended)

	b.WriteString("\n## Lead profile\n")
	fmt.Fprintf(&b, "- Lead type: %s\n", req.Profile.LeadType)
	fmt.Fprintf(&b, "- Employment stability: %s\n", req.Profile.EmploymentStability)
	writeList(&b, "Special considerations", req.Profile.SpecialConsiderations)
	writeList(&b, "Risk factors", req.Profile.RiskFactors)
	writeList(&b, "Strengths", req.Profile.Strengths)

	if in := req.Insights; in != nil {
		b.WriteString("\n## Area\n")
		fmt.Fprintf(&b, "- Population: %d\n", in.Population)
		fmt.Fprintf(&b, "- Median household income: %s\n", utils.FormatCurrencyWhole(in.MedianHouseholdIncome))
		fmt.Fprintf(&b, "- Median home value: %s\n", utils.FormatCurrencyWhole(in.MedianHomeValue))
		fmt.Fprintf(&b, "- Owner occupied: %.1f%%\n", in.OwnerOccupiedPct)
	}

	if req.Fallback != "" {
		b.WriteString("\n## Baseline report\nImprove on this draft, keeping its facts:\n\n")
		b.WriteString(req.Fallback)
		b.WriteString("\n")
	}

	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(items, "; "))
}
