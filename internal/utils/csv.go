package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"homebuyer-lead-engine/internal/models"
)

// CSV errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// RequiredDraftColumns must be present in a prospect CSV.
var RequiredDraftColumns = []string{
	"annual_income",
	"employment_type",
	"timeline",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	"income":          "annual_income",
	"annualincome":    "annual_income",
	"annual income":   "annual_income",
	"salary":          "annual_income",
	"ingresos":        "annual_income",
	"debts":           "monthly_debts",
	"monthly debts":   "monthly_debts",
	"monthlydebts":    "monthly_debts",
	"deudas":          "monthly_debts",
	"credit":          "credit_score",
	"credit score":    "credit_score",
	"creditscore":     "credit_score",
	"employment":      "employment_type",
	"employment type": "employment_type",
	"employmenttype":  "employment_type",
	"empleo":          "employment_type",
	"target price":    "target_price",
	"price":           "target_price",
	"monthly budget":  "monthly_budget",
	"down payment":    "down_payment",
	"downpayment":     "down_payment",
	"down payment %":  "down_payment_percent",
	"tags":            "buyer_tags",
	"buyer tags":      "buyer_tags",
	"household":       "household_size",
	"household size":  "household_size",
	"zipcode":         "zip",
	"zip code":        "zip",
	"postal_code":     "zip",
	"plazo":           "timeline",
}

// DraftRow is one parsed prospect row with its source line for error reporting.
type DraftRow struct {
	Line  int
	Draft models.WizardDraft
}

// DraftCSVParser reads prospect lists into wizard drafts.
type DraftCSVParser struct {
	columnMapping map[string]int
}

// NewDraftCSVParser creates a new CSV parser instance.
func NewDraftCSVParser() *DraftCSVParser {
	return &DraftCSVParser{columnMapping: make(map[string]int)}
}

// ParseDrafts parses CSV content into drafts. Rows are not validated here;
// each draft still goes through finalization.
func (p *DraftCSVParser) ParseDrafts(r io.Reader) ([]DraftRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, err
	}

	var rows []DraftRow
	lineNum := 1 // Header is line 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rows = append(rows, DraftRow{Line: lineNum, Draft: p.parseRow(record)})
	}

	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *DraftCSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)
	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		p.columnMapping[normalized] = i
	}

	var missing []string
	for _, required := range RequiredDraftColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

func (p *DraftCSVParser) parseRow(record []string) models.WizardDraft {
	get := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	draft := models.WizardDraft{
		Timeline:       get("timeline"),
		AnnualIncome:   models.RawNumber(get("annual_income")),
		MonthlyDebts:   models.RawNumber(get("monthly_debts")),
		CreditScore:    get("credit_score"),
		EmploymentType: get("employment_type"),
		HouseholdSize:  models.RawNumber(get("household_size")),
	}

	if city, zip := get("city"), get("zip"); city != "" || zip != "" {
		draft.Location = &models.LocationStep{City: city, Zip: zip}
	}
	if price, monthly := get("target_price"), get("monthly_budget"); price != "" || monthly != "" {
		draft.Budget = &models.BudgetStep{
			TargetPrice:   models.RawNumber(price),
			MonthlyBudget: models.RawNumber(monthly),
		}
	}
	if amount, pct := get("down_payment"), get("down_payment_percent"); amount != "" || pct != "" {
		draft.DownPayment = &models.DownPaymentStep{
			Amount:  models.RawNumber(amount),
			Percent: models.RawNumber(pct),
		}
	}
	if tags := get("buyer_tags"); tags != "" {
		draft.BuyerTags = strings.FieldsFunc(tags, func(r rune) bool { return r == ';' || r == '|' || r == ',' })
	}
	return draft
}

// LeadExportColumns is the header row written by WriteLeadsCSV.
var LeadExportColumns = []string{
	"id", "created_at", "status", "name", "email", "phone", "locale",
	"lead_type", "employment_type", "timeline", "annual_income",
	"estimated_price", "channel", "external_id",
}

// WriteLeadsCSV writes leads as CSV for CRM back-office import.
func WriteLeadsCSV(w io.Writer, leads []*models.Lead) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(LeadExportColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, lead := range leads {
		var estimated string
		if lead.Report != nil {
			estimated = strconv.FormatFloat(lead.Report.EstimatedPrice, 'f', 2, 64)
		}
		record := []string{
			lead.ID,
			lead.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			string(lead.Status),
			lead.Contact.Name,
			lead.Contact.Email,
			lead.Contact.Phone,
			string(lead.Locale),
			string(lead.LeadType),
			string(lead.Answers.EmploymentType),
			string(lead.Answers.Timeline),
			strconv.FormatFloat(lead.Answers.AnnualIncome, 'f', 2, 64),
			estimated,
			lead.Channel,
			lead.ExternalID,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write lead %s: %w", lead.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
