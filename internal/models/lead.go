package models

import (
	"strings"
	"time"
	"unicode"
)

// ContactInfo is collected on the final wizard step.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ValidateContact validates contact details independently of the wizard answers.
func ValidateContact(c *ContactInfo) error {
	var errs ValidationErrors

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Code: CodeRequired, Message: ErrMissingName.Error()})
	}
	if !isValidEmail(strings.TrimSpace(c.Email)) {
		errs = append(errs, FieldError{Field: "email", Code: CodeInvalid, Message: ErrInvalidEmail.Error()})
	}
	if c.Phone != "" {
		digits := 0
		for _, r := range c.Phone {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits < 10 || digits > 15 {
			errs = append(errs, FieldError{Field: "phone", Code: CodeInvalid, Message: ErrInvalidPhone.Error()})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// isValidEmail performs basic email validation.
func isValidEmail(email string) bool {
	if email == "" {
		return false
	}

	// Must contain @ with content before and after
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	// Must have a dot after @
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex <= atIndex+1 || dotIndex == len(email)-1 {
		return false
	}

	return true
}

// CensusAreaInsights is demographic data for the buyer's chosen area.
type CensusAreaInsights struct {
	City                  string    `json:"city,omitempty"`
	State                 string    `json:"state,omitempty"`
	Zip                   string    `json:"zip,omitempty"`
	Population            int64     `json:"population"`
	MedianHouseholdIncome float64   `json:"medianHouseholdIncome"`
	MedianHomeValue       float64   `json:"medianHomeValue"`
	MedianAge             float64   `json:"medianAge"`
	OwnerOccupiedPct      float64   `json:"ownerOccupiedPct"`
	Source                string    `json:"source"`
	FetchedAt             time.Time `json:"fetchedAt"`
}

// ReportData is the engine output shown to the buyer and sent to the CRM.
type ReportData struct {
	ReportID        string       `json:"reportId,omitempty"`
	Locale          Locale       `json:"locale,omitempty"`
	EstimatedPrice  float64      `json:"estimatedPrice"`
	MaxAffordable   float64      `json:"maxAffordable"`
	MonthlyPayment  float64      `json:"monthlyPayment"`
	ProgramFit      []string     `json:"programFit"`
	ActionPlan      []string     `json:"actionPlan"`
	Tips            []string     `json:"tips"`
	PrimaryLeadType string       `json:"primaryLeadType"`
	ReportContent   string       `json:"reportContent"`
	AIGenerated     bool         `json:"aiGenerated"`
	LeadProfile     *LeadProfile `json:"leadProfile,omitempty"`
	GeneratedAt     time.Time    `json:"generatedAt"`
}

// LeadStatus tracks a lead through CRM submission.
type LeadStatus string

const (
	LeadStatusPending   LeadStatus = "pending"
	LeadStatusSubmitted LeadStatus = "submitted"
	LeadStatusFailed    LeadStatus = "failed"
)

// Lead is a submitted wizard, as persisted.
type Lead struct {
	ID              string        `json:"id" db:"id"`
	Contact         ContactInfo   `json:"contact"`
	Locale          Locale        `json:"locale" db:"locale"`
	Answers         WizardAnswers `json:"answers" db:"answers"`
	Report          *ReportData   `json:"report,omitempty" db:"report"`
	LeadType        LeadType      `json:"leadType" db:"lead_type"`
	Status          LeadStatus    `json:"status" db:"status"`
	Channel         string        `json:"channel,omitempty" db:"channel"`
	ExternalID      string        `json:"externalId,omitempty" db:"external_id"`
	SubmissionError string        `json:"submissionError,omitempty" db:"submission_error"`
	ReportURL       string        `json:"reportUrl,omitempty" db:"report_url"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
}
