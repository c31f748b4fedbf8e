package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/validation"
)

func TestReportRequestAcceptsFormattedNumbers(t *testing.T) {
	body := `{
		"locale": "es-MX",
		"answers": {
			"location": {"city": "Austin", "zip": "78701"},
			"timeline": "3-6 months",
			"budget": {"targetPrice": "$350,000"},
			"annualIncome": 85000,
			"monthlyDebts": "450",
			"creditScore": "680-739",
			"downPayment": {"percent": 10},
			"employmentType": "w2",
			"buyerTags": ["first_time"],
			"householdSize": null
		}
	}`

	assert.NoError(t, validation.ReportRequest.Validate([]byte(body)))
}

func TestReportRequestRequiresAnswers(t *testing.T) {
	err := validation.ReportRequest.Validate([]byte(`{"locale": "en"}`))
	require.Error(t, err)

	var verrs models.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "answers", verrs[0].Field)
	assert.Equal(t, models.CodeRequired, verrs[0].Code)
}

func TestReportRequestRejectsWrongTypes(t *testing.T) {
	body := `{"answers": {"annualIncome": true, "buyerTags": "veteran"}, "includeInsights": "yes"}`

	err := validation.ReportRequest.Validate([]byte(body))
	require.Error(t, err)

	var verrs models.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.Fields()
	assert.Contains(t, fields, "answers.annualIncome")
	assert.Contains(t, fields, "answers.buyerTags")
	assert.Contains(t, fields, "includeInsights")
	for _, fe := range verrs {
		assert.Equal(t, models.CodeInvalid, fe.Code)
	}
}

func TestLeadRequestRequiresContact(t *testing.T) {
	err := validation.LeadRequest.Validate([]byte(`{"answers": {}, "contact": {"name": "Ana"}}`))
	require.Error(t, err)

	var verrs models.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "contact.email", verrs[0].Field)
	assert.Equal(t, models.CodeRequired, verrs[0].Code)
}

func TestLeadRequestValid(t *testing.T) {
	body := `{
		"contact": {"name": "Ana Lopez", "email": "ana@example.com", "phone": "512-555-0100"},
		"answers": {"annualIncome": "72,000"},
		"locale": "es"
	}`
	assert.NoError(t, validation.LeadRequest.Validate([]byte(body)))
}

func TestMalformedBody(t *testing.T) {
	for _, body := range []string{"", "   ", "{not json", `{"answers":`} {
		err := validation.ReportRequest.Validate([]byte(body))
		assert.ErrorIs(t, err, validation.ErrMalformedBody, "body %q", body)
	}
}

func TestNonObjectBody(t *testing.T) {
	err := validation.LeadRequest.Validate([]byte(`[1, 2, 3]`))
	require.Error(t, err)

	var verrs models.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "body", verrs[0].Field)
}

func TestSchemaNames(t *testing.T) {
	assert.Equal(t, "report request", validation.ReportRequest.Name())
	assert.Equal(t, "lead request", validation.LeadRequest.Name())
}
