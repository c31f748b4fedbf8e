package utils_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/utils"
)

func TestParseDrafts(t *testing.T) {
	content := `Income,Monthly Debts,Credit Score,Employment,Timeline,Zip Code,Price,Down Payment %,Tags
"$65,000",600,680-739,W-2,0-3,78701,300000,10,first-time;veteran
90000,,unknown,self employed,12+,,,,`

	rows, err := utils.NewDraftCSVParser().ParseDrafts(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, models.RawNumber("$65,000"), first.Draft.AnnualIncome)
	assert.Equal(t, "W-2", first.Draft.EmploymentType)
	require.NotNil(t, first.Draft.Location)
	assert.Equal(t, "78701", first.Draft.Location.Zip)
	require.NotNil(t, first.Draft.Budget)
	assert.Equal(t, models.RawNumber("300000"), first.Draft.Budget.TargetPrice)
	require.NotNil(t, first.Draft.DownPayment)
	assert.Equal(t, models.RawNumber("10"), first.Draft.DownPayment.Percent)
	assert.Equal(t, []string{"first-time", "veteran"}, first.Draft.BuyerTags)

	second := rows[1]
	assert.Nil(t, second.Draft.Location)
	assert.Nil(t, second.Draft.Budget)
	assert.Nil(t, second.Draft.DownPayment)
	assert.True(t, second.Draft.MonthlyDebts.IsEmpty())
}

func TestParseDraftsMissingColumns(t *testing.T) {
	_, err := utils.NewDraftCSVParser().ParseDrafts(strings.NewReader("zip,city\n78701,Austin\n"))
	assert.ErrorIs(t, err, utils.ErrMissingColumns)
}

func TestParseDraftsEmpty(t *testing.T) {
	_, err := utils.NewDraftCSVParser().ParseDrafts(strings.NewReader(""))
	assert.ErrorIs(t, err, utils.ErrEmptyCSV)

	_, err = utils.NewDraftCSVParser().ParseDrafts(strings.NewReader("income,employment,timeline\n"))
	assert.ErrorIs(t, err, utils.ErrNoDataRows)
}

func TestWriteLeadsCSV(t *testing.T) {
	leads := []*models.Lead{
		{
			ID:        "lead-1",
			Contact:   models.ContactInfo{Name: "Ana, Ruiz", Email: "ana@example.com"},
			Locale:    models.LocaleSpanish,
			Answers:   models.WizardAnswers{EmploymentType: models.EmploymentITIN, Timeline: models.Timeline3To6, AnnualIncome: 52000},
			Report:    &models.ReportData{EstimatedPrice: 215000},
			LeadType:  models.LeadITINFirstTime,
			Status:    models.LeadStatusSubmitted,
			Channel:   "crm",
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, utils.WriteLeadsCSV(&buf, leads))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, utils.LeadExportColumns, records[0])
	assert.Equal(t, "Ana, Ruiz", records[1][3])
	assert.Equal(t, "ITIN_FIRST_TIME", records[1][7])
	assert.Equal(t, "215000.00", records[1][11])
	assert.Equal(t, "2026-03-01T12:00:00Z", records[1][1])
}
