package database_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/database"
)

var testDB *database.DB

func TestMain(m *testing.M) {
	// Integration tests only run against a real database.
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		os.Exit(m.Run())
	}

	var err error
	testDB, err = database.NewFromURL(context.Background(), url)
	if err != nil {
		panic("Failed to connect to test database: " + err.Error())
	}
	if err := testDB.Migrate(context.Background()); err != nil {
		panic("Failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func TestSchemaIsIdempotent(t *testing.T) {
	assert.Contains(t, database.Schema, "CREATE TABLE IF NOT EXISTS leads")
	assert.Contains(t, database.Schema, "CREATE INDEX IF NOT EXISTS")
}

func TestLeadRepository_Lifecycle(t *testing.T) {
	if testDB == nil {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, testDB.HealthCheck(ctx))

	repo := testDB.Leads()
	now := time.Now().UTC().Truncate(time.Millisecond)
	lead := &models.Lead{
		ID:       uuid.New().String(),
		Contact:  models.ContactInfo{Name: "Test Buyer", Email: "buyer@example.com"},
		Locale:   models.LocaleSpanish,
		LeadType: models.LeadMixedIncome,
		Status:   models.LeadStatusPending,
		Answers: models.WizardAnswers{
			Timeline:       models.Timeline6To12,
			AnnualIncome:   72000,
			EmploymentType: models.EmploymentMixed,
			HouseholdSize:  3,
		},
		Report:    &models.ReportData{ReportID: "r-1", ProgramFit: []string{models.ProgramConventional}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, lead))

	lead.Status = models.LeadStatusSubmitted
	lead.Channel = "crm"
	lead.ExternalID = "crm-1"
	lead.UpdatedAt = now.Add(time.Second)
	require.NoError(t, repo.MarkSubmission(ctx, lead))

	got, err := repo.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusSubmitted, got.Status)
	assert.Equal(t, "crm-1", got.ExternalID)
	assert.Equal(t, 72000.0, got.Answers.AnnualIncome)
	require.NotNil(t, got.Report)
	assert.Equal(t, []string{models.ProgramConventional}, got.Report.ProgramFit)

	recent, err := repo.ListRecent(ctx, models.LeadStatusSubmitted, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)

	counts, err := repo.CountByLeadType(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts[models.LeadMixedIncome], int64(1))
}

func TestLeadRepository_NotFound(t *testing.T) {
	if testDB == nil {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	repo := testDB.Leads()

	_, err := repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrLeadNotFound)

	_, err = repo.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, models.ErrLeadNotFound)

	err = repo.MarkSubmission(ctx, &models.Lead{ID: uuid.New().String(), Status: models.LeadStatusFailed})
	assert.ErrorIs(t, err, models.ErrLeadNotFound)
}
