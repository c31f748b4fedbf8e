package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"homebuyer-lead-engine/internal/models"
)

// DefaultListLimit caps ListRecent when no limit is given.
const DefaultListLimit = 100

const leadColumns = `id::text, name, email, phone, locale, lead_type, status, channel,
	external_id, submission_error, report_url, answers, report, created_at, updated_at`

// LeadRepository handles lead database operations.
type LeadRepository struct {
	db *DB
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db *DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a lead. The lead must already have an ID.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	answers, err := json.Marshal(lead.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	var report []byte
	if lead.Report != nil {
		if report, err = json.Marshal(lead.Report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	}

	createdAt := lead.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO leads (id, name, email, phone, locale, lead_type, status, channel,
			external_id, submission_error, report_url, answers, report, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`

	_, err = r.db.ExecContext(ctx, query,
		lead.ID,
		lead.Contact.Name,
		lead.Contact.Email,
		lead.Contact.Phone,
		string(lead.Locale),
		string(lead.LeadType),
		string(lead.Status),
		lead.Channel,
		lead.ExternalID,
		lead.SubmissionError,
		lead.ReportURL,
		answers,
		report,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// MarkSubmission records the submission outcome stored on lead.
func (r *LeadRepository) MarkSubmission(ctx context.Context, lead *models.Lead) error {
	query := `
		UPDATE leads
		SET status = $2, channel = $3, external_id = $4, submission_error = $5,
			report_url = $6, updated_at = $7
		WHERE id = $1`

	updatedAt := lead.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	rows, err := r.db.ExecContext(ctx, query,
		lead.ID,
		string(lead.Status),
		lead.Channel,
		lead.ExternalID,
		lead.SubmissionError,
		lead.ReportURL,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if rows == 0 {
		return models.ErrLeadNotFound
	}
	return nil
}

// GetByID retrieves a lead by its ID.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrLeadNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// ListRecent returns the newest leads first, optionally filtered by status.
func (r *LeadRepository) ListRecent(ctx context.Context, status models.LeadStatus, limit int) ([]*models.Lead, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	query := `SELECT ` + leadColumns + ` FROM leads
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var out []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return out, nil
}

// CountByLeadType returns how many leads of each type exist.
func (r *LeadRepository) CountByLeadType(ctx context.Context) (map[models.LeadType]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT lead_type, COUNT(*) FROM leads GROUP BY lead_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.LeadType]int64)
	for rows.Next() {
		var leadType string
		var n int64
		if err := rows.Scan(&leadType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.LeadType(leadType)] = n
	}
	return counts, rows.Err()
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var (
		lead                     models.Lead
		locale, leadType, status string
		answers, report          []byte
	)
	err := row.Scan(
		&lead.ID,
		&lead.Contact.Name,
		&lead.Contact.Email,
		&lead.Contact.Phone,
		&locale,
		&leadType,
		&status,
		&lead.Channel,
		&lead.ExternalID,
		&lead.SubmissionError,
		&lead.ReportURL,
		&answers,
		&report,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Locale = models.Locale(locale)
	lead.LeadType = models.LeadType(leadType)
	lead.Status = models.LeadStatus(status)

	if err := json.Unmarshal(answers, &lead.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	if len(report) > 0 {
		lead.Report = &models.ReportData{}
		if err := json.Unmarshal(report, lead.Report); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
	}
	return &lead, nil
}
