package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/engine"
	s3service "homebuyer-lead-engine/internal/services/s3"
	"homebuyer-lead-engine/internal/services/wizard"
	"homebuyer-lead-engine/internal/utils"
)

// maxReportedErrors caps the row errors echoed in a batch summary.
const maxReportedErrors = 10

// BatchStore reads uploaded prospect lists and stores batch results.
type BatchStore interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	UploadFile(ctx context.Context, key string, data []byte, contentType string) error
}

// BatchRow is the outcome for one prospect row.
type BatchRow struct {
	Line     int                `json:"line"`
	LeadType string             `json:"leadType,omitempty"`
	Report   *models.ReportData `json:"report,omitempty"`
	Errors   map[string]string  `json:"errors,omitempty"`
}

// BatchResult summarizes a processed prospect list.
type BatchResult struct {
	Message   string     `json:"message"`
	BatchID   string     `json:"batchId"`
	Total     int        `json:"total"`
	Generated int        `json:"generated"`
	Failed    int        `json:"failed"`
	Errors    []string   `json:"errors,omitempty"`
	ResultKey string     `json:"resultKey,omitempty"`
	Rows      []BatchRow `json:"rows,omitempty"`
}

// BatchHandler generates reports for every row of a prospect-list CSV.
type BatchHandler struct {
	engine ReportGenerator
	census InsightsProvider
	store  BatchStore
	locale models.Locale
}

// NewBatchHandler creates a batch handler. store is only needed for S3
// triggered batches.
func NewBatchHandler(gen ReportGenerator, census InsightsProvider, store BatchStore, locale models.Locale) *BatchHandler {
	if locale == "" {
		locale = models.LocaleEnglish
	}
	return &BatchHandler{engine: gen, census: census, store: store, locale: locale}
}

// Process parses r and generates a report per valid row. Invalid rows are
// reported, never fatal; only an unreadable CSV fails the batch.
func (h *BatchHandler) Process(ctx context.Context, r io.Reader, batchID string, locale models.Locale) (*BatchResult, error) {
	logger := utils.GetLogger()
	if locale == "" {
		locale = h.locale
	}

	rows, err := utils.NewDraftCSVParser().ParseDrafts(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prospect list: %w", err)
	}

	result := &BatchResult{BatchID: batchID, Total: len(rows)}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out := BatchRow{Line: row.Line}
		answers, err := wizard.Finalize(&row.Draft)
		if err != nil {
			out.Errors = rowErrors(err)
			result.Failed++
			if len(result.Errors) < maxReportedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", row.Line, err))
			}
			result.Rows = append(result.Rows, out)
			continue
		}

		report, _ := h.engine.GenerateReport(ctx, engine.ReportInput{
			Answers:  answers,
			Locale:   locale,
			Insights: lookupInsights(ctx, h.census, answers.Location),
		})
		out.Report = report
		out.LeadType = report.PrimaryLeadType
		result.Generated++
		result.Rows = append(result.Rows, out)
	}

	result.Message = fmt.Sprintf("Generated %d of %d reports", result.Generated, result.Total)
	logger.Info("Processed prospect list",
		utils.String("batchID", batchID),
		utils.Int("generated", result.Generated),
		utils.Int("failed", result.Failed))

	return result, nil
}

// Handle processes S3 events for uploaded prospect lists and writes the
// results next to the archive.
func (h *BatchHandler) Handle(ctx context.Context, s3Event events.S3Event) (BatchResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return BatchResult{Message: "No records to process"}, nil
	}
	if h.store == nil {
		return BatchResult{}, errUnavailable
	}

	record := s3Event.Records[0]
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	logger.Info("Processing prospect list",
		utils.String("bucket", record.S3.Bucket.Name),
		utils.String("key", key))

	content, err := h.store.DownloadFile(ctx, key)
	if err != nil {
		logger.Error("Failed to download prospect list", utils.Error(err))
		return BatchResult{}, err
	}

	result, err := h.Process(ctx, bytes.NewReader(content), generateBatchID(key), h.locale)
	if err != nil {
		return BatchResult{}, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to encode batch result: %w", err)
	}
	resultKey := s3service.BatchResultKey(result.BatchID)
	if err := h.store.UploadFile(ctx, resultKey, data, "application/json"); err != nil {
		return BatchResult{}, err
	}

	summary := *result
	summary.ResultKey = resultKey
	summary.Rows = nil
	return summary, nil
}

// rowErrors flattens a finalization error into field -> message.
func rowErrors(err error) map[string]string {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Fields()
	}
	verrs.Add(err)
	return verrs.Fields()
}

// generateBatchID generates a unique batch ID for this upload.
func generateBatchID(key string) string {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	hash := sha256.Sum256([]byte(key + timestamp))
	return hex.EncodeToString(hash[:])[:16]
}

// NewBatchID returns a batch ID for a direct upload.
func NewBatchID(filename string) string {
	return generateBatchID(filename)
}
