package handlers_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebuyer-lead-engine/internal/handlers"
	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/census"
	"homebuyer-lead-engine/internal/services/engine"
	"homebuyer-lead-engine/internal/services/leads"
	s3service "homebuyer-lead-engine/internal/services/s3"
)

const answersJSON = `{
	"location": {"city": "Austin", "zip": "78701"},
	"timeline": "3-6",
	"budget": {"targetPrice": "$350,000"},
	"annualIncome": "85,000",
	"monthlyDebts": 400,
	"creditScore": "680-739",
	"downPayment": {"percent": "10"},
	"employmentType": "w2",
	"buyerTags": ["first-time"]
}`

type fakeInsights struct {
	insights *models.CensusAreaInsights
	err      error
	calls    int
}

func (f *fakeInsights) Lookup(ctx context.Context, loc models.Location) (*models.CensusAreaInsights, error) {
	f.calls++
	return f.insights, f.err
}

type fakeSubmitter struct {
	result *leads.SubmissionResult
	err    error
	got    *models.Lead
}

func (f *fakeSubmitter) Submit(ctx context.Context, lead *models.Lead) (*leads.SubmissionResult, error) {
	f.got = lead
	if f.err != nil {
		return nil, f.err
	}
	lead.ID = "3f2b8c1e-6d4a-4f7e-9a55-0c1d2e3f4a5b"
	if f.result.Success {
		lead.Status = models.LeadStatusSubmitted
	} else {
		lead.Status = models.LeadStatusFailed
	}
	return f.result, nil
}

func austin() *models.CensusAreaInsights {
	return &models.CensusAreaInsights{Zip: "78701", Population: 12000, MedianHomeValue: 520000, Source: "test"}
}

func post(body string, headers map[string]string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: body, Headers: headers}
}

func decodeError(t *testing.T, resp events.APIGatewayProxyResponse) handlers.ErrorBody {
	t.Helper()
	var body handlers.ErrorBody
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return body
}

func TestReportHandler_Generates(t *testing.T) {
	insights := &fakeInsights{insights: austin()}
	h := handlers.NewReportHandler(engine.New(engine.Options{}), insights)

	resp, err := h.Handle(context.Background(), post(`{"answers": `+answersJSON+`}`, map[string]string{"accept-language": "es-MX,es;q=0.9"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])

	var out handlers.ReportResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	require.NotNil(t, out.Report)
	assert.Equal(t, models.LocaleSpanish, out.Report.Locale)
	assert.False(t, out.Report.AIGenerated)
	assert.NotEmpty(t, out.Report.ReportContent)
	assert.NotEmpty(t, out.Report.PrimaryLeadType)
	require.NotNil(t, out.Evaluation)
	assert.Greater(t, out.Evaluation.EstimatedPrice, 0.0)
	require.NotNil(t, out.Insights)
	assert.Equal(t, "78701", out.Insights.Zip)
	assert.Equal(t, 1, insights.calls)
}

func TestReportHandler_BodyLocaleWins(t *testing.T) {
	h := handlers.NewReportHandler(engine.New(engine.Options{}), nil)

	out, err := h.Generate(context.Background(), []byte(`{"locale": "en", "answers": `+answersJSON+`}`), "es")
	require.NoError(t, err)
	assert.Equal(t, models.LocaleEnglish, out.Report.Locale)
	assert.Nil(t, out.Insights)
}

func TestReportHandler_InsightsOptional(t *testing.T) {
	insights := &fakeInsights{err: census.ErrZipRequired}
	h := handlers.NewReportHandler(engine.New(engine.Options{}), insights)

	out, err := h.Generate(context.Background(), []byte(`{"answers": `+answersJSON+`}`), "")
	require.NoError(t, err)
	assert.Nil(t, out.Insights)
	assert.Equal(t, 1, insights.calls)

	_, err = h.Generate(context.Background(), []byte(`{"includeInsights": false, "answers": `+answersJSON+`}`), "")
	require.NoError(t, err)
	assert.Equal(t, 1, insights.calls)
}

func TestReportHandler_ValidationErrors(t *testing.T) {
	h := handlers.NewReportHandler(engine.New(engine.Options{}), nil)
	ctx := context.Background()

	resp, err := h.Handle(ctx, post(`{"locale": "en"}`, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Fields, "answers")

	resp, err = h.Handle(ctx, post(`{"answers": {"annualIncome": "-5", "employmentType": "w2"}}`, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	fields := decodeError(t, resp).Fields
	assert.Contains(t, fields, "timeline")
	assert.Contains(t, fields, "budget")
	assert.Contains(t, fields, "downPayment")

	resp, err = h.Handle(ctx, post(`{"answers": `, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportHandler_PreflightAndBase64(t *testing.T) {
	h := handlers.NewReportHandler(engine.New(engine.Options{}), nil)
	ctx := context.Background()

	resp, err := h.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "POST,OPTIONS", resp.Headers["Access-Control-Allow-Methods"])

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"answers": ` + answersJSON + `}`))
	resp, err = h.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: encoded, IsBase64Encoded: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = h.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: "%%%", IsBase64Encoded: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func leadBody(contact string) string {
	return `{"contact": ` + contact + `, "locale": "es", "answers": ` + answersJSON + `}`
}

func TestLeadHandler_Submitted(t *testing.T) {
	submitter := &fakeSubmitter{result: &leads.SubmissionResult{Success: true, Channel: leads.ChannelCRM, ExternalID: "crm-42"}}
	h := handlers.NewLeadHandler(engine.New(engine.Options{}), &fakeInsights{insights: austin()}, submitter)

	resp, err := h.Handle(context.Background(), post(leadBody(`{"name": "Ana Lopez", "email": "ana@example.com"}`), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)

	var out handlers.LeadResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	assert.Equal(t, "3f2b8c1e-6d4a-4f7e-9a55-0c1d2e3f4a5b", out.LeadID)
	assert.Equal(t, models.LeadStatusSubmitted, out.Status)
	assert.Equal(t, "crm-42", out.Submission.ExternalID)
	require.NotNil(t, out.Report)
	assert.Equal(t, models.LocaleSpanish, out.Report.Locale)

	require.NotNil(t, submitter.got)
	assert.Equal(t, "Ana Lopez", submitter.got.Contact.Name)
	assert.Equal(t, models.LocaleSpanish, submitter.got.Locale)
	assert.Equal(t, models.LeadType(out.Report.PrimaryLeadType), submitter.got.LeadType)
	assert.Equal(t, 85000.0, submitter.got.Answers.AnnualIncome)
}

func TestLeadHandler_AllChannelsFailed(t *testing.T) {
	submitter := &fakeSubmitter{result: &leads.SubmissionResult{Errors: map[string]string{
		leads.ChannelCRM:     "status 500",
		leads.ChannelWebhook: "timeout",
	}}}
	h := handlers.NewLeadHandler(engine.New(engine.Options{}), nil, submitter)

	resp, err := h.Handle(context.Background(), post(leadBody(`{"name": "Ana", "email": "ana@example.com"}`), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var out handlers.LeadResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	assert.Equal(t, models.LeadStatusFailed, out.Status)
	assert.False(t, out.Submission.Success)
	assert.Equal(t, "timeout", out.Submission.Errors[leads.ChannelWebhook])
}

func TestLeadHandler_CombinesValidationErrors(t *testing.T) {
	submitter := &fakeSubmitter{result: &leads.SubmissionResult{Success: true}}
	h := handlers.NewLeadHandler(engine.New(engine.Options{}), nil, submitter)

	body := `{"contact": {"name": "", "email": "not-an-email"}, "answers": {"employmentType": "w2"}}`
	resp, err := h.Handle(context.Background(), post(body, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	fields := decodeError(t, resp).Fields
	assert.Contains(t, fields, "contact.name")
	assert.Contains(t, fields, "contact.email")
	assert.Contains(t, fields, "answers.timeline")
	assert.Nil(t, submitter.got)

	resp, err = h.Handle(context.Background(), post(`{"answers": {}}`, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Fields, "contact")
}

func TestLeadHandler_SubmitterError(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("boom")}
	h := handlers.NewLeadHandler(engine.New(engine.Options{}), nil, submitter)

	resp, err := h.Handle(context.Background(), post(leadBody(`{"name": "Ana", "email": "ana@example.com"}`), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, resp.Body, "boom")
}

type fakePinger struct{ err error }

func (f fakePinger) HealthCheck(ctx context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	ctx := context.Background()

	resp, err := handlers.NewHealthHandler(handlers.HealthOptions{Stage: "test", Version: "2.0.0"}).Handle(ctx, events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "not configured", body.Database)
	assert.Equal(t, "memory", body.Cache)
	assert.Equal(t, "rule-based", body.Reports)
	assert.Equal(t, "test", body.Stage)
	assert.Equal(t, "2.0.0", body.Version)

	h := handlers.NewHealthHandler(handlers.HealthOptions{
		Database:     fakePinger{},
		Cache:        fakePinger{err: errors.New("connection refused")},
		AIConfigured: true,
	})
	check, status := h.Check(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", check.Status)
	assert.Equal(t, "connected", check.Database)
	assert.Equal(t, "disconnected", check.Cache)
	assert.Equal(t, "ai", check.Reports)
}

type fakeFinder struct {
	lead *models.Lead
	err  error
}

func (f *fakeFinder) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	return f.lead, f.err
}

type fakeLinker struct {
	key    string
	expiry int
}

func (f *fakeLinker) GeneratePresignedDownloadURL(ctx context.Context, key string, expiryMinutes int) (*s3service.PresignedURLResult, error) {
	f.key, f.expiry = key, expiryMinutes
	return &s3service.PresignedURLResult{URL: "https://bucket/" + key, Key: key}, nil
}

func TestReportLinkHandler(t *testing.T) {
	const id = "3f2b8c1e-6d4a-4f7e-9a55-0c1d2e3f4a5b"
	generated := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	finder := &fakeFinder{lead: &models.Lead{
		ID:        id,
		Report:    &models.ReportData{GeneratedAt: generated},
		ReportURL: "https://old-link",
	}}
	linker := &fakeLinker{}
	h := handlers.NewReportLinkHandler(finder, linker)
	ctx := context.Background()

	resp, err := h.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, QueryStringParameters: map[string]string{"leadId": id}})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	assert.Equal(t, "reports/2026/05/04/"+id+"/report.md", linker.key)
	assert.Equal(t, handlers.ReportLinkExpiryMinutes, linker.expiry)

	resp, err = h.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = h.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, QueryStringParameters: map[string]string{"leadId": "42"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	finder.lead, finder.err = nil, models.ErrLeadNotFound
	_, err = h.Link(ctx, id)
	assert.ErrorIs(t, err, models.ErrLeadNotFound)

	finder.lead, finder.err = &models.Lead{ID: id}, nil
	resp, err = h.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, PathParameters: map[string]string{"id": id}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = handlers.NewReportLinkHandler(nil, nil).Handle(ctx, events.APIGatewayProxyRequest{QueryStringParameters: map[string]string{"leadId": id}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

const prospectCSV = `annual_income,employment_type,timeline,target_price,down_payment_percent,credit_score,zip
85000,w2,3-6,350000,10,680-739,78701
60000,w2,someday,250000,5,620-679,78702
`

type fakeStore struct {
	files   map[string][]byte
	uploads map[string][]byte
}

func (f *fakeStore) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.files[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return data, nil
}

func (f *fakeStore) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = data
	return nil
}

func TestBatchHandler_Process(t *testing.T) {
	h := handlers.NewBatchHandler(engine.New(engine.Options{}), nil, nil, "")

	result, err := h.Process(context.Background(), strings.NewReader(prospectCSV), "batch-1", models.LocaleSpanish)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Rows, 2)

	assert.Equal(t, 2, result.Rows[0].Line)
	require.NotNil(t, result.Rows[0].Report)
	assert.Equal(t, models.LocaleSpanish, result.Rows[0].Report.Locale)
	assert.NotEmpty(t, result.Rows[0].LeadType)

	assert.Equal(t, 3, result.Rows[1].Line)
	assert.Nil(t, result.Rows[1].Report)
	assert.Contains(t, result.Rows[1].Errors, "timeline")
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "line 3:"))

	_, err = h.Process(context.Background(), strings.NewReader("name,email\nAna,ana@example.com\n"), "batch-2", "")
	assert.Error(t, err)
}

func TestBatchHandler_HandleS3Event(t *testing.T) {
	store := &fakeStore{files: map[string][]byte{"uploads/prospect list.csv": []byte(prospectCSV)}}
	h := handlers.NewBatchHandler(engine.New(engine.Options{}), nil, store, models.LocaleEnglish)

	event := events.S3Event{Records: []events.S3EventRecord{{
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: "leads-bucket"},
			Object: events.S3Object{Key: "uploads/prospect+list.csv"},
		},
	}}}

	summary, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Generated)
	assert.Nil(t, summary.Rows)
	assert.True(t, strings.HasPrefix(summary.ResultKey, "batches/"))

	stored, ok := store.uploads[summary.ResultKey]
	require.True(t, ok)
	var full handlers.BatchResult
	require.NoError(t, json.Unmarshal(stored, &full))
	assert.Len(t, full.Rows, 2)

	empty, err := h.Handle(context.Background(), events.S3Event{})
	require.NoError(t, err)
	assert.Equal(t, "No records to process", empty.Message)
}

func TestRequestLocale(t *testing.T) {
	assert.Equal(t, models.LocaleSpanish, handlers.RequestLocale("es", "en-US"))
	assert.Equal(t, models.LocaleSpanish, handlers.RequestLocale("", "es-419,en;q=0.5"))
	assert.Equal(t, models.LocaleEnglish, handlers.RequestLocale("", ""))
	assert.Equal(t, models.LocaleEnglish, handlers.RequestLocale("fr", "es"))
}
