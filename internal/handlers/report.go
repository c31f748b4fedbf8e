package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/engine"
	"homebuyer-lead-engine/internal/services/wizard"
	"homebuyer-lead-engine/internal/validation"
)

// ReportRequest is the body of a report request.
type ReportRequest struct {
	Answers         models.WizardDraft `json:"answers"`
	Locale          string             `json:"locale,omitempty"`
	IncludeInsights *bool              `json:"includeInsights,omitempty"`
}

// ReportResponse is the generated report plus the numbers behind it.
type ReportResponse struct {
	Report     *models.ReportData         `json:"report"`
	Evaluation *engine.Evaluation         `json:"evaluation"`
	Insights   *models.CensusAreaInsights `json:"insights,omitempty"`
}

// ReportHandler turns wizard answers into a report.
type ReportHandler struct {
	engine ReportGenerator
	census InsightsProvider
}

// NewReportHandler creates a report handler. census may be nil.
func NewReportHandler(gen ReportGenerator, census InsightsProvider) *ReportHandler {
	return &ReportHandler{engine: gen, census: census}
}

// Generate validates body, finalizes the answers and runs the engine.
func (h *ReportHandler) Generate(ctx context.Context, body []byte, acceptLanguage string) (*ReportResponse, error) {
	if err := validation.ReportRequest.Validate(body); err != nil {
		return nil, err
	}

	var req ReportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", validation.ErrMalformedBody, err)
	}

	answers, err := wizard.Finalize(&req.Answers)
	if err != nil {
		return nil, err
	}

	var insights *models.CensusAreaInsights
	if req.IncludeInsights == nil || *req.IncludeInsights {
		insights = lookupInsights(ctx, h.census, answers.Location)
	}

	locale := RequestLocale(req.Locale, acceptLanguage)
	report, eval := h.engine.GenerateReport(ctx, engine.ReportInput{
		Answers:  answers,
		Locale:   locale,
		Insights: insights,
	})

	return &ReportResponse{Report: report, Evaluation: eval, Insights: insights}, nil
}

// Handle processes API Gateway report requests.
func (h *ReportHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("POST,OPTIONS")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers)
	}

	body, err := requestBody(request)
	if err != nil {
		return failureResponse(headers, err)
	}

	resp, err := h.Generate(ctx, body, header(request.Headers, "Accept-Language"))
	if err != nil {
		return failureResponse(headers, err)
	}
	return jsonResponse(headers, http.StatusOK, resp)
}
