package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/engine"
	"homebuyer-lead-engine/internal/services/leads"
	"homebuyer-lead-engine/internal/services/wizard"
	"homebuyer-lead-engine/internal/validation"
)

// LeadSubmitter hands a lead to the CRM. *leads.Service satisfies it.
type LeadSubmitter interface {
	Submit(ctx context.Context, lead *models.Lead) (*leads.SubmissionResult, error)
}

// LeadRequest is the body of the final wizard step.
type LeadRequest struct {
	Contact models.ContactInfo `json:"contact"`
	Answers models.WizardDraft `json:"answers"`
	Locale  string             `json:"locale,omitempty"`
}

// LeadResponse is the outcome of a lead submission.
type LeadResponse struct {
	LeadID     string                  `json:"leadId"`
	Status     models.LeadStatus       `json:"status"`
	Submission *leads.SubmissionResult `json:"submission"`
	ReportURL  string                  `json:"reportUrl,omitempty"`
	Report     *models.ReportData      `json:"report"`
}

// LeadHandler generates the report for a finished wizard and submits the lead.
type LeadHandler struct {
	engine ReportGenerator
	census InsightsProvider
	leads  LeadSubmitter
}

// NewLeadHandler creates a lead handler. census may be nil.
func NewLeadHandler(gen ReportGenerator, census InsightsProvider, submitter LeadSubmitter) *LeadHandler {
	return &LeadHandler{engine: gen, census: census, leads: submitter}
}

// Submit validates the request, regenerates the report server-side and
// submits the lead. A failed CRM submission is not an error; it is reported
// in the response.
func (h *LeadHandler) Submit(ctx context.Context, body []byte, acceptLanguage string) (*LeadResponse, error) {
	if err := validation.LeadRequest.Validate(body); err != nil {
		return nil, err
	}

	var req LeadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", validation.ErrMalformedBody, err)
	}

	var errs models.ValidationErrors
	if err := models.ValidateContact(&req.Contact); err != nil {
		addPrefixed(&errs, "contact", err)
	}
	answers, err := wizard.Finalize(&req.Answers)
	if err != nil {
		addPrefixed(&errs, "answers", err)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	locale := RequestLocale(req.Locale, acceptLanguage)
	report, eval := h.engine.GenerateReport(ctx, engine.ReportInput{
		Answers:  answers,
		Locale:   locale,
		Insights: lookupInsights(ctx, h.census, answers.Location),
	})

	lead := &models.Lead{
		Contact:  req.Contact,
		Locale:   locale,
		Answers:  *answers,
		Report:   report,
		LeadType: eval.Profile.LeadType,
	}

	result, err := h.leads.Submit(ctx, lead)
	if err != nil {
		return nil, err
	}

	return &LeadResponse{
		LeadID:     lead.ID,
		Status:     lead.Status,
		Submission: result,
		ReportURL:  lead.ReportURL,
		Report:     report,
	}, nil
}

// Handle processes API Gateway lead submissions. A lead no channel
// accepted is answered with 502 and the per-channel errors.
func (h *LeadHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("POST,OPTIONS")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers)
	}

	body, err := requestBody(request)
	if err != nil {
		return failureResponse(headers, err)
	}

	resp, err := h.Submit(ctx, body, header(request.Headers, "Accept-Language"))
	if err != nil {
		return failureResponse(headers, err)
	}
	return jsonResponse(headers, resp.StatusCode(), resp)
}

// StatusCode is the HTTP status for the submission outcome.
func (r *LeadResponse) StatusCode() int {
	if r.Submission != nil && r.Submission.Success {
		return http.StatusCreated
	}
	return http.StatusBadGateway
}

// addPrefixed adds err to errs with field names nested under prefix.
func addPrefixed(errs *models.ValidationErrors, prefix string, err error) {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fe.Field = prefix + "." + fe.Field
			*errs = append(*errs, fe)
		}
		return
	}

	var fe *models.FieldError
	if errors.As(err, &fe) {
		*errs = append(*errs, models.FieldError{Field: prefix + "." + fe.Field, Code: fe.Code, Message: fe.Message})
		return
	}
	*errs = append(*errs, models.FieldError{Field: prefix, Code: models.CodeRequired, Message: err.Error()})
}
