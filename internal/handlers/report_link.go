package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"homebuyer-lead-engine/internal/models"
	s3service "homebuyer-lead-engine/internal/services/s3"
	"homebuyer-lead-engine/internal/utils"
)

// ReportLinkExpiryMinutes is how long a refreshed report link stays valid.
const ReportLinkExpiryMinutes = 60

var (
	errMissingLeadID = errors.New("missing lead id")
	errNoReport      = errors.New("lead has no archived report")
	errUnavailable   = errors.New("report archive not configured")
)

// LeadFinder loads a stored lead.
type LeadFinder interface {
	GetByID(ctx context.Context, id string) (*models.Lead, error)
}

// ReportLinker presigns archived report objects.
type ReportLinker interface {
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// ReportLinkHandler issues fresh download links for archived reports. The
// link sent at submission time expires; this replaces it.
type ReportLinkHandler struct {
	leads   LeadFinder
	reports ReportLinker
}

// NewReportLinkHandler creates a report link handler.
func NewReportLinkHandler(finder LeadFinder, linker ReportLinker) *ReportLinkHandler {
	return &ReportLinkHandler{leads: finder, reports: linker}
}

// Link presigns the archived markdown report of leadID.
func (h *ReportLinkHandler) Link(ctx context.Context, leadID string) (*s3service.PresignedURLResult, error) {
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return nil, errMissingLeadID
	}
	if _, err := uuid.Parse(leadID); err != nil {
		return nil, models.ErrLeadNotFound
	}
	if h.leads == nil || h.reports == nil {
		return nil, errUnavailable
	}

	lead, err := h.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Report == nil || lead.ReportURL == "" {
		return nil, errNoReport
	}

	generatedAt := lead.Report.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = lead.CreatedAt
	}

	link, err := h.reports.GeneratePresignedDownloadURL(ctx, s3service.ReportMarkdownKey(lead.ID, generatedAt), ReportLinkExpiryMinutes)
	if err != nil {
		return nil, err
	}

	utils.GetLogger().Info("Generated report link",
		utils.String("leadID", lead.ID),
		utils.String("key", link.Key))

	return link, nil
}

// Handle processes API Gateway requests for report links.
func (h *ReportLinkHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET,OPTIONS")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers)
	}

	leadID := request.QueryStringParameters["leadId"]
	if leadID == "" {
		leadID = request.PathParameters["id"]
	}

	link, err := h.Link(ctx, leadID)
	if err != nil {
		return failureResponse(headers, err)
	}
	return jsonResponse(headers, http.StatusOK, link)
}
