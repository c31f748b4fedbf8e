package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db           Pinger
	cache        Pinger
	aiConfigured bool
	stage        string
	version      string
	now          func() time.Time
}

// HealthOptions configures a HealthHandler. Nil checks are reported as
// not configured.
type HealthOptions struct {
	Database     Pinger
	Cache        Pinger
	AIConfigured bool
	Stage        string
	Version      string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(opts HealthOptions) *HealthHandler {
	h := &HealthHandler{
		db:           opts.Database,
		cache:        opts.Cache,
		aiConfigured: opts.AIConfigured,
		stage:        opts.Stage,
		version:      opts.Version,
		now:          time.Now,
	}
	if h.stage == "" {
		h.stage = getEnvOrDefault("STAGE", "unknown")
	}
	if h.version == "" {
		h.version = getEnvOrDefault("SERVICE_VERSION", "1.0.0")
	}
	return h
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Database  string `json:"database,omitempty"`
	Cache     string `json:"cache,omitempty"`
	Reports   string `json:"reports,omitempty"`
}

// Check runs every dependency check and returns the response with its
// HTTP status. A broken dependency degrades the service; a missing one
// does not.
func (h *HealthHandler) Check(ctx context.Context) (HealthResponse, int) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Service:   "homebuyer-lead-engine",
		Version:   h.version,
		Stage:     h.stage,
		Database:  "not configured",
		Cache:     "memory",
		Reports:   "rule-based",
	}

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
		} else {
			response.Database = "connected"
		}
	}

	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			response.Cache = "disconnected"
			response.Status = "degraded"
		} else {
			response.Cache = "connected"
		}
	}

	if h.aiConfigured {
		response.Reports = "ai"
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return response, statusCode
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin": "*",
		"Content-Type":                "application/json",
	}

	response, statusCode := h.Check(ctx)
	return jsonResponse(headers, statusCode, response)
}
