// Package handlers provides the API Gateway handlers for the homebuyer lead
// engine. The transport-neutral methods (Generate, Submit, Check, Link,
// Process) are shared with the local HTTP server.
package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/census"
	"homebuyer-lead-engine/internal/services/engine"
	"homebuyer-lead-engine/internal/utils"
	"homebuyer-lead-engine/internal/validation"
)

// ReportGenerator runs the lead pipeline. *engine.Engine satisfies it.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, in engine.ReportInput) (*models.ReportData, *engine.Evaluation)
}

// InsightsProvider looks up census data for a location.
type InsightsProvider interface {
	Lookup(ctx context.Context, loc models.Location) (*models.CensusAreaInsights, error)
}

// Pinger is anything with a health check.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// corsHeaders returns the CORS headers for an endpoint.
func corsHeaders(methods string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization,Accept-Language",
		"Access-Control-Allow-Methods": methods,
		"Content-Type":                 "application/json",
	}
}

// jsonResponse marshals body into an API Gateway response.
func jsonResponse(headers map[string]string, statusCode int, body interface{}) (events.APIGatewayProxyResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return errorResponse(headers, http.StatusInternalServerError, "Failed to encode response")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(data),
	}, nil
}

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(ErrorBody{
		Error:   http.StatusText(statusCode),
		Message: message,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// ErrorStatus maps a handler error to its HTTP status and body.
func ErrorStatus(err error) (int, ErrorBody) {
	var verrs models.ValidationErrors
	var fe *models.FieldError

	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity, ErrorBody{
			Error:   http.StatusText(http.StatusUnprocessableEntity),
			Message: "Please correct the highlighted fields",
			Fields:  verrs.Fields(),
		}
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity, ErrorBody{
			Error:   http.StatusText(http.StatusUnprocessableEntity),
			Message: "Please correct the highlighted fields",
			Fields:  map[string]string{fe.Field: fe.Message},
		}
	case errors.Is(err, validation.ErrMalformedBody), errors.Is(err, models.ErrMissingAnswers):
		return http.StatusBadRequest, ErrorBody{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: "Invalid JSON in request body",
		}
	case errors.Is(err, errMissingLeadID):
		return http.StatusBadRequest, ErrorBody{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: "Missing required parameter: leadId",
		}
	case errors.Is(err, models.ErrLeadNotFound), errors.Is(err, errNoReport):
		return http.StatusNotFound, ErrorBody{
			Error:   http.StatusText(http.StatusNotFound),
			Message: err.Error(),
		}
	case errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable, ErrorBody{
			Error:   http.StatusText(http.StatusServiceUnavailable),
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, ErrorBody{
			Error:   http.StatusText(http.StatusInternalServerError),
			Message: "Internal error",
		}
	}
}

// failureResponse renders err with the status ErrorStatus picks.
func failureResponse(headers map[string]string, err error) (events.APIGatewayProxyResponse, error) {
	status, body := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		utils.GetLogger().Error("Request failed", utils.Int("status", status), utils.Error(err))
	}
	return jsonResponse(headers, status, body)
}

// preflight answers a CORS OPTIONS request.
func preflight(headers map[string]string) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
	}, nil
}

// requestBody returns the raw request body, decoding base64 payloads.
func requestBody(request events.APIGatewayProxyRequest) ([]byte, error) {
	if !request.IsBase64Encoded {
		return []byte(request.Body), nil
	}
	data, err := base64.StdEncoding.DecodeString(request.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", validation.ErrMalformedBody, err)
	}
	return data, nil
}

// header looks up a request header. API Gateway keeps the client's casing.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// RequestLocale prefers the locale in the body and falls back to the
// Accept-Language header.
func RequestLocale(bodyLocale, acceptLanguage string) models.Locale {
	if strings.TrimSpace(bodyLocale) != "" {
		return models.ParseLocale(bodyLocale)
	}
	return models.ParseLocale(acceptLanguage)
}

// lookupInsights fetches census data when possible. Insights are optional,
// so failures are logged and swallowed.
func lookupInsights(ctx context.Context, provider InsightsProvider, loc models.Location) *models.CensusAreaInsights {
	if provider == nil || loc.CacheKey() == "" {
		return nil
	}

	insights, err := provider.Lookup(ctx, loc)
	if err != nil {
		logger := utils.GetLogger()
		if errors.Is(err, census.ErrZipRequired) || errors.Is(err, census.ErrNoLocation) || errors.Is(err, census.ErrNotFound) {
			logger.Debug("No census insights", utils.String("location", loc.CacheKey()), utils.Error(err))
		} else {
			logger.Warn("Census lookup failed", utils.String("location", loc.CacheKey()), utils.Error(err))
		}
		return nil
	}
	return insights
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
