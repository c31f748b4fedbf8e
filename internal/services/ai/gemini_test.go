package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/ai"
)

// newGeminiServer answers generateContent calls with text as the model output
// and records the decoded request body.
func newGeminiServer(t *testing.T, text string, captured *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/test-model:generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGenerator(t *testing.T, baseURL string) *ai.GeminiGenerator {
	t.Helper()
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	require.NoError(t, err)
	return ai.NewGeminiGeneratorWithClient(client, "test-model")
}

func geminiRequest() ai.Request {
	return ai.Request{
		Answers:  &models.WizardAnswers{AnnualIncome: 65000, EmploymentType: models.EmploymentW2},
		Metrics:  models.FinancialMetrics{DebtToIncome: models.DefinedDTI(0.11)},
		Locale:   models.LocaleSpanish,
		Fallback: "# Baseline",
	}
}

func TestGeminiGenerator_Generate(t *testing.T) {
	var body map[string]interface{}
	srv := newGeminiServer(t, `{"reportContent":"## Su plan\n\nObtenga la preaprobación.","estimatedPrice":"$320,000"}`, &body)
	gen := newTestGenerator(t, srv.URL)

	result, err := gen.Generate(context.Background(), geminiRequest())
	require.NoError(t, err)

	assert.Equal(t, "## Su plan\n\nObtenga la preaprobación.", result.Markdown)
	assert.Equal(t, 320000.0, result.EstimatedPrice)
	assert.Zero(t, result.MonthlyPayment)
	assert.Equal(t, "test-model", result.Model)
	assert.Equal(t, "gemini:test-model", gen.Name())

	generationConfig, ok := body["generationConfig"].(map[string]interface{})
	require.True(t, ok, "request carries a generation config")
	assert.Equal(t, "application/json", generationConfig["responseMimeType"])
	assert.NotNil(t, body["systemInstruction"])

	encoded, err := json.Marshal(body["contents"])
	require.NoError(t, err)
	assert.Contains(t, string(encoded), "# Baseline")
}

func TestGeminiGenerator_UnusableResponse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "no report content", text: `{"estimatedPrice": 250000}`, wantErr: ai.ErrEmptyReport},
		{name: "malformed", text: "not json at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]interface{}
			srv := newGeminiServer(t, tt.text, &body)

			result, err := newTestGenerator(t, srv.URL).Generate(context.Background(), geminiRequest())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Nil(t, result)
		})
	}
}

func TestGeminiGenerator_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	}))
	defer srv.Close()

	result, err := newTestGenerator(t, srv.URL).Generate(context.Background(), geminiRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini generation failed")
	assert.Nil(t, result)
}
