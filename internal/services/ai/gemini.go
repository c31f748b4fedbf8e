package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"homebuyer-lead-engine/internal/utils"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// GeminiGenerator writes reports with Google's Gemini models.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator. An empty apiKey returns
// ErrNotConfigured so callers can run rule-based only.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return NewGeminiGeneratorWithClient(client, model), nil
}

// NewGeminiGeneratorWithClient creates a generator over an existing client.
func NewGeminiGeneratorWithClient(client *genai.Client, model string) *GeminiGenerator {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{client: client, model: model}
}

// Name identifies the generator in logs.
func (g *GeminiGenerator) Name() string {
	return "gemini:" + g.model
}

// Generate asks the model for a report and parses its JSON answer.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.3)),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(req)), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	result, err := ParseResponse(resp.Text())
	if err != nil {
		utils.GetLogger().Warn("Unusable Gemini response",
			utils.String("model", g.model),
			utils.Error(err),
		)
		return nil, err
	}
	result.Model = g.model
	return result, nil
}
