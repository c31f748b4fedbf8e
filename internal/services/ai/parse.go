package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/utils"
)

// response is the JSON document the model is instructed to return.
type response struct {
	ReportContent  string           `json:"reportContent"`
	EstimatedPrice models.RawNumber `json:"estimatedPrice"`
	MaxAffordable  models.RawNumber `json:"maxAffordable"`
	MonthlyPayment models.RawNumber `json:"monthlyPayment"`
}

// ParseResponse decodes a model response. Strict JSON is tried first, then a
// repaired document, then Hjson as the most lenient reading.
func ParseResponse(raw string) (*Result, error) {
	body := stripFences(raw)
	if body == "" {
		return nil, ErrEmptyResponse
	}

	resp, err := decode(body)
	if err != nil {
		return nil, err
	}

	markdown := CleanMarkdown(resp.ReportContent)
	if markdown == "" || !ValidateMarkdown(markdown) {
		return nil, ErrEmptyReport
	}

	result := &Result{Markdown: markdown}
	result.EstimatedPrice = override(resp.EstimatedPrice)
	result.MaxAffordable = override(resp.MaxAffordable)
	result.MonthlyPayment = override(resp.MonthlyPayment)
	return result, nil
}

func decode(body string) (*response, error) {
	var resp response
	if err := json.Unmarshal([]byte(body), &resp); err == nil {
		return &resp, nil
	}

	if repaired, err := jsonrepair.RepairJSON(body); err == nil {
		resp = response{}
		if err := json.Unmarshal([]byte(repaired), &resp); err == nil && resp.ReportContent != "" {
			return &resp, nil
		}
	}

	var loose map[string]interface{}
	if err := hjson.Unmarshal([]byte(body), &loose); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	normalized, err := json.Marshal(loose)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	resp = response{}
	if err := json.Unmarshal(normalized, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}

func override(raw models.RawNumber) float64 {
	v, ok := utils.ParseNumeric(raw)
	if !ok || v <= 0 {
		return 0
	}
	return v
}

// stripFences removes a ```json wrapper around the whole document.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// CleanMarkdown strips an outer markdown code block and surrounding space.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown reports whether input parses to at least one block.
func ValidateMarkdown(input string) bool {
	doc := goldmark.DefaultParser().Parse(text.NewReader([]byte(input)))
	return doc != nil && doc.ChildCount() > 0
}
