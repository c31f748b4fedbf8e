// Package leads submits finished leads to the CRM and runs the follow-up
// side effects.
package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"homebuyer-lead-engine/internal/models"
)

// Channel names.
const (
	ChannelCRM     = "crm"
	ChannelWebhook = "webhook"
)

var ErrChannelNotConfigured = errors.New("submission channel not configured")

// Payload is the document posted to every channel.
type Payload struct {
	LeadID      string                `json:"leadId"`
	Contact     models.ContactInfo    `json:"contact"`
	Locale      models.Locale         `json:"locale"`
	LeadType    models.LeadType       `json:"leadType"`
	Answers     *models.WizardAnswers `json:"answers"`
	Report      *models.ReportData    `json:"report,omitempty"`
	ReportURL   string                `json:"reportUrl,omitempty"`
	Source      string                `json:"source"`
	SubmittedAt string                `json:"submittedAt"`
}

// Channel delivers a payload and returns the receiver's identifier for it.
type Channel interface {
	Name() string
	Submit(ctx context.Context, payload *Payload) (externalID string, err error)
}

// CRMChannel posts to the CRM's lead API with a bearer key.
type CRMChannel struct {
	url    string
	apiKey string
	client *http.Client
}

// NewCRMChannel creates a CRM channel.
func NewCRMChannel(url, apiKey string) *CRMChannel {
	return &CRMChannel{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *CRMChannel) Name() string { return ChannelCRM }

func (c *CRMChannel) Submit(ctx context.Context, payload *Payload) (string, error) {
	if c.url == "" {
		return "", ErrChannelNotConfigured
	}
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	result, err := postJSON(ctx, c.client, c.url, headers, payload)
	if err != nil {
		return "", err
	}
	return externalID(result, "id", "leadId", "lead_id"), nil
}

// WebhookChannel posts to a catch hook such as Zapier.
type WebhookChannel struct {
	url    string
	client *http.Client
}

// NewWebhookChannel creates a webhook channel.
func NewWebhookChannel(url string) *WebhookChannel {
	return &WebhookChannel{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *WebhookChannel) Name() string { return ChannelWebhook }

func (w *WebhookChannel) Submit(ctx context.Context, payload *Payload) (string, error) {
	if w.url == "" {
		return "", ErrChannelNotConfigured
	}
	result, err := postJSON(ctx, w.client, w.url, nil, payload)
	if err != nil {
		return "", err
	}
	return externalID(result, "request_id", "id"), nil
}

// postJSON sends payload and decodes a JSON object reply when there is one.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	// Not every receiver answers with JSON.
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil
	}
	return result, nil
}

func externalID(result map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := result[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
