package leads

import (
	"context"

	"homebuyer-lead-engine/internal/metrics"
	"homebuyer-lead-engine/internal/utils"
)

// SubmissionResult reports which channel took the lead, or why none did.
type SubmissionResult struct {
	Success    bool              `json:"success"`
	Channel    string            `json:"channel,omitempty"`
	ExternalID string            `json:"externalId,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// Submitter tries channels in order until one accepts the payload.
type Submitter struct {
	channels []Channel
}

// NewSubmitter creates a submitter. Nil channels are skipped.
func NewSubmitter(channels ...Channel) *Submitter {
	s := &Submitter{}
	for _, c := range channels {
		if c != nil {
			s.channels = append(s.channels, c)
		}
	}
	return s
}

// Submit never returns an error; failures are reported per channel.
func (s *Submitter) Submit(ctx context.Context, payload *Payload) SubmissionResult {
	logger := utils.GetLogger()
	result := SubmissionResult{Errors: map[string]string{}}

	if len(s.channels) == 0 {
		result.Errors["submitter"] = ErrChannelNotConfigured.Error()
		return result
	}

	for _, ch := range s.channels {
		id, err := ch.Submit(ctx, payload)
		if err != nil {
			metrics.LeadSubmissions.WithLabelValues(ch.Name(), "failed").Inc()
			logger.Warn("Lead submission channel failed",
				utils.String("channel", ch.Name()),
				utils.String("leadID", payload.LeadID),
				utils.Error(err))
			result.Errors[ch.Name()] = err.Error()
			continue
		}

		metrics.LeadSubmissions.WithLabelValues(ch.Name(), "success").Inc()
		logger.Info("Lead submitted",
			utils.String("channel", ch.Name()),
			utils.String("leadID", payload.LeadID),
			utils.String("externalID", id))
		result.Success = true
		result.Channel = ch.Name()
		result.ExternalID = id
		if len(result.Errors) == 0 {
			result.Errors = nil
		}
		return result
	}

	return result
}
