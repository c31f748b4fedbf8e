// Package events publishes lead lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"homebuyer-lead-engine/internal/models"
)

// Event types.
const (
	TypeLeadSubmitted = "lead.submitted"
	TypeLeadFailed    = "lead.failed"
)

// LeadEvent is the message value. It carries no contact details.
type LeadEvent struct {
	Type       string            `json:"type"`
	LeadID     string            `json:"leadId"`
	LeadType   models.LeadType   `json:"leadType"`
	Status     models.LeadStatus `json:"status"`
	Channel    string            `json:"channel,omitempty"`
	ExternalID string            `json:"externalId,omitempty"`
	Locale     models.Locale     `json:"locale"`
	ReportID   string            `json:"reportId,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// NewLeadEvent builds the event for lead's current status.
func NewLeadEvent(lead *models.Lead, at time.Time) LeadEvent {
	eventType := TypeLeadSubmitted
	if lead.Status != models.LeadStatusSubmitted {
		eventType = TypeLeadFailed
	}
	ev := LeadEvent{
		Type:       eventType,
		LeadID:     lead.ID,
		LeadType:   lead.LeadType,
		Status:     lead.Status,
		Channel:    lead.Channel,
		ExternalID: lead.ExternalID,
		Locale:     lead.Locale,
		OccurredAt: at.UTC(),
	}
	if lead.Report != nil {
		ev.ReportID = lead.Report.ReportID
	}
	return ev
}

// MessageWriter is the subset of kafka-go's Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes lead events to a single topic.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return NewPublisherWithWriter(&kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}, topic)
}

// NewPublisherWithWriter creates a publisher around an existing writer.
func NewPublisherWithWriter(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, now: time.Now}
}

// PublishLead sends the lead's event keyed by lead ID.
func (p *KafkaPublisher) PublishLead(ctx context.Context, lead *models.Lead) error {
	ev := NewLeadEvent(lead, p.now())
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Type, err)
	}

	msg := kafkago.Message{
		Key:   []byte(lead.ID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
