// Package events publishes reviewer corrections to Kafka for the offline
// retraining job.
package events

import (
	"context"
	"strconv"
	"time"

	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/models"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const CorrectionEventType = "complaint.corrected"

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Labels struct {
	Category models.Category `json:"category"`
	Priority models.Priority `json:"priority"`
}

// CorrectionEvent carries both the raw and the normalized text so the
// retraining job never has to re-implement normalization.
type CorrectionEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	FeedbackID     int64     `json:"feedback_id"`
	ComplaintID    int64     `json:"complaint_id"`
	ComplaintText  string    `json:"complaint_text"`
	NormalizedText string    `json:"normalized_text"`
	Predicted      Labels    `json:"predicted"`
	Correct        Labels    `json:"correct"`
	IsCorrect      bool      `json:"is_correct"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

func NewCorrectionEvent(f *models.Feedback, normalized string) CorrectionEvent {
	return CorrectionEvent{
		EventID:        uuid.New().String(),
		Type:           CorrectionEventType,
		FeedbackID:     f.ID,
		ComplaintID:    f.ComplaintID,
		ComplaintText:  f.ComplaintText,
		NormalizedText: normalized,
		Predicted:      Labels{Category: f.PredictedCategory, Priority: f.PredictedPriority},
		Correct:        Labels{Category: f.CorrectCategory, Priority: f.CorrectPriority},
		IsCorrect:      f.IsCorrect,
		SubmittedAt:    f.SubmittedAt,
	}
}

type CorrectionPublisher struct {
	writer MessageWriter
	topic  string
	logger logger.Logger
}

// NewCorrectionPublisher writes to topic, keyed by complaint id so every
// correction for one complaint lands on the same partition.
func NewCorrectionPublisher(brokers []string, topic string, log logger.Logger) *CorrectionPublisher {
	return NewCorrectionPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}, topic, log)
}

func NewCorrectionPublisherWithWriter(w MessageWriter, topic string, log logger.Logger) *CorrectionPublisher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CorrectionPublisher{
		writer: w,
		topic:  topic,
		logger: log.WithFields(map[string]interface{}{"component": "events", "topic": topic}),
	}
}

func (p *CorrectionPublisher) Publish(ctx context.Context, event CorrectionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.NewEventPublishFailedError(p.topic, err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ComplaintID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.NewEventPublishFailedError(p.topic, err)
	}

	p.logger.Debug("Correction event published", map[string]interface{}{
		"eventId":     event.EventID,
		"complaintId": event.ComplaintID,
	})
	return nil
}

func (p *CorrectionPublisher) Close() error {
	return p.writer.Close()
}
