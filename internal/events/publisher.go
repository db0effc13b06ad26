// Package events publishes assessment outcomes for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/domain"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
)

// DefaultAssessmentsTopic is used when no topic is configured
const DefaultAssessmentsTopic = "fintech.withdrawals.risk_assessed"

// Publisher delivers completed assessments
type Publisher interface {
	PublishAssessment(ctx context.Context, event *domain.AssessmentCompletedEvent) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic, keyed by user id
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher dials the configured brokers
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	sc := sarama.NewConfig()
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, cfg.AssessmentsTopic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultAssessmentsTopic
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log.Named("kafka_publisher"),
	}
}

// PublishAssessment sends the event synchronously
func (p *KafkaPublisher) PublishAssessment(ctx context.Context, event *domain.AssessmentCompletedEvent) error {
	if event == nil || event.Result == nil {
		return fmt.Errorf("publish assessment: %w", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Result.UserID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}

	p.log.Debug("assessment event published",
		logger.StringField("event_id", event.EventID),
		logger.StringField("topic", p.topic),
		logger.IntField("partition", int(partition)),
		logger.Int64Field("offset", offset),
	)
	return nil
}

// Close flushes and closes the producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

// PublishAssessment discards the event
func (NopPublisher) PublishAssessment(context.Context, *domain.AssessmentCompletedEvent) error {
	return nil
}

// Close is a no-op
func (NopPublisher) Close() error { return nil }

// NewAssessmentCompleted builds the event for a finished assessment
func NewAssessmentCompleted(in *domain.WithdrawalRiskInput, result *domain.RiskAssessmentResult) *domain.AssessmentCompletedEvent {
	return &domain.AssessmentCompletedEvent{
		EventID:   uuid.NewString(),
		EventType: domain.EventTypeAssessmentCompleted,
		Timestamp: result.AssessedAt,
		ChainID:   in.ChainID,
		Amount:    in.Amount,
		Result:    result,
	}
}
