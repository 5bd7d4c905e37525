// Package publisher pushes finished chat exchanges onto Kafka for the
// memory service to consume.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/logger"
)

// ExchangePublisher writes ChatExchange messages to the exchange topic.
// Keying by user id keeps one user's exchanges in order on a partition.
type ExchangePublisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewExchangePublisher creates a publisher for the given brokers and topic.
func NewExchangePublisher(brokers []string, topic string, log *logger.Logger) (*ExchangePublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no Kafka brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("no Kafka topic configured")
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &ExchangePublisher{writer: writer, log: log}, nil
}

// Publish sends one exchange.
func (p *ExchangePublisher) Publish(ctx context.Context, exchange models.ChatExchange) error {
	msgBytes, err := json.Marshal(exchange)
	if err != nil {
		p.log.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to marshal exchange")
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(exchange.UserID),
		Value: msgBytes,
	})
	if err != nil {
		p.log.WithError(models.ErrorInfo{Message: err.Error()}).
			WithPayload(map[string]interface{}{"topic": p.writer.Topic}).
			Error("failed to write exchange to Kafka")
		return err
	}
	return nil
}

// Close closes the underlying writer.
func (p *ExchangePublisher) Close() error {
	return p.writer.Close()
}
