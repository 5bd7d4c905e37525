// Package consumer drains the chat exchange topic and turns exchanges into
// memories. Processing is best-effort: a failed exchange is logged and
// committed rather than retried forever, because memory persistence must
// never back up behind a poison message.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"EchoChat/backend/go/internal/database/kafka"
	"EchoChat/backend/go/internal/memory/service"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/pkg/logger"
)

// KafkaConsumer reads ChatExchange messages and writes memories.
type KafkaConsumer struct {
	kafkaClient   *kafka.KafkaClient
	memoryService *service.Service
	log           *logger.Logger
	// writeTimeout bounds the embed-and-persist work for one exchange.
	writeTimeout time.Duration
}

// NewKafkaConsumer creates a consumer. writeTimeout bounds the processing of
// a single exchange.
func NewKafkaConsumer(kafkaClient *kafka.KafkaClient, memoryService *service.Service, log *logger.Logger, writeTimeout time.Duration) *KafkaConsumer {
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	return &KafkaConsumer{
		kafkaClient:   kafkaClient,
		memoryService: memoryService,
		log:           log,
		writeTimeout:  writeTimeout,
	}
}

// Start consumes in a background goroutine until ctx is cancelled.
func (c *KafkaConsumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.kafkaClient.Reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				c.log.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to fetch message")
				continue
			}

			c.process(ctx, msg.Value)

			if err := c.kafkaClient.Reader.CommitMessages(ctx, msg); err != nil {
				c.log.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to commit message")
			}
		}
	}()
}

// process handles one exchange. All failures are logged and swallowed.
func (c *KafkaConsumer) process(ctx context.Context, payload []byte) {
	var exchange models.ChatExchange
	if err := json.Unmarshal(payload, &exchange); err != nil {
		c.log.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to unmarshal exchange")
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	memory, err := c.memoryService.RememberExchange(writeCtx, exchange)
	if err != nil {
		c.log.WithError(models.ErrorInfo{Message: err.Error()}).
			WithPayload(map[string]interface{}{"user_id": exchange.UserID}).
			Error("failed to persist exchange memory")
		return
	}

	c.log.WithPayload(map[string]interface{}{
		"memory_id":  memory.ID,
		"user_id":    memory.UserID,
		"importance": memory.Importance,
	}).Debug("exchange persisted as memory")
}
