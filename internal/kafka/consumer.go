package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-passes/internal/logger"
	"ms-passes/internal/models"
)

// AckConsumer reads collection creation acknowledgments published by the
// provisioner and feeds them to the factory.
type AckConsumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

func NewAckConsumer(brokers []string, topic, groupID string, log *logger.Logger) *AckConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &AckConsumer{reader: reader, log: log}
}

// Start consumes acks until ctx is cancelled. A payload that does not
// decode is logged and skipped; the pending entry it was meant to resolve
// stays pending. Handler errors (stale ack, unknown token) are logged and
// the message is not retried.
func (c *AckConsumer) Start(ctx context.Context, handler func(ack models.CreationAck) error) {
	c.log.Info("KAFKA", "Creation ack consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("KAFKA", fmt.Sprintf("Error reading ack message: %v", err))
			continue
		}

		var ack models.CreationAck
		if err := json.Unmarshal(msg.Value, &ack); err != nil {
			c.log.Error("KAFKA", fmt.Sprintf("Malformed creation ack (key=%s): %v", string(msg.Key), err))
			continue
		}

		c.log.Info("KAFKA", fmt.Sprintf("Received creation ack: token=%s address=%s", ack.CorrelationToken, ack.Address))
		if err := handler(ack); err != nil {
			c.log.Error("KAFKA", fmt.Sprintf("Failed to apply creation ack %s: %v", ack.CorrelationToken, err))
		}
	}
}

func (c *AckConsumer) Close() error {
	return c.reader.Close()
}
