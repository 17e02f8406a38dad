package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"

	"ms-passes/internal/logger"
)

// EnsureTopicsExist creates the creation request/ack topics if the broker
// does not have them yet.
func EnsureTopicsExist(brokers []string, topics []string, log *logger.Logger) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", controller.Host)
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		err = controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		if err != nil {
			if err.Error() == "kafka server: topic already exists" {
				log.Info("KAFKA", "Topic "+topic+" already exists")
				continue
			}
			log.Error("KAFKA", "Error creating topic "+topic+": "+err.Error())
		} else {
			log.Info("KAFKA", "Created topic: "+topic)
		}
	}

	// Give the broker a moment before producers attach.
	time.Sleep(1 * time.Second)
	return nil
}
