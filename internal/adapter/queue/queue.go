package queue

import (
	"fmt"

	"go.uber.org/zap"
)

// MessageQueue is the broker-agnostic publish/subscribe surface. Subjects map
// to NATS subjects or RabbitMQ fanout exchanges depending on the driver.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// New selects a broker implementation by driver name.
func New(driver, url string, log *zap.Logger) (MessageQueue, error) {
	switch driver {
	case "nats":
		return NewNATSQueue(url, log)
	case "rabbitmq":
		return NewRabbitMQQueue(url, log)
	default:
		return nil, fmt.Errorf("unknown queue driver %q", driver)
	}
}
