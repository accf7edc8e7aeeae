package kafka

import (
	"time"

	"memberlink/internal/platform/kafka/producer"
)

// DefaultProducerConfig returns the audit sink defaults for the given brokers.
func DefaultProducerConfig(brokers string) producer.Config {
	return producer.Config{
		Brokers:         brokers,
		ClientID:        "memberlink",
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}
}
