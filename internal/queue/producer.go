package queue

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publishes notification events for downstream push delivery.
// Push itself is someone else's job; we only hand the event off.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(broker, topic string) *Producer {
	if broker == "" {
		return nil
	}

	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// PublishMessage is nil-safe: without a broker configured the event is
// skipped so a missing Kafka can never fail the write path that produced it.
func (p *Producer) PublishMessage(key, value []byte) error {
	if p == nil || p.writer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() {
	if p == nil || p.writer == nil {
		return
	}
	if err := p.writer.Close(); err != nil {
		log.Printf("kafka producer close: %v", err)
	}
}
