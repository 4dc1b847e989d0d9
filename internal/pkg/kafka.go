package pkg

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SpotProducer 把审核通过的地点投递到 Spot Catalog 所在的 topic
type SpotProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewSpotProducer(cfg KafkaConfig) (*SpotProducer, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka brokers and topic are required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &SpotProducer{writer: w, topic: cfg.Topic}, nil
}

func (p *SpotProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Publish 以 submission id 作为 key，同一地点的重试落在同一分区
func (p *SpotProducer) Publish(ctx context.Context, submissionID uint64, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(MakeKeyFromID(submissionID)),
		Value: payload,
	})
}

func MakeKeyFromID(id uint64) string {
	return fmt.Sprintf("%d", id)
}
