package kafka

import (
	"context"
	"sync"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/zynerotech/ioteventarchive/transport"
)

// KafkaEventPublisher реализует transport.EventPublisher поверх Kafka.
// The envelope's EventBusName is used as the topic.
type KafkaEventPublisher struct {
	producer transport.Producer
	metrics  transport.Metrics
	mu       sync.RWMutex
}

// NewKafkaEventPublisher создает новый экземпляр KafkaEventPublisher.
func NewKafkaEventPublisher(p transport.Producer) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: p,
		metrics:  &transport.NoOpMetrics{},
	}
}

// SetMetrics устанавливает интерфейс метрик
func (kep *KafkaEventPublisher) SetMetrics(metrics transport.Metrics) {
	kep.mu.Lock()
	defer kep.mu.Unlock()
	kep.metrics = metrics
	kep.metrics.SetActiveProducers(1)
}

// Publish сериализует конверт и отправляет его в Kafka. Сгенерированный ID
// события используется как ключ сообщения и возвращается вызывающему.
func (kep *KafkaEventPublisher) Publish(ctx context.Context, envelope transport.Envelope) (string, error) {
	start := time.Now()

	kep.mu.RLock()
	metrics := kep.metrics
	kep.mu.RUnlock()

	topic := envelope.EventBusName
	defer func() {
		metrics.RecordPublishTime(topic, time.Since(start))
	}()

	value, err := json.Marshal(envelope)
	if err != nil {
		metrics.IncMessagesSent(topic, "error")
		return "", transport.NewSerializationError(err)
	}

	eventID := uuid.NewString()
	if err := kep.producer.Publish(ctx, topic, eventID, value); err != nil {
		metrics.IncMessagesSent(topic, "error")
		return "", transport.NewPublishError(topic, err)
	}

	metrics.IncMessagesSent(topic, "success")
	return eventID, nil
}

// Close закрывает producer
func (kep *KafkaEventPublisher) Close() error {
	kep.mu.RLock()
	metrics := kep.metrics
	kep.mu.RUnlock()

	metrics.SetActiveProducers(0)
	return kep.producer.Close()
}
