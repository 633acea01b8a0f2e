package transport

import (
	"time"
)

// Metrics определяет интерфейс для сбора метрик транспорта
type Metrics interface {
	IncMessagesSent(destination string, status string) // status: success, error
	RecordPublishTime(destination string, duration time.Duration)
	SetActiveProducers(count int)
}

// NoOpMetrics реализация метрик, которая ничего не делает (для тестов/отключения)
type NoOpMetrics struct{}

func (m *NoOpMetrics) IncMessagesSent(destination string, status string)            {}
func (m *NoOpMetrics) RecordPublishTime(destination string, duration time.Duration) {}
func (m *NoOpMetrics) SetActiveProducers(count int)                                 {}
