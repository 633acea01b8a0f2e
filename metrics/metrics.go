// Package metrics provides the Prometheus implementation of transport.Metrics
// used by every publisher backend. Metric names are derived from the service
// name:
//   - events_published_total              {destination, status}
//   - event_publish_duration_seconds      {destination}
//   - active_publishers                   no labels
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	platformlogger "github.com/zynerotech/ioteventarchive/logger"
)

// Config представляет конфигурацию метрик
type Config struct {
	Enabled     bool   `mapstructure:"enabled"`
	Path        string `mapstructure:"path"`
	Port        int    `mapstructure:"port"`
	ServiceName string `mapstructure:"service_name"`
}

// Metrics представляет собой менеджер метрик публикации
type Metrics struct {
	config   Config
	registry *prometheus.Registry
	server   *http.Server

	eventsPublished  *prometheus.CounterVec
	publishDuration  *prometheus.HistogramVec
	activePublishers prometheus.Gauge
}

// New создает менеджер метрик на собственном реестре. HTTP endpoint
// запускается только при cfg.Enabled; коллекторы регистрируются всегда.
func New(cfg Config) (*Metrics, error) {
	name := metricPrefix(cfg.ServiceName)
	m := &Metrics{
		config:   cfg,
		registry: prometheus.NewRegistry(),
	}

	m.eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name + "_events_published_total",
			Help: "Total number of envelopes sent to the destination",
		},
		// status label has values: success, error
		[]string{"destination", "status"},
	)

	m.publishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name + "_event_publish_duration_seconds",
			Help:    "Time spent in the outbound publish call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"destination"},
	)

	m.activePublishers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name + "_active_publishers",
		Help: "Number of open publisher connections",
	})

	for _, c := range []prometheus.Collector{m.eventsPublished, m.publishDuration, m.activePublishers} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	if !cfg.Enabled {
		return m, nil
	}

	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	m.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		platformlogger.Info().Msgf("Starting metrics server on %s", m.server.Addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			platformlogger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	return m, nil
}

// Registry возвращает реестр с коллекторами публикации
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Stop останавливает HTTP-сервер метрик
func (m *Metrics) Stop() error {
	if m.server == nil {
		return nil
	}
	return m.server.Close()
}

func (m *Metrics) IncMessagesSent(destination string, status string) {
	m.eventsPublished.WithLabelValues(destination, status).Inc()
}

func (m *Metrics) RecordPublishTime(destination string, duration time.Duration) {
	m.publishDuration.WithLabelValues(destination).Observe(duration.Seconds())
}

func (m *Metrics) SetActiveProducers(count int) {
	m.activePublishers.Set(float64(count))
}

func metricPrefix(service string) string {
	if service == "" {
		return "event_forwarder"
	}
	return strings.NewReplacer("-", "_", ".", "_").Replace(service)
}
