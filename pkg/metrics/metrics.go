// Package metrics counts log messages per level and channel as a
// prometheus collector that can be attached to the facility as a sink.
package metrics

import (
	"github.com/heyjunin/sinklog/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "sinklog"

// Sink counts every entry it receives. It never fails and never buffers.
type Sink struct {
	messages *prometheus.CounterVec
}

var _ logger.Sink = (*Sink)(nil)
var _ prometheus.Collector = (*Sink)(nil)

// NewSink returns a sink ready to be registered with a prometheus registry
// and attached with logger.AddSink.
func NewSink() *Sink {
	return &Sink{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "log",
			Name:      "messages_total",
			Help:      "Number of log messages delivered, by level and channel.",
		}, []string{"level", "channel"}),
	}
}

// Write implements logger.Sink.
func (s *Sink) Write(entry logger.Entry) error {
	s.messages.WithLabelValues(entry.Level.Label(), entry.Channel).Inc()
	return nil
}

// Flush implements logger.Sink.
func (s *Sink) Flush() error { return nil }

// Describe implements prometheus.Collector.
func (s *Sink) Describe(ch chan<- *prometheus.Desc) {
	s.messages.Describe(ch)
}

// Collect implements prometheus.Collector.
func (s *Sink) Collect(ch chan<- prometheus.Metric) {
	s.messages.Collect(ch)
}

// Count returns how many entries were seen for level on channel.
func (s *Sink) Count(level logger.Level, channel string) (float64, error) {
	c, err := s.messages.GetMetricWithLabelValues(level.Label(), channel)
	if err != nil {
		return 0, err
	}
	return counterValue(c)
}
