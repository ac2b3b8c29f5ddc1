package testdoubles

import (
	"maps"
	"sync"
	"time"
)

// SpyDurationRecord represents a recorded duration metric call.
type SpyDurationRecord struct {
	Metric   string
	Duration time.Duration
	Labels   map[string]string
}

// SpyCounterRecord represents a recorded counter increment call.
type SpyCounterRecord struct {
	Metric string
	Labels map[string]string
}

// SpyValueRecord represents a recorded value metric call.
type SpyValueRecord struct {
	Metric string
	Value  float64
	Labels map[string]string
}

// MetricsCollectorSpy is a MetricsCollector implementation that captures metrics calls for testing.
type MetricsCollectorSpy struct {
	mu              sync.Mutex
	durationRecords []SpyDurationRecord
	counterRecords  []SpyCounterRecord
	valueRecords    []SpyValueRecord
}

func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durationRecords = append(s.durationRecords, SpyDurationRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counterRecords = append(s.counterRecords, SpyCounterRecord{Metric: metric, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valueRecords = append(s.valueRecords, SpyValueRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) GetCounterRecords() []SpyCounterRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyCounterRecord(nil), s.counterRecords...)
}

func (s *MetricsCollectorSpy) GetDurationRecords() []SpyDurationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyDurationRecord(nil), s.durationRecords...)
}

func (s *MetricsCollectorSpy) GetValueRecords() []SpyValueRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyValueRecord(nil), s.valueRecords...)
}

// CountCounter returns how often the counter was incremented with labels containing all wantLabels.
func (s *MetricsCollectorSpy) CountCounter(metric string, wantLabels map[string]string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.counterRecords {
		if record.Metric == metric && containsLabels(record.Labels, wantLabels) {
			count++
		}
	}

	return count
}

func containsLabels(labels, want map[string]string) bool {
	for k, v := range want {
		if labels[k] != v {
			return false
		}
	}

	return true
}
