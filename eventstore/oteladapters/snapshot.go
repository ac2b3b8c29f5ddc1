package oteladapters

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var ErrCollectingMetricsFailed = errors.New("collecting metrics failed")

// DataPoint is one aggregated series of a metric.
// Value is the sum for counters and histograms, or the last value for gauges.
type DataPoint struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
	Count  uint64            `json:"count,omitempty"`
}

// NewMeterProvider creates a MeterProvider for the service backed by a ManualReader, which Snapshot collects from.
func NewMeterProvider(serviceName, serviceVersion string) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	return provider, reader
}

// Snapshot collects the current state of all instruments, sorted by name and labels.
func Snapshot(ctx context.Context, reader sdkmetric.Reader) ([]DataPoint, error) {
	var resourceMetrics metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &resourceMetrics); err != nil {
		return nil, errors.Join(ErrCollectingMetricsFailed, err)
	}

	points := make([]DataPoint, 0)

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					points = append(points, DataPoint{Name: m.Name, Labels: labelsOf(dp.Attributes.ToSlice()), Value: float64(dp.Value)})
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, DataPoint{Name: m.Name, Labels: labelsOf(dp.Attributes.ToSlice()), Value: dp.Value})
				}
			case metricdata.Gauge[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, DataPoint{Name: m.Name, Labels: labelsOf(dp.Attributes.ToSlice()), Value: dp.Value})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, DataPoint{
						Name:   m.Name,
						Labels: labelsOf(dp.Attributes.ToSlice()),
						Value:  dp.Sum,
						Count:  dp.Count,
					})
				}
			}
		}
	}

	slices.SortFunc(points, func(a, b DataPoint) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}

		return strings.Compare(labelKey(a.Labels), labelKey(b.Labels))
	})

	return points, nil
}

func labelsOf(attrs []attribute.KeyValue) map[string]string {
	if len(attrs) == 0 {
		return nil
	}

	labels := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		labels[string(kv.Key)] = kv.Value.Emit()
	}

	return labels
}

func labelKey(labels map[string]string) string {
	pairs := make([]string, 0, len(labels))
	for key, value := range labels {
		pairs = append(pairs, key+"="+value)
	}

	slices.Sort(pairs)

	return strings.Join(pairs, ",")
}
