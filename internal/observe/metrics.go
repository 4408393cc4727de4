// Package observe provides the OpenTelemetry metrics recorded by the
// detection and transfer pipelines.
//
// A Prometheus exporter bridge is available via [InitProvider] so metrics
// can be scraped from /metrics. Tests should use [NewMetrics] with their own
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/RyanBlaney/pitch-perfect"

// Metrics holds the metric instruments. All fields are safe for concurrent
// use.
type Metrics struct {
	// Frames counts processed frames. Use with attribute:
	//   attribute.String("state", ...)
	Frames metric.Int64Counter

	// EstimateDuration tracks the time spent in a pitch estimator.
	EstimateDuration metric.Float64Histogram

	// Estimates counts estimator runs. Use with attributes:
	//   attribute.String("method", ...), attribute.Bool("voiced", ...)
	Estimates metric.Int64Counter

	// Transfers counts completed melody playbacks.
	Transfers metric.Int64Counter

	// TransferTones tracks how many tones each playback contained.
	TransferTones metric.Int64Histogram
}

// estimateBuckets are histogram boundaries in seconds for a single
// estimator run on a sub-second frame.
var estimateBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05,
}

var toneBuckets = []float64{1, 2, 4, 8, 16, 32, 64, 128}

// NewMetrics creates the instruments on mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Frames, err = m.Int64Counter("pitch.frames",
		metric.WithDescription("Audio frames processed by pipeline state."),
	); err != nil {
		return nil, err
	}
	if met.EstimateDuration, err = m.Float64Histogram("pitch.estimate.duration",
		metric.WithDescription("Latency of one pitch estimation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(estimateBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Estimates, err = m.Int64Counter("pitch.estimates",
		metric.WithDescription("Pitch estimations by method and outcome."),
	); err != nil {
		return nil, err
	}
	if met.Transfers, err = m.Int64Counter("pitch.transfers",
		metric.WithDescription("Recorded melodies played back."),
	); err != nil {
		return nil, err
	}
	if met.TransferTones, err = m.Int64Histogram("pitch.transfer.tones",
		metric.WithDescription("Tones per played-back melody."),
		metric.WithExplicitBucketBoundaries(toneBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, created on
// first call from [otel.GetMeterProvider].
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordFrame counts one frame in state. Nil receivers are ignored so
// callers can run without metrics.
func (m *Metrics) RecordFrame(ctx context.Context, state string) {
	if m == nil {
		return
	}
	m.Frames.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}

// RecordEstimate records one estimator run
func (m *Metrics) RecordEstimate(ctx context.Context, method string, voiced bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.EstimateDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("method", method)))
	m.Estimates.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("voiced", strconv.FormatBool(voiced)),
	))
}

// RecordTransfer records one playback of tones tones
func (m *Metrics) RecordTransfer(ctx context.Context, tones int) {
	if m == nil {
		return
	}
	m.Transfers.Add(ctx, 1)
	m.TransferTones.Record(ctx, int64(tones))
}
