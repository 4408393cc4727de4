package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumWhere returns the counter value of the data point carrying key=value
func sumWhere(t *testing.T, met *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not a sum", met.Name)
	}
	for _, dp := range sum.DataPoints {
		for _, kv := range dp.Attributes.ToSlice() {
			if string(kv.Key) == key && kv.Value.AsString() == value {
				return dp.Value
			}
		}
	}
	return 0
}

func TestRecordFrame(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordFrame(ctx, "idle")
	m.RecordFrame(ctx, "idle")
	m.RecordFrame(ctx, "listening")

	met := findMetric(collect(t, reader), "pitch.frames")
	if met == nil {
		t.Fatal("metric not found")
	}
	if got := sumWhere(t, met, "state", "idle"); got != 2 {
		t.Errorf("idle frames = %d, want 2", got)
	}
	if got := sumWhere(t, met, "state", "listening"); got != 1 {
		t.Errorf("listening frames = %d, want 1", got)
	}
}

func TestRecordEstimate(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordEstimate(ctx, "yin", true, time.Millisecond)
	m.RecordEstimate(ctx, "yin", false, 2*time.Millisecond)

	rm := collect(t, reader)
	met := findMetric(rm, "pitch.estimates")
	if met == nil {
		t.Fatal("metric not found")
	}
	if got := sumWhere(t, met, "voiced", "true"); got != 1 {
		t.Errorf("voiced estimates = %d, want 1", got)
	}

	hist := findMetric(rm, "pitch.estimate.duration")
	if hist == nil {
		t.Fatal("histogram not found")
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(data.DataPoints) == 0 {
		t.Fatal("histogram has no data points")
	}
	if got := data.DataPoints[0].Count; got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
}

func TestRecordTransfer(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordTransfer(context.Background(), 3)

	rm := collect(t, reader)
	if met := findMetric(rm, "pitch.transfers"); met == nil {
		t.Fatal("pitch.transfers not found")
	}
	met := findMetric(rm, "pitch.transfer.tones")
	if met == nil {
		t.Fatal("pitch.transfer.tones not found")
	}
	data, ok := met.Data.(metricdata.Histogram[int64])
	if !ok || len(data.DataPoints) != 1 || data.DataPoints[0].Sum != 3 {
		t.Errorf("tones histogram = %+v, want one sample of 3", met.Data)
	}
}

func TestNilMetricsAreIgnored(t *testing.T) {
	var m *Metrics
	m.RecordFrame(context.Background(), "idle")
	m.RecordEstimate(context.Background(), "yin", true, time.Millisecond)
	m.RecordTransfer(context.Background(), 1)
}

func TestInitProvider(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), ProviderConfig{ServiceVersion: "test"})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	t.Cleanup(func() {
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})

	m, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		t.Fatal(err)
	}
	m.RecordFrame(context.Background(), "listening")
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
