//go:build unix

package process_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/execkit/observability"
	"github.com/kbukum/execkit/process"
)

func TestRunInstrumentation(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	t.Cleanup(func() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	res, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "exit 4"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "process.run" {
		t.Fatalf("expected one process.run span, got %d", len(spans))
	}
	attrs := attribute.NewSet(spans[0].Attributes()...)
	if v, _ := attrs.Value(observability.AttrOutcome); v.AsString() != "exited" {
		t.Errorf("expected outcome=exited, got %q", v.AsString())
	}
	if v, _ := attrs.Value(observability.AttrStatus); v.AsInt64() != 4 {
		t.Errorf("expected status=4, got %d", v.AsInt64())
	}
	if v, _ := attrs.Value(observability.AttrPID); v.AsInt64() != int64(res.PID) {
		t.Errorf("expected pid=%d, got %d", res.PID, v.AsInt64())
	}
	if v, _ := attrs.Value(observability.AttrExecutionID); v.AsString() != res.ExecutionID {
		t.Errorf("expected execution id %q, got %q", res.ExecutionID, v.AsString())
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var executions int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != observability.MetricExecutions {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				executions += dp.Value
			}
		}
	}
	if executions != 1 {
		t.Fatalf("expected one recorded execution, got %d", executions)
	}
}
