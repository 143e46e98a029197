package process

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/execkit/logger"
	"github.com/kbukum/execkit/observability"
)

const instrumentationName = "github.com/kbukum/execkit/process"

// instrumentation is the span and metrics of one Run call. Both are no-ops
// until a provider is installed.
type instrumentation struct {
	span    trace.Span
	metrics *observability.ExecutionMetrics
	binary  string
	start   time.Time
}

func startInstrumentation(ctx context.Context, binary, executionID string, log *logger.Logger) (context.Context, *instrumentation) {
	ctx, span := observability.Tracer(instrumentationName).Start(ctx, "process.run",
		trace.WithAttributes(
			attribute.String(observability.AttrBinary, binary),
			attribute.String(observability.AttrExecutionID, executionID),
		),
	)

	metrics, err := observability.ExecutionMetricsFor(instrumentationName)
	if err != nil {
		log.Warn("execution metrics unavailable", logger.ErrorFields("metrics", err))
		metrics = nil
	}

	in := &instrumentation{span: span, metrics: metrics, binary: binary, start: time.Now()}
	if in.metrics != nil {
		in.metrics.RecordStart(ctx)
	}
	return ctx, in
}

func (in *instrumentation) launched(pid int) {
	in.span.SetAttributes(attribute.Int(observability.AttrPID, pid))
}

// finish ends the span and records the outcome. It returns the elapsed time.
func (in *instrumentation) finish(ctx context.Context, res *Result, err error) time.Duration {
	elapsed := time.Since(in.start)
	outcome := KindUnknown.String()
	if res != nil {
		outcome = res.Termination.Kind.String()
		in.span.SetAttributes(attribute.Int(observability.AttrStatus, res.Status))
	}
	in.span.SetAttributes(attribute.String(observability.AttrOutcome, outcome))

	if err != nil {
		observability.SetSpanError(in.span, err)
		in.span.SetStatus(codes.Error, err.Error())
	}
	in.span.End()

	if in.metrics != nil {
		in.metrics.RecordEnd(ctx, in.binary, outcome, elapsed)
	}
	return elapsed
}
