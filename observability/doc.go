// Package observability wires OpenTelemetry tracing and metrics for execkit.
//
// Setup installs OTLP HTTP exporters as the global providers; until then the
// spans and instruments recorded by the process package are no-ops.
//
//	shutdown, err := observability.Setup(ctx, &cfg.Observability)
//	defer shutdown(ctx)
//
// The process package records one span per execution and the
// ExecutionMetrics instruments:
//
//	process.executions  counter, by binary and outcome
//	process.duration    histogram, seconds
//	process.active      up/down counter of running children
package observability
