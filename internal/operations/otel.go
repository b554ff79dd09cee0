package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"aqprep/internal/infrastructure"
)

// pipelineTracer wraps run and stage spans together with their metrics
type pipelineTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

func newPipelineTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *pipelineTracer {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &pipelineTracer{tracer: tracer, metrics: metrics}
}

// traceRun creates a span for the entire run
func (pt *pipelineTracer) traceRun(ctx context.Context, runID, inputPath, outputPath string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.input_path", inputPath),
			attribute.String("run.output_path", outputPath),
		),
	)
}

// traceStage creates a span for a single stage
func (pt *pipelineTracer) traceStage(ctx context.Context, stageID string, rowsIn int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("pipeline.stage.%s", stageID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("stage.id", stageID),
			attribute.Int("stage.rows_in", rowsIn),
		),
	)
}

// recordStageCompletion closes out a stage span and records its metrics
func (pt *pipelineTracer) recordStageCompletion(ctx context.Context, span trace.Span, stageID string, rowsOut int, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Int("stage.rows_out", rowsOut),
		attribute.Float64("stage.duration_seconds", duration.Seconds()),
	)
	pt.metrics.RecordStage(ctx, stageID, rowsOut, duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "stage completed")
}

// recordRunCompletion closes out the run span and counts the run
func (pt *pipelineTracer) recordRunCompletion(ctx context.Context, span trace.Span, rows int, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Int("run.rows_out", rows),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
	)
	pt.metrics.RecordRun(ctx, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return
	}
	span.SetStatus(codes.Ok, "run completed")
}
