package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded by a preprocessing run
type PipelineMetrics struct {
	RunsTotal     metric.Int64Counter
	StageDuration metric.Float64Histogram
	StageRows     metric.Int64Gauge
	RowsDropped   metric.Int64Counter
	ValuesImputed metric.Int64Counter
	ParseFailures metric.Int64Counter
}

// CreatePipelineMetrics creates the run, stage and data-quality instruments
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"aqprep_runs",
		metric.WithDescription("Number of preprocessing runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"aqprep_stage_duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageRows, err := meter.Int64Gauge(
		"aqprep_stage_rows",
		metric.WithDescription("Row count after each pipeline stage"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"aqprep_rows_dropped",
		metric.WithDescription("Rows removed by a stage, by reason"),
	)
	if err != nil {
		return nil, err
	}

	valuesImputed, err := meter.Int64Counter(
		"aqprep_values_imputed",
		metric.WithDescription("Missing numeric values filled with the column median"),
	)
	if err != nil {
		return nil, err
	}

	parseFailures, err := meter.Int64Counter(
		"aqprep_parse_failures",
		metric.WithDescription("Cells that failed numeric or timestamp coercion"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:     runsTotal,
		StageDuration: stageDuration,
		StageRows:     stageRows,
		RowsDropped:   rowsDropped,
		ValuesImputed: valuesImputed,
		ParseFailures: parseFailures,
	}, nil
}

// RecordStage records duration and resulting row count of a stage
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	)
	m.StageDuration.Record(ctx, duration.Seconds(), attrs)
	if err == nil {
		m.StageRows.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("stage", stage)))
	}
}

// RecordRun counts a finished run
func (m *PipelineMetrics) RecordRun(ctx context.Context, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordDropped counts rows removed for the given reason
func (m *PipelineMetrics) RecordDropped(ctx context.Context, reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordImputed counts values filled in a column
func (m *PipelineMetrics) RecordImputed(ctx context.Context, column string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ValuesImputed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}

// RecordParseFailures counts cells in a column that could not be coerced
func (m *PipelineMetrics) RecordParseFailures(ctx context.Context, column string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ParseFailures.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}
