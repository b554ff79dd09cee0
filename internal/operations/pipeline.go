package operations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"

	"aqprep/internal/config"
	"aqprep/internal/dataprocessing"
	apperrors "aqprep/internal/errors"
	"aqprep/internal/exporter"
	"aqprep/internal/infrastructure"
	"aqprep/internal/validation"
	"aqprep/pkg/contracts"
	"aqprep/pkg/contracts/domain"
)

var errNoDataset = errors.New("no dataset loaded")

// Pipeline runs the cleaning stages over one input file
type Pipeline struct {
	config   config.PipelineConfig
	registry *Registry
	logger   *slog.Logger
	tracer   *pipelineTracer
	metrics  *infrastructure.PipelineMetrics
	spans    trace.Tracer
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithTracer records a span per run and per stage
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) { p.spans = tracer }
}

// WithMetrics records stage and data-quality metrics
func WithMetrics(metrics *infrastructure.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = metrics }
}

// WithRegistry replaces the default stages
func WithRegistry(registry *Registry) Option {
	return func(p *Pipeline) { p.registry = registry }
}

// RunResult is the outcome of Pipeline.Run
type RunResult struct {
	RunID      string
	Frame      *dataprocessing.Frame
	Statistics dataprocessing.Statistics
	Report     *domain.CleaningReport
}

// NewPipeline creates a pipeline for cfg. A nil logger discards output.
func NewPipeline(cfg config.PipelineConfig, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = infrastructure.DiscardLogger()
	}
	p := &Pipeline{
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tracer = newPipelineTracer(p.spans, p.metrics)

	if p.registry == nil {
		p.registry = NewRegistry()
		validator := validation.NewFileValidator(logger)
		writer := exporter.NewCSVWriter(logger)
		for _, stage := range DefaultStages(validator, writer) {
			if err := p.registry.Register(stage); err != nil {
				return nil, fmt.Errorf("failed to register stage: %w", err)
			}
		}
	}
	return p, nil
}

// Run executes every stage in order. The first failing stage aborts the run
// with an AppError naming that stage. The output file is only written by
// the save stage and is removed again when the run report cannot be written,
// so a failed run leaves no output behind.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	state := NewRunState(runID, p.config)
	state.Metrics = p.metrics

	ctx, span := p.tracer.traceRun(ctx, runID, p.config.InputPath, p.config.OutputPath)
	defer span.End()

	p.logRunStart(ctx)
	err := p.execute(ctx, state)
	state.Finish()

	result := &RunResult{RunID: runID, Frame: state.Frame}
	if err == nil {
		result.Statistics = p.summarize(ctx, state.Frame)
	}
	result.Report = p.buildReport(state, result, err)

	if p.config.ReportPath != "" {
		if werr := writeReport(p.config.ReportPath, result.Report); werr != nil {
			p.logger.ErrorContext(ctx, "Failed to write run report",
				slog.String("path", p.config.ReportPath),
				slog.String("error", werr.Error()))
			if err == nil {
				err = apperrors.NewSaveError("failed to write run report", werr).WithStage("report")
				p.discardOutput(ctx)
			}
		} else {
			p.logger.InfoContext(ctx, "Run report written", slog.String("path", p.config.ReportPath))
		}
	}

	p.tracer.recordRunCompletion(ctx, span, state.Rows(), state.Duration(), err)
	if err != nil {
		p.logRunError(ctx, err)
		return result, err
	}
	p.logRunComplete(ctx, state.Rows(), state.Duration())
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, state *RunState) error {
	for _, stage := range p.registry.List() {
		st := NewStageState(stage.ID(), stage.Name())
		state.addStage(st)
		state.Logger = p.logger.With(slog.String("stage", stage.ID()))

		stageCtx, span := p.tracer.traceStage(ctx, stage.ID(), state.Rows())
		st.Start(state.Rows())
		p.logStageStart(stageCtx, state.Logger, st.RowsIn)

		var err error
		if state.Frame == nil && stage.ID() != StageIDLoad {
			err = errNoDataset
		} else {
			err = stage.Execute(stageCtx, state)
		}

		if err != nil {
			appErr := stageError(stage.ID(), err)
			st.Fail(appErr)
			p.tracer.recordStageCompletion(stageCtx, span, stage.ID(), state.Rows(), st.Duration(), appErr)
			span.End()
			p.logStageError(stageCtx, state.Logger, appErr)
			return appErr
		}

		st.Complete(state.Rows())
		p.tracer.recordStageCompletion(stageCtx, span, stage.ID(), st.RowsOut, st.Duration(), nil)
		span.End()
		p.logStageComplete(stageCtx, state.Logger, st)
	}
	return nil
}

// summarize logs the final dataset summary
func (p *Pipeline) summarize(ctx context.Context, frame *dataprocessing.Frame) dataprocessing.Statistics {
	stats, err := dataprocessing.Analyze(frame, dataprocessing.AnalysisOptions{
		IDColumn:        p.config.IDColumn,
		TimestampColumn: p.config.TimestampColumn,
		ValueColumn:     p.config.TargetColumn,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to summarize cleaned dataset", slog.String("error", err.Error()))
		return stats
	}

	attrs := []any{
		slog.Int("total_rows", stats.TotalRows),
		slog.Int("unique_locations", stats.UniqueLocations),
	}
	if !stats.Earliest.IsZero() {
		attrs = append(attrs,
			slog.String("earliest", dataprocessing.FormatTimestamp(stats.Earliest, p.config.TimestampLayout)),
			slog.String("latest", dataprocessing.FormatTimestamp(stats.Latest, p.config.TimestampLayout)))
	}
	if stats.Value != nil {
		attrs = append(attrs,
			slog.Float64("value_min", stats.Value.Min),
			slog.Float64("value_max", stats.Value.Max),
			slog.Float64("value_mean", stats.Value.Mean))
	}
	p.logger.InfoContext(ctx, "Final summary", attrs...)
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"dataset.rows":             stats.TotalRows,
		"dataset.unique_locations": stats.UniqueLocations,
	})
	return stats
}

func (p *Pipeline) buildReport(state *RunState, result *RunResult, err error) *domain.CleaningReport {
	report := &domain.CleaningReport{
		RunID:         state.ID,
		FormatVersion: contracts.ReportFormatVersion,
		Version:       contracts.Version,
		InputPath:     p.config.InputPath,
		OutputPath:    p.config.OutputPath,
		Status:        domain.RunStatusCompleted,
		StartedAt:     state.StartTime,
		Stages:        make([]domain.StageReport, 0, len(state.Stages())),
	}
	if state.EndTime != nil {
		report.CompletedAt = *state.EndTime
	}
	for _, st := range state.Stages() {
		report.Stages = append(report.Stages, st.Report())
	}

	if err != nil {
		report.Status = domain.RunStatusFailed
		report.FailedStage = apperrors.StageOf(err)
		report.Error = err.Error()
		return report
	}

	stats := result.Statistics
	summary := &domain.DatasetSummary{
		TotalRows:       stats.TotalRows,
		UniqueLocations: stats.UniqueLocations,
	}
	if !stats.Earliest.IsZero() {
		earliest, latest := stats.Earliest, stats.Latest
		summary.Earliest, summary.Latest = &earliest, &latest
	}
	if stats.Value != nil {
		summary.Value = &domain.ValueSummary{
			Min:    stats.Value.Min,
			Max:    stats.Value.Max,
			Mean:   stats.Value.Mean,
			Median: stats.Value.Median,
			StdDev: stats.Value.StdDev,
		}
	}
	report.Summary = summary
	return report
}

// discardOutput removes an output file that was committed before the run failed
func (p *Pipeline) discardOutput(ctx context.Context) {
	if err := os.Remove(p.config.OutputPath); err != nil && !os.IsNotExist(err) {
		p.logger.ErrorContext(ctx, "Failed to remove output of failed run",
			slog.String("path", p.config.OutputPath),
			slog.String("error", err.Error()))
		return
	}
	p.logger.WarnContext(ctx, "Removed output of failed run", slog.String("path", p.config.OutputPath))
}

// writeReport writes the run report as indented JSON
func writeReport(path string, report *domain.CleaningReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
