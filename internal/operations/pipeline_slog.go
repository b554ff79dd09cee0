package operations

import (
	"context"
	"log/slog"
	"time"

	apperrors "aqprep/internal/errors"
)

// logRunStart logs the start of a run
func (p *Pipeline) logRunStart(ctx context.Context) {
	p.logger.InfoContext(ctx, "run_start",
		slog.String("input_path", p.config.InputPath),
		slog.String("output_path", p.config.OutputPath),
		slog.Any("columns", p.config.Columns),
		slog.Int("stages", p.registry.Count()))
}

// logRunComplete logs the completion of a run
func (p *Pipeline) logRunComplete(ctx context.Context, rows int, duration time.Duration) {
	p.logger.InfoContext(ctx, "run_complete",
		slog.Int("rows", rows),
		slog.Duration("duration", duration))
}

// logRunError logs a failed run
func (p *Pipeline) logRunError(ctx context.Context, err error) {
	p.logger.ErrorContext(ctx, "run_error",
		slog.String("stage", apperrors.StageOf(err)),
		slog.String("error_type", string(apperrors.TypeOf(err))),
		slog.String("error", err.Error()))
}

// logStageStart logs the start of a stage
func (p *Pipeline) logStageStart(ctx context.Context, logger *slog.Logger, rows int) {
	logger.DebugContext(ctx, "stage_start",
		slog.Int("rows", rows))
}

// logStageComplete logs the completion of a stage
func (p *Pipeline) logStageComplete(ctx context.Context, logger *slog.Logger, st *StageState) {
	logger.InfoContext(ctx, "stage_complete",
		slog.Int("rows_in", st.RowsIn),
		slog.Int("rows_out", st.RowsOut),
		slog.Duration("duration", st.Duration()))
}

// logStageError logs a stage error
func (p *Pipeline) logStageError(ctx context.Context, logger *slog.Logger, err error) {
	logger.ErrorContext(ctx, "stage_error",
		slog.String("error", err.Error()))
}
