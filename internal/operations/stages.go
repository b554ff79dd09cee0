package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"aqprep/internal/config"
	"aqprep/internal/dataprocessing"
	apperrors "aqprep/internal/errors"
	"aqprep/internal/exporter"
	"aqprep/internal/validation"
)

// Stage names
const (
	StageNameLoad            = "Load & validate"
	StageNameSelectColumns   = "Select columns"
	StageNameCoerceNumeric   = "Coerce numeric columns"
	StageNameParseTimestamps = "Parse timestamps"
	StageNameHandleMissing   = "Handle missing values"
	StageNameDeduplicate     = "Deduplicate"
	StageNameSort            = "Sort"
	StageNameSave            = "Save"
)

// verifySampleRows is the number of rows re-read after saving
const verifySampleRows = 5

// timestampSampleSize is the number of normalized timestamps logged
const timestampSampleSize = 3

// LoadStage reads the input file into the run's dataset
type LoadStage struct {
	BaseStage
	validator *validation.FileValidator
}

// NewLoadStage creates a new load Stage
func NewLoadStage(validator *validation.FileValidator) *LoadStage {
	return &LoadStage{
		BaseStage: NewBaseStage(StageIDLoad, StageNameLoad),
		validator: validator,
	}
}

// Execute validates the input path and parses it
func (s *LoadStage) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config
	if err := s.validator.ValidateInputFile(cfg.InputPath); err != nil {
		return apperrors.NewLoadError("input file is not usable", err).
			WithContext("path", cfg.InputPath)
	}

	frame, err := dataprocessing.ParseFile(cfg.InputPath, dataprocessing.ReadOptions{Sheet: cfg.Sheet})
	if err != nil {
		return apperrors.NewLoadError("failed to read input", err).
			WithContext("path", cfg.InputPath)
	}

	state.Frame = frame
	state.Current.SetDetail("columns", frame.Columns())
	state.Logger.InfoContext(ctx, "Loaded dataset",
		slog.String("path", cfg.InputPath),
		slog.Int("rows", frame.Len()),
		slog.Int("columns", len(frame.Columns())))
	return nil
}

// SelectColumnsStage keeps the allow-listed columns and drops repeated header rows
type SelectColumnsStage struct {
	BaseStage
}

// NewSelectColumnsStage creates a new column selection Stage
func NewSelectColumnsStage() *SelectColumnsStage {
	return &SelectColumnsStage{
		BaseStage: NewBaseStage(StageIDSelectColumns, StageNameSelectColumns),
	}
}

// Execute applies the allow-list
func (s *SelectColumnsStage) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config
	selected, err := state.Frame.Select(cfg.Columns...)
	if err != nil {
		var missing *dataprocessing.MissingColumnsError
		if errors.As(err, &missing) {
			return apperrors.NewSchemaError(
				fmt.Sprintf("required columns missing from input: %v", missing.Columns),
				missing.Columns,
			)
		}
		return err
	}

	cleaned, headerRows, err := dataprocessing.DropHeaderRows(selected, cfg.IDColumn)
	if err != nil {
		return err
	}

	state.Frame = cleaned
	state.Current.SetDetail("header_rows_dropped", headerRows)
	state.Metrics.RecordDropped(ctx, "repeated_header", headerRows)
	state.Logger.InfoContext(ctx, "Selected columns",
		slog.Any("columns", cfg.Columns),
		slog.Int("rows", cleaned.Len()),
		slog.Int("header_rows_dropped", headerRows))
	return nil
}

// CoerceNumericStage converts the numeric columns, turning bad entries into missing values
type CoerceNumericStage struct {
	BaseStage
}

// NewCoerceNumericStage creates a new numeric coercion Stage
func NewCoerceNumericStage() *CoerceNumericStage {
	return &CoerceNumericStage{
		BaseStage: NewBaseStage(StageIDCoerceNumeric, StageNameCoerceNumeric),
	}
}

// Execute coerces every configured numeric column
func (s *CoerceNumericStage) Execute(ctx context.Context, state *RunState) error {
	frame := state.Frame
	failures := make(map[string]int, len(state.Config.NumericColumns))
	stats := make(map[string]dataprocessing.ColumnStats, len(state.Config.NumericColumns))

	for _, column := range state.Config.NumericColumns {
		coerced, failed, err := frame.CoerceNumeric(column)
		if err != nil {
			return apperrors.NewParseError(fmt.Sprintf("failed to coerce %s", column), err)
		}
		frame = coerced
		failures[column] = failed
		state.Metrics.RecordParseFailures(ctx, column, failed)

		desc, err := dataprocessing.Describe(frame, column)
		stats[column] = desc
		attrs := []any{
			slog.String("column", column),
			slog.Int("unparseable", failed),
			slog.Int("missing", desc.Missing),
		}
		if err == nil {
			attrs = append(attrs,
				slog.Float64("min", desc.Min),
				slog.Float64("mean", desc.Mean),
				slog.Float64("median", desc.Median),
				slog.Float64("max", desc.Max))
		}
		state.Logger.InfoContext(ctx, "Coerced numeric column", attrs...)
		if failed > 0 {
			state.Logger.WarnContext(ctx, "Unparseable numeric values set to missing",
				slog.String("column", column),
				slog.Int("count", failed))
		}
	}

	state.Frame = frame
	state.Current.SetDetail("unparseable", failures)
	state.Current.SetDetail("statistics", stats)
	return nil
}

// ParseTimestampsStage normalizes the timestamp column to UTC instants
type ParseTimestampsStage struct {
	BaseStage
}

// NewParseTimestampsStage creates a new timestamp parsing Stage
func NewParseTimestampsStage() *ParseTimestampsStage {
	return &ParseTimestampsStage{
		BaseStage: NewBaseStage(StageIDParseTimestamps, StageNameParseTimestamps),
	}
}

// Execute parses the timestamp column
func (s *ParseTimestampsStage) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config
	parsed, failed, err := state.Frame.ParseTimestamps(cfg.TimestampColumn, dataprocessing.ParseTimestamp)
	if err != nil {
		return apperrors.NewParseError(fmt.Sprintf("failed to parse %s", cfg.TimestampColumn), err)
	}
	state.Frame = parsed
	state.Current.SetDetail("unparseable", failed)
	state.Metrics.RecordParseFailures(ctx, cfg.TimestampColumn, failed)

	attrs := []any{
		slog.String("column", cfg.TimestampColumn),
		slog.Int("unparseable", failed),
	}
	earliest, latest, ok, err := dataprocessing.TimeRange(parsed, cfg.TimestampColumn)
	if err != nil {
		return apperrors.NewParseError("failed to compute date range", err)
	}
	if ok {
		attrs = append(attrs,
			slog.String("earliest", dataprocessing.FormatTimestamp(earliest, cfg.TimestampLayout)),
			slog.String("latest", dataprocessing.FormatTimestamp(latest, cfg.TimestampLayout)))
		state.Current.SetDetail("earliest", earliest)
		state.Current.SetDetail("latest", latest)
	}
	state.Logger.InfoContext(ctx, "Parsed timestamps", attrs...)

	times, _ := parsed.Times(cfg.TimestampColumn)
	if len(times) > timestampSampleSize {
		times = times[:timestampSampleSize]
	}
	sample := make([]string, len(times))
	for i, t := range times {
		sample[i] = dataprocessing.FormatTimestamp(t, cfg.TimestampLayout)
	}
	state.Logger.DebugContext(ctx, "Sample timestamps", slog.Any("sample", sample))

	if failed > 0 {
		state.Logger.WarnContext(ctx, "Unparseable timestamps set to missing",
			slog.String("column", cfg.TimestampColumn),
			slog.Int("count", failed))
	}
	return nil
}

// HandleMissingStage median-imputes numeric columns and drops rows without keys
type HandleMissingStage struct {
	BaseStage
}

// NewHandleMissingStage creates a new missing-value Stage
func NewHandleMissingStage() *HandleMissingStage {
	return &HandleMissingStage{
		BaseStage: NewBaseStage(StageIDHandleMissing, StageNameHandleMissing),
	}
}

// Execute runs the missing-value processor
func (s *HandleMissingStage) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config

	for _, m := range dataprocessing.MissingSummary(state.Frame) {
		if m.Count == 0 {
			continue
		}
		state.Logger.InfoContext(ctx, "Missing values before handling",
			slog.String("column", m.Column),
			slog.Int("count", m.Count),
			slog.Float64("percent", m.Percent))
	}

	processor := dataprocessing.NewMissingValueProcessor(dataprocessing.ProcessingOptions{
		FilterColumns:  []string{cfg.TimestampColumn},
		KeyColumns:     []string{cfg.IDColumn},
		NumericColumns: cfg.NumericColumns,
	})
	out, stats, err := processor.Process(state.Frame)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrNoValues) {
			return apperrors.NewParseError("cannot impute a column without values", err)
		}
		return err
	}

	state.Frame = out
	state.Current.SetDetail("dropped_missing_key", stats.DroppedKeys)
	state.Current.SetDetail("imputed", stats.Imputed)
	state.Current.SetDetail("medians", stats.Medians)

	for _, column := range cfg.NumericColumns {
		state.Metrics.RecordImputed(ctx, column, stats.Imputed[column])
		if stats.Imputed[column] > 0 {
			state.Logger.InfoContext(ctx, "Imputed missing values with median",
				slog.String("column", column),
				slog.Int("count", stats.Imputed[column]),
				slog.Float64("median", stats.Medians[column]))
		}
	}
	for _, column := range []string{cfg.IDColumn, cfg.TimestampColumn} {
		state.Metrics.RecordDropped(ctx, "missing_"+column, stats.DroppedKeys[column])
	}
	state.Logger.InfoContext(ctx, "Dropped rows missing a required key",
		slog.Int("dropped", stats.Dropped()),
		slog.Int("rows", out.Len()))
	return nil
}

// DeduplicateStage keeps the first row of every (id, timestamp) pair
type DeduplicateStage struct {
	BaseStage
}

// NewDeduplicateStage creates a new deduplication Stage
func NewDeduplicateStage() *DeduplicateStage {
	return &DeduplicateStage{
		BaseStage: NewBaseStage(StageIDDeduplicate, StageNameDeduplicate),
	}
}

// Execute removes duplicate keys
func (s *DeduplicateStage) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config
	out, removed, err := state.Frame.DropDuplicates(cfg.IDColumn, cfg.TimestampColumn)
	if err != nil {
		return err
	}

	state.Frame = out
	state.Current.SetDetail("duplicates_removed", removed)
	state.Metrics.RecordDropped(ctx, "duplicate", removed)
	state.Logger.InfoContext(ctx, "Removed duplicate measurements",
		slog.Int("removed", removed),
		slog.Int("rows", out.Len()))
	return nil
}

// SortStage orders rows deterministically
type SortStage struct {
	BaseStage
}

// NewSortStage creates a new sort Stage
func NewSortStage() *SortStage {
	return &SortStage{
		BaseStage: NewBaseStage(StageIDSort, StageNameSort),
	}
}

// Execute sorts by (id, timestamp), or by (timestamp, id) in time mode
func (s *SortStage) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config
	keys := []string{cfg.IDColumn, cfg.TimestampColumn}
	if cfg.SortBy == config.SortTime {
		keys = []string{cfg.TimestampColumn, cfg.IDColumn}
	}

	out, err := state.Frame.SortBy(keys...)
	if err != nil {
		return err
	}

	state.Frame = out
	state.Current.SetDetail("keys", keys)
	state.Logger.InfoContext(ctx, "Sorted measurements",
		slog.Any("keys", keys),
		slog.Int("rows", out.Len()))
	return nil
}

// SaveStage writes the cleaned dataset and re-reads the start of the file
type SaveStage struct {
	BaseStage
	validator *validation.FileValidator
	writer    *exporter.CSVWriter
}

// NewSaveStage creates a new save Stage
func NewSaveStage(validator *validation.FileValidator, writer *exporter.CSVWriter) *SaveStage {
	return &SaveStage{
		BaseStage: NewBaseStage(StageIDSave, StageNameSave),
		validator: validator,
		writer:    writer,
	}
}

// Execute writes the output file
func (s *SaveStage) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config
	path := cfg.OutputPath

	if err := s.validator.ValidateOutputFile(path); err != nil {
		return apperrors.NewSaveError("output location is not writable", err).
			WithContext("path", path)
	}

	err := s.writer.WriteFrame(path, state.Frame, exporter.FrameOptions{
		TimestampLayout: cfg.TimestampLayout,
		BOMPrefix:       cfg.BOMPrefix,
	})
	if err != nil {
		return apperrors.NewSaveError("failed to write output", err).
			WithContext("path", path)
	}

	state.Logger.InfoContext(ctx, "Saved cleaned dataset",
		slog.String("path", path),
		slog.Int("rows", state.Frame.Len()))

	v, err := exporter.VerifyCSV(path, verifySampleRows)
	if err != nil {
		return apperrors.NewSaveError("failed to read back output", err).
			WithContext("path", path)
	}

	types := make(map[string]exporter.ColumnType, len(v.Columns))
	for i, column := range v.Columns {
		types[column] = v.Types[i]
	}
	state.Current.SetDetail("path", filepath.Clean(path))
	state.Current.SetDetail("column_types", types)
	state.Logger.InfoContext(ctx, "Verified saved file",
		slog.Int("sample_rows", len(v.Sample)),
		slog.Any("column_types", types))
	return nil
}

// DefaultStages returns the cleaning stages in execution order
func DefaultStages(validator *validation.FileValidator, writer *exporter.CSVWriter) []Stage {
	return []Stage{
		NewLoadStage(validator),
		NewSelectColumnsStage(),
		NewCoerceNumericStage(),
		NewParseTimestampsStage(),
		NewHandleMissingStage(),
		NewDeduplicateStage(),
		NewSortStage(),
		NewSaveStage(validator, writer),
	}
}
