package operations_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"aqprep/internal/config"
	"aqprep/internal/dataprocessing"
	"aqprep/internal/operations"
	"aqprep/internal/shared/testutil"
)

// funcStage is a Stage backed by a function
type funcStage struct {
	operations.BaseStage
	fn func(ctx context.Context, state *operations.RunState) error
}

func newFuncStage(id string, fn func(ctx context.Context, state *operations.RunState) error) *funcStage {
	return &funcStage{BaseStage: operations.NewBaseStage(id, id), fn: fn}
}

func (s *funcStage) Execute(ctx context.Context, state *operations.RunState) error {
	return s.fn(ctx, state)
}

// testConfig returns the default pipeline config reading input from dir
func testConfig(t *testing.T, dir, input string) config.PipelineConfig {
	t.Helper()
	cfg := config.Default().Pipeline
	cfg.InputPath = testutil.WriteFixture(t, dir, "measurements.csv", input)
	cfg.OutputPath = filepath.Join(dir, "out", "measurements_cleaned.csv")
	return cfg
}

// newStageRun prepares a RunState positioned on a single stage
func newStageRun(t *testing.T, cfg config.PipelineConfig, stage operations.Stage, frame *dataprocessing.Frame) (*operations.RunState, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	state := operations.NewRunState("run-test", cfg)
	state.Frame = frame
	state.Current = operations.NewStageState(stage.ID(), stage.Name())
	state.Logger = logger.With(slog.String("stage", stage.ID()))
	return state, handler
}

func mustFrame(t *testing.T, columns []string, records ...[]string) *dataprocessing.Frame {
	t.Helper()
	f, err := dataprocessing.NewFrame(columns, records)
	require.NoError(t, err)
	return f
}
