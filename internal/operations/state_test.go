package operations_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqprep/internal/config"
	"aqprep/internal/operations"
)

func TestRunState(t *testing.T) {
	cfg := config.Default().Pipeline
	state := operations.NewRunState("run-1", cfg)

	assert.Equal(t, "run-1", state.ID)
	assert.Equal(t, cfg.InputPath, state.Config.InputPath)
	assert.Zero(t, state.Rows(), "no dataset loaded yet")
	assert.Empty(t, state.Stages())
	assert.Nil(t, state.GetStage(operations.StageIDLoad))
	assert.Nil(t, state.EndTime)

	state.Frame = mustFrame(t, []string{"location_id"}, []string{"1"}, []string{"2"})
	assert.Equal(t, 2, state.Rows())

	time.Sleep(time.Millisecond)
	state.Finish()
	require.NotNil(t, state.EndTime)
	assert.Positive(t, state.Duration())
	assert.Equal(t, state.EndTime.Sub(state.StartTime), state.Duration())
}
