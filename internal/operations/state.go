package operations

import (
	"log/slog"
	"time"

	"aqprep/internal/config"
	"aqprep/internal/dataprocessing"
	"aqprep/internal/infrastructure"
)

// RunState is the state threaded through the stages of one run
type RunState struct {
	// ID is the run identifier, also attached to every log line
	ID string

	Config config.PipelineConfig

	// Frame is the current dataset; each stage replaces it with a derived copy
	Frame *dataprocessing.Frame

	// Current is the state of the executing stage
	Current *StageState

	// Logger is scoped to the executing stage
	Logger *slog.Logger

	Metrics *infrastructure.PipelineMetrics

	StartTime time.Time
	EndTime   *time.Time

	stages []*StageState
}

// NewRunState creates the state for a run
func NewRunState(id string, cfg config.PipelineConfig) *RunState {
	return &RunState{
		ID:        id,
		Config:    cfg,
		StartTime: time.Now(),
	}
}

// Rows returns the current row count, zero before the dataset is loaded
func (s *RunState) Rows() int {
	if s.Frame == nil {
		return 0
	}
	return s.Frame.Len()
}

// Stages returns the stage states in execution order
func (s *RunState) Stages() []*StageState {
	return s.stages
}

// GetStage returns the state of the stage with the given ID
func (s *RunState) GetStage(id string) *StageState {
	for _, st := range s.stages {
		if st.ID == id {
			return st
		}
	}
	return nil
}

func (s *RunState) addStage(st *StageState) {
	s.stages = append(s.stages, st)
	s.Current = st
}

// Finish records the end time of the run
func (s *RunState) Finish() {
	now := time.Now()
	s.EndTime = &now
}

// Duration returns the duration of the run
func (s *RunState) Duration() time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}
