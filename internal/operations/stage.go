package operations

import (
	"context"
	"time"

	"aqprep/pkg/contracts/domain"
)

// Stage IDs in execution order
const (
	StageIDLoad            = "load"
	StageIDSelectColumns   = "select_columns"
	StageIDCoerceNumeric   = "coerce_numeric"
	StageIDParseTimestamps = "parse_timestamps"
	StageIDHandleMissing   = "handle_missing"
	StageIDDeduplicate     = "deduplicate"
	StageIDSort            = "sort"
	StageIDSave            = "save"
)

// Stage represents a single step of the cleaning pipeline
type Stage interface {
	// ID returns the unique identifier for this Stage
	ID() string

	// Name returns the human-readable name for this Stage
	Name() string

	// Execute transforms state.Frame and records what it did on state.Current
	Execute(ctx context.Context, state *RunState) error
}

// StageState represents the runtime state of a Stage
type StageState struct {
	ID        string
	Name      string
	Status    domain.StageStatus
	StartTime *time.Time
	EndTime   *time.Time
	RowsIn    int
	RowsOut   int
	Error     error
	Details   map[string]any
}

// NewStageState creates a new Stage state with default values
func NewStageState(id, name string) *StageState {
	return &StageState{
		ID:      id,
		Name:    name,
		Status:  domain.StageStatusPending,
		Details: make(map[string]any),
	}
}

// Start marks the Stage as running and records the input row count
func (s *StageState) Start(rowsIn int) {
	now := time.Now()
	s.StartTime = &now
	s.Status = domain.StageStatusRunning
	s.RowsIn = rowsIn
}

// Complete marks the Stage as completed with the resulting row count
func (s *StageState) Complete(rowsOut int) {
	now := time.Now()
	s.EndTime = &now
	s.Status = domain.StageStatusCompleted
	s.RowsOut = rowsOut
}

// Fail marks the Stage as failed with the given error
func (s *StageState) Fail(err error) {
	now := time.Now()
	s.EndTime = &now
	s.Status = domain.StageStatusFailed
	s.Error = err
}

// SetDetail records a statistic reported by the Stage
func (s *StageState) SetDetail(key string, value any) {
	s.Details[key] = value
}

// Duration returns the duration of the Stage execution
func (s *StageState) Duration() time.Duration {
	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// Report converts the state into its serializable form
func (s *StageState) Report() domain.StageReport {
	r := domain.StageReport{
		ID:          s.ID,
		Name:        s.Name,
		Status:      s.Status,
		RowsIn:      s.RowsIn,
		RowsOut:     s.RowsOut,
		StartedAt:   s.StartTime,
		CompletedAt: s.EndTime,
		DurationMS:  s.Duration().Milliseconds(),
	}
	if len(s.Details) > 0 {
		r.Details = s.Details
	}
	if s.Error != nil {
		r.Error = s.Error.Error()
	}
	return r
}

// BaseStage provides common functionality for Stage implementations
type BaseStage struct {
	id   string
	name string
}

// NewBaseStage creates a new base Stage
func NewBaseStage(id, name string) BaseStage {
	return BaseStage{
		id:   id,
		name: name,
	}
}

// ID returns the Stage ID
func (b *BaseStage) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// Name returns the Stage name
func (b *BaseStage) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}
