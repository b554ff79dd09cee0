package domain

import (
	"time"
)

// StageStatus represents the status of a pipeline stage
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusRunning   StageStatus = "running"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

// RunStatus is the outcome of a preprocessing run
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StageReport records what one stage did to the dataset
type StageReport struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      StageStatus    `json:"status"`
	RowsIn      int            `json:"rows_in"`
	RowsOut     int            `json:"rows_out"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	DurationMS  int64          `json:"duration_ms"`
	Details     map[string]any `json:"details,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// ValueSummary describes the measurement value column of the cleaned dataset
type ValueSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// DatasetSummary is the end-of-run view of the cleaned dataset
type DatasetSummary struct {
	TotalRows       int           `json:"total_rows"`
	UniqueLocations int           `json:"unique_locations"`
	Earliest        *time.Time    `json:"earliest,omitempty"`
	Latest          *time.Time    `json:"latest,omitempty"`
	Value           *ValueSummary `json:"value,omitempty"`
}

// CleaningReport is the machine-readable record of a preprocessing run
type CleaningReport struct {
	RunID         string          `json:"run_id"`
	FormatVersion string          `json:"format_version"`
	Version       string          `json:"version"`
	InputPath     string          `json:"input_path"`
	OutputPath    string          `json:"output_path"`
	Status        RunStatus       `json:"status"`
	FailedStage   string          `json:"failed_stage,omitempty"`
	Error         string          `json:"error,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   time.Time       `json:"completed_at"`
	Stages        []StageReport   `json:"stages"`
	Summary       *DatasetSummary `json:"summary,omitempty"`
}

// Stage returns the report of the stage with the given ID
func (r *CleaningReport) Stage(id string) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.ID == id {
			return s, true
		}
	}
	return StageReport{}, false
}
