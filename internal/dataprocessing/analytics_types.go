package dataprocessing

import "time"

// AnalysisOptions names the columns summarized at the end of a run
type AnalysisOptions struct {
	IDColumn        string
	TimestampColumn string
	ValueColumn     string
}

// Statistics is the end-of-run summary of a cleaned dataset
type Statistics struct {
	TotalRows       int          `json:"total_rows"`
	UniqueLocations int          `json:"unique_locations"`
	Earliest        time.Time    `json:"earliest,omitempty"`
	Latest          time.Time    `json:"latest,omitempty"`
	Value           *ColumnStats `json:"value,omitempty"`
}
