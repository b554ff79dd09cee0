package exporter

import (
	"strconv"
	"time"

	"aqprep/internal/dataprocessing"
)

// ColumnType is the type inferred for a column of a written file
type ColumnType string

const (
	ColumnEmpty     ColumnType = "empty"
	ColumnInteger   ColumnType = "integer"
	ColumnFloat     ColumnType = "float"
	ColumnTimestamp ColumnType = "timestamp"
	ColumnString    ColumnType = "string"
)

// InferColumnType returns the narrowest type that every non-missing value fits
func InferColumnType(values []string) ColumnType {
	result := ColumnEmpty
	for _, v := range values {
		if dataprocessing.IsMissingToken(v) {
			continue
		}
		t := valueType(v)
		switch {
		case result == ColumnEmpty:
			result = t
		case result == t:
		case isNumeric(result) && isNumeric(t):
			result = ColumnFloat
		default:
			return ColumnString
		}
	}
	return result
}

func valueType(v string) ColumnType {
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return ColumnInteger
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return ColumnFloat
	}
	if _, err := time.Parse(time.RFC3339, v); err == nil {
		return ColumnTimestamp
	}
	return ColumnString
}

func isNumeric(t ColumnType) bool {
	return t == ColumnInteger || t == ColumnFloat
}
