// Package config loads the configuration of a preprocessing run.
//
// Values are layered in increasing order of precedence:
//
//  1. Default(), the column set and paths of a raw measurement export
//  2. an optional YAML file passed to Load
//  3. environment variables prefixed with AQPREP_
//
// Command line flags are applied by the caller after Load and before
// Validate.
//
// Environment variables follow the struct layout, for example:
//
//	AQPREP_PIPELINE_INPUT_PATH=data/raw/measurements.csv
//	AQPREP_PIPELINE_COLUMNS=location_id,datetimeUtc,value
//	AQPREP_PIPELINE_SORT_BY=time
//	AQPREP_LOGGING_LEVEL=debug
//	AQPREP_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/aqprep.prom
//
// Validate checks struct tags with go-playground/validator and the
// cross-field rules: the key, target and numeric columns must be part of
// the column allow-list.
package config
