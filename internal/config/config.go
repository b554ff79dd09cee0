package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. AQPREP_PIPELINE_INPUT_PATH.
const EnvPrefix = "AQPREP"

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig describes one preprocessing run
type PipelineConfig struct {
	InputPath       string   `yaml:"input_path" split_words:"true" validate:"required"`
	OutputPath      string   `yaml:"output_path" split_words:"true" validate:"required,nefield=InputPath"`
	ReportPath      string   `yaml:"report_path" split_words:"true"`
	Sheet           string   `yaml:"sheet" split_words:"true"`
	Columns         []string `yaml:"columns" split_words:"true" validate:"required,min=1,unique,dive,required"`
	NumericColumns  []string `yaml:"numeric_columns" split_words:"true" validate:"unique,dive,required"`
	IDColumn        string   `yaml:"id_column" split_words:"true" validate:"required"`
	TimestampColumn string   `yaml:"timestamp_column" split_words:"true" validate:"required,nefield=IDColumn"`
	TargetColumn    string   `yaml:"target_column" split_words:"true" validate:"required"`
	TimestampLayout string   `yaml:"timestamp_layout" split_words:"true" validate:"required"`
	SortBy          string   `yaml:"sort_by" split_words:"true" validate:"oneof=location_time time"`
	BOMPrefix       bool     `yaml:"bom_prefix" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"omitempty,oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true" validate:"omitempty,oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"omitempty,oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TelemetryConfig controls the optional trace and metrics sinks of a run
type TelemetryConfig struct {
	ServiceName string  `yaml:"service_name" split_words:"true"`
	TraceFile   string  `yaml:"trace_file" split_words:"true"`
	MetricsFile string  `yaml:"metrics_file" split_words:"true"`
	SampleRatio float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputPath:       "data/air_quality_dataset/measurements.csv",
			OutputPath:      "data/air_quality_dataset/measurements_cleaned.csv",
			Columns:         []string{"location_id", "datetimeUtc", "value", "latitude", "longitude"},
			NumericColumns:  []string{"latitude", "longitude", "value"},
			IDColumn:        "location_id",
			TimestampColumn: "datetimeUtc",
			TargetColumn:    "value",
			TimestampLayout: "2006-01-02T15:04:05Z",
			SortBy:          SortLocationTime,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/preprocessing.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "aqprep",
			SampleRatio: 1.0,
		},
	}
}

// Sort modes for PipelineConfig.SortBy
const (
	SortLocationTime = "location_time"
	SortTime         = "time"
)

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct tags and the cross-field rules between columns.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	p := c.Pipeline
	allowed := make(map[string]bool, len(p.Columns))
	for _, col := range p.Columns {
		allowed[col] = true
	}

	var unknown []string
	for _, col := range append([]string{p.IDColumn, p.TimestampColumn, p.TargetColumn}, p.NumericColumns...) {
		if !allowed[col] {
			unknown = append(unknown, col)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("columns not in allow-list: %s", strings.Join(unknown, ", "))
	}

	numeric := make(map[string]bool, len(p.NumericColumns))
	for _, col := range p.NumericColumns {
		numeric[col] = true
	}
	if !numeric[p.TargetColumn] {
		return fmt.Errorf("target column %q must be listed in numeric_columns", p.TargetColumn)
	}
	if numeric[p.IDColumn] || numeric[p.TimestampColumn] {
		return fmt.Errorf("key columns cannot be numeric columns")
	}

	return nil
}
