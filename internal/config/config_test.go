package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"location_id", "datetimeUtc", "value", "latitude", "longitude"}, cfg.Pipeline.Columns)
	assert.Equal(t, []string{"latitude", "longitude", "value"}, cfg.Pipeline.NumericColumns)
	assert.Equal(t, "location_id", cfg.Pipeline.IDColumn)
	assert.Equal(t, "datetimeUtc", cfg.Pipeline.TimestampColumn)
	assert.Equal(t, "2006-01-02T15:04:05Z", cfg.Pipeline.TimestampLayout)
	assert.Equal(t, SortLocationTime, cfg.Pipeline.SortBy)
	assert.Equal(t, "both", cfg.Logging.Output)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "yaml file overrides defaults",
			fileContent: `
pipeline:
  input_path: /data/in.csv
  output_path: /data/out.csv
  sort_by: time
logging:
  level: debug
  output: console
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/data/in.csv", cfg.Pipeline.InputPath)
				assert.Equal(t, "/data/out.csv", cfg.Pipeline.OutputPath)
				assert.Equal(t, SortTime, cfg.Pipeline.SortBy)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, "location_id", cfg.Pipeline.IDColumn)
			},
		},
		{
			name: "env overrides yaml file",
			fileContent: `
pipeline:
  input_path: /data/in.csv
`,
			env: map[string]string{
				"AQPREP_PIPELINE_INPUT_PATH":      "/env/in.csv",
				"AQPREP_PIPELINE_NUMERIC_COLUMNS": "value",
				"AQPREP_TELEMETRY_METRICS_FILE":   "/env/aqprep.prom",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/env/in.csv", cfg.Pipeline.InputPath)
				assert.Equal(t, []string{"value"}, cfg.Pipeline.NumericColumns)
				assert.Equal(t, "/env/aqprep.prom", cfg.Telemetry.MetricsFile)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var path string
			if tt.fileContent != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.fileContent), 0644))
			}

			cfg, err := Load(path)
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("pipeline: [unterminated"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("malformed env value", func(t *testing.T) {
		t.Setenv("AQPREP_TELEMETRY_SAMPLE_RATIO", "lots")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "missing input path",
			mutate:  func(c *Config) { c.Pipeline.InputPath = "" },
			wantErr: "InputPath",
		},
		{
			name:    "output equals input",
			mutate:  func(c *Config) { c.Pipeline.OutputPath = c.Pipeline.InputPath },
			wantErr: "OutputPath",
		},
		{
			name:    "empty allow-list",
			mutate:  func(c *Config) { c.Pipeline.Columns = nil },
			wantErr: "Columns",
		},
		{
			name:    "duplicate allow-list entry",
			mutate:  func(c *Config) { c.Pipeline.Columns = append(c.Pipeline.Columns, "value") },
			wantErr: "Columns",
		},
		{
			name:    "unknown sort mode",
			mutate:  func(c *Config) { c.Pipeline.SortBy = "random" },
			wantErr: "SortBy",
		},
		{
			name:    "key column outside allow-list",
			mutate:  func(c *Config) { c.Pipeline.IDColumn = "station" },
			wantErr: "not in allow-list",
		},
		{
			name:    "target not numeric",
			mutate:  func(c *Config) { c.Pipeline.NumericColumns = []string{"latitude"} },
			wantErr: "numeric_columns",
		},
		{
			name: "key column declared numeric",
			mutate: func(c *Config) {
				c.Pipeline.NumericColumns = append(c.Pipeline.NumericColumns, "location_id")
			},
			wantErr: "key columns",
		},
		{
			name:    "file output without path",
			mutate:  func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" },
			wantErr: "FilePath",
		},
		{
			name:    "sample ratio out of range",
			mutate:  func(c *Config) { c.Telemetry.SampleRatio = 2 },
			wantErr: "SampleRatio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
