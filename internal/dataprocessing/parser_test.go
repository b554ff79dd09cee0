package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCols []string
		wantRows int
		wantErr  string
	}{
		{
			name:     "header and rows",
			input:    "location_id,datetimeUtc,value\n1,2024-01-01T00:00:00Z,12.5\n2,2024-01-01T00:00:00Z,3\n",
			wantCols: []string{"location_id", "datetimeUtc", "value"},
			wantRows: 2,
		},
		{
			name:     "byte order mark is stripped",
			input:    "\ufefflocation_id,value\n1,2\n",
			wantCols: []string{"location_id", "value"},
			wantRows: 1,
		},
		{
			name:     "header only",
			input:    "a,b\n",
			wantCols: []string{"a", "b"},
		},
		{
			name:     "short rows are padded",
			input:    "a,b,c\n1\n",
			wantCols: []string{"a", "b", "c"},
			wantRows: 1,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: "no header",
		},
		{
			name:    "long row",
			input:   "a,b\n1,2,3\n",
			wantErr: "fields",
		},
		{
			name:    "invalid utf-8",
			input:   "a,b\n\xff\xfe,1\n",
			wantErr: "UTF-8",
		},
		{
			name:    "binary content",
			input:   "PK\x03\x04\x00\x00",
			wantErr: "NUL",
		},
		{
			name:    "bare quote",
			input:   "a,b\n1,x\"y\n",
			wantErr: "records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ReadCSV(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, f.Columns())
			assert.Equal(t, tt.wantRows, f.Len())
		})
	}
}

func TestParseFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measurements.csv")
	require.NoError(t, os.WriteFile(path, []byte("location_id,value\n1,2\n"), 0644))

	f, err := ParseFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"), ReadOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFile_XLSX(t *testing.T) {
	tmpDir := t.TempDir()

	f := excelize.NewFile()
	sheet := "measurements"
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)

	rows := [][]interface{}{
		{"location_id", "datetimeUtc", "value"},
		{1, "2024-01-01T00:00:00Z", 12.5},
		{2, "2024-01-01T01:00:00Z"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(tmpDir, "measurements.xlsx")
	require.NoError(t, f.SaveAs(path))

	frame, err := ParseFile(path, ReadOptions{Sheet: sheet})
	require.NoError(t, err)
	assert.Equal(t, []string{"location_id", "datetimeUtc", "value"}, frame.Columns())
	require.Equal(t, 2, frame.Len())
	assert.Equal(t, "1", frame.Row(0).Get("location_id").Str)
	assert.Equal(t, "12.5", frame.Row(0).Get("value").Str)
	assert.True(t, frame.Row(1).Get("value").Null)

	_, err = ParseFile(path, ReadOptions{Sheet: "nope"})
	assert.Error(t, err)
}

func TestReadXLSX_EmptySheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))

	_, err := ReadXLSX(path, "")
	assert.ErrorIs(t, err, ErrNoHeader)
}
