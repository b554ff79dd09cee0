package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MeasurementsHeader is the column set of a raw measurement export
const MeasurementsHeader = "location_id,sensors_id,location,datetimeUtc,datetimeLocal,timezone,latitude,longitude,parameter,units,value"

// SampleMeasurementsCSV is a small raw export with the defects the cleaner
// handles: an unparseable value, a duplicate key, a missing timestamp, a
// repeated header row and unsorted locations.
const SampleMeasurementsCSV = MeasurementsHeader + `
2,101,Station B,2024-01-01T01:00:00Z,2024-01-01T04:00:00+03:00,Asia/Baghdad,33.3,44.4,pm25,µg/m³,20
1,100,Station A,2024-01-01T00:00:00Z,2024-01-01T03:00:00+03:00,Asia/Baghdad,33.1,44.2,pm25,µg/m³,12.5
1,100,Station A,2024-01-01T00:00:00Z,2024-01-01T03:00:00+03:00,Asia/Baghdad,33.1,44.2,pm25,µg/m³,bad
` + MeasurementsHeader + `
1,100,Station A,,2024-01-01T04:00:00+03:00,Asia/Baghdad,33.1,44.2,pm25,µg/m³,14
1,100,Station A,2024-01-01T02:00:00Z,2024-01-01T05:00:00+03:00,Asia/Baghdad,33.1,44.2,pm25,µg/m³,bad
2,101,Station B,2024-01-01T00:00:00Z,2024-01-01T03:00:00+03:00,Asia/Baghdad,33.3,,pm25,µg/m³,30
`

// WriteFixture writes content to name inside dir and returns the full path
func WriteFixture(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}
