package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single", []float64{4}, 4},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"negative", []float64{-5, -1}, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.values))
		})
	}

	assert.True(t, math.IsNaN(Median(nil)))

	values := []float64{3, 1, 2}
	Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values, "input must not be reordered")
}

func TestDescribe(t *testing.T) {
	f, _, err := mustFrame(t, "v\n2\n4\nbad\n4\n5\n5\n7\n9\n").CoerceNumeric("v")
	require.NoError(t, err)

	s, err := Describe(f, "v")
	require.NoError(t, err)
	assert.Equal(t, "v", s.Column)
	assert.Equal(t, 7, s.Count)
	assert.Equal(t, 1, s.Missing)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.InDelta(t, 36.0/7.0, s.Mean, 1e-9)
	assert.Equal(t, 5.0, s.Median)
	assert.Greater(t, s.StdDev, 0.0)

	single, _, err := mustFrame(t, "v\n3\n").CoerceNumeric("v")
	require.NoError(t, err)
	s, err = Describe(single, "v")
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.StdDev)

	empty, _, err := mustFrame(t, "v\nNA\n").CoerceNumeric("v")
	require.NoError(t, err)
	_, err = Describe(empty, "v")
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestMissingSummary(t *testing.T) {
	f := mustFrame(t, "a,b\n1,\n,\n3,x\n4,y\n")

	summary := MissingSummary(f)
	require.Len(t, summary, 2)
	assert.Equal(t, MissingCount{Column: "a", Count: 1, Percent: 25}, summary[0])
	assert.Equal(t, MissingCount{Column: "b", Count: 2, Percent: 50}, summary[1])
}

func TestUniqueCount(t *testing.T) {
	f := mustFrame(t, "id\n1\n2\n1\nNA\n3\n")

	n, err := UniqueCount(f, "id")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = UniqueCount(f, "missing")
	assert.Error(t, err)
}

func TestTimeRange(t *testing.T) {
	f, _, err := mustFrame(t, "ts\n2024-01-02T00:00:00Z\n2023-12-31T23:00:00Z\nbad\n2024-01-05T06:00:00Z\n").
		ParseTimestamps("ts", ParseTimestamp)
	require.NoError(t, err)

	earliest, latest, ok, err := TimeRange(f, "ts")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), earliest)
	assert.Equal(t, time.Date(2024, 1, 5, 6, 0, 0, 0, time.UTC), latest)

	_, err = mustFrame(t, "ts\nx\n").Times("ts")
	assert.ErrorContains(t, err, "not time")
}

func TestAnalyze(t *testing.T) {
	f := mustFrame(t, "location_id,datetimeUtc,value\n1,2024-01-01T00:00:00Z,10\n1,2024-01-02T00:00:00Z,20\n2,2024-01-03T00:00:00Z,30\n")
	f, _, err := f.CoerceNumeric("value")
	require.NoError(t, err)
	f, _, err = f.ParseTimestamps("datetimeUtc", ParseTimestamp)
	require.NoError(t, err)

	stats, err := Analyze(f, AnalysisOptions{
		IDColumn:        "location_id",
		TimestampColumn: "datetimeUtc",
		ValueColumn:     "value",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 2, stats.UniqueLocations)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), stats.Earliest)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), stats.Latest)
	require.NotNil(t, stats.Value)
	assert.Equal(t, 10.0, stats.Value.Min)
	assert.Equal(t, 30.0, stats.Value.Max)

	stats, err = Analyze(f, AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Nil(t, stats.Value)
}
