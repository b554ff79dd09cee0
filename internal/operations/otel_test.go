package operations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"aqprep/internal/infrastructure"
	"aqprep/internal/operations"
	"aqprep/internal/shared/testutil"
)

func TestPipelineRun_Telemetry(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	metrics, err := infrastructure.CreatePipelineMetrics(mp.Meter("aqprep-test"))
	require.NoError(t, err)

	cfg := testConfig(t, t.TempDir(), testutil.SampleMeasurementsCSV)
	p, err := operations.NewPipeline(cfg, nil,
		operations.WithTracer(tp.Tracer("aqprep-test")),
		operations.WithMetrics(metrics))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	spans := recorder.Ended()
	names := make(map[string]codes.Code, len(spans))
	for _, s := range spans {
		names[s.Name()] = s.Status().Code
	}
	assert.Len(t, spans, 9, "one span per stage plus the run")
	assert.Equal(t, codes.Ok, names["pipeline.run"])
	assert.Equal(t, codes.Ok, names["pipeline.stage.handle_missing"])

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), sums["aqprep_runs"])
	assert.Equal(t, int64(3), sums["aqprep_rows_dropped"], "header, missing timestamp, duplicate")
	assert.Equal(t, int64(3), sums["aqprep_values_imputed"])
	assert.Equal(t, int64(2), sums["aqprep_parse_failures"])
}

func TestPipelineRun_TelemetryFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cfg := testConfig(t, t.TempDir(), "location_id\n1\n")
	p, err := operations.NewPipeline(cfg, nil, operations.WithTracer(tp.Tracer("aqprep-test")))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)

	status := make(map[string]codes.Code)
	for _, s := range recorder.Ended() {
		status[s.Name()] = s.Status().Code
	}
	assert.Equal(t, codes.Error, status["pipeline.stage.select_columns"])
	assert.Equal(t, codes.Error, status["pipeline.run"])
	assert.NotContains(t, status, "pipeline.stage.coerce_numeric")
}
