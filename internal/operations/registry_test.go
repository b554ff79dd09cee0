package operations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqprep/internal/exporter"
	"aqprep/internal/operations"
	"aqprep/internal/validation"
)

func noop(context.Context, *operations.RunState) error { return nil }

func TestRegistry(t *testing.T) {
	registry := operations.NewRegistry()

	assert.Zero(t, registry.Count())
	stages := registry.List()
	assert.NotNil(t, stages, "List should return an empty slice, not nil")
	assert.Empty(t, stages)
}

func TestRegistryRegister(t *testing.T) {
	registry := operations.NewRegistry()

	require.NoError(t, registry.Register(newFuncStage("b", noop)))
	require.NoError(t, registry.Register(newFuncStage("a", noop)))
	require.NoError(t, registry.Register(newFuncStage("c", noop)))

	assert.Equal(t, 3, registry.Count())
	assert.Equal(t, []string{"b", "a", "c"}, registry.ListIDs(), "registration order is execution order")
	assert.True(t, registry.Has("a"))
	assert.False(t, registry.Has("d"))

	stage, err := registry.Get("c")
	require.NoError(t, err)
	assert.Equal(t, "c", stage.ID())

	_, err = registry.Get("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestRegistryRegisterErrors(t *testing.T) {
	tests := []struct {
		name    string
		stage   operations.Stage
		wantErr string
	}{
		{name: "nil stage", stage: nil, wantErr: "nil Stage"},
		{name: "empty id", stage: newFuncStage("", noop), wantErr: "cannot be empty"},
		{name: "duplicate", stage: newFuncStage("dup", noop), wantErr: "already registered"},
	}

	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(newFuncStage("dup", noop)))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(tt.stage)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryListIDsIsCopy(t *testing.T) {
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(newFuncStage("a", noop)))

	ids := registry.ListIDs()
	ids[0] = "changed"
	assert.Equal(t, []string{"a"}, registry.ListIDs())
}

func TestDefaultStagesOrder(t *testing.T) {
	stages := operations.DefaultStages(validation.NewFileValidator(nil), exporter.NewCSVWriter(nil))

	ids := make([]string, len(stages))
	for i, s := range stages {
		ids[i] = s.ID()
		assert.NotEmpty(t, s.Name())
	}
	assert.Equal(t, []string{
		operations.StageIDLoad,
		operations.StageIDSelectColumns,
		operations.StageIDCoerceNumeric,
		operations.StageIDParseTimestamps,
		operations.StageIDHandleMissing,
		operations.StageIDDeduplicate,
		operations.StageIDSort,
		operations.StageIDSave,
	}, ids)
}
