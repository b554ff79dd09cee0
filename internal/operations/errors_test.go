package operations

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "aqprep/internal/errors"
)

func TestStageError(t *testing.T) {
	tests := []struct {
		name     string
		stageID  string
		err      error
		wantType apperrors.ErrorType
	}{
		{name: "load", stageID: StageIDLoad, err: errors.New("boom"), wantType: apperrors.ErrTypeLoad},
		{name: "select columns", stageID: StageIDSelectColumns, err: errors.New("boom"), wantType: apperrors.ErrTypeSchema},
		{name: "save", stageID: StageIDSave, err: errors.New("boom"), wantType: apperrors.ErrTypeSave},
		{name: "coerce defaults to parse", stageID: StageIDCoerceNumeric, err: errors.New("boom"), wantType: apperrors.ErrTypeParsing},
		{name: "sort defaults to parse", stageID: StageIDSort, err: errors.New("boom"), wantType: apperrors.ErrTypeParsing},
		{
			name:     "typed error keeps its type",
			stageID:  StageIDHandleMissing,
			err:      apperrors.NewSaveError("typed", nil),
			wantType: apperrors.ErrTypeSave,
		},
		{
			name:     "wrapped typed error",
			stageID:  StageIDLoad,
			err:      fmt.Errorf("context: %w", apperrors.NewSchemaError("missing", []string{"value"})),
			wantType: apperrors.ErrTypeSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := stageError(tt.stageID, tt.err)

			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.stageID, appErr.Stage)
			assert.Equal(t, tt.stageID, apperrors.StageOf(appErr))
			assert.Contains(t, appErr.Error(), tt.stageID)
		})
	}
}

func TestStageErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	appErr := stageError(StageIDSave, cause)
	assert.ErrorIs(t, appErr, cause)
}
