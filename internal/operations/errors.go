package operations

import (
	"errors"

	apperrors "aqprep/internal/errors"
)

// stageErrorTypes classifies untyped errors by the stage that returned them
var stageErrorTypes = map[string]apperrors.ErrorType{
	StageIDLoad:          apperrors.ErrTypeLoad,
	StageIDSelectColumns: apperrors.ErrTypeSchema,
	StageIDSave:          apperrors.ErrTypeSave,
}

// stageError attaches the failing stage to err. Errors without an AppError in
// their chain are wrapped in one typed after the stage.
func stageError(stageID string, err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.WithStage(stageID)
	}

	errType, ok := stageErrorTypes[stageID]
	if !ok {
		errType = apperrors.ErrTypeParsing
	}
	return apperrors.NewAppError(errType, "stage failed", err).WithStage(stageID)
}
