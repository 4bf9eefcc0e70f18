package errors_test

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorType
	}{
		{"not found", apperrors.NewNotFoundError("place x"), apperrors.ErrorTypeNotFound},
		{"wrapped validation", fmt.Errorf("submit: %w", apperrors.NewValidationError("rating")), apperrors.ErrorTypeValidation},
		{"insufficient points", apperrors.NewInsufficientPointsError(10, 20), apperrors.ErrorTypeInsufficientPoints},
		{"foreign error", sql.ErrConnDone, apperrors.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.TypeOf(tt.err))
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, apperrors.IsNotFound(apperrors.NewNotFoundError("x")))
	assert.False(t, apperrors.IsNotFound(nil))
	assert.True(t, apperrors.IsValidation(fmt.Errorf("wrap: %w", apperrors.NewValidationError("x"))))
	assert.True(t, apperrors.IsForbidden(apperrors.NewForbiddenError("x")))
	assert.True(t, apperrors.IsInsufficientPoints(apperrors.NewInsufficientPointsError(0, 1)))
}

func TestAppError_Unwrap(t *testing.T) {
	err := apperrors.NewInternalError("failed to read place", sql.ErrTxDone)

	assert.ErrorIs(t, err, sql.ErrTxDone)
	assert.Equal(t, "INTERNAL: failed to read place: sql: transaction has already been committed or rolled back", err.Error())
	assert.Equal(t, "cannot redeem 20 points with a balance of 10", apperrors.NewInsufficientPointsError(10, 20).Message)
}
