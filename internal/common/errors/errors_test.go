package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedCode    string
		expectedRetries int
	}{
		{
			name:            "validation is not retried",
			err:             NewComplaintValidationError("Field 'text' is required and cannot be empty."),
			expectedCode:    "COMPLAINT_VALIDATION_FAILED",
			expectedRetries: 0,
		},
		{
			name:            "classification failure is not retried",
			err:             NewClassificationFailedError(fmt.Errorf("nan score")),
			expectedCode:    "CLASSIFICATION_FAILED",
			expectedRetries: 0,
		},
		{
			name:            "insert failure is retried",
			err:             NewFeedbackSaveFailedError(fmt.Errorf("connection reset")),
			expectedCode:    "DATABASE_INSERT_FAILED",
			expectedRetries: 3,
		},
		{
			name:            "unmapped code falls back to itself",
			err:             NewExternalServiceError("sns", fmt.Errorf("boom")),
			expectedCode:    "EXTERNAL_SERVICE_ERROR",
			expectedRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)

			assert.Equal(t, tt.expectedCode, bpmn.Code)
			assert.Equal(t, tt.expectedRetries, bpmn.Retries)
			assert.Equal(t, tt.err.Message, bpmn.Message)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.expectedCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestClassificationFailed_HidesDetails(t *testing.T) {
	err := NewClassificationFailedError(fmt.Errorf("coefficient row 3 has NaN"))

	assert.Equal(t, "Classification failed. Please try again.", err.Message)
	assert.NotContains(t, err.Error(), "NaN")
	assert.Contains(t, err.Details, "NaN")
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("store: %w", NewFeedbackSaveFailedError(fmt.Errorf("disk full")))

	stdErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.Equal(t, MessageFeedbackSaveFailed, stdErr.Message)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeComplaintValidationFailed))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeFeedbackValidationFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeClassificationFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeModelUnavailable))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeAuthentication))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CLASSIFIER", GetErrorCategory(ErrCodeClassificationFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "MESSAGING", GetErrorCategory(ErrCodeEventPublishFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeComplaintValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeQueryTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeFeedbackValidationFailed))
}

// ==========================
// Job outcome
// ==========================

func TestDecideJobOutcome(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		jobRetries  int32
		wantThrow   bool
		wantRetries int
	}{
		{
			name:       "validation errors are thrown",
			err:        NewComplaintValidationError("Field 'text' is required and cannot be empty."),
			jobRetries: 3,
			wantThrow:  true,
		},
		{
			name:        "insert failures are retried",
			err:         NewComplaintSaveFailedError(fmt.Errorf("connection reset")),
			jobRetries:  5,
			wantRetries: 3,
		},
		{
			name:        "retries are capped by the broker",
			err:         NewComplaintSaveFailedError(fmt.Errorf("connection reset")),
			jobRetries:  2,
			wantRetries: 1,
		},
		{
			name:       "last attempt is thrown",
			err:        NewComplaintSaveFailedError(fmt.Errorf("connection reset")),
			jobRetries: 1,
			wantThrow:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := DecideJobOutcome(ConvertToBPMNError(tt.err), tt.jobRetries)
			assert.Equal(t, tt.wantThrow, outcome.Throw)
			assert.Equal(t, tt.wantRetries, outcome.Retries)
		})
	}
}
