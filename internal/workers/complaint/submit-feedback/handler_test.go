package submitfeedback

import (
	"context"
	"fmt"
	"testing"
	"time"

	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/complaints"
	"complaint-triage/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
// ==========================

type MockComplaints struct {
	mock.Mock
}

func (m *MockComplaints) SubmitFeedback(ctx context.Context, in complaints.FeedbackInput) (*complaints.FeedbackResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*complaints.FeedbackResult), args.Error(1)
}

// ==========================
// Mock Job Helper
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "complaint-review",
		ElementId:          "Activity_SubmitFeedback",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

// ==========================
// Test Helpers
// ==========================

var submittedAt = time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)

func validVariables() map[string]interface{} {
	return map[string]interface{}{
		"complaintId":       42,
		"complaintText":     "Router drops every hour",
		"predictedCategory": "Technical",
		"predictedPriority": "Low",
		"correctCategory":   "Technical",
		"correctPriority":   "Medium",
		"reviewer":          "ops-team",
	}
}

func createHandler(t *testing.T, svc *MockComplaints) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 2, Timeout: 5 * time.Second},
		Complaints:   svc,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := createHandler(t, new(MockComplaints))

	tests := []struct {
		name    string
		modify  func(vars map[string]interface{})
		wantErr bool
	}{
		{name: "valid input", modify: func(map[string]interface{}) {}},
		{name: "missing complaint id", modify: func(v map[string]interface{}) { delete(v, "complaintId") }, wantErr: true},
		{name: "missing correct priority", modify: func(v map[string]interface{}) { delete(v, "correctPriority") }, wantErr: true},
		{name: "fractional complaint id", modify: func(v map[string]interface{}) { v["complaintId"] = 4.5 }, wantErr: true},
		{name: "zero complaint id", modify: func(v map[string]interface{}) { v["complaintId"] = 0 }, wantErr: true},
		{name: "unknown correct category", modify: func(v map[string]interface{}) { v["correctCategory"] = "Shipping" }, wantErr: true},
		{name: "lowercase priority", modify: func(v map[string]interface{}) { v["correctPriority"] = "high" }, wantErr: true},
		{name: "predicted labels are free text", modify: func(v map[string]interface{}) { v["predictedCategory"] = "legacy" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := validVariables()
			tt.modify(vars)

			input, err := handler.parseInput(createMockJob(9, vars))
			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := errors.As(err)
				require.True(t, ok)
				assert.Equal(t, errors.ErrCodeFeedbackValidationFailed, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(42), input.ComplaintID)
			assert.Equal(t, "Medium", input.CorrectPriority)
		})
	}
}

// ==========================
// Execution Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	svc := new(MockComplaints)
	handler := createHandler(t, svc)

	svc.On("SubmitFeedback", mock.Anything, complaints.FeedbackInput{
		ComplaintID:       42,
		ComplaintText:     "Router drops every hour",
		PredictedCategory: "Technical",
		PredictedPriority: "Low",
		CorrectCategory:   "Technical",
		CorrectPriority:   "Medium",
	}).Return(&complaints.FeedbackResult{
		Message:         complaints.FeedbackSavedMessage,
		FeedbackID:      5,
		IsCorrect:       false,
		OverallAccuracy: models.FeedbackAccuracy{Total: 8, Correct: 6, Accuracy: 0.75},
		SubmittedAt:     submittedAt,
	}, nil)

	input, err := handler.parseInput(createMockJob(9, validVariables()))
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, int64(5), output.FeedbackID)
	assert.False(t, output.IsCorrect)
	assert.Equal(t, 0.75, output.OverallAccuracy)
	assert.Equal(t, 8, output.FeedbackTotal)

	vars := outputVariables(output)
	assert.Equal(t, "2024-05-02T14:00:00Z", vars["submittedAt"])
	assert.Equal(t, "Feedback saved successfully.", vars["feedbackMessage"])
	assert.Equal(t, false, vars["retrainRecommended"])
	svc.AssertExpectations(t)
}

func TestHandler_ExecuteRecommendsRetraining(t *testing.T) {
	tests := []struct {
		name     string
		accuracy models.FeedbackAccuracy
		want     bool
	}{
		{name: "accuracy below target", accuracy: models.FeedbackAccuracy{Total: 8, Correct: 6, Accuracy: 0.75}, want: true},
		{name: "accuracy at target", accuracy: models.FeedbackAccuracy{Total: 10, Correct: 8, Accuracy: 0.8}, want: false},
		{name: "no reviews yet", accuracy: models.FeedbackAccuracy{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockComplaints)
			handler, err := NewHandler(HandlerOptions{
				CustomConfig: DefaultConfig(),
				Complaints:   svc,
				Logger:       logger.NewNoOpLogger(),
			})
			require.NoError(t, err)

			svc.On("SubmitFeedback", mock.Anything, mock.Anything).Return(&complaints.FeedbackResult{
				Message:         complaints.FeedbackSavedMessage,
				FeedbackID:      1,
				OverallAccuracy: tt.accuracy,
				SubmittedAt:     submittedAt,
			}, nil)

			output, err := handler.Execute(context.Background(), &Input{ComplaintID: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, output.RetrainRecommended)
		})
	}
}

func TestHandler_ExecuteErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		retries  int
	}{
		{
			name:     "invalid label",
			err:      errors.NewFeedbackValidationError("Invalid priority. Choose from High, Medium, Low"),
			wantCode: "FEEDBACK_VALIDATION_FAILED",
		},
		{
			name:     "storage failure",
			err:      errors.NewFeedbackSaveFailedError(fmt.Errorf("deadlock")),
			wantCode: "DATABASE_INSERT_FAILED",
			retries:  3,
		},
		{
			name:     "unexpected error becomes save failure",
			err:      fmt.Errorf("boom"),
			wantCode: "DATABASE_INSERT_FAILED",
			retries:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockComplaints)
			handler := createHandler(t, svc)
			svc.On("SubmitFeedback", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := handler.Execute(context.Background(), &Input{ComplaintID: 1})
			require.Error(t, err)

			bpmnErr := errors.ConvertToBPMNError(convertToStandardError(err))
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.retries, bpmnErr.Retries)
		})
	}
}
