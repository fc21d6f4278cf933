package classifycomplaint

import (
	"context"
	"fmt"
	"testing"
	"time"

	"complaint-triage/internal/common/config"
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

func (m *MockComplaints) Classify(ctx context.Context, text string) (*complaints.ClassifyResult, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*complaints.ClassifyResult), args.Error(1)
}

// ==========================
// Mock Job Helper
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                      key,
		Type:                     TaskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "complaint-triage",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_ClassifyComplaint",
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Variables:                string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}

// ==========================
// Test Helpers
// ==========================

var classifiedAt = time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)

func createValidConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       10 * time.Second,
	}
}

func createHandler(t *testing.T, svc *MockComplaints) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: createValidConfig(),
		Complaints:   svc,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func createResult() *complaints.ClassifyResult {
	return &complaints.ClassifyResult{
		Prediction: &models.Prediction{
			ComplaintText:      "My card was charged twice and nobody answers",
			Category:           models.CategoryBilling,
			CategoryConfidence: 0.871,
			Priority:           models.PriorityHigh,
			PriorityConfidence: 0.642,
			RuleOverride:       true,
			RuleExplanation:    "Matched critical pattern: charged twice",
			SentimentLabel:     models.SentimentNegative,
			SentimentScore:     -0.42,
		},
		ComplaintID:  77,
		ClassifiedAt: classifiedAt,
	}
}

// ==========================
// Handler Creation Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid configuration",
			opts:    HandlerOptions{CustomConfig: createValidConfig(), Complaints: new(MockComplaints)},
			wantErr: false,
		},
		{
			name:    "missing complaint service",
			opts:    HandlerOptions{CustomConfig: createValidConfig()},
			wantErr: true,
			errMsg:  "complaint service is required",
		},
		{
			name: "invalid timeout",
			opts: HandlerOptions{
				CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: -time.Second},
				Complaints:   new(MockComplaints),
			},
			wantErr: true,
			errMsg:  "timeout must be positive",
		},
		{
			name: "invalid max jobs active",
			opts: HandlerOptions{
				CustomConfig: &Config{Enabled: true, MaxJobsActive: 0, Timeout: time.Second},
				Complaints:   new(MockComplaints),
			},
			wantErr: true,
			errMsg:  "max_jobs_active must be positive",
		},
		{
			name: "review confidence out of range",
			opts: HandlerOptions{
				CustomConfig: &Config{Enabled: true, MaxJobsActive: 1, Timeout: time.Second, ReviewConfidence: 1.5},
				Complaints:   new(MockComplaints),
			},
			wantErr: true,
			errMsg:  "review_confidence must be between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, err := NewHandler(tt.opts)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, handler)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, handler.logger)
			assert.NotNil(t, handler.service)
			assert.Equal(t, TaskType, handler.GetTaskType())
			assert.True(t, handler.IsEnabled())
		})
	}
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	appConfig := &config.Config{Workers: map[string]config.WorkerConfig{
		configName: {Enabled: false, MaxJobsActive: 20, Timeout: 2500},
	}}

	appConfig.Classifier.ReviewConfidence = 0.7

	cfg := createConfigFromAppConfig(appConfig, nil)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 20, cfg.MaxJobsActive)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 0.7, cfg.ReviewConfidence)

	cfg = createConfigFromAppConfig(&config.Config{}, nil)
	assert.Equal(t, DefaultConfig(), cfg)

	custom := createValidConfig()
	assert.Same(t, custom, createConfigFromAppConfig(appConfig, custom))
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := createHandler(t, new(MockComplaints))

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
		wantText  string
	}{
		{
			name:      "complaint text with other process variables",
			variables: map[string]interface{}{"complaintText": "Parcel never arrived", "customerId": "c-19"},
			wantText:  "Parcel never arrived",
		},
		{
			name:      "empty text is left to the service",
			variables: map[string]interface{}{"complaintText": ""},
			wantText:  "",
		},
		{
			name:      "missing complaint text",
			variables: map[string]interface{}{"customerId": "c-19"},
			wantErr:   true,
		},
		{
			name:      "complaint text wrong type",
			variables: map[string]interface{}{"complaintText": 42},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := handler.parseInput(createMockJob(12345, tt.variables))

			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := errors.As(err)
				require.True(t, ok, "error should be StandardError")
				assert.Equal(t, errors.ErrCodeComplaintValidationFailed, stdErr.Code)
				assert.False(t, stdErr.Retryable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, input.ComplaintText)
		})
	}
}

// ==========================
// Execution Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	svc := new(MockComplaints)
	handler := createHandler(t, svc)

	svc.On("Classify", mock.Anything, "My card was charged twice and nobody answers").Return(createResult(), nil)

	output, err := handler.Execute(context.Background(), &Input{ComplaintText: "My card was charged twice and nobody answers"})
	require.NoError(t, err)

	assert.Equal(t, int64(77), output.ComplaintID)
	assert.Equal(t, "Billing", output.Category)
	assert.Equal(t, "High", output.Priority)
	assert.True(t, output.RuleOverride)
	assert.Equal(t, "Negative", output.SentimentLabel)
	assert.Equal(t, classifiedAt, output.ClassifiedAt)
	svc.AssertExpectations(t)
}

func TestHandler_ExecuteFlagsLowConfidence(t *testing.T) {
	tests := []struct {
		name            string
		threshold       float64
		wantNeedsReview bool
	}{
		{name: "confident prediction", threshold: 0.5, wantNeedsReview: false},
		{name: "below threshold", threshold: 0.9, wantNeedsReview: true},
		{name: "flag disabled", threshold: 0, wantNeedsReview: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockComplaints)
			cfg := createValidConfig()
			cfg.ReviewConfidence = tt.threshold
			handler, err := NewHandler(HandlerOptions{CustomConfig: cfg, Complaints: svc, Logger: logger.NewNoOpLogger()})
			require.NoError(t, err)

			svc.On("Classify", mock.Anything, mock.Anything).Return(createResult(), nil)

			output, err := handler.Execute(context.Background(), &Input{ComplaintText: "charged twice"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantNeedsReview, output.NeedsReview)
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
			name:     "empty complaint",
			err:      errors.NewComplaintValidationError("Field 'text' is required and cannot be empty."),
			wantCode: "COMPLAINT_VALIDATION_FAILED",
			retries:  0,
		},
		{
			name:     "inference failure",
			err:      errors.NewClassificationFailedError(fmt.Errorf("nan probability")),
			wantCode: "CLASSIFICATION_FAILED",
			retries:  0,
		},
		{
			name:     "storage failure is retried",
			err:      errors.NewComplaintSaveFailedError(fmt.Errorf("connection reset")),
			wantCode: "DATABASE_INSERT_FAILED",
			retries:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockComplaints)
			handler := createHandler(t, svc)
			svc.On("Classify", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := handler.Execute(context.Background(), &Input{ComplaintText: "x"})
			require.Error(t, err)

			bpmnErr := errors.ConvertToBPMNError(convertToStandardError(err))
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.retries, bpmnErr.Retries)
		})
	}
}

// ==========================
// Output / Error Helper Tests
// ==========================

func TestOutputVariables(t *testing.T) {
	vars := outputVariables(&Output{
		ComplaintID:  77,
		Category:     "Billing",
		Priority:     "High",
		RuleOverride: true,
		ClassifiedAt: classifiedAt,
	})

	assert.Equal(t, int64(77), vars["complaintId"])
	assert.Equal(t, "High", vars["priority"])
	assert.Equal(t, true, vars["ruleOverride"])
	assert.Equal(t, "2024-05-01T09:15:00Z", vars["classifiedAt"])
	assert.Equal(t, false, vars["needsReview"])
	assert.Len(t, vars, 12)
}

func TestHandler_ExtractErrorCode(t *testing.T) {
	assert.Equal(t, "CLASSIFICATION_FAILED", extractErrorCode(errors.NewClassificationFailedError(fmt.Errorf("x"))))
	assert.Equal(t, "UNKNOWN_ERROR", extractErrorCode(fmt.Errorf("plain")))
	assert.Equal(t, "UNKNOWN_ERROR", extractErrorCode(nil))
}

func TestHandler_ConvertToStandardError(t *testing.T) {
	stdErr := convertToStandardError(fmt.Errorf("model panicked"))
	assert.Equal(t, errors.ErrCodeClassificationFailed, stdErr.Code)
	assert.Equal(t, errors.MessageClassificationFailed, stdErr.Message)
	assert.Contains(t, stdErr.Details, "model panicked")

	original := errors.NewComplaintValidationError("too long")
	assert.Same(t, original, convertToStandardError(original))
}
