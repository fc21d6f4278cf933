package main

import (
	"context"
	"testing"

	"complaint-triage/internal/bootstrap"
	"complaint-triage/internal/common/camunda"
	"complaint-triage/internal/common/config"
	apperrors "complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Startup failures
// ==========================

func TestServe_MissingModelsReturnsError(t *testing.T) {
	cfg := &config.Config{
		Models: config.ModelsConfig{
			Dir:          t.TempDir(),
			CategoryFile: "category_model.json",
			PriorityFile: "priority_model.json",
		},
	}

	err := serve(context.Background(), cfg, logger.NewTestLogger(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialise dependencies")

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeModelUnavailable, stdErr.Code)
}

func TestRegisterWorkers_Errors(t *testing.T) {
	tests := []struct {
		name          string
		cfg           *config.Config
		expectedError string
	}{
		{
			name:          "missing complaint service",
			cfg:           &config.Config{},
			expectedError: "complaint service is required",
		},
		{
			name: "invalid review confidence",
			cfg: &config.Config{
				Classifier: config.ClassifierConfig{ReviewConfidence: 1.5},
			},
			expectedError: "review_confidence must be between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewTestLogger(t)
			set := camunda.NewWorkerSet(nil, log)

			err := registerWorkers(set, tt.cfg, &bootstrap.Dependencies{}, log)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
			assert.Empty(t, set.Registered())
		})
	}
}
