package classifycomplaint

import (
	"context"
	"fmt"
	"time"

	"complaint-triage/internal/common/config"
	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/common/metrics"
	"complaint-triage/internal/common/observability"
	"complaint-triage/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType   = "complaint.classify"
	configName = "classify-complaint"
)

type executor interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type Handler struct {
	config  *Config
	logger  logger.Logger
	obs     *observability.Observability
	service executor
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Complaints    Classifier
	CustomConfig  *Config
	Logger        logger.Logger
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", configName, err)
	}
	if opts.Complaints == nil {
		return nil, fmt.Errorf("complaint service is required for %s", configName)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	handler := &Handler{
		config: workerConfig,
		logger: loggerInstance,
		obs:    opts.Observability,
	}

	handler.service = NewService(ServiceDependencies{
		Complaints: opts.Complaints,
		Logger:     loggerInstance,
	}, handler.config)

	return handler, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing complaint classification", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})

	input, err := h.parseInput(job)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, extractErrorCode(err)).Inc()
		h.recordJob(ctx, startTime, "failed")
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, extractErrorCode(err)).Inc()
		h.recordJob(ctx, startTime, "failed")
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.recordJob(ctx, startTime, "completed")
}

func (h *Handler) recordJob(ctx context.Context, start time.Time, status string) {
	h.obs.RecordJobProcessed(ctx, status)
	h.obs.RecordJobDuration(ctx, time.Since(start), status)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeComplaintValidationFailed,
			Message:   "Failed to parse job variables",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now(),
		}
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeComplaintValidationFailed,
			Message:   "Input validation failed",
			Details:   fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()),
			Retryable: false,
			Timestamp: time.Now(),
		}
	}

	return &Input{ComplaintText: variables["complaintText"].(string)}, nil
}

func outputVariables(output *Output) map[string]interface{} {
	return map[string]interface{}{
		"complaintId":        output.ComplaintID,
		"category":           output.Category,
		"categoryConfidence": output.CategoryConfidence,
		"priority":           output.Priority,
		"priorityConfidence": output.PriorityConfidence,
		"ruleOverride":       output.RuleOverride,
		"ruleExplanation":    output.RuleExplanation,
		"sentimentLabel":     output.SentimentLabel,
		"sentimentScore":     output.SentimentScore,
		"sentimentBoosted":   output.SentimentBoosted,
		"needsReview":        output.NeedsReview,
		"classifiedAt":       output.ClassifiedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(outputVariables(output))
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return
	}

	h.logger.Info("Complaint classified", map[string]interface{}{
		"jobKey":      job.GetKey(),
		"complaintId": output.ComplaintID,
		"category":    output.Category,
		"priority":    output.Priority,
		"worker":      TaskType,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	h.logger.Warn("Complaint classification job failed", map[string]interface{}{
		"jobKey": job.GetKey(),
		"error":  err.Error(),
		"worker": TaskType,
	})
	errors.NewErrorHandler(h.logger).HandleJobError(ctx, client, job, convertToStandardError(err))
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

func extractErrorCode(err error) string {
	if stdErr, ok := errors.As(err); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}

func convertToStandardError(err error) *errors.StandardError {
	if stdErr, ok := errors.As(err); ok {
		return stdErr
	}
	return errors.NewClassificationFailedError(err)
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig != nil {
		if workerCfg, exists := appConfig.Workers[configName]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = time.Duration(workerCfg.Timeout) * time.Millisecond
			}
		}
		if appConfig.Classifier.ReviewConfidence > 0 {
			cfg.ReviewConfidence = appConfig.Classifier.ReviewConfidence
		}
	}
	return cfg
}
