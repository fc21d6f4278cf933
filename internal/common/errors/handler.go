// internal/common/errors/handler.go
package errors

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/goccy/go-json"
)

// ErrorHandler reports failed jobs back to the broker in one consistent way
// for every worker.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// JobOutcome is what HandleJobError does with a failure.
type JobOutcome struct {
	// Throw raises a BPMN error the process can catch instead of failing.
	Throw   bool
	Retries int
}

// DecideJobOutcome retries technical errors while the broker has retries
// left and throws everything else as a BPMN error. The retry count never
// exceeds what the broker still allows.
func DecideJobOutcome(bpmnErr *BPMNError, jobRetries int32) JobOutcome {
	if bpmnErr.Retries <= 0 || jobRetries <= 1 {
		return JobOutcome{Throw: true}
	}
	retries := bpmnErr.Retries
	if int(jobRetries)-1 < retries {
		retries = int(jobRetries) - 1
	}
	return JobOutcome{Retries: retries}
}

// HandleJobError normalizes err, logs it and either fails the job with
// retries or throws a BPMN error.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) *BPMNError {
	stdErr := h.normalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	outcome := DecideJobOutcome(bpmnErr, job.GetRetries())

	h.logError(job, stdErr, bpmnErr, outcome)

	if outcome.Throw {
		h.throwBPMNError(ctx, client, job, bpmnErr)
	} else {
		h.failJobWithRetries(ctx, client, job, bpmnErr, outcome.Retries)
	}
	return bpmnErr
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) {
	cmd := client.NewFailJobCommand().
		JobKey(job.GetKey()).
		Retries(int32(retries)).
		ErrorMessage(fmt.Sprintf("[%s] %s", bpmnErr.Code, bpmnErr.Message))

	if vars, ok := errorVariables(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			h.send(job, "fail", func() error { _, err := withVars.Send(ctx); return err })
			return
		}
	}
	// Fallback: send without variables
	h.send(job, "fail", func() error { _, err := cmd.Send(ctx); return err })
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.GetKey()).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if vars, ok := errorVariables(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			h.send(job, "throw", func() error { _, err := withVars.Send(ctx); return err })
			return
		}
	}
	h.send(job, "throw", func() error { _, err := cmd.Send(ctx); return err })
}

func errorVariables(bpmnErr *BPMNError) (string, bool) {
	vars := bpmnErr.ToErrorVariables()
	if len(vars) == 0 {
		return "", false
	}
	data, err := json.Marshal(vars)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (h *ErrorHandler) send(job entities.Job, action string, fn func() error) {
	if err := fn(); err != nil {
		h.logger.Error("Failed to report job error to Camunda", map[string]interface{}{
			"jobKey":  job.GetKey(),
			"jobType": job.GetType(),
			"action":  action,
			"error":   err.Error(),
		})
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError, outcome JobOutcome) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.GetKey(),
		"jobType":          job.GetType(),
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"thrown":           outcome.Throw,
		"retries":          outcome.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.GetProcessInstanceKey(),
	})
}
