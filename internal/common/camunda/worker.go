// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"sync"
	"time"

	"complaint-triage/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// TaskHandler is implemented by every job worker in internal/workers.
type TaskHandler interface {
	GetTaskType() string
	IsEnabled() bool
	Handle(client worker.JobClient, job entities.Job)
}

// TaskOptions controls how a handler's job worker polls the broker.
type TaskOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// WorkerSet owns the open job workers for one process.
type WorkerSet struct {
	client  zbc.Client
	logger  logger.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerSet(client zbc.Client, log logger.Logger) *WorkerSet {
	return &WorkerSet{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Register opens a job worker for h. Disabled handlers are skipped.
func (s *WorkerSet) Register(h TaskHandler, opts TaskOptions) error {
	taskType := h.GetTaskType()
	if !h.IsEnabled() {
		s.logger.Info("Worker is disabled, skipping registration", map[string]interface{}{
			"worker": taskType,
		})
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workers[taskType]; exists {
		return fmt.Errorf("worker for %s already registered", taskType)
	}

	jobWorker := s.client.NewJobWorker().
		JobType(taskType).
		Handler(h.Handle).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Name(fmt.Sprintf("%s-worker", taskType)).
		Open()

	s.workers[taskType] = jobWorker

	s.logger.Info("Worker registered with Camunda", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
	})
	return nil
}

// Registered returns the task types with an open job worker.
func (s *WorkerSet) Registered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make([]string, 0, len(s.workers))
	for taskType := range s.workers {
		types = append(types, taskType)
	}
	return types
}

// Close stops every job worker and waits for in-flight jobs.
func (s *WorkerSet) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for taskType, w := range s.workers {
		s.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
		delete(s.workers, taskType)
	}
}
