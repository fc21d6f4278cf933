package classifier

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/common/metrics"
	"complaint-triage/internal/models"
)

// Builder produces a fully loaded pipeline or an error.
type Builder func() (*Pipeline, error)

// DirectoryBuilder loads fresh models from dir on every call and reuses the
// rest of base, so the lemmatizer dictionary and sentiment lexicon load once.
func DirectoryBuilder(dir string, base PipelineOptions) Builder {
	return FileBuilder(
		filepath.Join(dir, CategoryModelFile),
		filepath.Join(dir, PriorityModelFile),
		base,
	)
}

// FileBuilder is DirectoryBuilder for artifacts stored under other names.
func FileBuilder(categoryPath, priorityPath string, base PipelineOptions) Builder {
	return func() (*Pipeline, error) {
		m, err := LoadModelFiles(categoryPath, priorityPath)
		if err != nil {
			return nil, err
		}
		opts := base
		opts.Models = m
		return NewPipeline(opts)
	}
}

// Reloadable serves classifications from the current pipeline and swaps in
// a replacement only once it has loaded completely.
type Reloadable struct {
	current atomic.Pointer[Pipeline]
	build   Builder
	logger  logger.Logger

	mu sync.Mutex // serializes Reload
}

// NewReloadable builds the initial pipeline. An error here is fatal for the
// caller: there is no degraded mode without models.
func NewReloadable(build Builder, log logger.Logger) (*Reloadable, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	p, err := build()
	if err != nil {
		return nil, fmt.Errorf("initial model load: %w", err)
	}

	r := &Reloadable{build: build, logger: log}
	r.current.Store(p)
	return r, nil
}

// Reload builds a new pipeline. On failure the current one keeps serving.
func (r *Reloadable) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.build()
	if err != nil {
		metrics.ModelReloads.WithLabelValues("failure").Inc()
		r.logger.WithError(err).Error("Model reload failed, keeping current models", nil)
		return fmt.Errorf("reload models: %w", err)
	}

	r.current.Store(p)
	metrics.ModelReloads.WithLabelValues("success").Inc()
	r.logger.Info("Models reloaded", map[string]interface{}{
		"category_version": p.Models().Category.Info().Version,
		"priority_version": p.Models().Priority.Info().Version,
	})
	return nil
}

func (r *Reloadable) Current() *Pipeline {
	return r.current.Load()
}

func (r *Reloadable) Classify(text string) (*models.Prediction, error) {
	return r.Current().Classify(text)
}

func (r *Reloadable) Decide(text string) (*Decision, error) {
	return r.Current().Decide(text)
}

func (r *Reloadable) Normalize(text string) string {
	return r.Current().Normalize(text)
}
