// Package bootstrap wires configuration into the running service graph. Both
// the service binary and complaintctl build their dependencies through it.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"complaint-triage/internal/classifier"
	"complaint-triage/internal/classifier/preprocess"
	"complaint-triage/internal/classifier/rules"
	"complaint-triage/internal/classifier/sentiment"
	"complaint-triage/internal/common/aws"
	"complaint-triage/internal/common/config"
	"complaint-triage/internal/common/database"
	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/common/observability"
	"complaint-triage/internal/complaints"
	"complaint-triage/internal/events"
	"complaint-triage/internal/notify"
	"complaint-triage/internal/search"
	"complaint-triage/internal/store"
)

// Dependencies is everything a process needs to serve complaints.
// Optional integrations stay nil when disabled.
type Dependencies struct {
	Config        *config.Config
	Logger        logger.Logger
	Observability *observability.Observability

	Classifier    *classifier.Reloadable
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient

	Store     *store.PostgresStore
	Indexer   *search.Indexer
	Notifier  *notify.EscalationNotifier
	Publisher *events.CorrectionPublisher
	Service   *complaints.Service
}

// Options tunes connection behaviour. Zero values use the service defaults.
type Options struct {
	MaxRetries   int
	InitialDelay time.Duration
	// SkipMigrations leaves the schema alone, for read-only tooling.
	SkipMigrations bool
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 15
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 2 * time.Second
	}
	return o
}

// ModelPaths resolves the two artifact paths from the models section.
func ModelPaths(cfg config.ModelsConfig) (categoryPath, priorityPath string) {
	return resolve(cfg.Dir, cfg.CategoryFile), resolve(cfg.Dir, cfg.PriorityFile)
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// NewClassifier loads the lemmatizer, lexicon and both models. The returned
// Reloadable rereads only the model files on Reload. A failed model load is
// reported as MODEL_UNAVAILABLE.
func NewClassifier(cfg config.ModelsConfig, log logger.Logger) (*classifier.Reloadable, error) {
	normalizer, err := preprocess.NewDefault()
	if err != nil {
		return nil, fmt.Errorf("load lemmatizer: %w", err)
	}

	categoryPath, priorityPath := ModelPaths(cfg)
	build := classifier.FileBuilder(categoryPath, priorityPath, classifier.PipelineOptions{
		Normalizer: normalizer,
		Rules:      rules.NewDefault(),
		Sentiment:  sentiment.NewDefault(),
		Logger:     log,
	})

	reloadable, err := classifier.NewReloadable(build, log)
	if err != nil {
		return nil, errors.NewModelUnavailableError(err)
	}
	return reloadable, nil
}

// NewDependencies connects to every configured backend. The cleanup func
// releases them in reverse order and is safe to call once.
func NewDependencies(ctx context.Context, cfg *config.Config, log logger.Logger, obs *observability.Observability, opts Options) (*Dependencies, func(), error) {
	opts = opts.withDefaults()
	deps := &Dependencies{Config: cfg, Logger: log, Observability: obs}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// Models first: without them there is nothing to serve.
	clf, err := NewClassifier(cfg.Models, log)
	if err != nil {
		return fail(err)
	}
	deps.Classifier = clf
	for _, info := range clf.Current().Models().Info() {
		log.Info("Model loaded", map[string]interface{}{
			"name":    info.Name,
			"version": info.Version,
			"labels":  info.Labels,
		})
	}

	// PostgreSQL
	err = Retry(func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		deps.Postgres = pg
		return nil
	}, opts.MaxRetries, opts.InitialDelay, log, "PostgreSQL connection")
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, func() { deps.Postgres.Close() })
	log.Info("PostgreSQL connected successfully", nil)

	if !opts.SkipMigrations {
		if err := deps.Postgres.Migrate(ctx); err != nil {
			return fail(err)
		}
	}
	deps.Store = store.NewPostgresStore(deps.Postgres.GetDB(), log)

	// Redis
	err = Retry(func() error {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		if err := rc.Ping(ctx); err != nil {
			rc.Close()
			return err
		}
		deps.Redis = rc
		return nil
	}, opts.MaxRetries, opts.InitialDelay, log, "Redis connection")
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, func() { deps.Redis.Close() })
	log.Info("Redis connected successfully", nil)

	// Elasticsearch is optional. A cluster that never answers disables search.
	if cfg.Database.Elasticsearch.Enabled {
		err = Retry(func() error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			deps.Elasticsearch = es
			return nil
		}, opts.MaxRetries, opts.InitialDelay, log, "Elasticsearch connection")
		if err != nil {
			log.WithError(err).Warn("Elasticsearch unavailable, search disabled", nil)
		} else {
			ix := search.NewIndexer(deps.Elasticsearch, cfg.Database.Elasticsearch.Index, log)
			if err := ix.EnsureIndex(ctx); err != nil {
				log.WithError(err).Warn("Could not create search index, search disabled", nil)
			} else {
				deps.Indexer = ix
				log.Info("Elasticsearch connected successfully", nil)
			}
		}
	}

	if err := wireNotifier(ctx, deps, cfg, log); err != nil {
		return fail(err)
	}

	if cfg.Events.Enabled {
		pub := events.NewCorrectionPublisher(cfg.Events.Brokers, cfg.Events.CorrectionTopic, log)
		deps.Publisher = pub
		cleanups = append(cleanups, func() {
			if err := pub.Close(); err != nil {
				log.WithError(err).Warn("Error closing correction publisher", nil)
			}
		})
		log.Info("Correction events enabled", map[string]interface{}{
			"brokers": cfg.Events.Brokers,
			"topic":   cfg.Events.CorrectionTopic,
		})
	}

	svc, err := complaints.NewService(serviceDependencies(deps), complaints.Config{
		MaxTextLength: cfg.Classifier.MaxTextLength,
		StatsTTL:      time.Duration(cfg.Cache.StatsTTL) * time.Second,
	})
	if err != nil {
		return fail(err)
	}
	deps.Service = svc

	return deps, cleanup, nil
}

func wireNotifier(ctx context.Context, deps *Dependencies, cfg *config.Config, log logger.Logger) error {
	nc := cfg.Notifications
	if !nc.SNS.Enabled && !nc.Email.Enabled {
		return nil
	}

	opts := notify.Options{Config: nc, Logger: log}
	if nc.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, nc.AWS.Region)
		if err != nil {
			return fmt.Errorf("sns client: %w", err)
		}
		opts.SNS = sns
	}
	if nc.Email.Enabled {
		ses, err := aws.NewSESClient(ctx, nc.AWS.Region)
		if err != nil {
			return fmt.Errorf("ses client: %w", err)
		}
		opts.SES = ses
	}

	deps.Notifier = notify.NewEscalationNotifier(opts)
	log.Info("Escalation notifications enabled", map[string]interface{}{
		"sns":   nc.SNS.Enabled,
		"email": nc.Email.Enabled,
	})
	return nil
}

// serviceDependencies converts to the service's interfaces, leaving disabled
// integrations as untyped nil.
func serviceDependencies(deps *Dependencies) complaints.Dependencies {
	sd := complaints.Dependencies{
		Classifier:    deps.Classifier,
		Store:         deps.Store,
		Observability: deps.Observability,
		Logger:        deps.Logger,
	}
	if deps.Redis != nil {
		sd.Cache = deps.Redis
	}
	if deps.Indexer != nil {
		sd.Indexer = deps.Indexer
	}
	if deps.Notifier != nil {
		sd.Notifier = deps.Notifier
	}
	if deps.Publisher != nil {
		sd.Publisher = deps.Publisher
	}
	return sd
}

// Retry runs operation until it succeeds, doubling the delay between attempts.
func Retry(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.WithError(err).Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
