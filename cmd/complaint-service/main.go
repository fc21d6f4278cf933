// cmd/complaint-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"complaint-triage/internal/api"
	"complaint-triage/internal/bootstrap"
	"complaint-triage/internal/common/camunda"
	"complaint-triage/internal/common/config"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/common/observability"

	cc "complaint-triage/internal/workers/complaint/classify-complaint"
	sf "complaint-triage/internal/workers/complaint/submit-feedback"
)

const shutdownTimeout = 30 * time.Second

// checkFunc adapts a health probe to api.HealthChecker.
type checkFunc func(ctx context.Context) error

func (f checkFunc) Ping(ctx context.Context) error { return f(ctx) }

func main() {
	zapLog := logger.New("info", "console")
	zapLog.Info("Starting complaint service...")

	if err := run(); err != nil {
		zapLog.Error("Complaint service failed", zap.Error(err))
		_ = zapLog.Sync()
		os.Exit(1)
	}
	_ = zapLog.Sync()
}

// run holds every deferred release; main exits only after it returns.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	log := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
		Fields: map[string]interface{}{
			"service":     cfg.App.Name,
			"version":     cfg.App.Version,
			"environment": cfg.App.Environment,
		},
	})
	defer logger.Sync(log)

	obs := observability.New(cfg.Observability.ServiceName)
	defer obs.Shutdown()

	if cfg.Observability.Tracing.Enabled {
		if err := obs.EnableTracing(
			cfg.Observability.ServiceName,
			cfg.Observability.Tracing.JaegerEndpoint,
			cfg.Observability.Tracing.SampleRatio,
		); err != nil {
			log.WithError(err).Warn("Tracing disabled", nil)
		}
	}

	if err := serve(context.Background(), cfg, log, obs); err != nil {
		log.WithError(err).Error("Complaint service stopped with error", nil)
		return err
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log logger.Logger, obs *observability.Observability) error {
	deps, cleanup, err := bootstrap.NewDependencies(ctx, cfg, log, obs, bootstrap.Options{})
	if err != nil {
		return fmt.Errorf("initialise dependencies: %w", err)
	}
	defer cleanup()

	checks := map[string]api.HealthChecker{
		"postgres": deps.Postgres,
		"redis":    deps.Redis,
	}
	if deps.Elasticsearch != nil {
		checks["elasticsearch"] = deps.Elasticsearch
	}

	// --- Zeebe workers ---
	var workers *camunda.WorkerSet
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = bootstrap.Retry(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFromApp(cfg.Camunda))
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			return fmt.Errorf("zeebe client failed after retries: %w", err)
		}
		defer zeebe.Close()
		checks["zeebe"] = checkFunc(zeebe.HealthCheck)

		if topology, err := zeebe.Topology(ctx); err != nil {
			log.WithError(err).Warn("Could not read Zeebe topology", nil)
		} else {
			log.Info("Connected to Zeebe", map[string]interface{}{
				"brokers":        topology.Brokers,
				"partitions":     topology.PartitionCount,
				"gatewayVersion": topology.GatewayVersion,
			})
		}

		workers = camunda.NewWorkerSet(zeebe.GetClient(), log)
		if err := registerWorkers(workers, cfg, deps, log); err != nil {
			workers.Close()
			return fmt.Errorf("register workers: %w", err)
		}
		log.Info("Zeebe workers registered", map[string]interface{}{
			"taskTypes": workers.Registered(),
		})
	}

	// --- HTTP API ---
	server := api.NewServer(api.Options{
		Config:        cfg.Server,
		Service:       deps.Service,
		Reloader:      deps.Classifier,
		Checks:        checks,
		Observability: obs,
		Logger:        log,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Listen(cfg.Server.Address)
	}()

	// --- Debug & Metrics Server ---
	if addr := cfg.Observability.MetricsAddress; addr != "" && addr != cfg.Server.Address {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Info("Debug/Metrics server listening", map[string]interface{}{"address": addr})
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.WithError(err).Error("Debug/Metrics server failed", nil)
			}
		}()
	}

	// --- Signals: SIGHUP reloads models, SIGINT/SIGTERM stop ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	var stopErr error
	running := true
	for running {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				log.Info("SIGHUP received, reloading models", nil)
				if err := deps.Classifier.Reload(); err != nil {
					log.WithError(err).Error("Model reload failed", nil)
				}
				continue
			}
			log.Info("Shutdown signal received", map[string]interface{}{"signal": sig.String()})
			running = false
		case err := <-serverErr:
			if err != nil {
				stopErr = fmt.Errorf("http server stopped: %w", err)
			}
			running = false
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if workers != nil {
		workers.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error stopping HTTP server", nil)
	}

	if stopErr != nil {
		return stopErr
	}
	log.Info("Complaint service stopped gracefully", nil)
	return nil
}

func registerWorkers(set *camunda.WorkerSet, cfg *config.Config, deps *bootstrap.Dependencies, log logger.Logger) error {
	classify, err := cc.NewHandler(cc.HandlerOptions{
		AppConfig:     cfg,
		Complaints:    deps.Service,
		Logger:        log,
		Observability: deps.Observability,
	})
	if err != nil {
		return err
	}
	if err := set.Register(classify, camunda.TaskOptions{
		MaxJobsActive: classify.GetConfig().MaxJobsActive,
		Timeout:       classify.GetConfig().Timeout,
	}); err != nil {
		return err
	}

	feedback, err := sf.NewHandler(sf.HandlerOptions{
		AppConfig:     cfg,
		Complaints:    deps.Service,
		Logger:        log,
		Observability: deps.Observability,
	})
	if err != nil {
		return err
	}
	return set.Register(feedback, camunda.TaskOptions{
		MaxJobsActive: feedback.GetConfig().MaxJobsActive,
		Timeout:       feedback.GetConfig().Timeout,
	})
}
