// Package api exposes the complaint service over HTTP.
package api

import (
	"context"
	"io"
	"time"

	"complaint-triage/internal/common/config"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/common/observability"
	"complaint-triage/internal/complaints"
	"complaint-triage/internal/models"
	"complaint-triage/internal/search"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const bodyLimit = 1 << 20

// ComplaintService is the subset of *complaints.Service the handlers use.
type ComplaintService interface {
	Classify(ctx context.Context, text string) (*complaints.ClassifyResult, error)
	SubmitFeedback(ctx context.Context, in complaints.FeedbackInput) (*complaints.FeedbackResult, error)
	Stats(ctx context.Context) (*models.DashboardStats, error)
	ListComplaints(ctx context.Context, limit int) ([]models.ComplaintRecord, error)
	ListFeedback(ctx context.Context, limit int) ([]models.Feedback, error)
	Search(ctx context.Context, q search.Query) (*search.Result, error)
	ExportCorrections(ctx context.Context, w io.Writer) (int, error)
}

// Reloader is satisfied by *classifier.Reloadable.
type Reloader interface {
	Reload() error
}

// HealthChecker is satisfied by the database clients.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Config        config.ServerConfig
	Service       ComplaintService
	Reloader      Reloader
	Checks        map[string]HealthChecker
	Observability *observability.Observability
	Logger        logger.Logger
}

type Server struct {
	app      *fiber.App
	cfg      config.ServerConfig
	service  ComplaintService
	reloader Reloader
	checks   map[string]HealthChecker
	obs      *observability.Observability
	logger   logger.Logger
}

func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"component": "api"})

	s := &Server{
		cfg:      opts.Config,
		service:  opts.Service,
		reloader: opts.Reloader,
		checks:   opts.Checks,
		obs:      opts.Observability,
		logger:   log,
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ReadTimeout:           time.Duration(opts.Config.ReadTimeout) * time.Millisecond,
		WriteTimeout:          time.Duration(opts.Config.WriteTimeout) * time.Millisecond,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	s.app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	s.app.Use(requestID())
	s.app.Use(s.requestLogger())

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)
	s.app.Get("/ready", s.ready)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.app.Post("/classify-complaint", requireJSON, s.classifyComplaint)
	s.app.Post("/feedback", requireJSON, s.submitFeedback)
	s.app.Get("/feedback", s.listFeedback)
	s.app.Get("/feedback/export", s.exportFeedback)

	s.app.Get("/complaints", s.listComplaints)
	s.app.Get("/complaints/search", s.searchComplaints)
	s.app.Get("/stats", s.stats)

	admin := s.app.Group("/admin", s.requireAdmin)
	admin.Post("/models/reload", s.reloadModels)
}

// App returns the underlying fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(address string) error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"address": address})
	return s.app.Listen(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
