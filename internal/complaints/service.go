// Package complaints is the application service behind the HTTP API, the
// job workers and the CLI. It runs the classifier and handles persistence,
// caching, search indexing, escalation and correction events around it.
package complaints

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"complaint-triage/internal/classifier"
	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/common/metrics"
	"complaint-triage/internal/common/observability"
	"complaint-triage/internal/events"
	"complaint-triage/internal/models"
	"complaint-triage/internal/notify"
	"complaint-triage/internal/search"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultMaxTextLength = 2000
	DefaultStatsTTL      = 60 * time.Second

	StatsCacheKey = "complaint-triage:stats"

	FeedbackSavedMessage = "Feedback saved successfully."
)

// Classifier is satisfied by *classifier.Reloadable and *classifier.Pipeline.
type Classifier interface {
	Decide(text string) (*classifier.Decision, error)
	Normalize(text string) string
}

type Store interface {
	InsertComplaint(ctx context.Context, p *models.Prediction) (*models.ComplaintRecord, error)
	ListComplaints(ctx context.Context, limit int) ([]models.ComplaintRecord, error)
	InsertFeedback(ctx context.Context, f *models.Feedback) error
	ListFeedback(ctx context.Context, limit int) ([]models.Feedback, error)
	FeedbackAccuracy(ctx context.Context) (models.FeedbackAccuracy, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// Cache is satisfied by *database.RedisClient.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Indexer interface {
	Index(ctx context.Context, doc search.Document) error
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type Notifier interface {
	NotifyHighPriority(ctx context.Context, e notify.Escalation) error
}

type Publisher interface {
	Publish(ctx context.Context, event events.CorrectionEvent) error
}

type Config struct {
	MaxTextLength int
	StatsTTL      time.Duration
}

// Dependencies wires the service. Classifier and Store are required; the
// rest are optional and skipped when nil.
type Dependencies struct {
	Classifier    Classifier
	Store         Store
	Cache         Cache
	Indexer       Indexer
	Notifier      Notifier
	Publisher     Publisher
	Observability *observability.Observability
	Logger        logger.Logger
}

type Service struct {
	cfg        Config
	classifier Classifier
	store      Store
	cache      Cache
	indexer    Indexer
	notifier   Notifier
	publisher  Publisher
	obs        *observability.Observability
	logger     logger.Logger
}

func NewService(deps Dependencies, cfg Config) (*Service, error) {
	if deps.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultMaxTextLength
	}
	if cfg.StatsTTL <= 0 {
		cfg.StatsTTL = DefaultStatsTTL
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Service{
		cfg:        cfg,
		classifier: deps.Classifier,
		store:      deps.Store,
		cache:      deps.Cache,
		indexer:    deps.Indexer,
		notifier:   deps.Notifier,
		publisher:  deps.Publisher,
		obs:        deps.Observability,
		logger:     log.WithFields(map[string]interface{}{"component": "complaints"}),
	}, nil
}

// ClassifyResult is a Prediction plus its storage identity.
type ClassifyResult struct {
	*models.Prediction
	ComplaintID  int64     `json:"complaint_id"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// TooLongMessage is the validation message for oversized complaints.
func TooLongMessage(max int) string {
	return fmt.Sprintf("Text exceeds maximum length of %d characters.", max)
}

// Classify validates text, runs the classifier and stores the result.
// Indexing, escalation and cache invalidation are best effort and never fail
// the call.
func (s *Service) Classify(ctx context.Context, text string) (*ClassifyResult, error) {
	ctx, span := s.obs.StartSpan(ctx, "complaints.classify")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewComplaintValidationError(classifier.EmptyTextReason)
	}
	if utf8.RuneCountInString(text) > s.cfg.MaxTextLength {
		return nil, errors.NewComplaintValidationError(TooLongMessage(s.cfg.MaxTextLength))
	}

	start := time.Now()
	d, err := s.classifier.Decide(text)
	metrics.ClassificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if classifier.IsValidation(err) {
			return nil, errors.NewComplaintValidationError(err.Error())
		}
		metrics.ClassificationFailures.WithLabelValues(classifier.KindInference.String()).Inc()
		span.SetStatus(codes.Error, "classification failed")
		return nil, errors.NewClassificationFailedError(err)
	}

	p := d.Prediction
	s.recordDecision(d)
	span.SetAttributes(
		attribute.String("complaint.category", string(p.Category)),
		attribute.String("complaint.priority", string(p.Priority)),
		attribute.Bool("complaint.rule_override", p.RuleOverride),
	)

	rec, err := s.store.InsertComplaint(ctx, p)
	if err != nil {
		s.logger.WithError(err).Error("Failed to store complaint", nil)
		span.SetStatus(codes.Error, "store failed")
		return nil, err
	}

	s.invalidateStats(ctx)

	if s.indexer != nil {
		if err := s.indexer.Index(ctx, search.NewDocument(rec, p)); err != nil {
			s.sideEffectFailed("index", err, rec.ID)
		}
	}

	if s.notifier != nil && p.Priority == models.PriorityHigh {
		err := s.notifier.NotifyHighPriority(ctx, notify.Escalation{
			ComplaintID:  rec.ID,
			Prediction:   p,
			ClassifiedAt: rec.ClassifiedAt,
		})
		if err != nil {
			s.sideEffectFailed("notify", err, rec.ID)
		}
	}

	s.logger.Info("Complaint classified", map[string]interface{}{
		"complaintId":      rec.ID,
		"category":         string(p.Category),
		"priority":         string(p.Priority),
		"mlPriority":       string(d.MLPriority),
		"ruleOverride":     p.RuleOverride,
		"sentimentBoosted": p.SentimentBoosted,
	})

	return &ClassifyResult{
		Prediction:   p,
		ComplaintID:  rec.ID,
		ClassifiedAt: rec.ClassifiedAt,
	}, nil
}

func (s *Service) recordDecision(d *classifier.Decision) {
	p := d.Prediction
	metrics.ComplaintsClassified.WithLabelValues(string(p.Category), string(p.Priority)).Inc()

	preBoost := d.MLPriority
	if d.RulePattern != "" {
		metrics.RuleOverrides.WithLabelValues(d.RulePattern).Inc()
		preBoost = models.PriorityHigh
	}
	if p.SentimentBoosted {
		metrics.SentimentBoosts.WithLabelValues(string(preBoost), string(p.Priority)).Inc()
	}
}

// RequiredFeedbackFields lists the feedback body fields in the order they
// are checked.
var RequiredFeedbackFields = []string{
	"complaint_id",
	"complaint_text",
	"predicted_category",
	"predicted_priority",
	"correct_category",
	"correct_priority",
}

func MissingFieldMessage(field string) string {
	return "Missing field: " + field
}

type FeedbackInput struct {
	ComplaintID       int64  `json:"complaint_id"`
	ComplaintText     string `json:"complaint_text"`
	PredictedCategory string `json:"predicted_category"`
	PredictedPriority string `json:"predicted_priority"`
	CorrectCategory   string `json:"correct_category"`
	CorrectPriority   string `json:"correct_priority"`
}

type FeedbackResult struct {
	Message         string                  `json:"message"`
	FeedbackID      int64                   `json:"feedback_id"`
	IsCorrect       bool                    `json:"is_correct"`
	OverallAccuracy models.FeedbackAccuracy `json:"overall_accuracy"`
	SubmittedAt     time.Time               `json:"submitted_at"`
}

func joinCategories() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func joinPriorities() string {
	names := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// ValidateFeedback checks the corrected labels. Field presence is checked by
// the transport, which knows which fields were sent.
func ValidateFeedback(in FeedbackInput) error {
	if !models.Category(in.CorrectCategory).Valid() {
		return errors.NewFeedbackValidationError("Invalid category. Choose from " + joinCategories())
	}
	if !models.Priority(in.CorrectPriority).Valid() {
		return errors.NewFeedbackValidationError("Invalid priority. Choose from " + joinPriorities())
	}
	return nil
}

// SubmitFeedback stores a reviewer correction and returns the updated
// overall accuracy.
func (s *Service) SubmitFeedback(ctx context.Context, in FeedbackInput) (*FeedbackResult, error) {
	ctx, span := s.obs.StartSpan(ctx, "complaints.submit_feedback",
		attribute.Int64("complaint.id", in.ComplaintID))
	defer span.End()

	if err := ValidateFeedback(in); err != nil {
		return nil, err
	}

	f := &models.Feedback{
		ComplaintID:       in.ComplaintID,
		ComplaintText:     in.ComplaintText,
		PredictedCategory: models.Category(in.PredictedCategory),
		PredictedPriority: models.Priority(in.PredictedPriority),
		CorrectCategory:   models.Category(in.CorrectCategory),
		CorrectPriority:   models.Priority(in.CorrectPriority),
	}

	if err := s.store.InsertFeedback(ctx, f); err != nil {
		s.logger.WithError(err).Error("Failed to store feedback", map[string]interface{}{
			"complaintId": in.ComplaintID,
		})
		span.SetStatus(codes.Error, "store failed")
		return nil, err
	}

	accuracy, err := s.store.FeedbackAccuracy(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to compute feedback accuracy", nil)
		return nil, errors.NewFeedbackSaveFailedError(err)
	}

	metrics.FeedbackSubmitted.WithLabelValues(fmt.Sprintf("%t", f.IsCorrect)).Inc()
	s.invalidateStats(ctx)

	if s.publisher != nil {
		event := events.NewCorrectionEvent(f, s.classifier.Normalize(f.ComplaintText))
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.sideEffectFailed("publish", err, f.ComplaintID)
		}
	}

	return &FeedbackResult{
		Message:         FeedbackSavedMessage,
		FeedbackID:      f.ID,
		IsCorrect:       f.IsCorrect,
		OverallAccuracy: accuracy,
		SubmittedAt:     f.SubmittedAt,
	}, nil
}

// Stats returns dashboard aggregates, served from cache when fresh.
func (s *Service) Stats(ctx context.Context) (*models.DashboardStats, error) {
	ctx, span := s.obs.StartSpan(ctx, "complaints.stats")
	defer span.End()

	if s.cache != nil {
		var cached models.DashboardStats
		found, err := s.cache.GetJSON(ctx, StatsCacheKey, &cached)
		if err != nil {
			s.sideEffectFailed("cache_read", err, 0)
		} else if found {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &cached, nil
		}
	}

	stats, err := s.store.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, StatsCacheKey, stats, s.cfg.StatsTTL); err != nil {
			s.sideEffectFailed("cache_write", err, 0)
		}
	}
	return stats, nil
}

func (s *Service) ListComplaints(ctx context.Context, limit int) ([]models.ComplaintRecord, error) {
	return s.store.ListComplaints(ctx, limit)
}

func (s *Service) ListFeedback(ctx context.Context, limit int) ([]models.Feedback, error) {
	return s.store.ListFeedback(ctx, limit)
}

// Search queries the complaint index. It fails when search is not configured.
func (s *Service) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	if s.indexer == nil {
		return nil, errors.NewElasticsearchConnectionFailedError(fmt.Errorf("search is not configured"))
	}
	if q.Category != "" && !q.Category.Valid() {
		return nil, errors.NewComplaintValidationError("Invalid category. Choose from " + joinCategories())
	}
	if q.Priority != "" && !q.Priority.Valid() {
		return nil, errors.NewComplaintValidationError("Invalid priority. Choose from " + joinPriorities())
	}

	ctx, span := s.obs.StartSpan(ctx, "complaints.search")
	defer span.End()
	return s.indexer.Search(ctx, q)
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, StatsCacheKey); err != nil {
		s.sideEffectFailed("cache_invalidate", err, 0)
	}
}

func (s *Service) sideEffectFailed(operation string, err error, complaintID int64) {
	metrics.SideEffectFailures.WithLabelValues(operation).Inc()
	fields := map[string]interface{}{"operation": operation}
	if complaintID > 0 {
		fields["complaintId"] = complaintID
	}
	s.logger.WithError(err).Warn("Best-effort operation failed", fields)
}
