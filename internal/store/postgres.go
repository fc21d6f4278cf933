// Package store persists classified complaints and reviewer feedback in
// PostgreSQL and serves the dashboard aggregates.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
	// DefaultTrendDays bounds the High priority trend window.
	DefaultTrendDays = 30
)

type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresStore{db: db, logger: log.WithFields(map[string]interface{}{"component": "store"})}
}

// ClampLimit maps a caller supplied limit onto [1, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}

// InsertComplaint stores a prediction and returns the saved record.
func (s *PostgresStore) InsertComplaint(ctx context.Context, p *models.Prediction) (*models.ComplaintRecord, error) {
	rec := &models.ComplaintRecord{
		ComplaintText: p.ComplaintText,
		Category:      p.Category,
		Priority:      p.Priority,
		RuleOverride:  p.RuleOverride,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO complaints (complaint_text, category, priority, rule_override)
		VALUES ($1, $2, $3, $4)
		RETURNING id, classified_at`,
		p.ComplaintText,
		string(p.Category),
		string(p.Priority),
		p.RuleOverride,
	).Scan(&rec.ID, &rec.ClassifiedAt)
	if err != nil {
		return nil, errors.NewComplaintSaveFailedError(err)
	}

	rec.ClassifiedAt = rec.ClassifiedAt.UTC()
	return rec, nil
}

func (s *PostgresStore) ListComplaints(ctx context.Context, limit int) ([]models.ComplaintRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, complaint_text, category, priority, rule_override, classified_at
		FROM complaints
		ORDER BY id DESC
		LIMIT $1`, ClampLimit(limit))
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_complaints", err)
	}
	defer rows.Close()

	records := []models.ComplaintRecord{}
	for rows.Next() {
		var (
			rec      models.ComplaintRecord
			category string
			priority string
		)
		if err := rows.Scan(&rec.ID, &rec.ComplaintText, &category, &priority, &rec.RuleOverride, &rec.ClassifiedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("list_complaints", err)
		}
		rec.Category = models.Category(category)
		rec.Priority = models.Priority(priority)
		rec.ClassifiedAt = rec.ClassifiedAt.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_complaints", err)
	}
	return records, nil
}

// InsertFeedback stores f and fills in its id, submitted_at and is_correct.
func (s *PostgresStore) InsertFeedback(ctx context.Context, f *models.Feedback) error {
	f.IsCorrect = f.Matches()

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO feedback (
			complaint_id, complaint_text, predicted_category, predicted_priority,
			correct_category, correct_priority, is_correct
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, submitted_at`,
		f.ComplaintID,
		f.ComplaintText,
		string(f.PredictedCategory),
		string(f.PredictedPriority),
		string(f.CorrectCategory),
		string(f.CorrectPriority),
		f.IsCorrect,
	).Scan(&f.ID, &f.SubmittedAt)
	if err != nil {
		return errors.NewFeedbackSaveFailedError(err)
	}

	f.SubmittedAt = f.SubmittedAt.UTC()
	return nil
}

// ListFeedback returns the newest corrections first. A limit of zero or less
// returns every row, which is what the retraining export needs.
func (s *PostgresStore) ListFeedback(ctx context.Context, limit int) ([]models.Feedback, error) {
	query := `
		SELECT id, complaint_id, complaint_text, predicted_category, predicted_priority,
			correct_category, correct_priority, is_correct, submitted_at
		FROM feedback
		ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, ClampLimit(limit))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_feedback", err)
	}
	defer rows.Close()

	items := []models.Feedback{}
	for rows.Next() {
		var f models.Feedback
		var predCat, predPri, corCat, corPri string
		if err := rows.Scan(&f.ID, &f.ComplaintID, &f.ComplaintText, &predCat, &predPri,
			&corCat, &corPri, &f.IsCorrect, &f.SubmittedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("list_feedback", err)
		}
		f.PredictedCategory = models.Category(predCat)
		f.PredictedPriority = models.Priority(predPri)
		f.CorrectCategory = models.Category(corCat)
		f.CorrectPriority = models.Priority(corPri)
		f.SubmittedAt = f.SubmittedAt.UTC()
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_feedback", err)
	}
	return items, nil
}

// FeedbackAccuracy returns how often predictions matched reviewer labels.
// Accuracy is rounded to three decimals and is 0 with no feedback.
func (s *PostgresStore) FeedbackAccuracy(ctx context.Context) (models.FeedbackAccuracy, error) {
	var acc models.FeedbackAccuracy
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0)
		FROM feedback`).Scan(&acc.Total, &acc.Correct)
	if err != nil {
		return acc, errors.NewQueryExecutionFailedError("feedback_accuracy", err)
	}
	if acc.Total > 0 {
		acc.Accuracy = math.Round(float64(acc.Correct)/float64(acc.Total)*1000) / 1000
	}
	return acc, nil
}

func (s *PostgresStore) CategoryCounts(ctx context.Context) ([]models.LabelCount, error) {
	return s.labelCounts(ctx, "category_counts", `
		SELECT category, COUNT(*)
		FROM complaints
		GROUP BY category
		ORDER BY COUNT(*) DESC, category`)
}

func (s *PostgresStore) PriorityCounts(ctx context.Context) ([]models.LabelCount, error) {
	return s.labelCounts(ctx, "priority_counts", `
		SELECT priority, COUNT(*)
		FROM complaints
		GROUP BY priority
		ORDER BY COUNT(*) DESC, priority`)
}

func (s *PostgresStore) labelCounts(ctx context.Context, queryType, query string) ([]models.LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError(queryType, err)
	}
	defer rows.Close()

	counts := []models.LabelCount{}
	for rows.Next() {
		var c models.LabelCount
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, errors.NewQueryExecutionFailedError(queryType, err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError(queryType, err)
	}
	return counts, nil
}

// HighPriorityTrend counts High priority complaints per UTC day for the last
// days days, oldest first.
func (s *PostgresStore) HighPriorityTrend(ctx context.Context, days int) ([]models.DailyCount, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := s.db.QueryContext(ctx, `
		SELECT TO_CHAR(DATE(classified_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day, COUNT(*)
		FROM complaints
		WHERE priority = $1 AND classified_at >= $2
		GROUP BY day
		ORDER BY day ASC`, string(models.PriorityHigh), since)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("high_priority_trend", err)
	}
	defer rows.Close()

	trend := []models.DailyCount{}
	for rows.Next() {
		var d models.DailyCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, errors.NewQueryExecutionFailedError("high_priority_trend", err)
		}
		trend = append(trend, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("high_priority_trend", err)
	}
	return trend, nil
}

// DashboardStats gathers every aggregate in one call.
func (s *PostgresStore) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	categories, err := s.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	priorities, err := s.PriorityCounts(ctx)
	if err != nil {
		return nil, err
	}
	trend, err := s.HighPriorityTrend(ctx, DefaultTrendDays)
	if err != nil {
		return nil, err
	}
	accuracy, err := s.FeedbackAccuracy(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		CategoryCounts:    categories,
		PriorityCounts:    priorities,
		HighPriorityTrend: trend,
		FeedbackAccuracy:  accuracy,
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Ping reports whether the database answers.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}
