// Package classifier combines text normalization, the category and priority
// models, the override rules and sentiment escalation into one decision.
package classifier

import (
	"fmt"
	"math"
	"strings"

	"complaint-triage/internal/classifier/preprocess"
	"complaint-triage/internal/classifier/rules"
	"complaint-triage/internal/classifier/sentiment"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/models"
)

const EmptyTextReason = "Field 'text' is required and cannot be empty."

// Decision is a Prediction plus the intermediate values that produced it.
type Decision struct {
	Prediction *models.Prediction
	Normalized string
	MLPriority models.Priority
	// RulePattern is empty when no rule fired.
	RulePattern string
}

type PipelineOptions struct {
	Normalizer *preprocess.Normalizer
	Models     *Models
	Rules      *rules.Engine
	Sentiment  *sentiment.Analyzer
	Logger     logger.Logger
}

// Pipeline is immutable after construction. Classify may be called from any
// number of goroutines.
type Pipeline struct {
	normalizer *preprocess.Normalizer
	models     *Models
	rules      *rules.Engine
	sentiment  *sentiment.Analyzer
	logger     logger.Logger
}

func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.Normalizer == nil {
		return nil, fmt.Errorf("normalizer is required")
	}
	if opts.Models == nil {
		return nil, fmt.Errorf("models are required")
	}
	if opts.Rules == nil {
		opts.Rules = rules.NewDefault()
	}
	if opts.Sentiment == nil {
		opts.Sentiment = sentiment.NewDefault()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}

	return &Pipeline{
		normalizer: opts.Normalizer,
		models:     opts.Models,
		rules:      opts.Rules,
		sentiment:  opts.Sentiment,
		logger:     opts.Logger,
	}, nil
}

// Classify returns the final decision for raw complaint text.
func (p *Pipeline) Classify(text string) (*models.Prediction, error) {
	d, err := p.Decide(text)
	if err != nil {
		return nil, err
	}
	return d.Prediction, nil
}

// Decide runs every stage once. Errors are always *Error.
func (p *Pipeline) Decide(text string) (d *Decision, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, validationError(EmptyTextReason)
	}

	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = p.fail(fmt.Errorf("panic during classification: %v", r))
		}
	}()

	clean := p.normalizer.Normalize(text)

	cat, err := p.models.Category.Predict(clean)
	if err != nil {
		return nil, p.fail(fmt.Errorf("category prediction: %w", err))
	}
	pri, err := p.models.Priority.Predict(clean)
	if err != nil {
		return nil, p.fail(fmt.Errorf("priority prediction: %w", err))
	}

	mlPriority := models.Priority(pri.Label)
	outcome := p.rules.Apply(text, mlPriority)

	mood := p.sentiment.Analyze(text)
	final, boosted := sentiment.Boost(outcome.Priority, mood)

	return &Decision{
		Prediction: &models.Prediction{
			ComplaintText:      text,
			Category:           models.Category(cat.Label),
			CategoryConfidence: round3(cat.Confidence),
			Priority:           final,
			PriorityConfidence: round3(pri.Confidence),
			RuleOverride:       outcome.Matched,
			RuleExplanation:    outcome.Explain(),
			SentimentLabel:     mood.Label,
			SentimentScore:     round3(mood.Compound),
			SentimentBoosted:   boosted,
		},
		Normalized:  clean,
		MLPriority:  mlPriority,
		RulePattern: outcome.Pattern,
	}, nil
}

// Normalize exposes the pipeline's normalizer so offline exports use the
// exact inference transform.
func (p *Pipeline) Normalize(text string) string {
	return p.normalizer.Normalize(text)
}

func (p *Pipeline) Models() *Models {
	return p.models
}

func (p *Pipeline) fail(cause error) *Error {
	p.logger.WithError(cause).Error("Classification failed", nil)
	return inferenceError(cause)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
