package classifycomplaint

import (
	"context"

	"complaint-triage/internal/common/logger"
)

type Service struct {
	config     *Config
	logger     logger.Logger
	complaints Classifier
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:     config,
		logger:     deps.Logger,
		complaints: deps.Complaints,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := s.complaints.Classify(ctx, input.ComplaintText)
	if err != nil {
		return nil, err
	}

	p := result.Prediction
	return &Output{
		ComplaintID:        result.ComplaintID,
		Category:           string(p.Category),
		CategoryConfidence: p.CategoryConfidence,
		Priority:           string(p.Priority),
		PriorityConfidence: p.PriorityConfidence,
		RuleOverride:       p.RuleOverride,
		RuleExplanation:    p.RuleExplanation,
		SentimentLabel:     string(p.SentimentLabel),
		SentimentScore:     p.SentimentScore,
		SentimentBoosted:   p.SentimentBoosted,
		NeedsReview:        p.CategoryConfidence < s.config.ReviewConfidence,
		ClassifiedAt:       result.ClassifiedAt,
	}, nil
}
