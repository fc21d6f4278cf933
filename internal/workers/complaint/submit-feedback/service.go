package submitfeedback

import (
	"context"

	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/complaints"
)

type Service struct {
	config     *Config
	logger     logger.Logger
	complaints FeedbackSubmitter
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:     config,
		logger:     deps.Logger,
		complaints: deps.Complaints,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := s.complaints.SubmitFeedback(ctx, complaints.FeedbackInput{
		ComplaintID:       input.ComplaintID,
		ComplaintText:     input.ComplaintText,
		PredictedCategory: input.PredictedCategory,
		PredictedPriority: input.PredictedPriority,
		CorrectCategory:   input.CorrectCategory,
		CorrectPriority:   input.CorrectPriority,
	})
	if err != nil {
		return nil, err
	}

	accuracy := result.OverallAccuracy
	return &Output{
		FeedbackID:         result.FeedbackID,
		IsCorrect:          result.IsCorrect,
		OverallAccuracy:    accuracy.Accuracy,
		FeedbackTotal:      accuracy.Total,
		FeedbackCorrect:    accuracy.Correct,
		SubmittedAt:        result.SubmittedAt,
		FeedbackMessage:    result.Message,
		RetrainRecommended: accuracy.Total > 0 && accuracy.Accuracy < s.config.RetrainAccuracy,
	}, nil
}
