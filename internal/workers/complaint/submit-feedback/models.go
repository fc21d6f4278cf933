package submitfeedback

import (
	"context"
	"time"

	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/complaints"
)

type Input struct {
	ComplaintID       int64  `json:"complaintId"`
	ComplaintText     string `json:"complaintText"`
	PredictedCategory string `json:"predictedCategory"`
	PredictedPriority string `json:"predictedPriority"`
	CorrectCategory   string `json:"correctCategory"`
	CorrectPriority   string `json:"correctPriority"`
}

type Output struct {
	FeedbackID         int64     `json:"feedbackId"`
	IsCorrect          bool      `json:"isCorrect"`
	OverallAccuracy    float64   `json:"overallAccuracy"`
	FeedbackTotal      int       `json:"feedbackTotal"`
	FeedbackCorrect    int       `json:"feedbackCorrect"`
	SubmittedAt        time.Time `json:"submittedAt"`
	FeedbackMessage    string    `json:"feedbackMessage"`
	RetrainRecommended bool      `json:"retrainRecommended"`
}

// FeedbackSubmitter is satisfied by *complaints.Service.
type FeedbackSubmitter interface {
	SubmitFeedback(ctx context.Context, in complaints.FeedbackInput) (*complaints.FeedbackResult, error)
}

type ServiceDependencies struct {
	Complaints FeedbackSubmitter
	Logger     logger.Logger
}
