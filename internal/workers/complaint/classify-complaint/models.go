package classifycomplaint

import (
	"context"
	"time"

	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/complaints"
)

type Input struct {
	ComplaintText string `json:"complaintText"`
}

type Output struct {
	ComplaintID        int64     `json:"complaintId"`
	Category           string    `json:"category"`
	CategoryConfidence float64   `json:"categoryConfidence"`
	Priority           string    `json:"priority"`
	PriorityConfidence float64   `json:"priorityConfidence"`
	RuleOverride       bool      `json:"ruleOverride"`
	RuleExplanation    string    `json:"ruleExplanation"`
	SentimentLabel     string    `json:"sentimentLabel"`
	SentimentScore     float64   `json:"sentimentScore"`
	SentimentBoosted   bool      `json:"sentimentBoosted"`
	NeedsReview        bool      `json:"needsReview"`
	ClassifiedAt       time.Time `json:"classifiedAt"`
}

// Classifier is satisfied by *complaints.Service.
type Classifier interface {
	Classify(ctx context.Context, text string) (*complaints.ClassifyResult, error)
}

type ServiceDependencies struct {
	Complaints Classifier
	Logger     logger.Logger
}
