// internal/models/feedback.go
package models

import "time"

// Feedback is a reviewer correction for a previously classified complaint.
type Feedback struct {
	ID                int64     `json:"id"`
	ComplaintID       int64     `json:"complaint_id"`
	ComplaintText     string    `json:"complaint_text"`
	PredictedCategory Category  `json:"predicted_category"`
	PredictedPriority Priority  `json:"predicted_priority"`
	CorrectCategory   Category  `json:"correct_category"`
	CorrectPriority   Priority  `json:"correct_priority"`
	IsCorrect         bool      `json:"is_correct"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

// Matches reports whether the prediction agreed with the reviewer on both labels.
func (f *Feedback) Matches() bool {
	return f.PredictedCategory == f.CorrectCategory && f.PredictedPriority == f.CorrectPriority
}

type FeedbackAccuracy struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}
