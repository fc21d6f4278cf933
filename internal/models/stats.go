// internal/models/stats.go
package models

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type DailyCount struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// DashboardStats is the aggregate view served to the review dashboard.
type DashboardStats struct {
	CategoryCounts    []LabelCount     `json:"category_counts"`
	PriorityCounts    []LabelCount     `json:"priority_counts"`
	HighPriorityTrend []DailyCount     `json:"high_priority_trend"`
	FeedbackAccuracy  FeedbackAccuracy `json:"feedback_accuracy"`
	GeneratedAt       string           `json:"generated_at"`
}
