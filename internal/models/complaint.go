// internal/models/complaint.go
package models

import "time"

type Category string

const (
	CategoryBilling   Category = "Billing"
	CategoryTechnical Category = "Technical"
	CategoryDelivery  Category = "Delivery"
	CategoryAccount   Category = "Account"
	CategoryOther     Category = "Other"
)

// Categories lists the closed category set in display order.
var Categories = []Category{
	CategoryBilling,
	CategoryTechnical,
	CategoryDelivery,
	CategoryAccount,
	CategoryOther,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryBilling, CategoryTechnical, CategoryDelivery, CategoryAccount, CategoryOther:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the priority levels from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Escalate returns the next level up. High is the ceiling and is returned unchanged.
func (p Priority) Escalate() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	}
	return p
}

type SentimentLabel string

const (
	SentimentVeryNegative SentimentLabel = "Very Negative"
	SentimentNegative     SentimentLabel = "Negative"
	SentimentNeutral      SentimentLabel = "Neutral"
	SentimentPositive     SentimentLabel = "Positive"
)

// Prediction is the final decision for one complaint. It is built once per
// classification call and never modified afterwards.
type Prediction struct {
	ComplaintText      string         `json:"complaint_text"`
	Category           Category       `json:"category"`
	CategoryConfidence float64        `json:"category_confidence"`
	Priority           Priority       `json:"priority"`
	PriorityConfidence float64        `json:"priority_confidence"`
	RuleOverride       bool           `json:"rule_override"`
	RuleExplanation    string         `json:"rule_explanation"`
	SentimentLabel     SentimentLabel `json:"sentiment_label"`
	SentimentScore     float64        `json:"sentiment_score"`
	SentimentBoosted   bool           `json:"sentiment_boosted"`
}

// ComplaintRecord is a stored classification.
type ComplaintRecord struct {
	ID            int64     `json:"id"`
	ComplaintText string    `json:"complaint_text"`
	Category      Category  `json:"category"`
	Priority      Priority  `json:"priority"`
	RuleOverride  bool      `json:"rule_override"`
	ClassifiedAt  time.Time `json:"classified_at"`
}
