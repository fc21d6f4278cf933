// Package sentiment scores complaint tone and decides whether strongly
// negative complaints should be escalated one priority level.
package sentiment

import (
	"math"
	"strings"

	"complaint-triage/internal/models"

	"github.com/jonreiter/govader"
)

const (
	veryNegativeMax = -0.6
	negativeMax     = -0.2
	neutralMax      = 0.2

	// BoostThreshold is the compound score at or below which priority is
	// escalated.
	BoostThreshold = -0.5
)

// PolarityScorer returns a compound polarity in [-1, 1] for raw text.
type PolarityScorer interface {
	Compound(text string) float64
}

type vaderScorer struct {
	sia *govader.SentimentIntensityAnalyzer
}

func (v vaderScorer) Compound(text string) float64 {
	return v.sia.PolarityScores(text).Compound
}

// NewVaderScorer returns a scorer backed by the VADER lexicon.
func NewVaderScorer() PolarityScorer {
	return vaderScorer{sia: govader.NewSentimentIntensityAnalyzer()}
}

type Result struct {
	Compound    float64
	Label       models.SentimentLabel
	ShouldBoost bool
}

var neutral = Result{Compound: 0, Label: models.SentimentNeutral}

type Analyzer struct {
	scorer PolarityScorer
}

func New(scorer PolarityScorer) *Analyzer {
	return &Analyzer{scorer: scorer}
}

func NewDefault() *Analyzer {
	return New(NewVaderScorer())
}

// Analyze never fails. Empty text, a scorer panic or a non-finite score all
// yield a neutral result with no boost.
func (a *Analyzer) Analyze(text string) (res Result) {
	if strings.TrimSpace(text) == "" || a.scorer == nil {
		return neutral
	}

	defer func() {
		if r := recover(); r != nil {
			res = neutral
		}
	}()

	compound := a.scorer.Compound(text)
	if math.IsNaN(compound) || math.IsInf(compound, 0) {
		return neutral
	}
	compound = math.Max(-1, math.Min(1, compound))

	return Result{
		Compound:    compound,
		Label:       LabelFor(compound),
		ShouldBoost: compound <= BoostThreshold,
	}
}

func LabelFor(compound float64) models.SentimentLabel {
	switch {
	case compound <= veryNegativeMax:
		return models.SentimentVeryNegative
	case compound <= negativeMax:
		return models.SentimentNegative
	case compound <= neutralMax:
		return models.SentimentNeutral
	default:
		return models.SentimentPositive
	}
}

// Boost escalates priority by one level when the result calls for it.
// High is already the ceiling, so it reports false there.
func Boost(priority models.Priority, res Result) (models.Priority, bool) {
	if !res.ShouldBoost {
		return priority, false
	}
	next := priority.Escalate()
	return next, next != priority
}
