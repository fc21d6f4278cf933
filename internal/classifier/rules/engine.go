// Package rules forces High priority for complaints that match known
// high-risk phrasings, regardless of what the priority model predicted.
package rules

import (
	"fmt"
	"regexp"

	"complaint-triage/internal/classifier/textre"
	"complaint-triage/internal/models"
)

// DefaultPatterns is evaluated in order; the first match wins.
var DefaultPatterns = []string{
	// money taken incorrectly
	`refund not received`,
	`payment failed`,
	`charged twice`,
	`double.{0,10}charge`,
	`unauthorized.{0,15}charge`,
	`money.{0,10}deducted`,

	// account access and security
	`account.{0,10}blocked`,
	`account.{0,10}hacked`,
	`account.{0,10}locked`,
	`unauthorized.{0,10}access`,
	`someone.{0,15}accessed`,

	// prolonged outages
	`\d+\s*days?.{0,10}(down|outage|no service|not working)`,
	`(down|outage|no service).{0,20}\d+\s*days?`,
	`work from home`,
	`business.{0,15}(affected|impacted|critical|stopped)`,

	// subscriptions the customer never agreed to
	`never subscribed`,
	`never signed up`,
	`didn.t sign up`,
}

const (
	ExplanationModel    = "Priority set by ML model."
	explanationOverride = "Priority overridden to High — rule matched: '%s'"
)

type rule struct {
	pattern string
	re      *regexp.Regexp
}

// Outcome is the result of applying the engine to one complaint. Pattern is
// empty unless Matched is true.
type Outcome struct {
	Priority models.Priority
	Matched  bool
	Pattern  string
}

// Explain describes which stage decided the pre-sentiment priority.
func (o Outcome) Explain() string {
	if !o.Matched {
		return ExplanationModel
	}
	return fmt.Sprintf(explanationOverride, o.Pattern)
}

// Engine holds an ordered list of case-insensitive rules. It is read-only
// after construction.
type Engine struct {
	rules []rule
}

// New compiles patterns case-insensitively with Unicode digit and space
// classes. Outcome.Pattern always reports the pattern as given.
func New(patterns []string) (*Engine, error) {
	rs := make([]rule, 0, len(patterns))
	for _, p := range patterns {
		re, err := textre.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", p, err)
		}
		rs = append(rs, rule{pattern: p, re: re})
	}
	return &Engine{rules: rs}, nil
}

func NewDefault() *Engine {
	e, err := New(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return e
}

// Match returns the first rule pattern found in text.
func (e *Engine) Match(text string) (string, bool) {
	for _, r := range e.rules {
		if r.re.MatchString(text) {
			return r.pattern, true
		}
	}
	return "", false
}

// Apply runs the rules over the raw complaint text. A match forces High;
// otherwise the model's priority passes through unchanged.
func (e *Engine) Apply(text string, mlPriority models.Priority) Outcome {
	if p, ok := e.Match(text); ok {
		return Outcome{Priority: models.PriorityHigh, Matched: true, Pattern: p}
	}
	return Outcome{Priority: mlPriority}
}

// Patterns returns the rule patterns in evaluation order.
func (e *Engine) Patterns() []string {
	out := make([]string, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.pattern
	}
	return out
}
