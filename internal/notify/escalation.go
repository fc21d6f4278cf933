// Package notify alerts the on-call team when a complaint ends up High
// priority.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"complaint-triage/internal/common/config"
	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/models"

	"github.com/sony/gobreaker"
)

const maxExcerpt = 280

// TopicPublisher is satisfied by *aws.SNSClient.
type TopicPublisher interface {
	PublishToTopic(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error)
}

// EmailSender is satisfied by *aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

// Escalation describes one High priority complaint.
type Escalation struct {
	ComplaintID  int64
	Prediction   *models.Prediction
	ClassifiedAt time.Time
}

type Options struct {
	Config config.NotificationConfig
	SNS    TopicPublisher
	SES    EmailSender
	Logger logger.Logger
}

// EscalationNotifier sends alerts over SNS and SES. Both channels share one
// circuit breaker so a failing provider stops slowing down classification.
type EscalationNotifier struct {
	cfg     config.NotificationConfig
	sns     TopicPublisher
	ses     EmailSender
	breaker *gobreaker.CircuitBreaker
	logger  logger.Logger
}

func NewEscalationNotifier(opts Options) *EscalationNotifier {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"component": "notify"})

	bc := opts.Config.Breaker
	settings := gobreaker.Settings{
		Name:        "escalation-notifier",
		MaxRequests: bc.MaxRequests,
		Interval:    time.Duration(bc.Interval) * time.Millisecond,
		Timeout:     time.Duration(bc.Timeout) * time.Millisecond,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			threshold := bc.ConsecutiveFailures
			if threshold == 0 {
				threshold = 5
			}
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}

	return &EscalationNotifier{
		cfg:     opts.Config,
		sns:     opts.SNS,
		ses:     opts.SES,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  log,
	}
}

// Enabled reports whether any channel is configured.
func (n *EscalationNotifier) Enabled() bool {
	return n.snsEnabled() || n.sesEnabled()
}

func (n *EscalationNotifier) snsEnabled() bool {
	return n.cfg.SNS.Enabled && n.sns != nil && n.cfg.SNS.TopicARN != ""
}

func (n *EscalationNotifier) sesEnabled() bool {
	return n.cfg.Email.Enabled && n.ses != nil && len(n.cfg.Email.To) > 0
}

// State exposes the breaker state for readiness reporting.
func (n *EscalationNotifier) State() string {
	return n.breaker.State().String()
}

// NotifyHighPriority sends e on every enabled channel. Complaints that are
// not High priority are ignored.
func (n *EscalationNotifier) NotifyHighPriority(ctx context.Context, e Escalation) error {
	if e.Prediction == nil || e.Prediction.Priority != models.PriorityHigh {
		return nil
	}

	subject := Subject(e)
	body := Body(e)
	var failures []string

	if n.snsEnabled() {
		attrs := map[string]string{
			"category":     string(e.Prediction.Category),
			"priority":     string(e.Prediction.Priority),
			"complaint_id": strconv.FormatInt(e.ComplaintID, 10),
		}
		_, err := n.breaker.Execute(func() (interface{}, error) {
			return n.sns.PublishToTopic(ctx, n.cfg.SNS.TopicARN, subject, body, attrs)
		})
		if err != nil {
			failures = append(failures, "sns: "+err.Error())
		}
	}

	if n.sesEnabled() {
		_, err := n.breaker.Execute(func() (interface{}, error) {
			return n.ses.SendText(ctx, n.cfg.Email.FromEmail, n.cfg.Email.To, subject, body)
		})
		if err != nil {
			failures = append(failures, "ses: "+err.Error())
		}
	}

	if len(failures) > 0 {
		return errors.NewNotificationSendFailedError("escalation", fmt.Errorf("%s", strings.Join(failures, "; ")))
	}

	n.logger.Info("Escalation sent", map[string]interface{}{
		"complaintId": e.ComplaintID,
		"category":    string(e.Prediction.Category),
	})
	return nil
}

func Subject(e Escalation) string {
	return fmt.Sprintf("[High] %s complaint #%d", e.Prediction.Category, e.ComplaintID)
}

func Body(e Escalation) string {
	p := e.Prediction
	var b strings.Builder
	fmt.Fprintf(&b, "Complaint #%d was classified High priority.\n\n", e.ComplaintID)
	fmt.Fprintf(&b, "Category:  %s (confidence %.3f)\n", p.Category, p.CategoryConfidence)
	fmt.Fprintf(&b, "Reason:    %s\n", p.RuleExplanation)
	fmt.Fprintf(&b, "Sentiment: %s (%.3f)", p.SentimentLabel, p.SentimentScore)
	if p.SentimentBoosted {
		b.WriteString(", escalated by sentiment")
	}
	b.WriteString("\n")
	if !e.ClassifiedAt.IsZero() {
		fmt.Fprintf(&b, "Received:  %s\n", e.ClassifiedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "\n%s\n", excerpt(p.ComplaintText))
	return b.String()
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= maxExcerpt {
		return text
	}
	return string(runes[:maxExcerpt]) + "..."
}
