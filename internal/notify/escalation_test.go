package notify

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"complaint-triage/internal/common/config"
	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishToTopic(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error) {
	args := m.Called(ctx, topicARN, subject, message, attributes)
	return args.String(0), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendText(ctx context.Context, from string, to []string, subject, body string) (string, error) {
	args := m.Called(ctx, from, to, subject, body)
	return args.String(0), args.Error(1)
}

func testConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.SNS.Enabled = true
	cfg.SNS.TopicARN = "arn:aws:sns:us-east-1:123:escalations"
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "alerts@example.com"
	cfg.Email.To = []string{"oncall@example.com"}
	cfg.Breaker = config.BreakerConfig{MaxRequests: 1, Interval: 60000, Timeout: 60000, ConsecutiveFailures: 2}
	return cfg
}

func highEscalation() Escalation {
	return Escalation{
		ComplaintID: 42,
		Prediction: &models.Prediction{
			ComplaintText:      "I was charged twice for my bill",
			Category:           models.CategoryBilling,
			CategoryConfidence: 0.912,
			Priority:           models.PriorityHigh,
			RuleOverride:       true,
			RuleExplanation:    "Priority overridden to High — rule matched: 'charged twice'",
			SentimentLabel:     models.SentimentNeutral,
		},
		ClassifiedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

// ==========================
// Tests
// ==========================

func TestNotifyHighPriority_SendsOnBothChannels(t *testing.T) {
	sns := new(mockPublisher)
	ses := new(mockSender)
	sns.On("PublishToTopic", mock.Anything, "arn:aws:sns:us-east-1:123:escalations", "[High] Billing complaint #42",
		mock.Anything, mock.MatchedBy(func(attrs map[string]string) bool {
			return attrs["complaint_id"] == "42" && attrs["category"] == "Billing"
		})).Return("m-1", nil)
	ses.On("SendText", mock.Anything, "alerts@example.com", []string{"oncall@example.com"},
		"[High] Billing complaint #42", mock.Anything).Return("e-1", nil)

	n := NewEscalationNotifier(Options{Config: testConfig(), SNS: sns, SES: ses, Logger: logger.NewNoOpLogger()})
	require.True(t, n.Enabled())
	require.NoError(t, n.NotifyHighPriority(context.Background(), highEscalation()))

	sns.AssertExpectations(t)
	ses.AssertExpectations(t)
}

func TestNotifyHighPriority_IgnoresLowerPriorities(t *testing.T) {
	sns := new(mockPublisher)
	n := NewEscalationNotifier(Options{Config: testConfig(), SNS: sns})

	for _, p := range []models.Priority{models.PriorityMedium, models.PriorityLow} {
		e := highEscalation()
		e.Prediction.Priority = p
		require.NoError(t, n.NotifyHighPriority(context.Background(), e))
	}
	require.NoError(t, n.NotifyHighPriority(context.Background(), Escalation{}))
	sns.AssertNumberOfCalls(t, "PublishToTopic", 0)
}

func TestNotifyHighPriority_DisabledChannels(t *testing.T) {
	cfg := testConfig()
	cfg.SNS.Enabled = false
	cfg.Email.To = nil

	n := NewEscalationNotifier(Options{Config: cfg, SNS: new(mockPublisher), SES: new(mockSender)})
	assert.False(t, n.Enabled())
	assert.NoError(t, n.NotifyHighPriority(context.Background(), highEscalation()))
}

func TestNotifyHighPriority_BreakerOpens(t *testing.T) {
	cfg := testConfig()
	cfg.Email.Enabled = false

	sns := new(mockPublisher)
	sns.On("PublishToTopic", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", stderrors.New("throttled"))

	n := NewEscalationNotifier(Options{Config: cfg, SNS: sns})

	for i := 0; i < 2; i++ {
		err := n.NotifyHighPriority(context.Background(), highEscalation())
		stdErr, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
	}
	assert.Equal(t, "open", n.State())

	err := n.NotifyHighPriority(context.Background(), highEscalation())
	require.Error(t, err)
	stdErr, _ := errors.As(err)
	assert.Contains(t, stdErr.Details, "circuit breaker is open")
	sns.AssertNumberOfCalls(t, "PublishToTopic", 2)
}

func TestBody(t *testing.T) {
	e := highEscalation()
	e.Prediction.SentimentBoosted = true
	e.Prediction.ComplaintText = strings.Repeat("a", maxExcerpt+10)

	body := Body(e)
	assert.Contains(t, body, "Complaint #42 was classified High priority.")
	assert.Contains(t, body, "confidence 0.912")
	assert.Contains(t, body, "escalated by sentiment")
	assert.Contains(t, body, "2024-05-01T09:00:00Z")
	assert.Contains(t, body, strings.Repeat("a", maxExcerpt)+"...")
}
