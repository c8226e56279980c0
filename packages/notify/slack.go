package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SlackNotifier sends notifications to Slack via webhook
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	iconEmoji  string
	client     *resty.Client
}

// SlackOption is a functional option for SlackNotifier
type SlackOption func(*SlackNotifier)

func WithSlackChannel(channel string) SlackOption {
	return func(s *SlackNotifier) {
		s.channel = channel
	}
}

func WithSlackUsername(username string) SlackOption {
	return func(s *SlackNotifier) {
		s.username = username
	}
}

func WithSlackIconEmoji(emoji string) SlackOption {
	return func(s *SlackNotifier) {
		s.iconEmoji = emoji
	}
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	s := &SlackNotifier{
		webhookURL: webhookURL,
		username:   "hitsheet",
		iconEmoji:  ":bar_chart:",
		client:     newWebhookClient(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer,omitempty"`
	TS     int64        `json:"ts,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func (s *SlackNotifier) message(summary *RunSummary) slackMessage {
	color, emoji := "good", ":white_check_mark:"
	if summary.FailedTests > 0 {
		color, emoji = "danger", ":x:"
	} else if summary.IsRecovery {
		emoji = ":tada:"
	}

	fields := []slackField{
		{Title: "Total Tests", Value: fmt.Sprintf("%d", summary.TotalTests), Short: true},
		{Title: "Passed", Value: fmt.Sprintf("%d", summary.PassedTests), Short: true},
		{Title: "Failed", Value: fmt.Sprintf("%d", summary.FailedTests), Short: true},
		{Title: "Duration", Value: summary.Duration.Round(time.Millisecond).String(), Short: true},
	}
	if summary.Unreconciled > 0 {
		fields = append(fields, slackField{Title: "Without Result", Value: fmt.Sprintf("%d", summary.Unreconciled), Short: true})
	}

	var text strings.Builder
	if len(summary.FailedIDs) > 0 {
		text.WriteString("*Failed test case IDs:*\n")
		for _, id := range summary.FailedIDs {
			fmt.Fprintf(&text, "• `%s`\n", id)
		}
	}

	return slackMessage{
		Channel:   s.channel,
		Username:  s.username,
		IconEmoji: s.iconEmoji,
		Attachments: []slackAttachment{{
			Color:  color,
			Title:  fmt.Sprintf("%s %s: %s", emoji, summary.Collection, headline(summary)),
			Text:   text.String(),
			Fields: fields,
			Footer: "hitsheet",
			TS:     time.Now().Unix(),
		}},
	}
}

// Notify sends a notification to Slack
func (s *SlackNotifier) Notify(ctx context.Context, summary *RunSummary) error {
	return postJSON(ctx, s.client, "Slack", s.webhookURL, s.message(summary), http.StatusOK)
}
