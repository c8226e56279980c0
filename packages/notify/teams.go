package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// TeamsNotifier sends notifications to Microsoft Teams via webhook
type TeamsNotifier struct {
	webhookURL string
	client     *resty.Client
}

// NewTeamsNotifier creates a new Teams notifier
func NewTeamsNotifier(webhookURL string) *TeamsNotifier {
	return &TeamsNotifier{
		webhookURL: webhookURL,
		client:     newWebhookClient(),
	}
}

func (t *TeamsNotifier) Name() string {
	return "teams"
}

// teamsMessage is an Adaptive Card message
type teamsMessage struct {
	Type        string      `json:"type"`
	Attachments []teamsCard `json:"attachments"`
}

type teamsCard struct {
	ContentType string           `json:"contentType"`
	ContentURL  *string          `json:"contentUrl"`
	Content     teamsCardContent `json:"content"`
}

type teamsCardContent struct {
	Schema  string       `json:"$schema"`
	Type    string       `json:"type"`
	Version string       `json:"version"`
	Body    []teamsBlock `json:"body"`
}

type teamsBlock struct {
	Type      string        `json:"type"`
	Size      string        `json:"size,omitempty"`
	Weight    string        `json:"weight,omitempty"`
	Text      string        `json:"text,omitempty"`
	Color     string        `json:"color,omitempty"`
	Wrap      bool          `json:"wrap,omitempty"`
	Columns   []teamsColumn `json:"columns,omitempty"`
	Items     []teamsBlock  `json:"items,omitempty"`
	Spacing   string        `json:"spacing,omitempty"`
	Separator bool          `json:"separator,omitempty"`
}

type teamsColumn struct {
	Type  string       `json:"type"`
	Width string       `json:"width"`
	Items []teamsBlock `json:"items"`
}

func teamsStat(label, value, color string) teamsColumn {
	return teamsColumn{
		Type:  "Column",
		Width: "stretch",
		Items: []teamsBlock{
			{Type: "TextBlock", Text: "**" + label + "**", Wrap: true},
			{Type: "TextBlock", Text: value, Color: color, Wrap: true},
		},
	}
}

func (t *TeamsNotifier) message(summary *RunSummary) teamsMessage {
	color := "good"
	if summary.FailedTests > 0 {
		color = "attention"
	}

	body := []teamsBlock{
		{
			Type:   "TextBlock",
			Size:   "Large",
			Weight: "Bolder",
			Text:   fmt.Sprintf("%s: %s", summary.Collection, headline(summary)),
			Color:  color,
		},
		{
			Type:      "ColumnSet",
			Separator: true,
			Spacing:   "Medium",
			Columns: []teamsColumn{
				teamsStat("Total Tests", fmt.Sprintf("%d", summary.TotalTests), ""),
				teamsStat("Passed", fmt.Sprintf("%d", summary.PassedTests), "good"),
				teamsStat("Failed", fmt.Sprintf("%d", summary.FailedTests), "attention"),
				teamsStat("Duration", summary.Duration.Round(time.Millisecond).String(), ""),
			},
		},
	}

	if len(summary.FailedIDs) > 0 {
		body = append(body, teamsBlock{
			Type:      "TextBlock",
			Text:      "**Failed test case IDs:**",
			Separator: true,
			Spacing:   "Medium",
		})
		for _, id := range summary.FailedIDs {
			body = append(body, teamsBlock{Type: "TextBlock", Text: fmt.Sprintf("- `%s`", id), Wrap: true})
		}
	}

	body = append(body, teamsBlock{
		Type:      "TextBlock",
		Text:      fmt.Sprintf("_hitsheet - %s_", time.Now().Format(time.RFC3339)),
		Separator: true,
		Spacing:   "Medium",
	})

	return teamsMessage{
		Type: "message",
		Attachments: []teamsCard{{
			ContentType: "application/vnd.microsoft.card.adaptive",
			Content: teamsCardContent{
				Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
				Type:    "AdaptiveCard",
				Version: "1.2",
				Body:    body,
			},
		}},
	}
}

// Notify sends a notification to Microsoft Teams
func (t *TeamsNotifier) Notify(ctx context.Context, summary *RunSummary) error {
	return postJSON(ctx, t.client, "Teams", t.webhookURL, t.message(summary), http.StatusOK, http.StatusAccepted)
}
