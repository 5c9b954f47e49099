package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"outreachly/models"
)

// maxAnalysisBytes bounds the free-text narrative so a chatty model
// cannot grow lead rows without limit.
const maxAnalysisBytes = 8 * 1024

const analyzerSystemPrompt = `You are an advanced creator-channel analyzer for a video editing outreach service.

For every channel referenced in the user's text, visit it and extract real data:
1. Contact email from the About section, descriptions or banner; record "No email found" if truly absent.
2. Most recent upload date in YYYY-MM-DD format.
3. Subscriber count, average views, engagement and production quality.
4. Monetization signs: sponsorships, merchandise, memberships.
5. Primary content niche.

RETURN FORMAT - ONLY a raw JSON array (no markdown, no code fences):
[
  {
    "name": "Creator's actual name",
    "email": "actual email or 'No email found'",
    "channel_name": "Exact channel name",
    "platform": "YouTube",
    "youtube_url": "provided URL",
    "niche": "Specific content category",
    "last_posted": "YYYY-MM-DD",
    "ability_to_pay_analysis": "metrics, upload frequency, production quality, monetization indicators, engagement, and a High/Medium/Low assessment of the ability to pay for editing services with 2-3 sentences of reasoning"
  }
]

Return an empty array [] if no valid channel is found.`

// AnalyzedLead is one record in the channel-analysis response. Every
// field is string-typed; missing data arrives as sentinel strings,
// never as omitted keys.
type AnalyzedLead struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	ChannelName          string `json:"channel_name"`
	Platform             string `json:"platform"`
	YoutubeURL           string `json:"youtube_url"`
	Niche                string `json:"niche"`
	LastPosted           string `json:"last_posted"`
	AbilityToPayAnalysis string `json:"ability_to_pay_analysis"`
}

// ChannelAnalyzer calls the hosted completion gateway to turn pasted
// channel references into structured lead records.
type ChannelAnalyzer struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

func NewChannelAnalyzer(baseURL, apiKey, model string, logger *logrus.Logger) *ChannelAnalyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &ChannelAnalyzer{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
		Logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends the pasted text to the completion gateway and returns
// normalized lead records. Any failure is total: either the full
// record set comes back or an error does, never a partial set.
func (a *ChannelAnalyzer) Analyze(ctx context.Context, urls []string) ([]models.Lead, error) {
	if a.APIKey == "" {
		return nil, fmt.Errorf("AI API key not configured")
	}

	payload := chatRequest{
		Model: a.Model,
		Messages: []chatMessage{
			{Role: "system", Content: analyzerSystemPrompt},
			{Role: "user", Content: "Extract and analyze all creator channels from this text:\n\n" + strings.Join(urls, "\n\n")},
		},
		Temperature: 0.2,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("AI gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		a.Logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
		}).Error("AI gateway returned non-OK status")
		return nil, fmt.Errorf("AI gateway error: %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("AI gateway returned invalid JSON response")
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("AI gateway response missing expected data structure")
	}

	records, err := parseAnalyzedLeads(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	leads := make([]models.Lead, 0, len(records))
	for _, r := range records {
		leads = append(leads, normalizeAnalyzedLead(r))
	}
	return leads, nil
}

// parseAnalyzedLeads extracts the JSON array from the model output,
// tolerating markdown code fences around it.
func parseAnalyzedLeads(content string) ([]AnalyzedLead, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var records []AnalyzedLead
	if err := json.Unmarshal([]byte(cleaned), &records); err != nil {
		return nil, fmt.Errorf("failed to parse AI analysis: %w", err)
	}
	return records, nil
}

// normalizeAnalyzedLead enforces the response contract: the email
// sentinel, a parseable posting date or nil, and a bounded narrative.
func normalizeAnalyzedLead(r AnalyzedLead) models.Lead {
	email := strings.TrimSpace(r.Email)
	if email == "" || !strings.Contains(email, "@") {
		email = models.NoEmailSentinel
	}

	analysis := r.AbilityToPayAnalysis
	if len(analysis) > maxAnalysisBytes {
		analysis = analysis[:maxAnalysisBytes]
	}

	return models.Lead{
		Name:                 r.Name,
		Email:                email,
		ChannelName:          r.ChannelName,
		Platform:             r.Platform,
		ProfileURL:           r.YoutubeURL,
		Niche:                r.Niche,
		LastPosted:           parseLastPosted(r.LastPosted),
		AbilityToPayAnalysis: analysis,
		Status:               "new",
	}
}

// parseLastPosted degrades any unparseable value to nil ("unknown")
// rather than propagating a parse failure.
func parseLastPosted(s string) *time.Time {
	s = strings.TrimSpace(s)
	switch s {
	case "", "Unknown", "unknown", "N/A", "recent estimate":
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
