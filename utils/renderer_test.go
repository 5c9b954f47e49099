package utils

import (
	"testing"
	"time"

	"outreachly/models"
)

func TestRenderTemplateSubstitution(t *testing.T) {
	lead := &models.Lead{
		Name:        "Ana",
		Email:       "ana@example.com",
		ChannelName: "AnaTV",
		Platform:    "YouTube",
	}

	got := RenderTemplate("Hi {name}, love {channel_name}", lead)
	want := "Hi Ana, love AnaTV"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = RenderTemplate("{{name}} on {{platform}} at {{email}}", lead)
	want = "Ana on YouTube at ana@example.com"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTemplateDoubleBraceNotMangled(t *testing.T) {
	lead := &models.Lead{Name: "Ana"}

	// {{name}} must be consumed as one token, not as {name} inside
	// literal braces
	got := RenderTemplate("{{name}} and {name}", lead)
	want := "Ana and Ana"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTemplateFallbacks(t *testing.T) {
	lead := &models.Lead{}

	got := RenderTemplate("Hi {name}, about {channel_name}", lead)
	want := "Hi there, about your channel"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTemplateSentinelEmailRendersEmpty(t *testing.T) {
	lead := &models.Lead{
		Name:  "Ana",
		Email: models.NoEmailSentinel,
	}

	got := RenderTemplate("Reply to: {email}", lead)
	want := "Reply to: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTemplateUnknownTokensLeftAlone(t *testing.T) {
	lead := &models.Lead{Name: "Ana"}

	got := RenderTemplate("Hi {name}, your {discount} awaits", lead)
	want := "Hi Ana, your {discount} awaits"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTemplateIgnoresUnrelatedLeadFields(t *testing.T) {
	posted := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	lead := &models.Lead{
		Name:       "Ana",
		LastPosted: &posted,
		Niche:      "gaming",
	}

	got := RenderTemplate("plain text", lead)
	if got != "plain text" {
		t.Errorf("got %q, want unchanged text", got)
	}
}
