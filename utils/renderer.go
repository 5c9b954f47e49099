package utils

import (
	"strings"

	"outreachly/models"
)

// Fallbacks used when a lead field is blank at render time.
const (
	FallbackName    = "there"
	FallbackChannel = "your channel"
)

// RenderTemplate substitutes the documented placeholder tokens with
// the lead's fields. Both {token} and {{token}} spellings are
// replaced; any other braced text is left literal. Email and platform
// fall back to the empty string; the email token is never rendered as
// the no-email sentinel.
func RenderTemplate(text string, lead *models.Lead) string {
	name := lead.Name
	if name == "" {
		name = FallbackName
	}
	channel := lead.ChannelName
	if channel == "" {
		channel = FallbackChannel
	}
	email := lead.Email
	if email == models.NoEmailSentinel {
		email = ""
	}

	replacer := strings.NewReplacer(
		"{{name}}", name,
		"{{email}}", email,
		"{{channel_name}}", channel,
		"{{platform}}", lead.Platform,
		"{name}", name,
		"{email}", email,
		"{channel_name}", channel,
		"{platform}", lead.Platform,
	)
	return replacer.Replace(text)
}
