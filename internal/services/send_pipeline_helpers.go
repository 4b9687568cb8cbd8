package services

import (
	"os"
	"strings"
)

const titleMaxRunes = 30

// sessionTitleFromInput derives a session title from the first user input:
// the first 30 runes, with an ellipsis marker when the input is longer.
func sessionTitleFromInput(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= titleMaxRunes {
		return text
	}
	return string(runes[:titleMaxRunes]) + "..."
}

func geminiApiKeyFromEnv() string {
	return os.Getenv("GEMINI_API_KEY")
}
