package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/classifier.txt
var classifierRaw string

// Classifier returns the trimmed system prompt for the intent classifier.
// The embed happens at compile time; this is safe to call concurrently.
func Classifier() string {
	return strings.TrimSpace(classifierRaw)
}
