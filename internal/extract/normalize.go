// Package extract implements the heuristic field extractors that turn
// normalized slide text into typed metadata values. Extractors never fail:
// absence is an empty string, and every rule table is supplied explicitly.
package extract

import (
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// CollapseSpaces squeezes all whitespace runs to single spaces and trims.
func CollapseSpaces(text string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}

// Normalize prepares raw slide text for the extractors: en/em dashes become
// plain hyphens and whitespace is collapsed.
func Normalize(text string) string {
	text = strings.NewReplacer("–", "-", "—", "-").Replace(text)
	return CollapseSpaces(text)
}

// CleanName strips surrounding punctuation from a name-like fragment.
func CleanName(name string) string {
	return CollapseSpaces(strings.Trim(name, " ,.;:()[]{}\"'"))
}
