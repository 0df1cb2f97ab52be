// Package langdetect normalizes and detects programming languages for
// fenced code block content, backed by go-enry.
package langdetect

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Fallback is returned when nothing better can be determined.
const Fallback = "text"

// classifierCandidates bounds the classifier search to languages that
// commonly appear in documentation code blocks.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "TOML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// NormalizeHint canonicalizes a fence info string into a lowercase
// language name ("golang" -> "go", "py" -> "python"). Only the first
// whitespace-separated word of the info string is a language hint; the
// rest is fence metadata. Unknown hints are returned lowercased as-is.
func NormalizeHint(info string) string {
	hint := strings.TrimSpace(info)
	if hint == "" {
		return ""
	}
	if idx := strings.IndexAny(hint, " \t"); idx >= 0 {
		hint = hint[:idx]
	}

	if lang, ok := enry.GetLanguageByAlias(hint); ok {
		return strings.ToLower(lang)
	}
	return strings.ToLower(hint)
}

// Detect guesses the language of code content with no usable hint.
// Shebangs win; otherwise the classifier decides, and low-confidence
// answers fall back to "text".
func Detect(content []byte) string {
	if len(content) == 0 {
		return Fallback
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe && lang != "" {
		return strings.ToLower(lang)
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return strings.ToLower(lang)
	}

	return Fallback
}
