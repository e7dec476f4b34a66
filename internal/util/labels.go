package util

import (
	"regexp"
	"strings"
)

var (
	reBulletPrefix = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	reSpaceRun     = regexp.MustCompile(`\s+`)
)

// CleanLabel normalizes a model-produced entity or keyword label so it can
// serve as a stable graph key: list markers, wrapping quotes and markdown
// emphasis are stripped, whitespace runs collapse to single spaces.
func CleanLabel(s string) string {
	s = reBulletPrefix.ReplaceAllString(s, "")

	for {
		trimmed := strings.TrimSpace(s)
		trimmed = trimQuotes(trimmed)
		trimmed = trimEmphasis(trimmed)
		if trimmed == s {
			break
		}
		s = trimmed
	}

	return reSpaceRun.ReplaceAllString(s, " ")
}

// DedupeLabels cleans every label and removes case-insensitive duplicates,
// keeping the first-seen casing and order. Labels that clean down to the
// empty string are dropped.
func DedupeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	result := make([]string, 0, len(labels))
	for _, label := range labels {
		cleaned := CleanLabel(label)
		if cleaned == "" {
			continue
		}
		key := strings.ToLower(cleaned)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, cleaned)
	}
	return result
}

func trimQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

func trimEmphasis(s string) string {
	for _, wrap := range []string{"**", "__", "*", "_", "`"} {
		if len(s) > 2*len(wrap) && strings.HasPrefix(s, wrap) && strings.HasSuffix(s, wrap) {
			return s[len(wrap) : len(s)-len(wrap)]
		}
	}
	return s
}
