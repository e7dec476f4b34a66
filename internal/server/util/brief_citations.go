package util

import "strings"

// maxCitationLen bounds a citation candidate; quadrant topic labels are
// short phrases, anything longer is prose in brackets.
const maxCitationLen = 80

// ExtractTopicCitations returns the topic citations of a brief, the labels
// wrapped in single square brackets, in order of first appearance without
// duplicates.
func ExtractTopicCitations(text string) []string {
	var citations []string
	seen := make(map[string]bool)

	rest := text
	for {
		start := strings.Index(rest, "[")
		if start == -1 {
			return citations
		}
		rest = rest[start+1:]

		end := strings.Index(rest, "]")
		if end == -1 {
			return citations
		}

		label := rest[:end]
		rest = rest[end+1:]

		if !isCitationLabel(label) {
			continue
		}
		if !seen[label] {
			seen[label] = true
			citations = append(citations, label)
		}
	}
}

// ValidateBriefCitations strips citations that do not match a known topic
// label, unwrapping them to plain text, and returns the cleaned brief plus
// the valid cited topics in order of first appearance.
func ValidateBriefCitations(text string, topicLabels []string) (string, []string) {
	valid := make(map[string]bool, len(topicLabels))
	for _, label := range topicLabels {
		valid[label] = true
	}

	var b strings.Builder
	var cited []string
	seen := make(map[string]bool)

	rest := text
	for {
		start := strings.Index(rest, "[")
		if start == -1 {
			b.WriteString(rest)
			return b.String(), cited
		}
		b.WriteString(rest[:start])
		rest = rest[start+1:]

		end := strings.Index(rest, "]")
		if end == -1 {
			b.WriteString("[")
			b.WriteString(rest)
			return b.String(), cited
		}

		label := rest[:end]
		rest = rest[end+1:]

		if isCitationLabel(label) && valid[label] {
			b.WriteString("[")
			b.WriteString(label)
			b.WriteString("]")
			if !seen[label] {
				seen[label] = true
				cited = append(cited, label)
			}
			continue
		}

		b.WriteString(label)
	}
}

func isCitationLabel(label string) bool {
	if label == "" || len(label) > maxCitationLen {
		return false
	}
	return !strings.ContainsAny(label, "[]\n\r")
}
