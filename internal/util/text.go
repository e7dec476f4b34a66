package util

import "strings"

// SanitizePostgresText strips bytes Postgres rejects in text and jsonb
// values: NUL bytes and invalid UTF-8 sequences. Analysis output passes
// through here before it is stored.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
