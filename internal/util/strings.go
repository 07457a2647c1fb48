package util

import "strings"

// SplitAndTrim splits a comma-separated list, dropping empty entries.
// "https://a, https://b," -> ["https://a", "https://b"]
func SplitAndTrim(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}

	return result
}

// Redact keeps the first and last four characters of a secret.
func Redact(secret string) string {
	const keep = 4
	if secret == "" {
		return ""
	}
	if len(secret) <= keep*2 {
		return "****"
	}
	return secret[:keep] + "****" + secret[len(secret)-keep:]
}
