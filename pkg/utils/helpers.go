package utils

import (
	"os"
	"strconv"
	"strings"
	"unicode"
)

// DefaultSemaphoreLimit bounds concurrent oracle calls when no explicit limit
// is configured.
const DefaultSemaphoreLimit = 4

// GetSemaphoreLimit returns the concurrency limit from the SEMAPHORE_LIMIT
// environment variable or the default.
func GetSemaphoreLimit() int {
	val := os.Getenv("SEMAPHORE_LIMIT")
	if val == "" {
		return DefaultSemaphoreLimit
	}
	limit, err := strconv.Atoi(val)
	if err != nil || limit <= 0 {
		return DefaultSemaphoreLimit
	}
	return limit
}

// SanitizeFilename converts an arbitrary concept string into a safe file
// name component: non-alphanumeric runs collapse to single underscores.
func SanitizeFilename(name string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && sb.Len() > 0 {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(sb.String(), "_")
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
