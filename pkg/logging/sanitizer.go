package logging

import (
	"regexp"
)

const (
	// MaxExcerptLength bounds how much of an uploaded SQL model is echoed into logs.
	MaxExcerptLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Matches password=xxx, pwd=xxx, pass=xxx in keyword/value connection strings
	// and in driver error messages (until the next delimiter).
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches the user:pass@host part of postgresql:// URLs.
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)
)

// SanitizeConnectionString removes credentials from a datasource connection string.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeError renders an error with any embedded credentials removed.
// Driver errors for failed connections may echo the DSN they were given.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeConnectionString(err.Error())
}

// SanitizeSQLExcerpt truncates an uploaded SQL model for logging and strips
// anything that looks like an inline password.
func SanitizeSQLExcerpt(sqlText string) string {
	if sqlText == "" {
		return ""
	}

	sanitized := TruncateString(sqlText, MaxExcerptLength)
	return passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
