package utils

// Field validation for the public inquiry form. These checks run before any
// persistence so malformed submissions are rejected without touching the
// database.

import (
	"regexp"
	"strings"
)

// MinMessageLen is the minimum length of an inquiry message after trimming.
const MinMessageLen = 20

var (
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// Philippine mobile numbers: 09XXXXXXXXX or +639XXXXXXXXX.
	phoneRe = regexp.MustCompile(`^(09\d{9}|\+639\d{9})$`)
)

// ValidEmail reports whether s looks like a standard email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// NormalizePhone strips spaces and hyphens from a phone number so that
// formatted input like "0917-123-4567" validates.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// ValidPhone reports whether s (after normalization) is a local mobile
// number in either accepted format.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(NormalizePhone(s))
}

// ValidMessage reports whether the inquiry message meets the minimum
// length after trimming surrounding whitespace.
func ValidMessage(s string) bool {
	return len(strings.TrimSpace(s)) >= MinMessageLen
}
