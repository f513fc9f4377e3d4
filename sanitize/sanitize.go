// Package sanitize scrubs untrusted form input before it reaches the
// database, the filesystem, or an outbound e-mail.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/net/idna"
)

// Strip removes NUL bytes and non-printable control characters from s,
// keeping ordinary whitespace, and trims surrounding whitespace.
func Strip(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if r == 0 || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}

// EmailContent prepares a user-supplied string for interpolation into an
// outbound e-mail. Newlines and carriage returns collapse to single spaces
// and colons are dropped, so a crafted value can't smuggle extra headers
// past the mail submission path.
func EmailContent(s string) string {
	s = Strip(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r':
			return ' '
		case ':':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Filename reduces an original upload name to something safe to place on
// the local filesystem: path separators become underscores, ".." sequences
// collapse, and anything outside [a-zA-Z0-9._-] is dropped. The result is
// truncated to 255 characters.
func Filename(s string) string {
	s = Strip(s)
	s = strings.Replace(s, "/", "_", -1)
	s = strings.Replace(s, "\\", "_", -1)
	for strings.Contains(s, "..") {
		s = strings.Replace(s, "..", ".", -1)
	}
	s = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		switch r {
		case '.', '_', '-':
			return r
		}
		return -1
	}, s)
	if len(s) > 255 {
		s = s[:255]
	}
	return s
}

// StripMap applies Strip to every value of a string map, returning a new
// map. Useful for scrubbing a whole decoded form at once.
func StripMap(fields map[string]string) map[string]string {
	cleaned := make(map[string]string, len(fields))
	for key, value := range fields {
		cleaned[key] = Strip(value)
	}
	return cleaned
}

// NormalizeEmail lowercases an e-mail address and converts an
// internationalized domain part to its ASCII form, so the same mailbox
// always maps to the same stored key. Addresses that don't look like
// e-mail at all are returned stripped and lowercased; the validator
// rejects them downstream.
func NormalizeEmail(s string) string {
	s = strings.ToLower(Strip(s))
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	domain, err := idna.ToASCII(s[at+1:])
	if err != nil {
		return s
	}
	return s[:at+1] + domain
}
