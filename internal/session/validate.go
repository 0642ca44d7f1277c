package session

import (
	"regexp"
	"strings"
)

// Local validation runs before any provider call; invalid credentials are
// rejected synchronously and never sent over the wire.

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)+$`)

// ValidEmail reports whether email (after trimming) looks like an address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// PasswordError returns a human-readable rejection for an unusable
// password, or "" when it is acceptable.
func PasswordError(password string) string {
	if len(password) < minPasswordLen {
		return "password must be at least 6 characters"
	}
	return ""
}
