package validation

import (
	"regexp"
)

// Simple shape check; deliverability is not our problem.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}
