package validate

import (
	"net/mail"
	"regexp"
	"strings"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func Email(value string) bool {
	_, err := mail.ParseAddress(strings.TrimSpace(value))
	return err == nil
}

func Username(value string) bool {
	return usernameRe.MatchString(value)
}

func Password(value string) bool {
	return len(value) >= 8
}

// ISODate accepts YYYY-MM-DD shaped values; it checks shape, not
// calendar validity, which matches how provider payloads are stored.
func ISODate(value string) bool {
	if len(value) != 10 {
		return false
	}
	for i, c := range value {
		if i == 4 || i == 7 {
			if c != '-' {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
