package directory

import (
	"strings"
	"unicode"
)

// Registration input policy. Violations are reported all at once, each as a
// validation-catalog message key.
const (
	minNameLength     = 3
	maxNameLength     = 50
	minEmailLength    = 5
	maxEmailLength    = 254
	minPasswordLength = 8
	maxPasswordLength = 128
	minDomainSegment  = 2
	minTLDLength      = 2
)

func validateName(name string) []string {
	var keys []string
	if len(name) < minNameLength {
		keys = append(keys, "name.too_short")
	}
	if len(name) > maxNameLength {
		keys = append(keys, "name.too_long")
	}
	return keys
}

// validateEmail applies a structural check: local@domain.tld with the '@'
// before the last '.', and domain/TLD segments of a minimum length.
func validateEmail(email string) []string {
	var keys []string
	if len(email) < minEmailLength {
		keys = append(keys, "email.too_short")
	}
	if len(email) > maxEmailLength {
		keys = append(keys, "email.too_long")
	}

	at := strings.Index(email, "@")
	lastDot := strings.LastIndex(email, ".")
	switch {
	case at <= 0 || lastDot < 0:
		keys = append(keys, "email.invalid")
	case at >= lastDot:
		keys = append(keys, "email.invalid")
	case strings.Count(email, "@") > 1 || strings.ContainsAny(email, " \t"):
		keys = append(keys, "email.invalid")
	default:
		domain := email[at+1:]
		for _, segment := range strings.Split(domain, ".") {
			if len(segment) < minDomainSegment {
				keys = append(keys, "email.invalid")
				break
			}
		}
		if tld := domain[strings.LastIndex(domain, ".")+1:]; len(tld) < minTLDLength {
			keys = append(keys, "email.invalid")
		}
	}
	return dedup(keys)
}

// validatePassword enforces the documented complexity rule: 8-128 chars,
// no spaces, at least one upper, one lower, one digit, and one special
// character.
func validatePassword(password string) []string {
	var keys []string
	if len(password) < minPasswordLength {
		keys = append(keys, "password.too_short")
	}
	if len(password) > maxPasswordLength {
		keys = append(keys, "password.too_long")
	}
	if strings.Contains(password, " ") {
		keys = append(keys, "password.contains_space")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper {
		keys = append(keys, "password.missing_uppercase")
	}
	if !lower {
		keys = append(keys, "password.missing_lowercase")
	}
	if !digit {
		keys = append(keys, "password.missing_digit")
	}
	if !special {
		keys = append(keys, "password.missing_special_char")
	}
	return keys
}

func dedup(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
