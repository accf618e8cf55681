// Package credentials builds the account identity handed to the provider
// portal for standard orders: a username derived from the buyer's email
// plus an order timestamp, and a randomly generated password.
package credentials

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

const (
	// usernamePrefixMax caps the cleaned email prefix ahead of the timestamp.
	usernamePrefixMax = 6

	// timestampLayout renders the order minute as a 10-digit YYMMDDHHmm suffix.
	timestampLayout = "0601021504"

	// PasswordLength is the password size issued with standard orders.
	PasswordLength = 8

	passwordAlphabet = "abcdefghijklmnopqrstuvwxyz"
)

var (
	// ErrInvalidEmail reports an email that is empty or has no @.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrNoUsableCharacters reports an email whose part before the @
	// contains no ASCII letters or digits.
	ErrNoUsableCharacters = errors.New("email contains no usable characters before @")

	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// DeriveUsername builds the portal username for a standard order: the part
// of the email before the first @, stripped to ASCII letters and digits,
// upper-cased, capped at six characters, followed by the current wall-clock
// minute as YYMMDDHHmm. Usernames derived in different minutes differ.
func DeriveUsername(email string) (string, error) {
	return deriveUsernameAt(email, time.Now())
}

func deriveUsernameAt(email string, now time.Time) (string, error) {
	at := strings.Index(email, "@")
	if email == "" || at < 0 {
		return "", ErrInvalidEmail
	}

	prefix := cleanPrefix(email[:at])
	if prefix == "" {
		return "", ErrNoUsableCharacters
	}
	if len(prefix) > usernamePrefixMax {
		prefix = prefix[:usernamePrefixMax]
	}

	return prefix + now.Format(timestampLayout), nil
}

// cleanPrefix keeps ASCII letters and digits only, upper-cased.
func cleanPrefix(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GeneratePassword returns length random lowercase letters. Not a
// cryptographic secret; callers must not treat it as one.
func GeneratePassword(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = passwordAlphabet[rand.Intn(len(passwordAlphabet))]
	}
	return string(b)
}

// IsValidEmail reports whether email looks like local@domain.tld. This is a
// syntactic sanity check, not RFC validation.
func IsValidEmail(email string) bool {
	return emailShape.MatchString(email)
}
