package leaderboard

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// AnonymousName is stored when a player submits without a name.
	AnonymousName = "Anonymous"

	// MaxNameLength is the longest accepted name, in characters.
	MaxNameLength = 20
)

// namePattern admits no markup or script fragments: angle brackets, colons
// and equals signs are all outside the allowed set.
var namePattern = regexp.MustCompile(fmt.Sprintf(`^[\p{Hangul}A-Za-z0-9 ]{1,%d}$`, MaxNameLength))

// SanitizeName normalizes and validates a player name. A missing or blank
// name becomes AnonymousName.
func SanitizeName(raw *string) (string, error) {
	if raw == nil {
		return AnonymousName, nil
	}

	name := strings.TrimSpace(norm.NFC.String(*raw))
	if name == "" {
		return AnonymousName, nil
	}
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
