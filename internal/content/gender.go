package content

import (
	"fmt"
	"regexp"
	"strings"

	"skillpath_quiz/internal/quizerr"
)

// Gender selects one alternative of every gender marker.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

const markerPrefix = "{gender:"

// markerPattern matches {gender:<male>|<female>}; either alternative may be
// empty, as in Russian suffixes like "готов{gender:|а}".
var markerPattern = regexp.MustCompile(`\{gender:([^|{}]*)\|([^|{}]*)\}`)

var genderAliases = map[string]Gender{
	"male":    Male,
	"m":       Male,
	"boy":     Male,
	"мальчик": Male,
	"мужской": Male,
	"эркек":   Male,
	"female":  Female,
	"f":       Female,
	"girl":    Female,
	"девочка": Female,
	"женский": Female,
	"кыз":     Female,
}

// ParseGender normalizes a user-supplied gender to one of the two admitted values.
func ParseGender(raw string) (Gender, error) {
	g, ok := genderAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", quizerr.New(quizerr.CodeInvalidArgument, fmt.Sprintf("unknown gender %q", raw))
	}
	return g, nil
}

// Valid reports whether g is one of the two admitted values.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

// Resolve substitutes every well-formed gender marker in text with the
// alternative for g. Malformed markers are left verbatim; content validation
// rejects them at load time.
func Resolve(text string, g Gender) string {
	if !strings.Contains(text, markerPrefix) {
		return text
	}
	return markerPattern.ReplaceAllStringFunc(text, func(marker string) string {
		parts := markerPattern.FindStringSubmatch(marker)
		if g == Female {
			return parts[2]
		}
		return parts[1]
	})
}

// CheckMarkers returns an error when text contains a gender marker that
// Resolve would not substitute.
func CheckMarkers(text string) error {
	opened := strings.Count(text, markerPrefix)
	if opened == 0 {
		return nil
	}
	wellFormed := len(markerPattern.FindAllStringIndex(text, -1))
	if opened != wellFormed {
		return fmt.Errorf("%d of %d gender markers are malformed", opened-wellFormed, opened)
	}
	return nil
}
