package content

import (
	"strings"

	"golang.org/x/text/language"
)

// languageMatcher maps user-supplied language codes onto the languages the
// catalog serves. Index 0 is the default language and wins whenever nothing
// matches.
type languageMatcher struct {
	codes   []string
	aliases map[string]string
	matcher language.Matcher
}

func newLanguageMatcher(catalog *Catalog) *languageMatcher {
	codes := []string{catalog.DefaultLanguage}
	for _, code := range catalog.Languages {
		if code != catalog.DefaultLanguage {
			codes = append(codes, code)
		}
	}

	tags := make([]language.Tag, len(codes))
	for i, code := range codes {
		tags[i] = language.Make(code)
	}

	aliases := make(map[string]string, len(catalog.LanguageAliases))
	for from, to := range catalog.LanguageAliases {
		aliases[strings.ToLower(from)] = to
	}

	return &languageMatcher{
		codes:   codes,
		aliases: aliases,
		matcher: language.NewMatcher(tags),
	}
}

// match returns the served language code for raw.
func (m *languageMatcher) match(raw string) string {
	code := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := m.aliases[code]; ok {
		code = alias
	}
	for _, c := range m.codes {
		if c == code {
			return c
		}
	}

	tag, err := language.Parse(code)
	if err != nil {
		return m.codes[0]
	}
	_, idx, conf := m.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(m.codes) {
		return m.codes[0]
	}
	return m.codes[idx]
}
