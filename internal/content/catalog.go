package content

import (
	"fmt"
	"slices"
	"strings"

	"skillpath_quiz/internal/quizerr"
)

// Branch binds a branch key to the file stem holding its scenes.
type Branch struct {
	Key  BranchKey `yaml:"key"`
	Stem string    `yaml:"stem"`
}

// Catalog is the static quiz configuration: languages, the closed profile
// vocabulary, the closed branch set and the total profile to branch table.
type Catalog struct {
	DefaultLanguage string               `yaml:"default_language"`
	Languages       []string             `yaml:"languages"`
	LanguageAliases map[string]string    `yaml:"language_aliases"`
	BasicStem       string               `yaml:"basic_stem"`
	BasicLength     int                  `yaml:"basic_length"`
	BranchLength    int                  `yaml:"branch_length"`
	Profiles        []string             `yaml:"profiles"`
	Branches        []Branch             `yaml:"branches"`
	ProfileBranches map[string]BranchKey `yaml:"profile_branches"`
}

// ApplyDefaults fills unset optional fields.
func (c *Catalog) ApplyDefaults() {
	if c.BasicStem == "" {
		c.BasicStem = string(Basic)
	}
	if c.DefaultLanguage != "" && !slices.Contains(c.Languages, c.DefaultLanguage) {
		c.Languages = append([]string{c.DefaultLanguage}, c.Languages...)
	}
}

// Validate checks the catalog for configuration errors. Lengths of zero mean
// "use the whole file".
func (c *Catalog) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.DefaultLanguage) == "" {
		add("default_language is required")
	}
	if c.BasicLength < 0 {
		add("basic_length must not be negative")
	}
	if c.BranchLength < 0 {
		add("branch_length must not be negative")
	}
	if len(c.Profiles) == 0 {
		add("profiles must not be empty")
	}

	seenProfiles := make(map[string]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		if strings.TrimSpace(p) == "" {
			add("profiles contains an empty name")
			continue
		}
		if seenProfiles[p] {
			add("profile %q listed twice", p)
		}
		seenProfiles[p] = true
	}

	keys := make(map[BranchKey]bool, len(c.Branches))
	stems := map[string]bool{c.BasicStem: true}
	for _, b := range c.Branches {
		switch {
		case b.Key == "":
			add("branch with stem %q has no key", b.Stem)
		case b.Key == Basic:
			add("branch key %q is reserved", Basic)
		case keys[b.Key]:
			add("branch %q listed twice", b.Key)
		}
		keys[b.Key] = true
		if b.Stem == "" {
			add("branch %q has no stem", b.Key)
		} else if stems[b.Stem] {
			add("branch stem %q used twice", b.Stem)
		}
		stems[b.Stem] = true
	}

	for profile, key := range c.ProfileBranches {
		if !seenProfiles[profile] {
			add("profile_branches maps unknown profile %q", profile)
		}
		if !keys[key] {
			add("profile %q maps to unknown branch %q", profile, key)
		}
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return quizerr.Integrity("invalid quiz catalog", problems)
	}
	return nil
}

// HasProfile reports whether name belongs to the closed profile vocabulary.
func (c *Catalog) HasProfile(name string) bool {
	return slices.Contains(c.Profiles, name)
}

// BranchFor returns the branch a winning profile leads to.
func (c *Catalog) BranchFor(profile string) (BranchKey, bool) {
	key, ok := c.ProfileBranches[profile]
	return key, ok
}

// Branch returns the branch definition for key.
func (c *Catalog) Branch(key BranchKey) (Branch, bool) {
	for _, b := range c.Branches {
		if b.Key == key {
			return b, true
		}
	}
	return Branch{}, false
}
