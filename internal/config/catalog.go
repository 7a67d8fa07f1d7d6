package config

import (
	"bytes"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"skillpath_quiz/internal/content"
)

// LoadCatalog reads the quiz catalog at path from fsys. Unknown keys are
// rejected so a misspelled setting cannot silently fall back to a default.
func LoadCatalog(fsys fs.FS, path string) (*content.Catalog, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var catalog content.Catalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("error parsing catalog %s: %w", path, err)
	}
	catalog.ApplyDefaults()
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}
