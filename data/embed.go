// Package data bundles the default quiz catalog and scene files into the binary.
package data

import "embed"

// FS holds quiz.yaml and scenes/<lang>/<stem>.json.
//
//go:embed quiz.yaml scenes
var FS embed.FS

// CatalogPath is the catalog location inside FS.
const CatalogPath = "quiz.yaml"

// ScenesDir is the scene tree location inside FS.
const ScenesDir = "scenes"
