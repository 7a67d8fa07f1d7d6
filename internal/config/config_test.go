package config

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/quizerr"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Progress.Backend)
	assert.Equal(t, 10*time.Second, cfg.Progress.LockTTL)
	assert.Equal(t, time.Duration(0), cfg.Progress.SessionTTL)
	assert.Equal(t, "memory", cfg.Results.Backend)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "quiz.yaml", cfg.Content.CatalogPath)
	assert.Empty(t, cfg.Content.ContentDir)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SKILLPATH_LOG_LEVEL", "debug")
	t.Setenv("SKILLPATH_PROGRESS_BACKEND", "Redis")
	t.Setenv("SKILLPATH_PROGRESS_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SKILLPATH_PROGRESS_SESSION_TTL", "40m")
	t.Setenv("SKILLPATH_RESULTS_BACKEND", "sqlite")
	t.Setenv("SKILLPATH_CONTENT_DIR", "/srv/content")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "redis", cfg.Progress.Backend)
	assert.Equal(t, 40*time.Minute, cfg.Progress.SessionTTL)
	assert.Equal(t, "sqlite", cfg.Results.Backend)
	assert.Equal(t, "/srv/content", cfg.Content.ContentDir)
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SKILLPATH_HTTP_ADDR=:9191\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("SKILLPATH_HTTP_ADDR") })

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"), path)
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.HTTP.Addr)
}

func TestLoadRejectsBadBackends(t *testing.T) {
	t.Run("redis without url", func(t *testing.T) {
		t.Setenv("SKILLPATH_PROGRESS_BACKEND", "redis")
		_, err := Load()
		assert.ErrorContains(t, err, "SKILLPATH_PROGRESS_REDIS_URL")
	})
	t.Run("unknown progress backend", func(t *testing.T) {
		t.Setenv("SKILLPATH_PROGRESS_BACKEND", "etcd")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown progress backend")
	})
	t.Run("unknown results backend", func(t *testing.T) {
		t.Setenv("SKILLPATH_RESULTS_BACKEND", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown results backend")
	})
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("SKILLPATH_PROGRESS_LOCK_TTL", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "environment configuration")
	})
}

const catalogYAML = `
default_language: ru
languages: [ru, en, ky]
language_aliases:
  kg: ky
basic_length: 6
branch_length: 11
profiles: [Engineer, Artist]
branches:
  - {key: technical, stem: technical}
  - {key: creative, stem: creative}
profile_branches:
  Engineer: technical
  Artist: creative
`

func TestLoadCatalog(t *testing.T) {
	fsys := fstest.MapFS{"quiz.yaml": {Data: []byte(catalogYAML)}}

	c, err := LoadCatalog(fsys, "quiz.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ru", c.DefaultLanguage)
	assert.Equal(t, "basic", c.BasicStem)
	assert.Equal(t, "ky", c.LanguageAliases["kg"])
	assert.Equal(t, []content.Branch{{Key: "technical", Stem: "technical"}, {Key: "creative", Stem: "creative"}}, c.Branches)
	assert.Equal(t, content.BranchKey("creative"), c.ProfileBranches["Artist"])
}

func TestLoadCatalogErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"typo.yaml":    {Data: []byte(catalogYAML + "basic_lenght: 3\n")},
		"invalid.yaml": {Data: []byte("default_language: ru\nprofiles: []\n")},
	}

	_, err := LoadCatalog(fsys, "missing.yaml")
	assert.ErrorContains(t, err, "error reading catalog file")

	_, err = LoadCatalog(fsys, "typo.yaml")
	assert.ErrorContains(t, err, "basic_lenght")

	_, err = LoadCatalog(fsys, "invalid.yaml")
	assert.ErrorIs(t, err, quizerr.ErrContentIntegrity)
}
