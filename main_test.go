package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillpath_quiz/data"
	"skillpath_quiz/internal/config"
	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/content/contenttest"
	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/quiz"
	"skillpath_quiz/internal/quizerr"
	"skillpath_quiz/internal/storage"
)

func TestBundledContentIsValid(t *testing.T) {
	store, err := loadContent(context.Background(), config.ContentConfig{CatalogPath: data.CatalogPath})
	require.NoError(t, err)

	assert.Equal(t, []string{"ru", "en"}, store.Languages())
	assert.Equal(t, "ru", store.Match("kg"))

	for _, lang := range store.Languages() {
		g := store.Graph(lang)
		assert.Len(t, g.BasicSequence(), 6, lang)
		for _, b := range store.Catalog().Branches {
			seq, err := g.BranchSequence(b.Key)
			require.NoError(t, err, "%s/%s", lang, b.Key)
			assert.NotEmpty(t, seq)
		}
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	catalog := `default_language: en
languages: [en]
basic_length: 3
profiles: [A, B]
branches:
  - {key: A, stem: a}
  - {key: B, stem: b}
profile_branches: {A: A, B: B}
`
	broken := strings.Replace(contenttest.BasicEN, `"next_scene_id": 3, "feedback": "Counting."`, `"next_scene_id": 9, "feedback": "Counting."`, 1)
	writeFile(t, filepath.Join(dir, "quiz.yaml"), catalog)
	writeFile(t, filepath.Join(dir, "scenes", "en", "basic.json"), broken)
	writeFile(t, filepath.Join(dir, "scenes", "en", "a.json"), contenttest.BranchAEN)
	writeFile(t, filepath.Join(dir, "scenes", "en", "b.json"), contenttest.BranchBEN)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := validateContent(cmd, config.ContentConfig{ContentDir: dir, CatalogPath: "quiz.yaml"})
	require.ErrorIs(t, err, quizerr.ErrContentIntegrity)
	assert.Contains(t, out.String(), "dangling next_scene_id 9")

	writeFile(t, filepath.Join(dir, "scenes", "en", "basic.json"), contenttest.BasicEN)
	out.Reset()
	require.NoError(t, validateContent(cmd, config.ContentConfig{ContentDir: dir, CatalogPath: "quiz.yaml"}))
	assert.Contains(t, out.String(), "content OK: 1 languages, 2 profiles, 2 branches")
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func newPlayService(t *testing.T) (*quiz.Service, *storage.MemoryResultStore) {
	t.Helper()
	results := storage.NewMemoryResultStore()
	svc := quiz.NewService(core.NewEngine(contenttest.Store(t)),
		storage.NewMemoryProgressStore(), results, storage.NewKeyedLocker())
	return svc, results
}

func TestPlayToTheEnd(t *testing.T) {
	svc, results := newPlayService(t)
	// Numbers pick by position, ids are accepted as is, junk is asked again.
	in := strings.NewReader("1\nzzz\na\n1\ngo\n")
	var out bytes.Buffer

	require.NoError(t, play(context.Background(), svc, in, &out, "u1", "en", content.Male))

	text := out.String()
	assert.Contains(t, text, "[1/3] Morning")
	assert.Contains(t, text, "Please pick one of the listed options.")
	assert.Contains(t, text, "It works.")
	assert.Contains(t, text, "Analyst")
	assert.Contains(t, text, "Your profile: A (5 points)")

	saved, err := results.List(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, content.BranchKey("A"), saved[0].Branch)
}

func TestPlayQuitCancels(t *testing.T) {
	svc, _ := newPlayService(t)
	var out bytes.Buffer

	require.NoError(t, play(context.Background(), svc, strings.NewReader("q\n"), &out, "u1", "en", content.Female))

	_, err := svc.CurrentPrompt(context.Background(), "u1")
	assert.ErrorIs(t, err, quizerr.ErrSessionNotFound)
}

func TestOptionFor(t *testing.T) {
	p := core.Prompt{Options: []core.PromptOption{{ID: "a"}, {ID: "b"}, {ID: "7"}}}

	assert.Equal(t, "a", optionFor(p, "1"))
	assert.Equal(t, "b", optionFor(p, "b"))
	assert.Equal(t, "7", optionFor(p, "7"))
	assert.Equal(t, "7", optionFor(p, "3"))
	assert.Equal(t, "9", optionFor(p, "9"))
}
