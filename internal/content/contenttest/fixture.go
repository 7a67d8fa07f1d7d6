// Package contenttest provides a small, valid quiz content set for tests.
//
// The basic sequence has three scenes awarding profiles "A" and "B". Each
// profile leads to its own branch of two scenes; the second branch scene is an
// epilogue without options. Russian ships only the basic file, so its branches
// fall back to English.
package contenttest

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"skillpath_quiz/internal/content"
)

const BasicEN = `[
  {"id": 1, "title": "Morning", "description": "How do you start the day?", "options": [
    {"id": "a", "text": "Plan it", "profiles": [{"name": "A", "weight": 1}], "next_scene_id": 2, "feedback": "Planner."},
    {"id": "b", "text": "Improvise", "profiles": [{"name": "B", "weight": 1}], "next_scene_id": 2, "feedback": "Free spirit."}
  ]},
  {"id": 2, "title": "Work", "description": "Pick a task.", "options": [
    {"id": "a", "text": "Numbers", "profiles": [{"name": "A", "weight": 1}], "next_scene_id": 3, "feedback": "Counting."},
    {"id": "b", "text": "Drawings", "profiles": [{"name": "B", "weight": 1}], "next_scene_id": 3, "feedback": "Sketching."}
  ]},
  {"id": 3, "title": "Evening", "description": "How do you rest?", "progress": {"current": 3, "total": 3}, "options": [
    {"id": "a", "text": "Puzzles", "profiles": [{"name": "A", "weight": 1}], "next_scene_id": 0, "feedback": "Solved."},
    {"id": "b", "text": "Music", "profiles": [{"name": "B", "weight": 1}], "next_scene_id": 0, "feedback": "Played."},
    {"id": 7, "text": "Both", "profiles": [{"name": "A", "weight": 1}, {"name": "B", "weight": 1}], "next_scene_id": 0, "feedback": "Balanced."}
  ]}
]`

const BranchAEN = `[
  {"id": 1, "title": "Lab", "description": "You join a lab.", "options": [
    {"id": "go", "text": "Run the experiment", "profiles": [{"name": "A", "weight": 2}], "next_scene_id": 2, "feedback": "It works."},
    {"id": "stop", "text": "Write it up", "profiles": [], "next_scene_id": 0, "feedback": "Filed."}
  ]},
  {"id": 2, "title": "Analyst", "description": "You think in systems.", "options": []}
]`

const BranchBEN = `[
  {"id": 1, "title": "Studio", "description": "You join a studio.", "options": [
    {"id": "go", "text": "Paint", "profiles": [{"name": "B", "weight": 2}], "next_scene_id": 2, "feedback": "Colourful."},
    {"id": "stop", "text": "Exhibit", "profiles": [], "next_scene_id": 0, "feedback": "Shown."}
  ]},
  {"id": 2, "title": "Creator", "description": "You think in images.", "options": []}
]`

const BasicRU = `[
  {"id": 1, "title": "Утро", "description": "Ты готов{gender:|а} начать день?", "options": [
    {"id": "a", "text": "План", "profiles": [{"name": "A", "weight": 1}], "next_scene_id": 2, "feedback": "Ты собран{gender:|а}."},
    {"id": "b", "text": "Импровизация", "profiles": [{"name": "B", "weight": 1}], "next_scene_id": 2, "feedback": "Свобода."}
  ]},
  {"id": 2, "title": "Работа", "description": "Выбери задачу.", "options": [
    {"id": "a", "text": "Числа", "profiles": [{"name": "A", "weight": 1}], "next_scene_id": 3, "feedback": "Счёт."},
    {"id": "b", "text": "Рисунки", "profiles": [{"name": "B", "weight": 1}], "next_scene_id": 3, "feedback": "Эскиз."}
  ]},
  {"id": 3, "title": "Вечер", "description": "Как ты отдыхаешь?", "options": [
    {"id": "a", "text": "Головоломки", "profiles": [{"name": "A", "weight": 1}], "next_scene_id": 0, "feedback": "Решено."},
    {"id": "b", "text": "Музыка", "profiles": [{"name": "B", "weight": 1}], "next_scene_id": 0, "feedback": "Сыграно."},
    {"id": 7, "text": "Всё сразу", "profiles": [{"name": "A", "weight": 1}, {"name": "B", "weight": 1}], "next_scene_id": 0, "feedback": "Баланс."}
  ]}
]`

// Catalog returns a fresh catalog matching FS.
func Catalog() *content.Catalog {
	return &content.Catalog{
		DefaultLanguage: "en",
		Languages:       []string{"en", "ru"},
		LanguageAliases: map[string]string{"kg": "ru"},
		BasicLength:     3,
		Profiles:        []string{"A", "B"},
		Branches: []content.Branch{
			{Key: "A", Stem: "a"},
			{Key: "B", Stem: "b"},
		},
		ProfileBranches: map[string]content.BranchKey{"A": "A", "B": "B"},
	}
}

// FS returns the fixture content files. Callers may add or replace entries.
func FS() fstest.MapFS {
	return fstest.MapFS{
		"en/basic.json": {Data: []byte(BasicEN)},
		"en/a.json":     {Data: []byte(BranchAEN)},
		"en/b.json":     {Data: []byte(BranchBEN)},
		"ru/basic.json": {Data: []byte(BasicRU)},
	}
}

// Store loads the fixture and fails the test on any error.
func Store(t testing.TB) *content.Store {
	t.Helper()
	store, err := content.Load(context.Background(), FS(), Catalog())
	require.NoError(t, err)
	return store
}
