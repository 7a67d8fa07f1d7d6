package content

import (
	"fmt"
	"slices"

	"skillpath_quiz/internal/quizerr"
)

// sequence is one validated content file: an ordered scene list and an id index.
type sequence struct {
	key    BranchKey
	file   string
	scenes []Scene
	index  map[int]int
}

func (s *sequence) lookup(id int) (Scene, bool) {
	i, ok := s.index[id]
	if !ok {
		return Scene{}, false
	}
	return s.scenes[i], true
}

// Graph is the immutable scene graph served for one language.
type Graph struct {
	language string
	catalog  *Catalog
	basic    *sequence
	branches map[BranchKey]*sequence
}

// Language returns the language code this graph serves.
func (g *Graph) Language() string {
	return g.language
}

// Catalog returns the catalog the graph was validated against.
func (g *Graph) Catalog() *Catalog {
	return g.catalog
}

// BasicSequence returns the fixed-length shared sequence.
func (g *Graph) BasicSequence() []Scene {
	return slices.Clone(g.basic.scenes)
}

// BranchSequence returns the personalized sequence of a branch.
func (g *Graph) BranchSequence(key BranchKey) ([]Scene, error) {
	seq, err := g.sequence(key)
	if err != nil {
		return nil, err
	}
	return slices.Clone(seq.scenes), nil
}

// Scene looks up a scene inside the namespace of one phase: Basic or a branch key.
func (g *Graph) Scene(ns BranchKey, id int) (Scene, error) {
	seq, err := g.sequence(ns)
	if err != nil {
		return Scene{}, err
	}
	scene, ok := seq.lookup(id)
	if !ok {
		return Scene{}, quizerr.New(quizerr.CodeContentIntegrity,
			fmt.Sprintf("scene %d not found in %s", id, seq.file))
	}
	return scene, nil
}

// Position returns the authored progress marker of a scene, or its 1-based
// position in the sequence when the content does not carry one.
func (g *Graph) Position(ns BranchKey, id int) (Progress, error) {
	seq, err := g.sequence(ns)
	if err != nil {
		return Progress{}, err
	}
	i, ok := seq.index[id]
	if !ok {
		return Progress{}, quizerr.New(quizerr.CodeContentIntegrity,
			fmt.Sprintf("scene %d not found in %s", id, seq.file))
	}
	if p := seq.scenes[i].Progress; p != nil {
		return *p, nil
	}
	return Progress{Current: i + 1, Total: len(seq.scenes)}, nil
}

func (g *Graph) sequence(ns BranchKey) (*sequence, error) {
	if ns == Basic {
		return g.basic, nil
	}
	seq, ok := g.branches[ns]
	if !ok || seq == nil {
		return nil, quizerr.New(quizerr.CodeContentIntegrity,
			fmt.Sprintf("branch %q has no content for language %q", ns, g.language))
	}
	return seq, nil
}

// validateSequence checks one decoded file and truncates it to limit scenes
// (0 keeps everything). Every problem found is returned, prefixed with file.
func validateSequence(file string, key BranchKey, all []Scene, limit int, catalog *Catalog) (*sequence, []string) {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, file+": "+fmt.Sprintf(format, args...))
	}

	if len(all) == 0 {
		add("no scenes")
		return nil, problems
	}

	seen := make(map[int]bool, len(all))
	for _, scene := range all {
		if seen[scene.ID] {
			add("duplicate scene id %d", scene.ID)
		}
		seen[scene.ID] = true
	}

	scenes := all
	if limit > 0 {
		if len(all) < limit {
			add("has %d scenes, sequence needs %d", len(all), limit)
		} else {
			scenes = all[:limit]
		}
	}

	seq := &sequence{
		key:    key,
		file:   file,
		scenes: scenes,
		index:  make(map[int]int, len(scenes)),
	}
	for i, scene := range scenes {
		if _, dup := seq.index[scene.ID]; !dup {
			seq.index[scene.ID] = i
		}
	}

	hasEnding := false
	for _, scene := range scenes {
		if scene.ID == EndOfPhase {
			add("scene id %d is reserved for the end-of-phase marker", EndOfPhase)
		}
		checkText := func(field, text string) {
			if err := CheckMarkers(text); err != nil {
				add("scene %d %s: %v", scene.ID, field, err)
			}
		}
		checkText("title", scene.Title)
		checkText("description", scene.Description)

		if scene.Terminal() {
			if key == Basic {
				add("scene %d has no options; the basic sequence cannot end the quiz", scene.ID)
			}
			hasEnding = true
			continue
		}

		optionIDs := make(map[string]bool, len(scene.Options))
		for _, opt := range scene.Options {
			if optionIDs[opt.ID] {
				add("scene %d: duplicate option id %q", scene.ID, opt.ID)
			}
			optionIDs[opt.ID] = true

			checkText(fmt.Sprintf("option %q text", opt.ID), opt.Text)
			checkText(fmt.Sprintf("option %q feedback", opt.ID), opt.Feedback)

			for _, pw := range opt.Profiles {
				if !catalog.HasProfile(pw.Name) {
					add("scene %d option %q: unknown profile %q", scene.ID, opt.ID, pw.Name)
				}
				if pw.Weight < 0 {
					add("scene %d option %q: negative weight %d for %q", scene.ID, opt.ID, pw.Weight, pw.Name)
				}
			}

			if opt.NextSceneID == EndOfPhase {
				hasEnding = true
				continue
			}
			if _, ok := seq.index[opt.NextSceneID]; !ok {
				add("scene %d option %q: dangling next_scene_id %d", scene.ID, opt.ID, opt.NextSceneID)
			}
		}
	}

	if !hasEnding {
		if key == Basic {
			add("no option leads to the end of the basic phase (next_scene_id %d)", EndOfPhase)
		} else {
			add("branch never ends: no terminal scene and no option with next_scene_id %d", EndOfPhase)
		}
	}

	return seq, problems
}

// basicProfiles lists the profiles awarded anywhere in the basic sequence.
func basicProfiles(seq *sequence) []string {
	var names []string
	for _, scene := range seq.scenes {
		for _, opt := range scene.Options {
			for _, pw := range opt.Profiles {
				if !slices.Contains(names, pw.Name) {
					names = append(names, pw.Name)
				}
			}
		}
	}
	return names
}
