package content

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"

	"golang.org/x/sync/errgroup"

	"skillpath_quiz/internal/logger"
	"skillpath_quiz/internal/quizerr"
)

const maxParallelReads = 8

// Store holds one validated scene graph per served language. It is built
// once by Load and is read-only afterwards, so it is safe for concurrent use.
type Store struct {
	catalog *Catalog
	graphs  map[string]*Graph
	langs   *languageMatcher
}

type fileKey struct {
	lang string
	stem string
}

func (k fileKey) path() string {
	return path.Join(k.lang, k.stem+".json")
}

type fileResult struct {
	scenes   []Scene
	problems []string
	missing  bool
}

// Load reads <lang>/<stem>.json for every catalog language and stem from
// fsys, validates all of it and returns the store. Every integrity problem
// found is reported in a single error.
func Load(ctx context.Context, fsys fs.FS, catalog *Catalog) (*Store, error) {
	catalog.ApplyDefaults()
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	langs := newLanguageMatcher(catalog)
	stems := []string{catalog.BasicStem}
	for _, b := range catalog.Branches {
		stems = append(stems, b.Stem)
	}

	files, err := readAll(ctx, fsys, langs.codes, stems)
	if err != nil {
		return nil, err
	}

	b := &storeBuilder{
		catalog:   catalog,
		files:     files,
		validated: make(map[fileKey]*sequence),
		defLang:   langs.codes[0],
	}
	graphs := make(map[string]*Graph, len(langs.codes))
	for _, lang := range langs.codes {
		graphs[lang] = b.graph(lang)
	}
	b.checkMappings()

	if len(b.problems) > 0 {
		for _, p := range b.problems {
			logger.Error().Str("problem", p).Msg("content integrity")
		}
		return nil, quizerr.Integrity("content failed validation", b.problems)
	}

	logger.Info().
		Strs("languages", langs.codes).
		Int("branches", len(catalog.Branches)).
		Msg("content loaded")

	return &Store{catalog: catalog, graphs: graphs, langs: langs}, nil
}

func readAll(ctx context.Context, fsys fs.FS, langs, stems []string) (map[fileKey]*fileResult, error) {
	files := make(map[fileKey]*fileResult, len(langs)*len(stems))
	for _, lang := range langs {
		for _, stem := range stems {
			files[fileKey{lang, stem}] = &fileResult{}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for key, res := range files {
		key, res := key, res
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, key.path())
			if errors.Is(err, fs.ErrNotExist) {
				res.missing = true
				return nil
			}
			if err != nil {
				res.problems = append(res.problems, fmt.Sprintf("%s: %v", key.path(), err))
				return nil
			}
			records, err := decodeScenes(data)
			if err != nil {
				res.problems = append(res.problems, fmt.Sprintf("%s: invalid JSON: %v", key.path(), err))
				return nil
			}
			scenes, problems := toScenes(records)
			for _, p := range problems {
				res.problems = append(res.problems, key.path()+": "+p)
			}
			res.scenes = scenes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return files, nil
}

type storeBuilder struct {
	catalog   *Catalog
	files     map[fileKey]*fileResult
	validated map[fileKey]*sequence
	defLang   string
	problems  []string
}

func (b *storeBuilder) graph(lang string) *Graph {
	g := &Graph{
		language: lang,
		catalog:  b.catalog,
		branches: make(map[BranchKey]*sequence, len(b.catalog.Branches)),
	}

	g.basic = b.resolve(lang, b.catalog.BasicStem, Basic)
	if g.basic == nil {
		g.basic = &sequence{key: Basic, file: fileKey{lang, b.catalog.BasicStem}.path(), index: map[int]int{}}
	}
	for _, br := range b.catalog.Branches {
		if seq := b.resolve(lang, br.Stem, br.Key); seq != nil {
			g.branches[br.Key] = seq
		}
	}
	return g
}

// resolve picks the file that serves stem in lang, falling back to the
// default language when the localized file is absent.
func (b *storeBuilder) resolve(lang, stem string, key BranchKey) *sequence {
	own := fileKey{lang, stem}
	if !b.files[own].missing {
		return b.validate(own, key)
	}

	def := fileKey{b.defLang, stem}
	if lang != b.defLang && !b.files[def].missing {
		logger.Warn().
			Str("lang", lang).
			Str("file", own.path()).
			Str("fallback", def.path()).
			Msg("content file missing, serving default language")
		return b.validate(def, key)
	}

	if lang != b.defLang {
		// The default language already reported this file.
		return nil
	}
	if key == Basic {
		b.problems = append(b.problems, fmt.Sprintf("%s: basic sequence is missing", own.path()))
		return nil
	}
	logger.Error().
		Str("branch", string(key)).
		Str("file", own.path()).
		Msg("branch content missing in default language; entering this branch will fail")
	return nil
}

func (b *storeBuilder) validate(key fileKey, branch BranchKey) *sequence {
	if seq, ok := b.validated[key]; ok {
		return seq
	}
	res := b.files[key]
	b.problems = append(b.problems, res.problems...)
	if len(res.problems) > 0 {
		b.validated[key] = nil
		return nil
	}

	limit := b.catalog.BranchLength
	if branch == Basic {
		limit = b.catalog.BasicLength
	}
	seq, problems := validateSequence(key.path(), branch, res.scenes, limit, b.catalog)
	b.problems = append(b.problems, problems...)
	b.validated[key] = seq
	return seq
}

// checkMappings verifies that every profile a basic sequence can award has a
// branch to lead to.
func (b *storeBuilder) checkMappings() {
	keys := make([]fileKey, 0, len(b.validated))
	for key := range b.validated {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(x, y fileKey) int {
		if c := cmp.Compare(x.lang, y.lang); c != 0 {
			return c
		}
		return cmp.Compare(x.stem, y.stem)
	})

	for _, key := range keys {
		seq := b.validated[key]
		if seq == nil || seq.key != Basic {
			continue
		}
		for _, profile := range basicProfiles(seq) {
			if !b.catalog.HasProfile(profile) {
				continue
			}
			if _, ok := b.catalog.BranchFor(profile); !ok {
				b.problems = append(b.problems,
					fmt.Sprintf("%s: profile %q is awarded but has no branch in profile_branches", key.path(), profile))
			}
		}
	}
}

// Catalog returns the catalog the store was validated against.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

// Languages lists the served language codes, default first.
func (s *Store) Languages() []string {
	return slices.Clone(s.langs.codes)
}

// DefaultLanguage returns the language served when nothing else matches.
func (s *Store) DefaultLanguage() string {
	return s.langs.codes[0]
}

// Match maps a user-supplied language code to a served one.
func (s *Store) Match(lang string) string {
	return s.langs.match(lang)
}

// Graph returns the scene graph for lang, matching it first.
func (s *Store) Graph(lang string) *Graph {
	return s.graphs[s.langs.match(lang)]
}
