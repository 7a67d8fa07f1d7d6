package core

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/quizerr"
)

// Engine is the quiz state machine. Every method is a pure function of its
// arguments and the immutable content store; sessions passed in are never
// modified.
type Engine struct {
	store *content.Store
	now   func() time.Time
}

// NewEngine returns an engine serving store.
func NewEngine(store *content.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// SetClock replaces the time source used for session and result timestamps.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Store returns the content store the engine reads from.
func (e *Engine) Store() *content.Store {
	return e.store
}

// Start creates a fresh session positioned at the first basic scene.
func (e *Engine) Start(userID, lang string, gender content.Gender) (Session, error) {
	if strings.TrimSpace(userID) == "" {
		return Session{}, quizerr.New(quizerr.CodeInvalidArgument, "user id is required")
	}
	if !gender.Valid() {
		return Session{}, quizerr.New(quizerr.CodeInvalidArgument, fmt.Sprintf("unknown gender %q", gender))
	}

	g := e.store.Graph(lang)
	basic := g.BasicSequence()
	if len(basic) == 0 {
		return Session{}, quizerr.New(quizerr.CodeContentIntegrity,
			fmt.Sprintf("no basic sequence for language %q", g.Language()))
	}

	now := e.now().UTC()
	return Session{
		UserID:         userID,
		Language:       g.Language(),
		Gender:         gender,
		Phase:          PhaseBasic,
		CurrentSceneID: basic[0].ID,
		Scores:         NewScores(),
		StartedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Select applies one answer to s and returns the resulting transition.
func (e *Engine) Select(s Session, c Choice) (Transition, error) {
	if s.Phase == PhaseFinished {
		return Transition{}, quizerr.New(quizerr.CodeSessionFinished, "quiz already finished")
	}

	ns := s.Namespace()
	if shown := c.shown(); c.SceneID != 0 && (shown.Branch != ns || shown.SceneID != s.CurrentSceneID) {
		if n := len(s.History); n > 0 && s.History[n-1] == shown {
			return Transition{Session: s.Clone(), Duplicate: true}, nil
		}
		return Transition{}, quizerr.New(quizerr.CodeInvalidChoice,
			fmt.Sprintf("scene %s/%d is not the current scene", shown.Branch, shown.SceneID))
	}

	g := e.store.Graph(s.Language)
	scene, err := g.Scene(ns, s.CurrentSceneID)
	if err != nil {
		return Transition{}, err
	}
	opt, ok := scene.Option(c.OptionID)
	if !ok {
		return Transition{}, quizerr.New(quizerr.CodeInvalidChoice,
			fmt.Sprintf("option %q is not offered by scene %d", c.OptionID, scene.ID))
	}

	now := e.now().UTC()
	next := s.Clone()
	next.Scores = s.Scores.Apply(opt)
	next.History = append(next.History, Step{Branch: ns, SceneID: scene.ID, OptionID: opt.ID})
	next.UpdatedAt = now

	t := Transition{Feedback: content.Resolve(opt.Feedback, s.Gender)}

	switch {
	case opt.NextSceneID != content.EndOfPhase:
		target, err := g.Scene(ns, opt.NextSceneID)
		if err != nil {
			return Transition{}, err
		}
		next.CurrentSceneID = target.ID
		if ns != content.Basic && target.Terminal() {
			t.Result = finish(&next, now)
		}

	case s.Phase == PhaseBasic:
		key, profile, err := ResolveBranch(next.Scores, g.Catalog())
		if err != nil {
			return Transition{}, err
		}
		seq, err := g.BranchSequence(key)
		if err != nil {
			return Transition{}, quizerr.Wrap(quizerr.CodeContentIntegrity,
				fmt.Sprintf("cannot enter branch %q won by %q", key, profile), err)
		}
		next.Phase = PhasePersonal
		next.ChosenBranch = key
		next.CurrentSceneID = seq[0].ID
		t.EnteredBranch = key
		if seq[0].Terminal() {
			t.Result = finish(&next, now)
		}

	default:
		next.CurrentSceneID = content.EndOfPhase
		t.Result = finish(&next, now)
	}

	t.Session = next
	return t, nil
}

// resultNamespace scopes result ids derived by resultID.
var resultNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("skillpath_quiz/result"))

// resultID names the run of s. Replaying the final answer of the same run
// yields the same id, so stores can drop the repeat.
func resultID(s *Session) string {
	var b strings.Builder
	b.WriteString(s.UserID)
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(s.StartedAt.UnixNano(), 10))
	for _, step := range s.History {
		fmt.Fprintf(&b, "|%s/%d/%s", step.Branch, step.SceneID, step.OptionID)
	}
	return uuid.NewSHA1(resultNamespace, []byte(b.String())).String()
}

func finish(s *Session, now time.Time) *Result {
	s.Phase = PhaseFinished
	profile, score, _ := s.Scores.Leader()
	return &Result{
		ID:         resultID(s),
		UserID:     s.UserID,
		FinishedAt: now,
		Profile:    profile,
		Score:      score,
		Branch:     s.ChosenBranch,
		Scores:     maps.Clone(s.Scores.Totals),
		Details: map[string]string{
			"language": s.Language,
			"gender":   string(s.Gender),
			"answers":  strconv.Itoa(len(s.History)),
			"order":    strings.Join(s.Scores.Order, ","),
		},
	}
}

// Prompt renders the current scene of s. A session that finished on an
// epilogue scene renders that scene without options.
func (e *Engine) Prompt(s Session) (Prompt, error) {
	if s.Phase == PhaseFinished && s.CurrentSceneID == content.EndOfPhase {
		return Prompt{}, quizerr.New(quizerr.CodeSessionFinished, "quiz already finished")
	}

	g := e.store.Graph(s.Language)
	ns := s.Namespace()
	scene, err := g.Scene(ns, s.CurrentSceneID)
	if err != nil {
		return Prompt{}, err
	}
	progress, err := g.Position(ns, scene.ID)
	if err != nil {
		return Prompt{}, err
	}

	p := Prompt{
		Branch:   ns,
		SceneID:  scene.ID,
		Phase:    s.Phase,
		Title:    content.Resolve(scene.Title, s.Gender),
		Text:     content.Resolve(scene.Description, s.Gender),
		Options:  make([]PromptOption, 0, len(scene.Options)),
		Progress: progress,
	}
	for _, opt := range scene.Options {
		p.Options = append(p.Options, PromptOption{ID: opt.ID, Text: content.Resolve(opt.Text, s.Gender)})
	}
	return p, nil
}
