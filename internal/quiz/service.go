// Package quiz runs one quiz turn at a time per user: lock, load, apply the
// transition, persist, reply.
package quiz

import (
	"context"
	"errors"
	"fmt"

	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/logger"
	"skillpath_quiz/internal/quizerr"
	"skillpath_quiz/internal/storage"
)

// Reply is what the transport renders after a submitted choice.
type Reply struct {
	Feedback string
	// Prompt is the next scene, or the epilogue when the quiz ended on one.
	Prompt *core.Prompt
	// Result is set on the turn the quiz finished.
	Result        *core.Result
	EnteredBranch content.BranchKey
	Duplicate     bool
}

// RepromptError is returned for a rejected choice together with the
// unchanged current scene, so the transport can ask again.
type RepromptError struct {
	Prompt core.Prompt
	Err    error
}

func (e *RepromptError) Error() string {
	return e.Err.Error()
}

func (e *RepromptError) Unwrap() error {
	return e.Err
}

// Service serializes turns per user and keeps the store consistent with the
// last fully applied choice.
type Service struct {
	engine   *core.Engine
	progress storage.ProgressStore
	results  storage.ResultStore
	locker   storage.Locker
}

// NewService wires the engine to its stores.
func NewService(engine *core.Engine, progress storage.ProgressStore, results storage.ResultStore, locker storage.Locker) *Service {
	return &Service{engine: engine, progress: progress, results: results, locker: locker}
}

// StartQuiz begins a new quiz for userID, replacing any quiz in progress.
func (s *Service) StartQuiz(ctx context.Context, userID, lang string, gender content.Gender) (core.Prompt, error) {
	session, err := s.engine.Start(userID, lang, gender)
	if err != nil {
		return core.Prompt{}, err
	}

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return core.Prompt{}, err
	}
	defer unlock()

	if err := s.progress.Save(ctx, session); err != nil {
		return core.Prompt{}, err
	}

	prompt, err := s.engine.Prompt(session)
	if err != nil {
		return core.Prompt{}, err
	}
	logger.Info().
		Str("user_id", userID).
		Str("language", session.Language).
		Str("gender", string(gender)).
		Int("scene_id", session.CurrentSceneID).
		Msg("quiz started")
	return prompt, nil
}

// SubmitChoice applies one answer. The new state is stored before SubmitChoice
// returns; on a failed write nothing is applied and the same choice may be
// submitted again.
func (s *Service) SubmitChoice(ctx context.Context, userID string, choice core.Choice) (Reply, error) {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	defer unlock()

	session, err := s.progress.Load(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	tr, err := s.engine.Select(session, choice)
	if err != nil {
		if errors.Is(err, quizerr.ErrInvalidChoice) {
			prompt, perr := s.engine.Prompt(session)
			if perr != nil {
				return Reply{}, perr
			}
			logger.Debug().
				Str("user_id", userID).
				Int("scene_id", session.CurrentSceneID).
				Str("option_id", choice.OptionID).
				Msg("choice rejected")
			return Reply{}, &RepromptError{Prompt: prompt, Err: err}
		}
		if errors.Is(err, quizerr.ErrContentIntegrity) {
			logger.Error().Err(err).
				Str("user_id", userID).
				Str("phase", string(session.Phase)).
				Int("scene_id", session.CurrentSceneID).
				Msg("session cannot continue")
		}
		return Reply{}, err
	}

	if tr.Duplicate {
		prompt, err := s.engine.Prompt(session)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Prompt: &prompt, Duplicate: true}, nil
	}

	reply := Reply{Feedback: tr.Feedback, EnteredBranch: tr.EnteredBranch}
	if tr.Result != nil {
		if err := s.finish(ctx, tr); err != nil {
			return Reply{}, err
		}
		reply.Result = tr.Result
		if prompt, err := s.engine.Prompt(tr.Session); err == nil {
			reply.Prompt = &prompt
		}
		return reply, nil
	}

	if err := s.progress.Save(ctx, tr.Session); err != nil {
		return Reply{}, err
	}
	prompt, err := s.engine.Prompt(tr.Session)
	if err != nil {
		return Reply{}, err
	}
	reply.Prompt = &prompt

	ev := logger.Info()
	if tr.EnteredBranch != "" {
		ev = ev.Str("branch", string(tr.EnteredBranch))
	}
	ev.Str("user_id", userID).
		Str("phase", string(tr.Session.Phase)).
		Int("scene_id", tr.Session.CurrentSceneID).
		Msg("choice applied")
	return reply, nil
}

// finish records the result before clearing progress. A crash in between
// leaves the last step replayable, so a result may be recorded twice but is
// never lost.
func (s *Service) finish(ctx context.Context, tr core.Transition) error {
	if err := s.results.Append(ctx, *tr.Result); err != nil {
		return err
	}
	if err := s.progress.Delete(ctx, tr.Session.UserID); err != nil {
		return quizerr.Wrap(quizerr.CodeStorage,
			fmt.Sprintf("result %s recorded but progress was not cleared", tr.Result.ID), err)
	}
	logger.Info().
		Str("user_id", tr.Session.UserID).
		Str("profile", tr.Result.Profile).
		Int("score", tr.Result.Score).
		Str("branch", string(tr.Result.Branch)).
		Msg("quiz finished")
	return nil
}

// CurrentPrompt renders the scene the user is looking at.
func (s *Service) CurrentPrompt(ctx context.Context, userID string) (core.Prompt, error) {
	session, err := s.progress.Load(ctx, userID)
	if err != nil {
		return core.Prompt{}, err
	}
	return s.engine.Prompt(session)
}

// Cancel abandons the quiz in progress.
func (s *Service) Cancel(ctx context.Context, userID string) error {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	// A corrupt record can still be cancelled; only a missing one is reported.
	if _, err := s.progress.Load(ctx, userID); errors.Is(err, quizerr.ErrSessionNotFound) {
		return err
	}
	if err := s.progress.Delete(ctx, userID); err != nil {
		return err
	}
	logger.Info().Str("user_id", userID).Msg("quiz cancelled")
	return nil
}

// Results lists finished quizzes of userID, newest first.
func (s *Service) Results(ctx context.Context, userID string, limit int) ([]core.Result, error) {
	return s.results.List(ctx, userID, limit)
}

// Languages lists the languages the content is served in.
func (s *Service) Languages() []string {
	return s.engine.Store().Languages()
}
