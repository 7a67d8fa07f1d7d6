// Package storage persists quiz progress between turns and keeps the
// append-only history of finished quizzes.
package storage

import (
	"context"
	"slices"

	"skillpath_quiz/internal/core"
)

// ProgressStore holds at most one in-progress session per user. Load returns
// an error matching quizerr.ErrSessionNotFound when there is none; every
// other failure matches quizerr.ErrStorage.
type ProgressStore interface {
	Save(ctx context.Context, session core.Session) error
	Load(ctx context.Context, userID string) (core.Session, error)
	Delete(ctx context.Context, userID string) error
}

// ResultStore is the append-only history of finished quizzes. Appending a
// result id that is already recorded is a no-op. List returns the newest
// results first; limit <= 0 returns all of them.
type ResultStore interface {
	Append(ctx context.Context, result core.Result) error
	List(ctx context.Context, userID string, limit int) ([]core.Result, error)
}

// Locker serializes turns of one user. The returned unlock is safe to call
// more than once.
type Locker interface {
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}

// newestFirst reverses an append-ordered history and applies limit.
func newestFirst(results []core.Result, limit int) []core.Result {
	n := len(results)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]core.Result, 0, n)
	for i := len(results) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, results[i])
	}
	return out
}

func hasResult(results []core.Result, id string) bool {
	return id != "" && slices.ContainsFunc(results, func(r core.Result) bool { return r.ID == id })
}
