// Package sqlite provides a SQLite-backed quiz result history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	_ "modernc.org/sqlite"

	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/quizerr"
	"skillpath_quiz/internal/storage/sqlite/migrations"
)

// Store persists finished quizzes in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite result store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append inserts one result. Re-inserting a result id is a no-op; result ids
// are derived from the run, so a replayed finish does not duplicate history.
func (s *Store) Append(ctx context.Context, r core.Result) error {
	if strings.TrimSpace(r.UserID) == "" {
		return quizerr.New(quizerr.CodeInvalidArgument, "user id cannot be empty")
	}
	if strings.TrimSpace(r.ID) == "" {
		return quizerr.New(quizerr.CodeInvalidArgument, "result id cannot be empty")
	}

	scores, err := sonic.ConfigStd.Marshal(r.Scores)
	if err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "encode scores", err)
	}
	details := r.Details
	if details == nil {
		details = map[string]string{}
	}
	detailsJSON, err := sonic.ConfigStd.Marshal(details)
	if err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "encode details", err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO quiz_results (
		   id, user_id, finished_at, profile, score, branch, scores_json, details_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.UserID,
		toMillis(r.FinishedAt),
		r.Profile,
		r.Score,
		string(r.Branch),
		string(scores),
		string(detailsJSON),
	)
	if err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "insert result", err)
	}
	return nil
}

// List returns the results of userID, newest first.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]core.Result, error) {
	query := `SELECT id, user_id, finished_at, profile, score, branch, scores_json, details_json
		FROM quiz_results WHERE user_id = ? ORDER BY finished_at DESC, rowid DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, quizerr.Wrap(quizerr.CodeStorage, "list results", err)
	}
	defer rows.Close()

	var results []core.Result
	for rows.Next() {
		var (
			r                   core.Result
			finishedAt          int64
			branch              string
			scores, detailsJSON string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &finishedAt, &r.Profile, &r.Score, &branch, &scores, &detailsJSON); err != nil {
			return nil, quizerr.Wrap(quizerr.CodeStorage, "scan result", err)
		}
		r.FinishedAt = fromMillis(finishedAt)
		r.Branch = content.BranchKey(branch)
		if err := sonic.ConfigStd.UnmarshalFromString(scores, &r.Scores); err != nil {
			return nil, quizerr.Wrap(quizerr.CodeStorage, "decode scores", err)
		}
		if err := sonic.ConfigStd.UnmarshalFromString(detailsJSON, &r.Details); err != nil {
			return nil, quizerr.Wrap(quizerr.CodeStorage, "decode details", err)
		}
		if len(r.Details) == 0 {
			r.Details = nil
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, quizerr.Wrap(quizerr.CodeStorage, "list results", err)
	}
	return results, nil
}
