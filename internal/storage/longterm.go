package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/logger"
	"skillpath_quiz/internal/quizerr"
)

// FileResultStore keeps one JSON array of results per user in baseDir.
type FileResultStore struct {
	baseDir string
	mu      sync.Mutex
}

// NewFileResultStore creates a store rooted at baseDir. The directory is
// created on first write.
func NewFileResultStore(baseDir string) *FileResultStore {
	return &FileResultStore{baseDir: baseDir}
}

func (f *FileResultStore) path(userID string) string {
	return filepath.Join(f.baseDir, url.PathEscape(userID)+".json")
}

func (f *FileResultStore) load(userID string) ([]core.Result, error) {
	data, err := os.ReadFile(f.path(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var results []core.Result
	if err := sonic.ConfigStd.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse result file: %w", err)
	}
	return results, nil
}

// Append adds r to the user's file unless its id is already there. The file
// is replaced atomically.
func (f *FileResultStore) Append(ctx context.Context, r core.Result) error {
	if r.UserID == "" {
		return quizerr.New(quizerr.CodeInvalidArgument, "user id cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "append result", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.baseDir, 0755); err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "failed to create result directory", err)
	}

	results, err := f.load(r.UserID)
	if err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "append result", err)
	}
	if hasResult(results, r.ID) {
		return nil
	}
	results = append(results, r)

	data, err := sonic.ConfigStd.MarshalIndent(results, "", "  ")
	if err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "failed to marshal results", err)
	}

	target := f.path(r.UserID)
	tmp, err := os.CreateTemp(f.baseDir, ".results-*")
	if err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "failed to write result file", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return quizerr.Wrap(quizerr.CodeStorage, "failed to write result file", err)
	}
	if err := tmp.Close(); err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "failed to write result file", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "failed to write result file", err)
	}

	logger.Debug().
		Str("user_id", r.UserID).
		Str("file", target).
		Int("results", len(results)).
		Msg("result saved")
	return nil
}

// List returns the results of userID, newest first.
func (f *FileResultStore) List(ctx context.Context, userID string, limit int) ([]core.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	results, err := f.load(userID)
	if err != nil {
		return nil, quizerr.Wrap(quizerr.CodeStorage, "list results", err)
	}
	return newestFirst(results, limit), nil
}
