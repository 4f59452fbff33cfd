package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

const dataFileName = "data.json"

// Store owns the on-disk artifacts of tasks. Each task's files live under a
// directory named by the task id and are written only at create time.
type Store struct {
	root   string
	logger logging.Logger

	mu    sync.RWMutex
	cache map[string][]json.RawMessage
}

func NewStore(root string, logger logging.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	return &Store{
		root:   root,
		logger: logger,
		cache:  make(map[string][]json.RawMessage),
	}, nil
}

func (s *Store) taskDir(taskID string) string {
	return filepath.Join(s.root, taskID)
}

// SaveCode stores the uploaded code archive under the task's directory and
// returns the stored path.
func (s *Store) SaveCode(taskID, filename string, r io.Reader) (string, error) {
	dir := s.taskDir(taskID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return path, nil
}

// SaveItems persists the input item array as the task's data file and
// returns its path, which becomes the task's dataItemsRef.
func (s *Store) SaveItems(taskID string, items []json.RawMessage) (string, error) {
	dir := s.taskDir(taskID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, dataFileName)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[taskID] = items
	s.mu.Unlock()

	return path, nil
}

// Items returns the task's immutable input sequence. Items are cached in
// memory after the first read; the file never changes after create.
func (s *Store) Items(_ context.Context, task *types.TaskData) ([]json.RawMessage, error) {
	s.mu.RLock()
	cached, ok := s.cache[task.ID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if task.DataItemsRef == "" {
		return nil, nil
	}

	payload, err := os.ReadFile(task.DataItemsRef)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("data file for task %s is not a JSON array: %w", task.ID, err)
	}

	s.mu.Lock()
	s.cache[task.ID] = items
	s.mu.Unlock()

	return items, nil
}

// Remove deletes the task's artifact directory.
func (s *Store) Remove(taskID string) error {
	s.mu.Lock()
	delete(s.cache, taskID)
	s.mu.Unlock()

	return os.RemoveAll(s.taskDir(taskID))
}
