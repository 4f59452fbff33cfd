package artifacts

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := &logging.MockLogger{}
	logger.SetupDefaultExpectations()
	store, err := NewStore(t.TempDir(), logger)
	require.NoError(t, err)
	return store
}

func TestSaveItemsAndReadBack(t *testing.T) {
	store := newTestStore(t)

	items := []json.RawMessage{
		json.RawMessage(`{"url":"a"}`),
		json.RawMessage(`{"url":"b"}`),
	}
	ref, err := store.SaveItems("task-1", items)
	require.NoError(t, err)
	assert.FileExists(t, ref)

	loaded, err := store.Items(context.Background(), &types.TaskData{ID: "task-1", DataItemsRef: ref})
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.JSONEq(t, `{"url":"a"}`, string(loaded[0]))
}

func TestItems_ReadsFromDiskWhenCacheCold(t *testing.T) {
	store := newTestStore(t)

	items := []json.RawMessage{json.RawMessage(`1`), json.RawMessage(`2`)}
	ref, err := store.SaveItems("task-1", items)
	require.NoError(t, err)

	// a fresh store has no cache and must read the file
	logger := &logging.MockLogger{}
	logger.SetupDefaultExpectations()
	cold, err := NewStore(store.root, logger)
	require.NoError(t, err)

	loaded, err := cold.Items(context.Background(), &types.TaskData{ID: "task-1", DataItemsRef: ref})
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestItems_EmptyRefReturnsNoItems(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Items(context.Background(), &types.TaskData{ID: "task-1"})
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSaveCode(t *testing.T) {
	store := newTestStore(t)

	path, err := store.SaveCode("task-1", "bundle.tar.gz", strings.NewReader("archive-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.root, "task-1", "bundle.tar.gz"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(content))
}

func TestRemove_DeletesDirectoryAndCache(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.SaveItems("task-1", []json.RawMessage{json.RawMessage(`1`)})
	require.NoError(t, err)

	require.NoError(t, store.Remove("task-1"))
	assert.NoFileExists(t, ref)

	loaded, err := store.Items(context.Background(), &types.TaskData{ID: "task-1", DataItemsRef: ref})
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
