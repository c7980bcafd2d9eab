package jsonfile

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_NextIncrements(t *testing.T) {
	seq, err := NewSequence(filepath.Join(t.TempDir(), "mail_counter"), nil)
	require.NoError(t, err)

	first, err := seq.Next()
	require.NoError(t, err)
	second, err := seq.Next()
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.Equal(t, 2, seq.Current())
}

func TestSequence_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail_counter")

	seq, err := NewSequence(path, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := seq.Next()
		require.NoError(t, err)
	}

	// 重新加载后继续递增，不回退
	reloaded, err := NewSequence(path, nil)
	require.NoError(t, err)
	next, err := reloaded.Next()
	require.NoError(t, err)
	assert.Equal(t, 6, next)
}

func TestSequence_MalformedFileStartsFromZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail_counter")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	seq, err := NewSequence(path, nil)
	require.NoError(t, err)

	next, err := seq.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestSequence_ConcurrentNextUnique(t *testing.T) {
	seq, err := NewSequence(filepath.Join(t.TempDir(), "mail_counter"), nil)
	require.NoError(t, err)

	const n = 50
	var (
		mu  sync.Mutex
		ids = make(map[int]bool)
		wg  sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := seq.Next()
			assert.NoError(t, err)
			mu.Lock()
			assert.False(t, ids[id], "duplicate id %d", id)
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, n)
	assert.Equal(t, n, seq.Current())
}
