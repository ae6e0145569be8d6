package xrotate

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLumberjack_Validation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.log")

	_, err := NewLumberjack("")
	assert.ErrorIs(t, err, ErrEmptyFilename)

	_, err = NewLumberjack(file, WithMaxSize(0))
	assert.ErrorIs(t, err, ErrInvalidMaxSize)

	_, err = NewLumberjack(file, WithMaxBackups(-1))
	assert.ErrorIs(t, err, ErrInvalidMaxBackups)

	_, err = NewLumberjack(file, WithMaxAge(maxAgeDays+1))
	assert.ErrorIs(t, err, ErrInvalidMaxAge)

	_, err = NewLumberjack("../escape.log")
	assert.Error(t, err)
}

func TestLumberjack_WriteCreatesParentDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "dir", "app.log")
	r, err := NewLumberjack(file, nil, WithCompress(false), WithLocalTime(true))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("hello\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestLumberjack_ReopenAfterExternalRename(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.log")
	r, err := NewLumberjack(file)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("before\n"))
	require.NoError(t, err)

	// 模拟 logrotate 的 rename
	moved := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.Rename(file, moved))

	require.NoError(t, r.Reopen())
	_, err = r.Write([]byte("after\n"))
	require.NoError(t, err)

	old, err := os.ReadFile(moved)
	require.NoError(t, err)
	assert.Equal(t, "before\n", string(old))

	cur, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "after\n", string(cur))
}

func TestLumberjack_Rotate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.log")
	r, err := NewLumberjack(file, WithCompress(false))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("one\n"))
	require.NoError(t, err)
	require.NoError(t, r.Rotate())
	_, err = r.Write([]byte("two\n"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	cur, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(cur))
}

func TestLumberjack_Closed(t *testing.T) {
	r, err := NewLumberjack(filepath.Join(t.TempDir(), "app.log"))
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrClosed)

	_, err = r.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.Rotate(), ErrClosed)
	assert.ErrorIs(t, r.Reopen(), ErrClosed)
}

func TestLumberjack_ConcurrentWriteAndReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	r, err := NewLumberjack(file)
	require.NoError(t, err)
	defer r.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 50 {
				_, _ = r.Write([]byte("line\n"))
			}
		})
	}
	wg.Go(func() {
		for range 20 {
			_ = r.Reopen()
		}
	})
	wg.Wait()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Len(t, data, 8*50*len("line\n"))
}
