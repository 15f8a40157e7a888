package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

func TestLocalSourceWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "calc.py")
	require.NoError(t, os.WriteFile(target, []byte("x = 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 8)
	done := make(chan error, 1)

	go func() {
		done <- NewLocalSourceWatcher(10*time.Millisecond).Watch(ctx, m.Path(target), func(context.Context) {
			changes <- struct{}{}
		})
	}()

	// Writes to other files in the directory are ignored.
	require.Eventually(t, func() bool {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.py"), []byte("y = 2\n"), 0o644))
		require.NoError(t, os.WriteFile(target, []byte("x = 2\n"), 0o644))

		select {
		case <-changes:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestLocalSourceWatcher_MissingDirectory(t *testing.T) {
	err := NewLocalSourceWatcher(0).Watch(context.Background(), m.Path(filepath.Join(t.TempDir(), "nope", "calc.py")), func(context.Context) {})
	assert.Error(t, err)
}

func TestNewLocalSourceWatcher_DefaultDebounce(t *testing.T) {
	assert.Equal(t, DefaultWatchDebounce, NewLocalSourceWatcher(-1).debounce)
}
