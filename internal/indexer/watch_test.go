package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_IndexesNewFiles(t *testing.T) {
	root := fixtureRepo(t)
	ix, store := setup(t, root, Options{})
	_, err := ix.Rebuild(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var runs []*Stats
	done := make(chan error, 1)
	go func() {
		done <- ix.Watch(ctx, 50*time.Millisecond, func(s *Stats, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				runs = append(runs, s)
			}
		})
	}()

	// give the watcher time to register directories
	time.Sleep(200 * time.Millisecond)
	mkfile(t, root, "src/watched.ts", "export const w = 1\n")
	// excluded writes alone never trigger a run
	require.NoError(t, os.WriteFile(filepath.Join(root, "debug.log"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(runs) > 0
	}, 5*time.Second, 20*time.Millisecond)

	_, err = store.GetNode("src/watched.ts")
	assert.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
