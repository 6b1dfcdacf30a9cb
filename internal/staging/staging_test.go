package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return NewStore(t.TempDir(), "badge-designer", logger)
}

func TestPutWritesBytes(t *testing.T) {
	store := newTestStore(t)
	data := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}

	f, err := store.Put(data, ".png", "image/png")
	require.NoError(t, err)
	defer f.Close()

	got, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, int64(len(data)), f.Size)
	assert.Equal(t, "image/png", f.ContentType)
	assert.True(t, strings.HasSuffix(f.Name, ".png"))
	assert.Equal(t, f.Name, filepath.Base(f.Path))
}

func TestPutExtensionWithoutDot(t *testing.T) {
	store := newTestStore(t)

	f, err := store.Put([]byte("x"), "png", "image/png")
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, strings.HasSuffix(f.Name, ".png"))
	assert.False(t, strings.HasSuffix(f.Name, "..png"))
}

func TestCloseRemovesFile(t *testing.T) {
	store := newTestStore(t)

	f, err := store.Put([]byte("payload"), ".png", "image/png")
	require.NoError(t, err)

	require.NoError(t, f.Close())

	_, statErr := os.Stat(f.Path)
	assert.True(t, os.IsNotExist(statErr), "staged file must not exist after Close")
}

func TestDoubleCloseIsNoOp(t *testing.T) {
	store := newTestStore(t)

	f, err := store.Put([]byte("payload"), ".png", "image/png")
	require.NoError(t, err)

	assert.NoError(t, f.Close())
	assert.NoError(t, f.Close())
	assert.NoError(t, f.Close())
}

func TestCloseAfterExternalRemoval(t *testing.T) {
	store := newTestStore(t)

	f, err := store.Put([]byte("payload"), ".png", "image/png")
	require.NoError(t, err)

	// The permanent store may have consumed (moved) the staged file already;
	// cleanup must still succeed.
	require.NoError(t, os.Remove(f.Path))
	assert.NoError(t, f.Close())
}

func TestConcurrentPutsDoNotCollide(t *testing.T) {
	store := newTestStore(t)

	const n = 32
	paths := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			f, err := store.Put([]byte("x"), ".png", "image/png")
			if err != nil {
				paths <- ""
				return
			}
			defer f.Close()
			paths <- f.Path
		}()
	}

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		p := <-paths
		require.NotEmpty(t, p)
		assert.False(t, seen[p], "duplicate staged path %s", p)
		seen[p] = true
	}
}
