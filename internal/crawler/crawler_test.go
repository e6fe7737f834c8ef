package crawler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}
}

func TestCrawler_ScanDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"b.json",
		"a.yaml",
		"nested/c.yml",
		"nested/notes.md",
		"node_modules/pkg/d.json",
		".git/config.json",
		"vendor/e.json",
	)

	var got []string
	err := NewCrawler().ScanDir(root, func(path string) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)

	t.Run("lexical order, documents only", func(t *testing.T) {
		assert.Equal(t, []string{"a.yaml", "b.json", "nested/c.yml"}, got)
	})

	t.Run("extra ignored names", func(t *testing.T) {
		c := NewCrawler()
		c.Ignore("nested")
		var paths []string
		require.NoError(t, c.ScanDir(root, func(path string) error {
			paths = append(paths, filepath.Base(path))
			return nil
		}))
		assert.Equal(t, []string{"a.yaml", "b.json"}, paths)
	})
}

func TestCrawler_CallbackErrorStops(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.json", "b.json")

	stop := errors.New("stop")
	calls := 0
	err := NewCrawler().ScanDir(root, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
