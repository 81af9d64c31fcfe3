package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortitude-sh/fortitude/internal/discovery"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverWalksDirectoryForFortranSuffixes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.f90"), "program p\nend program p\n")
	writeFile(t, filepath.Join(dir, "sub", "helper.F90"), "module m\nend module m\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore me\n")

	files, err := discovery.Discover([]string{dir}, discovery.Options{})
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.True(t, f == filepath.Join(dir, "main.f90") || f == filepath.Join(dir, "sub", "helper.F90"))
	}
}

func TestDiscoverExcludePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.f90"), "")
	writeFile(t, filepath.Join(dir, "vendor", "skip.f90"), "")

	files, err := discovery.Discover([]string{dir}, discovery.Options{Exclude: []string{"vendor/**"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "keep.f90"), files[0])
}

func TestDiscoverExplicitFileBypassesSuffixFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weird.inc")
	writeFile(t, path, "")

	files, err := discovery.Discover([]string{path}, discovery.Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestDiscoverDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.f90")
	writeFile(t, path, "")

	files, err := discovery.Discover([]string{path, path}, discovery.Options{})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDiscoverRespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	writeFile(t, filepath.Join(dir, ".gitignore"), "build/\n")
	writeFile(t, filepath.Join(dir, "main.f90"), "")
	writeFile(t, filepath.Join(dir, "build", "gen.f90"), "")

	files, err := discovery.Discover([]string{dir}, discovery.Options{RespectGitignore: true})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "main.f90"), files[0])
}

func TestDiscoverGlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.f90"), "")
	writeFile(t, filepath.Join(dir, "b.f90"), "")

	files, err := discovery.Discover([]string{filepath.Join(dir, "*.f90")}, discovery.Options{})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
