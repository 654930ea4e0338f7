package archive

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/a-pavithraa/lambda-alias-deploy/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func entries(t *testing.T, archivePath string) map[string]uint16 {
	t.Helper()
	reader, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer reader.Close()

	names := map[string]uint16{}
	for _, f := range reader.File {
		names[f.Name] = f.Method
	}
	return names
}

func keys(m map[string]uint16) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestBuildExcludesAtEveryLevel(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.py":                  "handler",
		".env":                      "SECRET=1",
		".git/config":               "[core]",
		"lib/util.py":               "util",
		"lib/.env":                  "SECRET=2",
		"lib/.git/HEAD":             "ref",
		"lib/deep/nested/mod.py":    "mod",
		"lib/deep/nested/.env":      "SECRET=3",
		"lib/deep/.git/objects/ab":  "blob",
		"node_modules/pkg/index.js": "pkg",
	})
	out := filepath.Join(t.TempDir(), "demo.zip")

	var reported []string
	path, err := Build(root, out, Options{
		ExcludedDirs:  []string{".git", "node_modules"},
		ExcludedFiles: []string{".env"},
		OnEntry:       func(name string) { reported = append(reported, name) },
	})
	require.NoError(t, err)
	assert.Equal(t, out, path)

	got := entries(t, out)
	assert.Equal(t, []string{"index.py", "lib/deep/nested/mod.py", "lib/util.py"}, keys(got))
	for name, method := range got {
		assert.Equal(t, zip.Deflate, method, name)
	}
	sort.Strings(reported)
	assert.Equal(t, keys(got), reported)
}

func TestBuildExcludedNameOnlyMatchesItsKind(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"build":        "a file named like an excluded directory",
		"docs/build/x": "excluded",
		"docs/README":  "kept",
	})
	out := filepath.Join(t.TempDir(), "demo.zip")

	_, err := Build(root, out, Options{ExcludedDirs: []string{"build"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "docs/README"}, keys(entries(t, out)))
}

func TestBuildSkipsItsOwnArchive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.py":    "handler",
		"bin/old.txt": "kept",
	})
	out := filepath.Join(root, "bin", "demo.zip")

	_, err := Build(root, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"bin/old.txt", "index.py"}, keys(entries(t, out)))
}

func TestBuildFollowsSymlinkedFiles(t *testing.T) {
	shared := t.TempDir()
	writeTree(t, shared, map[string]string{
		"common.py":   "shared module",
		"pkg/init.py": "package",
	})
	root := t.TempDir()
	writeTree(t, root, map[string]string{"index.py": "handler"})
	require.NoError(t, os.Symlink(filepath.Join(shared, "common.py"), filepath.Join(root, "common.py")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "pkg"), filepath.Join(root, "pkg")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "gone.py"), filepath.Join(root, "gone.py")))
	out := filepath.Join(t.TempDir(), "demo.zip")

	skipped := map[string]string{}
	_, err := Build(root, out, Options{
		OnSkip: func(name string, reason string) { skipped[name] = reason },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"common.py", "index.py"}, keys(entries(t, out)))
	assert.Equal(t, []string{"gone.py", "pkg"}, sortedNames(skipped))

	reader, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer reader.Close()
	file, err := reader.Open("common.py")
	require.NoError(t, err)
	defer file.Close()
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "shared module", string(body))
}

func TestBuildExcludedSymlinkIsNotReported(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"index.py": "handler"})
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, ".env")))
	out := filepath.Join(t.TempDir(), "demo.zip")

	var skipped []string
	_, err := Build(root, out, Options{
		ExcludedFiles: []string{".env"},
		OnSkip:        func(name string, reason string) { skipped = append(skipped, name) },
	})
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, []string{"index.py"}, keys(entries(t, out)))
}

func sortedNames(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestBuildCreatesOutputDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"index.py": "handler"})
	out := filepath.Join(t.TempDir(), "nested", "bin", "demo.zip")

	_, err := Build(root, out, Options{})
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestBuildUnreadableRoot(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "demo.zip"), Options{})

	var archiveErr *common.ArchiveError
	require.True(t, errors.As(err, &archiveErr))
}

func TestRead(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"index.py": "handler"})
	out := filepath.Join(t.TempDir(), "demo.zip")
	_, err := Build(root, out, Options{})
	require.NoError(t, err)

	contents, err := Read(out)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, onDisk, contents)

	_, err = Read(filepath.Join(t.TempDir(), "absent.zip"))
	var archiveErr *common.ArchiveError
	assert.True(t, errors.As(err, &archiveErr))
}
