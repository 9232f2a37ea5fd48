package sandbox

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// canonical mirrors what Resolve does to a root, so expectations survive
// tempdirs that live behind symlinks (macOS /var -> /private/var).
func canonical(t *testing.T, path string) string {
	t.Helper()
	canon, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return canon
}

func requireSymlinks(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated privileges on windows")
	}
}

// TestValidateRelative tests lexical validation of wire-format paths
func TestValidateRelative(t *testing.T) {
	valid := []string{
		"",
		"a.txt",
		"photos/trip/img001.jpg",
		"name with spaces/file (1).txt",
		".hidden",
		".config/settings.json",
		"trailing/",
		"weird:name",
		"nested/c:looks-like-drive",
	}
	for _, rel := range valid {
		assert.NoError(t, ValidateRelative(rel), "expected %q to validate", rel)
	}

	invalid := []string{
		"/",
		"/abs",
		"/abs/file.txt",
		"//x",
		`\`,
		`\abs`,
		`\\server\share`,
		"..",
		"../x",
		"a/..",
		"a/../b",
		"a/../../b",
		".",
		"./x",
		"a/./b",
		"a//b",
		`a\..\b`,
		`C:\abs`,
		"C:/abs",
		"c:relative",
	}
	for _, rel := range invalid {
		err := ValidateRelative(rel)
		require.Error(t, err, "expected %q to be rejected", rel)
		assert.ErrorIs(t, err, ErrPathEscape, "expected %q to classify as path escape", rel)
	}
}

// TestResolveRoot tests resolution of the root itself
func TestResolveRoot(t *testing.T) {
	root := t.TempDir()

	path, err := Resolve(root, "")
	require.NoError(t, err)
	assert.Equal(t, canonical(t, root), path)
}

func TestResolveRootMissing(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "gone"), "x.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Resolve("", "x.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveRootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Resolve(file, "anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestResolveExistingTarget tests resolution of paths that exist
func TestResolveExistingTarget(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "photos", "trip"), 0o755))
	file := filepath.Join(root, "photos", "trip", "img001.jpg")
	require.NoError(t, os.WriteFile(file, []byte("jpeg"), 0o644))

	path, err := Resolve(root, "photos/trip/img001.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonical(t, root), "photos", "trip", "img001.jpg"), path)
}

// TestResolveMissingTarget tests that targets may not exist yet
func TestResolveMissingTarget(t *testing.T) {
	root := t.TempDir()

	path, err := Resolve(root, "newdir/sub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonical(t, root), "newdir", "sub"), path)
}

// TestResolveSymlinkEscape tests that symlinks pointing outside the root are rejected
func TestResolveSymlinkEscape(t *testing.T) {
	requireSymlinks(t)

	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("s"), 0o644))
	root := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "secret-link")))

	_, err := Resolve(root, "escape")
	assert.ErrorIs(t, err, ErrPathEscape)

	_, err = Resolve(root, "escape/secret.txt")
	assert.ErrorIs(t, err, ErrPathEscape)

	// Non-existent target below the escaping link is still an escape
	_, err = Resolve(root, "escape/newfile.txt")
	assert.ErrorIs(t, err, ErrPathEscape)

	_, err = Resolve(root, "secret-link")
	assert.ErrorIs(t, err, ErrPathEscape)
}

// TestResolveSymlinkInside tests that symlinks staying inside the root resolve
func TestResolveSymlinkInside(t *testing.T) {
	requireSymlinks(t)

	root := t.TempDir()
	real := filepath.Join(root, "real")
	require.NoError(t, os.Mkdir(real, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(real, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Symlink(real, filepath.Join(root, "alias")))

	path, err := Resolve(root, "alias/a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonical(t, root), "real", "a.txt"), path)
}

// TestResolveThroughSymlinkedRoot tests a root that is itself a symlink
func TestResolveThroughSymlinkedRoot(t *testing.T) {
	requireSymlinks(t)

	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "f.txt"), []byte("f"), 0o644))
	holder := t.TempDir()
	link := filepath.Join(holder, "mount")
	require.NoError(t, os.Symlink(target, link))

	path, err := Resolve(link, "f.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonical(t, target), "f.txt"), path)
}

func TestResolveExisting(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "here.txt"), []byte("data"), 0o644))

	path, info, err := ResolveExisting(root, "here.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonical(t, root), "here.txt"), path)
	assert.Equal(t, int64(4), info.Size())

	_, _, err = ResolveExisting(root, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestResolveExistingDanglingSymlink tests that a dangling link counts as absent
func TestResolveExistingDanglingSymlink(t *testing.T) {
	requireSymlinks(t)

	root := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(root, "nope"), filepath.Join(root, "dangling")))

	// Resolve alone tolerates the dangling link (nominal path, still contained)
	path, err := Resolve(root, "dangling")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonical(t, root), "dangling"), path)

	_, _, err = ResolveExisting(root, "dangling")
	assert.ErrorIs(t, err, ErrNotFound)
}
