package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/config"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/events"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/logging"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/monitoring"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/sandbox"
)

func TestRename(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "content")

	toRel, err := p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "a.txt", NewName: "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, "b.txt", toRel)

	assert.NoFileExists(t, filepath.Join(root, "a.txt"))
	data, err := os.ReadFile(filepath.Join(root, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestRenameNested(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", "a.txt"), "x")

	toRel, err := p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "sub/a.txt", NewName: "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, "sub/b.txt", toRel)
	assert.FileExists(t, filepath.Join(root, "sub", "b.txt"))
}

func TestRenameRoundTrip(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "content")

	before, err := p.ListFiles(context.Background(), root, ListOptions{})
	require.NoError(t, err)

	_, err = p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "a.txt", NewName: "b.txt"})
	require.NoError(t, err)
	_, err = p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "b.txt", NewName: "a.txt"})
	require.NoError(t, err)

	after, err := p.ListFiles(context.Background(), root, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, before.Files, after.Files)
}

func TestRenameMissing(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()

	_, err := p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "ghost.txt", NewName: "b.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrNotFound)
}

func TestRenameTargetExists(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "b.txt"), "b")

	_, err := p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "a.txt", NewName: "b.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrAlreadyExists)

	// The occupant is untouched.
	data, err := os.ReadFile(filepath.Join(root, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestRenameSameName(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	_, err := p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "a.txt", NewName: "a.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrAlreadyExists)
}

func TestRenameInvalidName(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	for _, name := range []string{"", ".", "..", "x/y", `x\y`, "sub/"} {
		_, err := p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "a.txt", NewName: name})
		require.Error(t, err, "name %q", name)
		assert.ErrorIs(t, err, sandbox.ErrPathEscape, "name %q", name)
	}
}

func TestRenameDirectory(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	_, err := p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "sub", NewName: "other"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrIO)
}

func TestRenameEscape(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()

	_, err := p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "../a.txt", NewName: "b.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrPathEscape)
}

func TestDelete(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	require.NoError(t, p.Delete(context.Background(), DeleteRequest{Root: root, RelativePath: "a.txt"}))
	assert.NoFileExists(t, filepath.Join(root, "a.txt"))
}

func TestDeleteMissing(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()

	err := p.Delete(context.Background(), DeleteRequest{Root: root, RelativePath: "ghost.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrNotFound)
}

func TestDeleteDirectory(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	err := p.Delete(context.Background(), DeleteRequest{Root: root, RelativePath: "sub"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrIO)
	assert.DirExists(t, filepath.Join(root, "sub"))
}

func TestDeleteEscape(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()

	err := p.Delete(context.Background(), DeleteRequest{Root: root, RelativePath: "../victim.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrPathEscape)
}

func TestMove(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "content")
	require.NoError(t, os.Mkdir(filepath.Join(root, "dest"), 0o755))

	toRel, err := p.Move(context.Background(), MoveRequest{Root: root, FromRelative: "a.txt", ToRelativeDir: "dest"})
	require.NoError(t, err)
	assert.Equal(t, "dest/a.txt", toRel)

	assert.NoFileExists(t, filepath.Join(root, "a.txt"))
	data, err := os.ReadFile(filepath.Join(root, "dest", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestMoveToRoot(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", "a.txt"), "x")

	toRel, err := p.Move(context.Background(), MoveRequest{Root: root, FromRelative: "sub/a.txt", ToRelativeDir: ""})
	require.NoError(t, err)
	assert.Equal(t, "a.txt", toRel)
	assert.FileExists(t, filepath.Join(root, "a.txt"))
}

func TestMoveMissingDest(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")

	_, err := p.Move(context.Background(), MoveRequest{Root: root, FromRelative: "a.txt", ToRelativeDir: "nowhere"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrNotFound)
	assert.FileExists(t, filepath.Join(root, "a.txt"))
}

func TestMoveCreateDir(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")

	toRel, err := p.Move(context.Background(), MoveRequest{
		Root:          root,
		FromRelative:  "a.txt",
		ToRelativeDir: "x/y",
		CreateDir:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "x/y/a.txt", toRel)
	assert.FileExists(t, filepath.Join(root, "x", "y", "a.txt"))
}

func TestMoveDestOccupied(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "new")
	writeFile(t, filepath.Join(root, "dest", "a.txt"), "old")

	_, err := p.Move(context.Background(), MoveRequest{Root: root, FromRelative: "a.txt", ToRelativeDir: "dest"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrAlreadyExists)

	data, err := os.ReadFile(filepath.Join(root, "dest", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestMoveOntoItself(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")

	_, err := p.Move(context.Background(), MoveRequest{Root: root, FromRelative: "a.txt", ToRelativeDir: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrAlreadyExists)
	assert.FileExists(t, filepath.Join(root, "a.txt"))
}

func TestMoveDestIsFile(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")
	writeFile(t, filepath.Join(root, "blob"), "x")

	_, err := p.Move(context.Background(), MoveRequest{Root: root, FromRelative: "a.txt", ToRelativeDir: "blob"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrIO)
}

func TestMoveSourceMissing(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()

	_, err := p.Move(context.Background(), MoveRequest{Root: root, FromRelative: "ghost.txt", ToRelativeDir: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrNotFound)
}

func TestMoveEscapeDest(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")

	_, err := p.Move(context.Background(), MoveRequest{Root: root, FromRelative: "a.txt", ToRelativeDir: "../out"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrPathEscape)
}

func TestCreateFolder(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()

	created, err := p.CreateFolder(context.Background(), CreateFolderRequest{Root: root, RelativeDir: "a/b/c"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonical(t, root), "a", "b", "c"), created)
	assert.DirExists(t, filepath.Join(root, "a", "b", "c"))
}

func TestCreateFolderExists(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()

	_, err := p.CreateFolder(context.Background(), CreateFolderRequest{Root: root, RelativeDir: "albums"})
	require.NoError(t, err)

	_, err = p.CreateFolder(context.Background(), CreateFolderRequest{Root: root, RelativeDir: "albums"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrAlreadyExists)
}

func TestCreateFolderExistsAsFile(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "albums"), "not a dir")

	_, err := p.CreateFolder(context.Background(), CreateFolderRequest{Root: root, RelativeDir: "albums"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrAlreadyExists)
}

func TestCreateFolderEscape(t *testing.T) {
	p := newTestProvider(t)
	root := t.TempDir()

	_, err := p.CreateFolder(context.Background(), CreateFolderRequest{Root: root, RelativeDir: "../evil"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrPathEscape)
}

func TestOperationEvents(t *testing.T) {
	broadcaster := events.NewBroadcaster(nil)
	p := NewProvider(config.MediaConfig{}, logging.NewNop(), monitoring.NewMetrics(), broadcaster)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")

	ch := broadcaster.Subscribe()
	defer broadcaster.Unsubscribe(ch)

	_, err := p.Rename(context.Background(), RenameRequest{Root: root, RelativePath: "a.txt", NewName: "b.txt"})
	require.NoError(t, err)

	select {
	case evt := <-ch:
		assert.Equal(t, events.EventRenamed, evt.Type)
		assert.Equal(t, root, evt.Root)
		assert.Equal(t, "a.txt", evt.From)
		assert.Equal(t, "b.txt", evt.To)
		assert.NotEmpty(t, evt.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a rename event")
	}
}

func TestFailedOperationPublishesNoEvent(t *testing.T) {
	broadcaster := events.NewBroadcaster(nil)
	p := NewProvider(config.MediaConfig{}, logging.NewNop(), monitoring.NewMetrics(), broadcaster)
	root := t.TempDir()

	ch := broadcaster.Subscribe()
	defer broadcaster.Unsubscribe(ch)

	err := p.Delete(context.Background(), DeleteRequest{Root: root, RelativePath: "ghost.txt"})
	require.Error(t, err)

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %q", evt.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCopyThenDelete(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	writeFile(t, src, "payload")
	info, err := os.Stat(src)
	require.NoError(t, err)

	require.NoError(t, copyThenDelete(src, dst, info))

	assert.NoFileExists(t, src)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestCopyThenDeleteDestExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")
	info, err := os.Stat(src)
	require.NoError(t, err)

	err = copyThenDelete(src, dst, info)
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrAlreadyExists)

	// Neither side is touched.
	assert.FileExists(t, src)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestCopyThenDeleteFailedCopyLeavesNoPartial(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("relies on directory reads failing mid-copy")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "srcdir")
	require.NoError(t, os.Mkdir(src, 0o755))
	dst := filepath.Join(dir, "dst.bin")
	info, err := os.Stat(src)
	require.NoError(t, err)

	// Reading a directory fails after the destination was created, which
	// exercises the cleanup path.
	err = copyThenDelete(src, dst, info)
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrIO)

	assert.NoFileExists(t, dst)
	assert.DirExists(t, src)
}

func TestIsCrossDevice(t *testing.T) {
	exdev := &os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EXDEV}

	assert.True(t, isCrossDevice(exdev))
	assert.True(t, isCrossDevice(fmt.Errorf("move: %w", exdev)))
	assert.False(t, isCrossDevice(&os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EACCES}))
	assert.False(t, isCrossDevice(nil))
}
