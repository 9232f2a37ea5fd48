package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/events"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/sandbox"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/types"
)

// FileOps implements file mutations
type FileOps struct {
	*MediaOps
}

// GetTools returns file mutation tool definitions
func (f *FileOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "media.rename",
			Name:        "Rename File",
			Description: "Rename a file within its directory",
			Parameters: []types.Parameter{
				{Name: "root", Type: "string", Description: "Sandbox root directory", Required: true},
				{Name: "relative_path", Type: "string", Description: "File to rename, relative to root", Required: true},
				{Name: "new_name", Type: "string", Description: "New base name without separators", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "media.delete",
			Name:        "Delete File",
			Description: "Delete a single regular file",
			Parameters: []types.Parameter{
				{Name: "root", Type: "string", Description: "Sandbox root directory", Required: true},
				{Name: "relative_path", Type: "string", Description: "File to delete, relative to root", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "media.move",
			Name:        "Move File",
			Description: "Move a file into another directory under the same root",
			Parameters: []types.Parameter{
				{Name: "root", Type: "string", Description: "Sandbox root directory", Required: true},
				{Name: "from_relative", Type: "string", Description: "File to move, relative to root", Required: true},
				{Name: "to_relative_dir", Type: "string", Description: "Destination directory, relative to root; empty means the root", Required: false},
				{Name: "create_dir", Type: "boolean", Description: "Create the destination directory if missing", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "media.mkdir",
			Name:        "Create Folder",
			Description: "Create a directory chain under a root",
			Parameters: []types.Parameter{
				{Name: "root", Type: "string", Description: "Sandbox root directory", Required: true},
				{Name: "relative_dir", Type: "string", Description: "Directory to create, relative to root", Required: true},
			},
			Returns: "object",
		},
	}
}

// Rename renames a file in place and returns its new relative path.
func (f *FileOps) Rename(ctx context.Context, req RenameRequest) (string, error) {
	start := time.Now()
	toRel, err := f.rename(req)
	f.record("rename", start, err)
	if err != nil {
		return "", err
	}
	f.Events.Publish(events.Event{Type: events.EventRenamed, Root: req.Root, From: req.RelativePath, To: toRel})
	f.Log.Info("File renamed",
		zap.String("root", req.Root),
		zap.String("from", req.RelativePath),
		zap.String("to", toRel))
	return toRel, nil
}

func (f *FileOps) rename(req RenameRequest) (string, error) {
	if err := validateName(req.NewName); err != nil {
		return "", err
	}
	src, info, err := sandbox.ResolveExisting(req.Root, req.RelativePath)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", sandbox.NewError("rename", req.RelativePath, fmt.Errorf("%w: not a regular file", sandbox.ErrIO))
	}

	toRel := path.Join(path.Dir(req.RelativePath), req.NewName)
	dst, err := sandbox.Resolve(req.Root, toRel)
	if err != nil {
		return "", err
	}
	if lexists(dst) {
		return "", sandbox.NewError("rename", toRel, fmt.Errorf("%w: destination exists", sandbox.ErrAlreadyExists))
	}
	if err := os.Rename(src, dst); err != nil {
		return "", sandbox.Classify("rename", toRel, err)
	}
	return toRel, nil
}

// Delete removes a single regular file. Directories are refused.
func (f *FileOps) Delete(ctx context.Context, req DeleteRequest) error {
	start := time.Now()
	err := f.delete(req)
	f.record("delete", start, err)
	if err != nil {
		return err
	}
	f.Events.Publish(events.Event{Type: events.EventDeleted, Root: req.Root, Path: req.RelativePath})
	f.Log.Info("File deleted",
		zap.String("root", req.Root),
		zap.String("path", req.RelativePath))
	return nil
}

func (f *FileOps) delete(req DeleteRequest) error {
	target, info, err := sandbox.ResolveExisting(req.Root, req.RelativePath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return sandbox.NewError("delete", req.RelativePath, fmt.Errorf("%w: refusing to delete a directory", sandbox.ErrIO))
	}
	if !info.Mode().IsRegular() {
		return sandbox.NewError("delete", req.RelativePath, fmt.Errorf("%w: not a regular file", sandbox.ErrIO))
	}
	if err := os.Remove(target); err != nil {
		return sandbox.Classify("delete", req.RelativePath, err)
	}
	return nil
}

// Move relocates a file into another directory under the same root and
// returns its new relative path. Cross-device renames fall back to a copy
// followed by source deletion.
func (f *FileOps) Move(ctx context.Context, req MoveRequest) (string, error) {
	start := time.Now()
	toRel, err := f.move(req)
	f.record("move", start, err)
	if err != nil {
		return "", err
	}
	f.Events.Publish(events.Event{Type: events.EventMoved, Root: req.Root, From: req.FromRelative, To: toRel})
	f.Log.Info("File moved",
		zap.String("root", req.Root),
		zap.String("from", req.FromRelative),
		zap.String("to", toRel))
	return toRel, nil
}

func (f *FileOps) move(req MoveRequest) (string, error) {
	src, info, err := sandbox.ResolveExisting(req.Root, req.FromRelative)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", sandbox.NewError("move", req.FromRelative, fmt.Errorf("%w: not a regular file", sandbox.ErrIO))
	}

	toDir := strings.TrimSpace(req.ToRelativeDir)
	dstDir, err := sandbox.Resolve(req.Root, toDir)
	if err != nil {
		return "", err
	}
	dirInfo, statErr := os.Stat(dstDir)
	switch {
	case statErr == nil && !dirInfo.IsDir():
		return "", sandbox.NewError("move", toDir, fmt.Errorf("%w: destination is not a directory", sandbox.ErrIO))
	case errors.Is(statErr, fs.ErrNotExist):
		if !req.CreateDir {
			return "", sandbox.NewError("move", toDir, fmt.Errorf("%w: destination directory does not exist", sandbox.ErrNotFound))
		}
		if err := os.MkdirAll(dstDir, 0o755); err != nil {
			return "", sandbox.Classify("move", toDir, err)
		}
	case statErr != nil:
		return "", sandbox.Classify("move", toDir, statErr)
	}

	name := filepath.Base(src)
	dst := filepath.Join(dstDir, name)
	toRel := path.Join(toDir, name)
	if lexists(dst) {
		return "", sandbox.NewError("move", toRel, fmt.Errorf("%w: destination exists", sandbox.ErrAlreadyExists))
	}
	if err := os.Rename(src, dst); err != nil {
		if !isCrossDevice(err) {
			return "", sandbox.Classify("move", toRel, err)
		}
		if err := copyThenDelete(src, dst, info); err != nil {
			return "", err
		}
	}
	return toRel, nil
}

// CreateFolder creates the full directory chain and returns the canonical
// absolute path of the new directory.
func (f *FileOps) CreateFolder(ctx context.Context, req CreateFolderRequest) (string, error) {
	start := time.Now()
	created, err := f.createFolder(req)
	f.record("mkdir", start, err)
	if err != nil {
		return "", err
	}
	f.Events.Publish(events.Event{Type: events.EventFolderCreated, Root: req.Root, Path: req.RelativeDir})
	f.Log.Info("Folder created",
		zap.String("root", req.Root),
		zap.String("path", req.RelativeDir))
	return created, nil
}

func (f *FileOps) createFolder(req CreateFolderRequest) (string, error) {
	target, err := sandbox.Resolve(req.Root, req.RelativeDir)
	if err != nil {
		return "", err
	}
	if lexists(target) {
		return "", sandbox.NewError("mkdir", req.RelativeDir, fmt.Errorf("%w: path already exists", sandbox.ErrAlreadyExists))
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", sandbox.Classify("mkdir", req.RelativeDir, err)
	}
	return target, nil
}

func (f *FileOps) record(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = sandbox.KindOf(err)
	}
	f.Metrics.RecordFileOp(op, status, time.Since(start))
}

// validateName checks a rename target name: a single plain segment, no
// separators, not "." or "..".
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return sandbox.NewError("rename", name, fmt.Errorf("%w: invalid file name", sandbox.ErrPathEscape))
	}
	return nil
}

// copyThenDelete is the cross-device move fallback: copy to the destination,
// sync, then remove the source. A failed copy removes the partial
// destination so retries start clean.
func copyThenDelete(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return sandbox.Classify("move", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return sandbox.Classify("move", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return sandbox.Classify("move", dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return sandbox.Classify("move", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return sandbox.Classify("move", dst, err)
	}
	if err := os.Remove(src); err != nil {
		return sandbox.Classify("move", src, err)
	}
	return nil
}

// isCrossDevice reports whether a rename failed because source and
// destination live on different filesystems.
func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}
