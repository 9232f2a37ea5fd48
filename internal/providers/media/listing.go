package media

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/sandbox"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/types"
)

// ListOps implements recursive file listing
type ListOps struct {
	*MediaOps
}

// GetTools returns listing tool definitions
func (l *ListOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "media.list",
			Name:        "List Files",
			Description: "Recursively list regular files under a root",
			Parameters: []types.Parameter{
				{Name: "root", Type: "string", Description: "Sandbox root directory", Required: true},
				{Name: "show_hidden", Type: "boolean", Description: "Include dot-prefixed files and directories", Required: false},
			},
			Returns: "object",
		},
	}
}

// ListFiles walks the root and returns every regular file beneath it.
// Unreadable subtrees are reported in Skipped rather than failing the call;
// only a root that cannot be read at all is an error.
func (l *ListOps) ListFiles(ctx context.Context, root string, opts ListOptions) (*Listing, error) {
	start := time.Now()

	rootCanon, err := sandbox.Resolve(root, "")
	if err != nil {
		return nil, err
	}

	files, skipped, err := walkFiles(ctx, rootCanon, opts.ShowHidden, nil)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	l.Metrics.RecordWalk(elapsed, len(files), len(skipped))
	l.Log.Debug("Listing complete",
		zap.String("root", rootCanon),
		zap.Int("files", len(files)),
		zap.Int("skipped", len(skipped)),
		zap.Duration("elapsed", elapsed))

	return &Listing{
		Root:      rootCanon,
		Files:     files,
		Skipped:   skipped,
		ElapsedMS: elapsed.Milliseconds(),
	}, nil
}

// walkFiles is the shared walk core for listing and search. The accept
// callback, when non-nil, filters files by their slash-relative path. The
// walk runs on parallel goroutines, so result appends are mutex-guarded.
func walkFiles(ctx context.Context, rootCanon string, showHidden bool, accept func(rel string) bool) ([]FileEntry, []SkippedDir, error) {
	var (
		mu      sync.Mutex
		files   []FileEntry
		skipped []SkippedDir
		rootErr error
	)

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, rootCanon, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := relativeTo(rootCanon, path)
		if relErr != nil {
			return nil
		}

		if err != nil {
			if path == rootCanon {
				mu.Lock()
				rootErr = err
				mu.Unlock()
				return err
			}
			mu.Lock()
			skipped = append(skipped, SkippedDir{RelativePath: rel, Reason: skipReason(err)})
			mu.Unlock()
			return nil
		}

		if path == rootCanon {
			return nil
		}

		if !showHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// A literal backslash in a name cannot survive the slash-separated
		// wire form, so the entry is reported instead of listed.
		if strings.Contains(d.Name(), `\`) {
			mu.Lock()
			skipped = append(skipped, SkippedDir{RelativePath: rel, Reason: "backslash in name"})
			mu.Unlock()
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			return nil

		case d.Type()&fs.ModeSymlink != 0:
			target, resolveErr := sandbox.Resolve(rootCanon, rel)
			if resolveErr != nil {
				if errors.Is(resolveErr, sandbox.ErrPathEscape) {
					mu.Lock()
					skipped = append(skipped, SkippedDir{RelativePath: rel, Reason: "symlink target outside root"})
					mu.Unlock()
				}
				return nil
			}
			info, statErr := os.Stat(target)
			if statErr != nil || !info.Mode().IsRegular() {
				return nil
			}
			if accept != nil && !accept(rel) {
				return nil
			}
			mu.Lock()
			files = append(files, FileEntry{Path: target, RelativePath: rel, Size: uint64(info.Size())})
			mu.Unlock()
			return nil

		case d.Type().IsRegular():
			info, infoErr := d.Info()
			if infoErr != nil {
				return nil
			}
			if accept != nil && !accept(rel) {
				return nil
			}
			mu.Lock()
			files = append(files, FileEntry{Path: path, RelativePath: rel, Size: uint64(info.Size())})
			mu.Unlock()
			return nil

		default:
			// Sockets, FIFOs and devices are not listable media.
			return nil
		}
	})

	if rootErr != nil {
		return nil, nil, sandbox.Classify("list", rootCanon, rootErr)
	}
	if walkErr != nil {
		return nil, nil, sandbox.Classify("list", rootCanon, walkErr)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	sort.Slice(skipped, func(i, j int) bool {
		return skipped[i].RelativePath < skipped[j].RelativePath
	})
	return files, skipped, nil
}

// relativeTo converts a walked absolute path to the slash-separated wire
// form relative to the canonical root.
func relativeTo(rootCanon, path string) (string, error) {
	rel, err := filepath.Rel(rootCanon, path)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// skipReason extracts the short cause from a walk error, dropping the
// duplicated path prefix of PathError strings.
func skipReason(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}
