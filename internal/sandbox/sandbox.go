package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ValidateRelative checks that a wire-format relative path is well formed:
// slash-separated plain segments with no leading separator, no absolute or
// drive-qualified form, and no "." or ".." segments. The empty string is
// valid and names the root itself.
func ValidateRelative(relative string) error {
	_, err := splitRelative(relative)
	return err
}

// Resolve maps a root directory and a wire-format relative path to a
// canonical absolute path guaranteed to live inside the root. The root must
// exist; the target may not, so long as its nearest existing ancestor
// canonicalizes under the root. Symlinks inside the root that point outside
// it are rejected with ErrPathEscape.
func Resolve(root, relative string) (string, error) {
	segments, err := splitRelative(relative)
	if err != nil {
		return "", err
	}

	rootCanon, err := canonicalRoot(root)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return rootCanon, nil
	}

	candidate := filepath.Join(rootCanon, filepath.Join(segments...))
	full, existing, err := canonicalExisting(candidate)
	if err != nil {
		return "", Classify("resolve", relative, err)
	}
	if !within(rootCanon, existing) {
		return "", NewError("resolve", relative, fmt.Errorf("%w: resolves outside root", ErrPathEscape))
	}
	return full, nil
}

// ResolveExisting resolves like Resolve and additionally requires the target
// to exist, returning its FileInfo. Dangling symlinks count as absent.
func ResolveExisting(root, relative string) (string, os.FileInfo, error) {
	path, err := Resolve(root, relative)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, Classify("resolve", relative, err)
	}
	return path, info, nil
}

// splitRelative validates a wire-format relative path and returns its
// segments. A single trailing slash is tolerated; everything else is strict.
func splitRelative(relative string) ([]string, error) {
	rel := strings.TrimSuffix(relative, "/")
	if rel == "" {
		if relative == "" {
			return nil, nil
		}
		return nil, escapeError(relative, "leading path separator")
	}
	if strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) {
		return nil, escapeError(relative, "leading path separator")
	}
	if filepath.IsAbs(rel) {
		return nil, escapeError(relative, "absolute path")
	}

	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		switch seg {
		case "":
			return nil, escapeError(relative, "empty path segment")
		case ".", "..":
			return nil, escapeError(relative, fmt.Sprintf("invalid path segment %q", seg))
		}
		if strings.Contains(seg, `\`) {
			return nil, escapeError(relative, fmt.Sprintf("backslash in segment %q", seg))
		}
		if i == 0 && len(seg) >= 2 && seg[1] == ':' && isDriveLetter(seg[0]) {
			return nil, escapeError(relative, "volume prefix")
		}
	}
	return segments, nil
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func escapeError(relative, reason string) error {
	return NewError("validate", relative, fmt.Errorf("%w: %s", ErrPathEscape, reason))
}

// canonicalRoot canonicalizes a root directory. Missing roots map to
// ErrNotFound so unplugged media surfaces as absence, not an I/O fault.
func canonicalRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", NewError("resolve", root, fmt.Errorf("%w: empty root", ErrNotFound))
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", Classify("resolve", root, err)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", Classify("resolve", root, err)
	}
	info, err := os.Stat(canon)
	if err != nil {
		return "", Classify("resolve", root, err)
	}
	if !info.IsDir() {
		return "", NewError("resolve", root, fmt.Errorf("%w: not a directory", ErrNotFound))
	}
	return canon, nil
}

// canonicalExisting resolves symlinks in the longest existing prefix of path
// and rejoins the non-existent remainder verbatim. The returned existing
// prefix is what containment is judged against.
func canonicalExisting(path string) (full, existing string, err error) {
	p := path
	var rest []string
	for {
		canon, err := filepath.EvalSymlinks(p)
		if err == nil {
			full = canon
			for _, name := range rest {
				full = filepath.Join(full, name)
			}
			return full, canon, nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
			return "", "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", "", err
		}
		rest = append([]string{filepath.Base(p)}, rest...)
		p = parent
	}
}

// within reports whether path equals root or sits below it. Both arguments
// must already be canonical.
func within(root, path string) bool {
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
