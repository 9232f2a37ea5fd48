package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel errors for the filesystem error taxonomy.
var (
	// ErrNotFound indicates the target doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrPathEscape indicates a relative path is malformed or resolves outside its root.
	ErrPathEscape = errors.New("path escapes root")

	// ErrAlreadyExists indicates the destination is already occupied.
	ErrAlreadyExists = errors.New("already exists")

	// ErrPermissionDenied indicates the operation is not permitted.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIO indicates any other filesystem failure.
	ErrIO = errors.New("i/o error")
)

// OpError wraps errors with operation context.
type OpError struct {
	Op   string // Operation that failed
	Path string // Root or relative path involved
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Is supports errors.Is for comparison.
func (e *OpError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates an OpError.
func NewError(op, path string, err error) *OpError {
	return &OpError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Classify wraps a filesystem error with operation context and maps it onto
// the error taxonomy. Errors that already carry a taxonomy sentinel pass
// through unchanged.
func Classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		err = fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrExist):
		err = fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrPathEscape),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrIO):
		// Already carries a taxonomy sentinel
	default:
		err = fmt.Errorf("%w: %v", ErrIO, err)
	}

	return &OpError{Op: op, Path: path, Err: err}
}

// KindOf returns the wire name for an error's taxonomy kind.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPathEscape):
		return "path_escape"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	default:
		return "io_error"
	}
}
