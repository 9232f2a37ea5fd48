// Package sandbox confines filesystem access to an explicitly chosen root.
//
// Every mount the UI browses is a sandbox root. Callers hand in the root and
// a slash-separated relative path exactly as received on the wire; this
// package validates the relative path, canonicalizes both ends, and proves
// containment before any filesystem operation runs.
//
// Resolution:
//   - Lexical validation: plain segments only, no leading separator, no
//     "." or ".." segments, no drive prefix, no backslashes
//   - Root canonicalization via Abs + EvalSymlinks
//   - Target canonicalization of the longest existing prefix, so paths that
//     don't exist yet (mkdir, move destinations) are still checked
//   - Containment check against the canonical root
//
// Error Taxonomy:
//   - ErrNotFound: target or root absent
//   - ErrPathEscape: malformed path or resolution outside the root
//   - ErrAlreadyExists: destination occupied
//   - ErrPermissionDenied: filesystem refused access
//   - ErrIO: everything else
//
// Example Usage:
//
//	path, err := sandbox.Resolve("/media/usb", "photos/trip/img001.jpg")
//	if errors.Is(err, sandbox.ErrPathEscape) {
//		// reject the request
//	}
package sandbox
