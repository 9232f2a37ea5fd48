// Package media implements the removable-media file management service.
//
// The provider discovers candidate mount points, lists regular files
// recursively, and executes sandboxed mutations (rename, delete, move,
// create folder) plus glob search. Every path from the wire is resolved
// through the sandbox package before any filesystem call, so operations
// cannot reach outside their root even through symlinks.
//
// Structure:
//   - mounts.go: candidate root discovery (partitions, scan bases, pinned roots)
//   - listing.go: recursive walk shared by listing and search
//   - operations.go: file mutations with metrics and event publication
//   - search.go: doublestar glob matching over the walk
//   - media.go: service facade wiring tools to operations
//
// Operations are stateless; each call resolves its root from scratch so
// unplugged or replugged media never leaves stale handles behind.
package media
