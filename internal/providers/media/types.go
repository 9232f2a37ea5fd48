package media

import (
	"os"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/config"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/events"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/logging"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/monitoring"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/types"
)

// MountPoint represents a browsable sandbox root offered to the UI.
type MountPoint struct {
	Path       string `json:"path"`
	Label      string `json:"label"`
	Device     string `json:"device,omitempty"`
	Fstype     string `json:"fstype,omitempty"`
	TotalBytes uint64 `json:"total_bytes,omitempty"`
	FreeBytes  uint64 `json:"free_bytes,omitempty"`
}

// FileEntry represents one regular file found under a root. Path is the
// host-native canonical absolute path; RelativePath is the slash-separated
// wire form the UI hands back to mutation calls.
type FileEntry struct {
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	Size         uint64 `json:"size"`
}

// SkippedDir records a subtree the lister could not read.
type SkippedDir struct {
	RelativePath string `json:"relative_path"`
	Reason       string `json:"reason"`
}

// Listing is the result of a recursive file listing.
type Listing struct {
	Root      string       `json:"root"`
	Files     []FileEntry  `json:"files"`
	Skipped   []SkippedDir `json:"skipped,omitempty"`
	ElapsedMS int64        `json:"elapsed_ms"`
}

// SearchResult is the result of a glob search.
type SearchResult struct {
	Root      string       `json:"root"`
	Pattern   string       `json:"pattern"`
	Files     []FileEntry  `json:"files"`
	Skipped   []SkippedDir `json:"skipped,omitempty"`
	ElapsedMS int64        `json:"elapsed_ms"`
}

// ListOptions controls listing behavior.
type ListOptions struct {
	ShowHidden bool
}

// RenameRequest renames a file in place.
type RenameRequest struct {
	Root         string `json:"root" binding:"required"`
	RelativePath string `json:"relative_path" binding:"required"`
	NewName      string `json:"new_name" binding:"required"`
}

// DeleteRequest deletes a single regular file.
type DeleteRequest struct {
	Root         string `json:"root" binding:"required"`
	RelativePath string `json:"relative_path" binding:"required"`
}

// MoveRequest moves a file into another directory under the same root.
// An empty ToRelativeDir means the root itself.
type MoveRequest struct {
	Root          string `json:"root" binding:"required"`
	FromRelative  string `json:"from_relative" binding:"required"`
	ToRelativeDir string `json:"to_relative_dir"`
	CreateDir     bool   `json:"create_dir"`
}

// CreateFolderRequest creates a directory chain under a root.
type CreateFolderRequest struct {
	Root        string `json:"root" binding:"required"`
	RelativeDir string `json:"relative_dir" binding:"required"`
}

// MediaOps provides shared dependencies for media operations
type MediaOps struct {
	Log     *logging.Logger
	Metrics *monitoring.Metrics
	Events  *events.Broadcaster
	Config  config.MediaConfig
}

// Success helper
func Success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

// Failure helper
func Failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}

// lexists reports whether path exists without following a final symlink, so
// occupied destinations are detected even when the occupant is a dangling
// link.
func lexists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
