package media

import (
	"context"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/sandbox"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/types"
)

// SearchOps implements glob search over a root
type SearchOps struct {
	*MediaOps
}

// GetTools returns search tool definitions
func (s *SearchOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "media.search",
			Name:        "Search Files",
			Description: "Find files under a root whose relative path matches a glob pattern",
			Parameters: []types.Parameter{
				{Name: "root", Type: "string", Description: "Sandbox root directory", Required: true},
				{Name: "pattern", Type: "string", Description: "Doublestar glob matched against relative paths", Required: true},
				{Name: "show_hidden", Type: "boolean", Description: "Include dot-prefixed files and directories", Required: false},
			},
			Returns: "object",
		},
	}
}

// Glob walks the root and returns the files whose slash-relative path
// matches the pattern. Patterns support ** for any number of directories.
func (s *SearchOps) Glob(ctx context.Context, root, pattern string, opts ListOptions) (*SearchResult, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
	}

	start := time.Now()
	rootCanon, err := sandbox.Resolve(root, "")
	if err != nil {
		return nil, err
	}

	files, skipped, err := walkFiles(ctx, rootCanon, opts.ShowHidden, func(rel string) bool {
		ok, _ := doublestar.Match(pattern, rel)
		return ok
	})
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	s.Metrics.RecordWalk(elapsed, len(files), len(skipped))
	s.Log.Debug("Search complete",
		zap.String("root", rootCanon),
		zap.String("pattern", pattern),
		zap.Int("matches", len(files)),
		zap.Duration("elapsed", elapsed))

	return &SearchResult{
		Root:      rootCanon,
		Pattern:   pattern,
		Files:     files,
		Skipped:   skipped,
		ElapsedMS: elapsed.Milliseconds(),
	}, nil
}
