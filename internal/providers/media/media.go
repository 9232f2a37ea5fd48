package media

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/config"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/events"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/logging"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/monitoring"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/types"
)

// Provider exposes media file management as a registry service.
type Provider struct {
	base   *MediaOps
	mounts *MountOps
	list   *ListOps
	files  *FileOps
	search *SearchOps
}

// NewProvider creates the media provider with its shared dependencies.
func NewProvider(cfg config.MediaConfig, log *logging.Logger, metrics *monitoring.Metrics, broadcaster *events.Broadcaster) *Provider {
	base := &MediaOps{Log: log, Metrics: metrics, Events: broadcaster, Config: cfg}
	return &Provider{
		base:   base,
		mounts: &MountOps{MediaOps: base},
		list:   &ListOps{MediaOps: base},
		files:  &FileOps{MediaOps: base},
		search: &SearchOps{MediaOps: base},
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	tools := make([]types.Tool, 0, 8)
	tools = append(tools, p.mounts.GetTools()...)
	tools = append(tools, p.list.GetTools()...)
	tools = append(tools, p.files.GetTools()...)
	tools = append(tools, p.search.GetTools()...)

	return types.Service{
		ID:          "media",
		Name:        "Media Files",
		Description: "Sandboxed browsing and management of files on removable media",
		Category:    types.CategoryMedia,
		Capabilities: []string{
			"mounts",
			"listing",
			"rename",
			"delete",
			"move",
			"mkdir",
			"search",
		},
		Tools: tools,
	}
}

// Execute runs a media tool
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	timer := monitoring.NewTimer(p.base.Metrics, "media", toolID)
	result, err := p.dispatch(ctx, toolID, params)
	switch {
	case err != nil:
		timer.Stop("error")
		p.base.Metrics.RecordServiceError("media", toolID, "internal")
	case !result.Success:
		timer.Stop("failure")
		p.base.Metrics.RecordServiceError("media", toolID, "tool_failure")
	default:
		timer.Stop("ok")
	}
	return result, err
}

func (p *Provider) dispatch(ctx context.Context, toolID string, params map[string]interface{}) (*types.Result, error) {
	switch toolID {
	case "media.mounts":
		return p.executeMounts(ctx)
	case "media.list":
		return p.executeList(ctx, params)
	case "media.rename":
		return p.executeRename(ctx, params)
	case "media.delete":
		return p.executeDelete(ctx, params)
	case "media.move":
		return p.executeMove(ctx, params)
	case "media.mkdir":
		return p.executeMkdir(ctx, params)
	case "media.search":
		return p.executeSearch(ctx, params)
	default:
		return Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) executeMounts(ctx context.Context) (*types.Result, error) {
	mounts := p.mounts.Discover(ctx)
	return Success(map[string]interface{}{
		"mounts": mounts,
		"count":  len(mounts),
	})
}

func (p *Provider) executeList(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	root, ok := params["root"].(string)
	if !ok || root == "" {
		return Failure("root parameter required")
	}
	showHidden, _ := params["show_hidden"].(bool)

	listing, err := p.list.ListFiles(ctx, root, ListOptions{ShowHidden: showHidden})
	if err != nil {
		return Failure(err.Error())
	}
	return Success(map[string]interface{}{
		"root":       listing.Root,
		"files":      listing.Files,
		"skipped":    listing.Skipped,
		"count":      len(listing.Files),
		"elapsed_ms": listing.ElapsedMS,
	})
}

func (p *Provider) executeRename(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	root, ok := params["root"].(string)
	if !ok || root == "" {
		return Failure("root parameter required")
	}
	rel, ok := params["relative_path"].(string)
	if !ok {
		return Failure("relative_path parameter required")
	}
	newName, ok := params["new_name"].(string)
	if !ok || newName == "" {
		return Failure("new_name parameter required")
	}

	toRel, err := p.files.Rename(ctx, RenameRequest{Root: root, RelativePath: rel, NewName: newName})
	if err != nil {
		return Failure(err.Error())
	}
	return Success(map[string]interface{}{
		"root": root,
		"from": rel,
		"to":   toRel,
	})
}

func (p *Provider) executeDelete(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	root, ok := params["root"].(string)
	if !ok || root == "" {
		return Failure("root parameter required")
	}
	rel, ok := params["relative_path"].(string)
	if !ok {
		return Failure("relative_path parameter required")
	}

	if err := p.files.Delete(ctx, DeleteRequest{Root: root, RelativePath: rel}); err != nil {
		return Failure(err.Error())
	}
	return Success(map[string]interface{}{
		"root": root,
		"path": rel,
	})
}

func (p *Provider) executeMove(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	root, ok := params["root"].(string)
	if !ok || root == "" {
		return Failure("root parameter required")
	}
	from, ok := params["from_relative"].(string)
	if !ok {
		return Failure("from_relative parameter required")
	}
	toDir, _ := params["to_relative_dir"].(string)
	createDir, _ := params["create_dir"].(bool)

	toRel, err := p.files.Move(ctx, MoveRequest{
		Root:          root,
		FromRelative:  from,
		ToRelativeDir: toDir,
		CreateDir:     createDir,
	})
	if err != nil {
		return Failure(err.Error())
	}
	return Success(map[string]interface{}{
		"root": root,
		"from": from,
		"to":   toRel,
	})
}

func (p *Provider) executeMkdir(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	root, ok := params["root"].(string)
	if !ok || root == "" {
		return Failure("root parameter required")
	}
	relDir, ok := params["relative_dir"].(string)
	if !ok || relDir == "" {
		return Failure("relative_dir parameter required")
	}

	created, err := p.files.CreateFolder(ctx, CreateFolderRequest{Root: root, RelativeDir: relDir})
	if err != nil {
		return Failure(err.Error())
	}
	return Success(map[string]interface{}{
		"root": root,
		"path": created,
	})
}

func (p *Provider) executeSearch(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	root, ok := params["root"].(string)
	if !ok || root == "" {
		return Failure("root parameter required")
	}
	pattern, ok := params["pattern"].(string)
	if !ok || pattern == "" {
		return Failure("pattern parameter required")
	}
	showHidden, _ := params["show_hidden"].(bool)

	result, err := p.search.Glob(ctx, root, pattern, ListOptions{ShowHidden: showHidden})
	if err != nil {
		return Failure(err.Error())
	}
	return Success(map[string]interface{}{
		"root":       result.Root,
		"pattern":    result.Pattern,
		"files":      result.Files,
		"skipped":    result.Skipped,
		"count":      len(result.Files),
		"elapsed_ms": result.ElapsedMS,
	})
}

// Mounts lists candidate roots for direct HTTP use.
func (p *Provider) Mounts(ctx context.Context) []MountPoint {
	return p.mounts.Discover(ctx)
}

// ListFiles lists files for direct HTTP use.
func (p *Provider) ListFiles(ctx context.Context, root string, opts ListOptions) (*Listing, error) {
	return p.list.ListFiles(ctx, root, opts)
}

// Rename renames a file for direct HTTP use.
func (p *Provider) Rename(ctx context.Context, req RenameRequest) (string, error) {
	return p.files.Rename(ctx, req)
}

// Delete deletes a file for direct HTTP use.
func (p *Provider) Delete(ctx context.Context, req DeleteRequest) error {
	return p.files.Delete(ctx, req)
}

// Move moves a file for direct HTTP use.
func (p *Provider) Move(ctx context.Context, req MoveRequest) (string, error) {
	return p.files.Move(ctx, req)
}

// CreateFolder creates a directory chain for direct HTTP use.
func (p *Provider) CreateFolder(ctx context.Context, req CreateFolderRequest) (string, error) {
	return p.files.CreateFolder(ctx, req)
}

// Search runs a glob search for direct HTTP use.
func (p *Provider) Search(ctx context.Context, root, pattern string, opts ListOptions) (*SearchResult, error) {
	return p.search.Glob(ctx, root, pattern, opts)
}
