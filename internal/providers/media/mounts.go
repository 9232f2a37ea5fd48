package media

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/config"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/types"
)

// MountOps implements candidate mount discovery
type MountOps struct {
	*MediaOps
}

// GetTools returns mount tool definitions
func (m *MountOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "media.mounts",
			Name:        "List Mounts",
			Description: "List candidate removable-media mounts and pinned roots",
			Parameters:  []types.Parameter{},
			Returns:     "array",
		},
	}
}

// Discover assembles the candidate roots from three sources: mounted
// partitions below the configured scan bases, direct children of those
// bases, and pinned roots from the roots file. Every candidate must exist
// and be a directory. Probe failures shrink the list instead of failing it.
func (m *MountOps) Discover(ctx context.Context) []MountPoint {
	bases := m.scanBases()
	found := make(map[string]*MountPoint)

	add := func(mp MountPoint) *MountPoint {
		clean := filepath.Clean(mp.Path)
		if existing, ok := found[clean]; ok {
			return existing
		}
		info, err := os.Stat(clean)
		if err != nil || !info.IsDir() {
			return nil
		}
		mp.Path = clean
		found[clean] = &mp
		return found[clean]
	}

	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		m.Log.Warn("Partition probe failed", zap.Error(err))
	} else {
		for _, part := range partitions {
			if !underBase(part.Mountpoint, bases) {
				continue
			}
			add(MountPoint{
				Path:   part.Mountpoint,
				Label:  filepath.Base(part.Mountpoint),
				Device: part.Device,
				Fstype: part.Fstype,
			})
		}
	}

	for _, base := range bases {
		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			add(MountPoint{
				Path:  filepath.Join(base, entry.Name()),
				Label: entry.Name(),
			})
		}
	}

	if m.Config.RootsFile != "" {
		rf, err := config.LoadRoots(m.Config.RootsFile)
		if err != nil {
			m.Log.Warn("Roots file load failed",
				zap.String("path", m.Config.RootsFile),
				zap.Error(err))
		} else {
			for _, root := range rf.Roots {
				label := root.Label
				if label == "" {
					label = filepath.Base(root.Path)
				}
				if mp := add(MountPoint{Path: root.Path, Label: label}); mp != nil && root.Label != "" {
					mp.Label = root.Label
				}
			}
		}
	}

	mounts := make([]MountPoint, 0, len(found))
	for _, mp := range found {
		if usage, err := disk.UsageWithContext(ctx, mp.Path); err == nil {
			mp.TotalBytes = usage.Total
			mp.FreeBytes = usage.Free
		}
		mounts = append(mounts, *mp)
	}
	sort.Slice(mounts, func(i, j int) bool {
		return mounts[i].Path < mounts[j].Path
	})

	m.Metrics.RecordMountScan(len(mounts))
	return mounts
}

// scanBases expands environment references in the configured bases and drops
// entries that do not expand to an absolute path.
func (m *MountOps) scanBases() []string {
	bases := make([]string, 0, len(m.Config.ScanBases))
	for _, base := range m.Config.ScanBases {
		expanded := filepath.Clean(os.ExpandEnv(base))
		if !filepath.IsAbs(expanded) {
			continue
		}
		bases = append(bases, expanded)
	}
	return bases
}

// underBase reports whether path sits strictly below one of the bases.
func underBase(path string, bases []string) bool {
	clean := filepath.Clean(path)
	for _, base := range bases {
		if strings.HasPrefix(clean, base+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
