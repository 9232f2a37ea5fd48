package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// PinnedRoot is an operator-configured sandbox root that should always be
// offered alongside auto-discovered mounts.
type PinnedRoot struct {
	Path  string `yaml:"path" toml:"path" json:"path"`
	Label string `yaml:"label,omitempty" toml:"label,omitempty" json:"label,omitempty"`
}

// RootsFile is the on-disk shape of the pinned roots configuration.
type RootsFile struct {
	Roots []PinnedRoot `yaml:"roots" toml:"roots"`
}

// LoadRoots reads and parses a pinned roots file, YAML by default or TOML
// for .toml paths. A missing path is not an error at this layer; callers
// decide whether the file is mandatory.
func LoadRoots(path string) (*RootsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roots file: %w", err)
	}

	var rf RootsFile
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &rf)
	} else {
		err = yaml.Unmarshal(data, &rf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse roots file %s: %w", path, err)
	}

	for i, root := range rf.Roots {
		if root.Path == "" {
			return nil, fmt.Errorf("roots file %s: entry %d has no path", path, i)
		}
	}
	return &rf, nil
}
