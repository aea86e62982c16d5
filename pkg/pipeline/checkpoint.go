package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/brepmaster/uvgraph/pkg/uvgraph"
)

// CheckpointSet holds the relative paths of graph files that already exist
// under an output root. Passing it back into Convert makes a re-run skip
// work that a previous (possibly truncated) run finished.
type CheckpointSet map[string]struct{}

// Contains reports whether the relative output path is checkpointed.
// A nil set contains nothing.
func (s CheckpointSet) Contains(relOut string) bool {
	if s == nil {
		return false
	}
	_, ok := s[relOut]
	return ok
}

// Add records a relative output path.
func (s CheckpointSet) Add(relOut string) {
	s[filepath.ToSlash(relOut)] = struct{}{}
}

// ScanCheckpoints walks an output root and collects every existing graph
// file into a CheckpointSet. A missing root yields an empty set, since a
// fresh run has nothing to skip.
func ScanCheckpoints(outputRoot string) (CheckpointSet, error) {
	set := make(CheckpointSet)
	err := filepath.WalkDir(outputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), uvgraph.GraphExt) {
			return nil
		}
		rel, err := filepath.Rel(outputRoot, path)
		if err != nil {
			return err
		}
		set.Add(rel)
		return nil
	})
	if err != nil {
		if _, isPathErr := err.(*fs.PathError); isPathErr {
			return make(CheckpointSet), nil
		}
		return nil, fmt.Errorf("pipeline: scan checkpoints: %w", err)
	}
	return set, nil
}
