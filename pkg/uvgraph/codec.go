package uvgraph

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/brepmaster/uvgraph/pkg/solid"
)

// GraphExt is the file extension of serialized graphs. It distinguishes
// graph files from the source solid format.
const GraphExt = ".bin"

// Save serializes the graph to path atomically: the encoding is written to
// a temporary file in the target directory and renamed into place, so a
// torn-down run never leaves a half-written graph file.
func Save(g *Graph, path string) error {
	data, err := msgpack.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp graph file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write graph file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close graph file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename graph file: %w", err)
	}
	return nil
}

// Load reads a serialized graph and verifies its structural invariants.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", solid.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read graph file %s: %w", path, err)
	}

	var g Graph
	if err := msgpack.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode graph file %s: %w", path, err)
	}
	if err := validate(&g); err != nil {
		return nil, fmt.Errorf("graph file %s: %w", path, err)
	}
	return &g, nil
}

// LoadNormalized loads a graph and applies the coordinate normalization,
// matching the analysis path's view of the data.
func LoadNormalized(path string) (*Graph, error) {
	g, err := Load(path)
	if err != nil {
		return nil, err
	}
	n, _, _, err := Normalize(g)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	return n, nil
}

// validate checks the structural invariants of a decoded graph.
func validate(g *Graph) error {
	if g.SurfU < 2 || g.SurfV < 2 || g.CurveU < 2 {
		return fmt.Errorf("invalid sampling resolution %dx%dx%d", g.CurveU, g.SurfU, g.SurfV)
	}
	if len(g.Src) != len(g.EdgeFeatures) || len(g.Dst) != len(g.EdgeFeatures) {
		return fmt.Errorf("edge list length %d/%d does not match %d edge features",
			len(g.Src), len(g.Dst), len(g.EdgeFeatures))
	}
	wantNode := g.SurfU * g.SurfV * NodeFeatureWidth
	for i, f := range g.NodeFeatures {
		if len(f) != wantNode {
			return fmt.Errorf("node %d has %d feature values, want %d", i, len(f), wantNode)
		}
	}
	wantEdge := g.CurveU * EdgeFeatureWidth
	for j, f := range g.EdgeFeatures {
		if len(f) != wantEdge {
			return fmt.Errorf("edge %d has %d feature values, want %d", j, len(f), wantEdge)
		}
		if g.Src[j] < 0 || g.Src[j] >= g.NumNodes() || g.Dst[j] < 0 || g.Dst[j] >= g.NumNodes() {
			return fmt.Errorf("edge %d endpoints (%d, %d) out of node range %d",
				j, g.Src[j], g.Dst[j], g.NumNodes())
		}
	}
	return nil
}
