package uvgraph_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brepmaster/uvgraph/pkg/solid"
	"github.com/brepmaster/uvgraph/pkg/uvgraph"
)

func testGraph() *uvgraph.Graph {
	// Awkward values that only survive a round trip at full float64
	// precision.
	return &uvgraph.Graph{
		Src: []int{0},
		Dst: []int{1},
		NodeFeatures: [][]float64{
			flatten(
				sample(1.0/3.0, math.Pi, -0.1, true),
				sample(math.Sqrt2, 1e-17, 2, true),
				sample(0, 0, 0, true),
				sample(1, 1, 1, false),
			),
			flatten(
				sample(-5, 4, 3, true),
				sample(6, -7, 8, true),
				sample(9, 10, -11, true),
				sample(12, 13, 14, true),
			),
		},
		EdgeFeatures: [][]float64{flatten(
			edgeSample(0.1, 0.2, 0.3),
			edgeSample(1.0/7.0, -2, 5),
		)},
		CurveU: 2, SurfU: 2, SurfV: 2,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part"+uvgraph.GraphExt)

	g := testGraph()
	if err := uvgraph.Save(g, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := uvgraph.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.NumNodes() != g.NumNodes() || got.NumEdges() != g.NumEdges() {
		t.Fatalf("counts changed: %d/%d nodes, %d/%d edges",
			got.NumNodes(), g.NumNodes(), got.NumEdges(), g.NumEdges())
	}
	for i := range g.NodeFeatures {
		for k := range g.NodeFeatures[i] {
			if got.NodeFeatures[i][k] != g.NodeFeatures[i][k] {
				t.Fatalf("node %d value %d: %v != %v",
					i, k, got.NodeFeatures[i][k], g.NodeFeatures[i][k])
			}
		}
	}
	for k := range g.EdgeFeatures[0] {
		if got.EdgeFeatures[0][k] != g.EdgeFeatures[0][k] {
			t.Fatalf("edge value %d: %v != %v", k, got.EdgeFeatures[0][k], g.EdgeFeatures[0][k])
		}
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part"+uvgraph.GraphExt)
	if err := uvgraph.Save(testGraph(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := uvgraph.Load(filepath.Join(t.TempDir(), "nope.bin"))
	if !errors.Is(err, solid.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.bin")
	if err := os.WriteFile(path, []byte("not a graph"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := uvgraph.Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadRejectsBrokenInvariants(t *testing.T) {
	g := testGraph()
	g.EdgeFeatures[0] = g.EdgeFeatures[0][:5] // wrong width
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := uvgraph.Save(g, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := uvgraph.Load(path); err == nil {
		t.Fatal("expected invariant violation")
	}
}
