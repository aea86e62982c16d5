package uvgraph_test

import (
	"errors"
	"math"
	"testing"

	"github.com/brepmaster/uvgraph/pkg/solid"
	"github.com/brepmaster/uvgraph/pkg/uvgraph"
)

// sample builds one 7-wide node feature sample.
func sample(x, y, z float64, visible bool) []float64 {
	v := 0.0
	if visible {
		v = 1.0
	}
	return []float64{x, y, z, 0, 0, 1, v}
}

// edgeSample builds one 6-wide edge feature sample.
func edgeSample(x, y, z float64) []float64 {
	return []float64{x, y, z, 1, 0, 0}
}

func flatten(rows ...[]float64) []float64 {
	var out []float64
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func TestBoundingBox(t *testing.T) {
	pts := []solid.Vec3{
		{X: 1, Y: -2, Z: 3},
		{X: -1, Y: 5, Z: 0},
		{X: 0, Y: 0, Z: 7},
	}
	min, max, err := uvgraph.BoundingBox(pts)
	if err != nil {
		t.Fatalf("BoundingBox failed: %v", err)
	}
	if min != (solid.Vec3{X: -1, Y: -2, Z: 0}) {
		t.Errorf("min = %+v", min)
	}
	if max != (solid.Vec3{X: 1, Y: 5, Z: 7}) {
		t.Errorf("max = %+v", max)
	}
}

func TestBoundingBoxEmpty(t *testing.T) {
	_, _, err := uvgraph.BoundingBox(nil)
	var eerr *uvgraph.EmptyInputError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EmptyInputError, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	// Visible samples span (0,0,0)-(4,2,1); the far invisible sample must
	// not influence the bounding box but is still transformed.
	g := &uvgraph.Graph{
		Src: []int{0},
		Dst: []int{0},
		NodeFeatures: [][]float64{flatten(
			sample(0, 0, 0, true),
			sample(4, 2, 0, true),
			sample(1, 1, 1, true),
			sample(100, 100, 100, false),
		)},
		EdgeFeatures: [][]float64{flatten(
			edgeSample(0, 0, 0),
			edgeSample(4, 0, 0),
		)},
		CurveU: 2, SurfU: 2, SurfV: 2,
	}

	got, center, scale, err := uvgraph.Normalize(g)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if scale != 0.5 {
		t.Errorf("scale = %v, want 0.5", scale)
	}
	if center != (solid.Vec3{X: 2, Y: 1, Z: 0.5}) {
		t.Errorf("center = %+v, want (2, 1, 0.5)", center)
	}

	feat := got.NodeFeatures[0]
	w := uvgraph.NodeFeatureWidth
	checks := []struct {
		off  int
		want [3]float64
	}{
		{0 * w, [3]float64{-1, -0.5, -0.25}},
		{1 * w, [3]float64{1, 0.5, -0.25}},
		{3 * w, [3]float64{49, 49.5, 49.75}},
	}
	for _, c := range checks {
		for k := 0; k < 3; k++ {
			if feat[c.off+k] != c.want[k] {
				t.Errorf("sample at offset %d coord %d = %v, want %v",
					c.off, k, feat[c.off+k], c.want[k])
			}
		}
	}

	// Normals are untouched.
	if feat[3] != 0 || feat[4] != 0 || feat[5] != 1 {
		t.Errorf("normal changed: %v", feat[3:6])
	}

	// Edge positions share the transform; tangents are untouched.
	ef := got.EdgeFeatures[0]
	if ef[0] != -1 || ef[1] != -0.5 || ef[2] != -0.25 {
		t.Errorf("edge sample 0 = %v", ef[0:3])
	}
	if ef[6] != 1 || ef[7] != -0.5 {
		t.Errorf("edge sample 1 = %v", ef[6:9])
	}
	if ef[3] != 1 || ef[4] != 0 || ef[5] != 0 {
		t.Errorf("tangent changed: %v", ef[3:6])
	}

	// The input graph is unchanged.
	if g.NodeFeatures[0][0] != 0 || g.NodeFeatures[0][w] != 4 {
		t.Error("Normalize mutated its input")
	}
}

func TestNormalizeNoVisibleSamples(t *testing.T) {
	g := &uvgraph.Graph{
		NodeFeatures: [][]float64{flatten(
			sample(0, 0, 0, false),
			sample(1, 1, 1, false),
		)},
		CurveU: 2, SurfU: 2, SurfV: 1,
	}
	_, _, _, err := uvgraph.Normalize(g)
	var eerr *uvgraph.EmptyInputError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EmptyInputError, got %v", err)
	}
}

func TestNormalizeDegenerateDiagonal(t *testing.T) {
	// A single visible point has a zero bounding-box diagonal; the scale
	// would be infinite, so an explicit error is raised instead.
	g := &uvgraph.Graph{
		NodeFeatures: [][]float64{flatten(
			sample(3, 3, 3, true),
			sample(50, 0, 0, false),
		)},
		CurveU: 2, SurfU: 2, SurfV: 1,
	}
	_, _, scale, err := uvgraph.Normalize(g)
	var derr *uvgraph.DegenerateGeometryError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DegenerateGeometryError, got %v", err)
	}
	if math.IsInf(scale, 0) {
		t.Error("an infinite scale escaped")
	}
}
