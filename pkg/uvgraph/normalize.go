package uvgraph

import (
	"github.com/brepmaster/uvgraph/pkg/solid"
)

// BoundingBox returns the componentwise min and max over a point set.
// An empty set returns an EmptyInputError.
func BoundingBox(pts []solid.Vec3) (min, max solid.Vec3, err error) {
	if len(pts) == 0 {
		return solid.Vec3{}, solid.Vec3{}, &EmptyInputError{What: "point set"}
	}
	min, max = pts[0], pts[0]
	for _, p := range pts[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max, nil
}

// visiblePositions gathers the positions of all node-feature samples whose
// visibility channel is 1.
func visiblePositions(g *Graph) []solid.Vec3 {
	var pts []solid.Vec3
	for _, feat := range g.NodeFeatures {
		for off := 0; off+NodeFeatureWidth <= len(feat); off += NodeFeatureWidth {
			if feat[off+6] == 1 {
				pts = append(pts, solid.Vec3{X: feat[off], Y: feat[off+1], Z: feat[off+2]})
			}
		}
	}
	return pts
}

// Normalize centers and isotropically scales the graph's coordinate
// features so the visible geometry's bounding box spans [-1, 1] along its
// largest axis. The transform applies to the position channels of both
// node and edge features; normals and tangents are untouched. The input
// graph is not modified.
//
// Normalize is not idempotent: reapplying it shifts and scales again.
// Callers apply it exactly once per graph.
//
// A graph without a single visible sample returns an EmptyInputError; a
// visible point set with a zero bounding-box diagonal (a single point or a
// degenerate sliver) returns a DegenerateGeometryError rather than an
// infinite scale.
func Normalize(g *Graph) (*Graph, solid.Vec3, float64, error) {
	pts := visiblePositions(g)
	if len(pts) == 0 {
		return nil, solid.Vec3{}, 0, &EmptyInputError{What: "no visible samples to normalize"}
	}

	min, max, err := BoundingBox(pts)
	if err != nil {
		return nil, solid.Vec3{}, 0, err
	}

	dx := max.X - min.X
	dy := max.Y - min.Y
	dz := max.Z - min.Z
	maxDiag := dx
	if dy > maxDiag {
		maxDiag = dy
	}
	if dz > maxDiag {
		maxDiag = dz
	}
	if maxDiag <= 0 {
		return nil, solid.Vec3{}, 0, &DegenerateGeometryError{
			Reason: "visible geometry has zero bounding-box diagonal",
		}
	}

	scale := 2 / maxDiag
	center := solid.Vec3{
		X: (min.X + max.X) / 2,
		Y: (min.Y + max.Y) / 2,
		Z: (min.Z + max.Z) / 2,
	}

	out := g.Clone()
	for _, feat := range out.NodeFeatures {
		transformPositions(feat, NodeFeatureWidth, center, scale)
	}
	for _, feat := range out.EdgeFeatures {
		transformPositions(feat, EdgeFeatureWidth, center, scale)
	}
	return out, center, scale, nil
}

// transformPositions applies (p - center) * scale to the leading 3 values
// of each width-sized sample in feat.
func transformPositions(feat []float64, width int, center solid.Vec3, scale float64) {
	for off := 0; off+width <= len(feat); off += width {
		feat[off] = (feat[off] - center.X) * scale
		feat[off+1] = (feat[off+1] - center.Y) * scale
		feat[off+2] = (feat[off+2] - center.Z) * scale
	}
}
