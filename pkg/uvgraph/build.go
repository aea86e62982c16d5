package uvgraph

import (
	"fmt"

	"github.com/brepmaster/uvgraph/pkg/solid"
)

// SampleOpts selects the uniform sampling resolution for one conversion.
// All feature grids of the resulting graph share these counts.
type SampleOpts struct {
	CurveU int // samples along each edge curve
	SurfU  int // samples along each face's u parameter
	SurfV  int // samples along each face's v parameter
}

// DefaultSampleOpts returns the source format's conventional 10x10x10 grid.
func DefaultSampleOpts() SampleOpts {
	return SampleOpts{CurveU: 10, SurfU: 10, SurfV: 10}
}

// Validate checks that all sample counts are usable.
func (o SampleOpts) Validate() error {
	if o.CurveU < 2 || o.SurfU < 2 || o.SurfV < 2 {
		return fmt.Errorf("sample counts must be >= 2, got curve_u=%d surf_u=%d surf_v=%d",
			o.CurveU, o.SurfU, o.SurfV)
	}
	return nil
}

// Build converts one solid into a feature graph. The result is
// all-or-nothing: a solid with zero faces or any face/edge sampling
// failure returns a GeometryError and no partial graph.
//
// The visibility channel of a node feature is 1 when the sample is
// classified on-surface, whether exposed or occluded; only samples outside
// the trim region map to 0.
func Build(s solid.Solid, opts SampleOpts) (*Graph, error) {
	if err := opts.Validate(); err != nil {
		return nil, &solid.GeometryError{Op: "sampling options", Err: err}
	}

	faces := s.Faces()
	if len(faces) == 0 {
		return nil, solid.Geometryf("solid has no faces")
	}

	g := &Graph{
		NodeFeatures: make([][]float64, 0, len(faces)),
		CurveU:       opts.CurveU,
		SurfU:        opts.SurfU,
		SurfV:        opts.SurfV,
	}

	for i, face := range faces {
		feat, err := buildFaceFeatures(face, opts.SurfU, opts.SurfV)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		g.NodeFeatures = append(g.NodeFeatures, feat)
	}

	for j, pair := range s.FaceAdjacency() {
		if !pair.Edge.HasCurve() {
			// Curveless edges contribute neither a graph edge nor features.
			continue
		}
		feat, err := buildEdgeFeatures(pair.Edge, opts.CurveU)
		if err != nil {
			return nil, fmt.Errorf("edge %d (%d-%d): %w", j, pair.A, pair.B, err)
		}
		g.Src = append(g.Src, pair.A)
		g.Dst = append(g.Dst, pair.B)
		g.EdgeFeatures = append(g.EdgeFeatures, feat)
	}

	return g, nil
}

// buildFaceFeatures samples one face into a flattened nu*nv x 7 feature grid.
func buildFaceFeatures(face solid.Face, nu, nv int) ([]float64, error) {
	points, err := face.SamplePoints(nu, nv)
	if err != nil {
		return nil, err
	}
	normals, err := face.SampleNormals(nu, nv)
	if err != nil {
		return nil, err
	}
	visibility, err := face.SampleVisibility(nu, nv)
	if err != nil {
		return nil, err
	}

	n := nu * nv
	if len(points) != n || len(normals) != n || len(visibility) != n {
		return nil, solid.Geometryf("face sampling returned %d/%d/%d samples, want %d",
			len(points), len(normals), len(visibility), n)
	}

	feat := make([]float64, 0, n*NodeFeatureWidth)
	for k := 0; k < n; k++ {
		feat = append(feat,
			points[k].X, points[k].Y, points[k].Z,
			normals[k].X, normals[k].Y, normals[k].Z,
			visibilityMask(visibility[k]))
	}
	return feat, nil
}

// visibilityMask maps the three-way classification onto the binary feature
// channel. Both on-surface outcomes (exposed and occluded) count as 1.
func visibilityMask(v solid.Visibility) float64 {
	if v == solid.VisibleOnSurface || v == solid.OccludedOnSurface {
		return 1
	}
	return 0
}

// buildEdgeFeatures samples one curve into a flattened nu x 6 feature run.
func buildEdgeFeatures(edge solid.Edge, nu int) ([]float64, error) {
	points, err := edge.SamplePoints(nu)
	if err != nil {
		return nil, err
	}
	tangents, err := edge.SampleTangents(nu)
	if err != nil {
		return nil, err
	}
	if len(points) != nu || len(tangents) != nu {
		return nil, solid.Geometryf("edge sampling returned %d/%d samples, want %d",
			len(points), len(tangents), nu)
	}

	feat := make([]float64, 0, nu*EdgeFeatureWidth)
	for k := 0; k < nu; k++ {
		feat = append(feat,
			points[k].X, points[k].Y, points[k].Z,
			tangents[k].X, tangents[k].Y, tangents[k].Z)
	}
	return feat, nil
}
