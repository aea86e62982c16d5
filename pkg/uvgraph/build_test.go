package uvgraph_test

import (
	"errors"
	"testing"

	"github.com/brepmaster/uvgraph/pkg/solid"
	"github.com/brepmaster/uvgraph/pkg/uvgraph"
)

// gridFace is a synthetic face sampling a unit-spaced grid from an origin.
type gridFace struct {
	origin solid.Vec3
	vis    []solid.Visibility // cycled per sample; empty means all visible
	fail   bool
}

func (f *gridFace) SamplePoints(nu, nv int) ([]solid.Vec3, error) {
	if f.fail {
		return nil, solid.Geometryf("synthetic point failure")
	}
	out := make([]solid.Vec3, 0, nu*nv)
	for i := 0; i < nu; i++ {
		for j := 0; j < nv; j++ {
			out = append(out, solid.Vec3{
				X: f.origin.X + float64(i),
				Y: f.origin.Y + float64(j),
				Z: f.origin.Z,
			})
		}
	}
	return out, nil
}

func (f *gridFace) SampleNormals(nu, nv int) ([]solid.Vec3, error) {
	out := make([]solid.Vec3, nu*nv)
	for i := range out {
		out[i] = solid.Vec3{Z: 1}
	}
	return out, nil
}

func (f *gridFace) SampleVisibility(nu, nv int) ([]solid.Visibility, error) {
	out := make([]solid.Visibility, nu*nv)
	for i := range out {
		if len(f.vis) > 0 {
			out[i] = f.vis[i%len(f.vis)]
		}
	}
	return out, nil
}

// lineEdge is a synthetic straight edge.
type lineEdge struct {
	p0, p1  solid.Vec3
	noCurve bool
	fail    bool
}

func (e *lineEdge) HasCurve() bool { return !e.noCurve }

func (e *lineEdge) SamplePoints(nu int) ([]solid.Vec3, error) {
	if e.fail {
		return nil, solid.Geometryf("synthetic edge failure")
	}
	out := make([]solid.Vec3, nu)
	for i := range out {
		t := float64(i) / float64(nu-1)
		out[i] = solid.Vec3{
			X: e.p0.X + t*(e.p1.X-e.p0.X),
			Y: e.p0.Y + t*(e.p1.Y-e.p0.Y),
			Z: e.p0.Z + t*(e.p1.Z-e.p0.Z),
		}
	}
	return out, nil
}

func (e *lineEdge) SampleTangents(nu int) ([]solid.Vec3, error) {
	out := make([]solid.Vec3, nu)
	for i := range out {
		out[i] = solid.Vec3{X: 1}
	}
	return out, nil
}

// fakeSolid bundles synthetic faces and adjacency.
type fakeSolid struct {
	faces []solid.Face
	pairs []solid.FacePair
}

func (s *fakeSolid) Faces() []solid.Face             { return s.faces }
func (s *fakeSolid) FaceAdjacency() []solid.FacePair { return s.pairs }

func twoFaceSolid() *fakeSolid {
	f0 := &gridFace{}
	f1 := &gridFace{origin: solid.Vec3{Z: 5}}
	return &fakeSolid{
		faces: []solid.Face{f0, f1},
		pairs: []solid.FacePair{
			{A: 0, B: 1, Edge: &lineEdge{p1: solid.Vec3{X: 3}}},
		},
	}
}

func TestBuildShapes(t *testing.T) {
	opts := uvgraph.SampleOpts{CurveU: 5, SurfU: 4, SurfV: 3}
	g, err := uvgraph.Build(twoFaceSolid(), opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if g.NumNodes() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NumNodes())
	}
	wantNode := 4 * 3 * uvgraph.NodeFeatureWidth
	for i, f := range g.NodeFeatures {
		if len(f) != wantNode {
			t.Errorf("node %d: feature length %d, want %d", i, len(f), wantNode)
		}
	}

	if g.NumEdges() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.NumEdges())
	}
	wantEdge := 5 * uvgraph.EdgeFeatureWidth
	if len(g.EdgeFeatures[0]) != wantEdge {
		t.Errorf("edge feature length %d, want %d", len(g.EdgeFeatures[0]), wantEdge)
	}
	if g.Src[0] != 0 || g.Dst[0] != 1 {
		t.Errorf("edge endpoints (%d, %d), want (0, 1)", g.Src[0], g.Dst[0])
	}
}

func TestBuildVisibilityMask(t *testing.T) {
	// The classifier's on-surface and occluded outcomes both map to 1;
	// only outside-trim maps to 0.
	face := &gridFace{vis: []solid.Visibility{
		solid.VisibleOnSurface,
		solid.OutsideTrim,
		solid.OccludedOnSurface,
	}}
	s := &fakeSolid{faces: []solid.Face{face}}

	g, err := uvgraph.Build(s, uvgraph.SampleOpts{CurveU: 2, SurfU: 3, SurfV: 2})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	feat := g.NodeFeatures[0]
	want := []float64{1, 0, 1, 1, 0, 1}
	for k, wantMask := range want {
		got := feat[k*uvgraph.NodeFeatureWidth+6]
		if got != wantMask {
			t.Errorf("sample %d: mask = %v, want %v", k, got, wantMask)
		}
	}
}

func TestBuildSkipsCurvelessEdges(t *testing.T) {
	f0 := &gridFace{}
	f1 := &gridFace{origin: solid.Vec3{Z: 2}}
	f2 := &gridFace{origin: solid.Vec3{Z: 4}}
	s := &fakeSolid{
		faces: []solid.Face{f0, f1, f2},
		pairs: []solid.FacePair{
			{A: 0, B: 1, Edge: &lineEdge{noCurve: true}},
			{A: 1, B: 2, Edge: &lineEdge{p1: solid.Vec3{X: 1}}},
			{A: 0, B: 2, Edge: &lineEdge{noCurve: true}},
		},
	}

	g, err := uvgraph.Build(s, uvgraph.DefaultSampleOpts())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if g.NumEdges() != 1 {
		t.Fatalf("expected 1 retained edge, got %d", g.NumEdges())
	}
	if len(g.EdgeFeatures) != g.NumEdges() {
		t.Errorf("edge features %d != edges %d", len(g.EdgeFeatures), g.NumEdges())
	}
	if g.Src[0] != 1 || g.Dst[0] != 2 {
		t.Errorf("retained edge (%d, %d), want (1, 2)", g.Src[0], g.Dst[0])
	}
}

func TestBuildEdgeOrderIsEncounterOrder(t *testing.T) {
	faces := []solid.Face{&gridFace{}, &gridFace{}, &gridFace{}}
	// Deliberately not sorted by endpoint.
	pairs := []solid.FacePair{
		{A: 1, B: 2, Edge: &lineEdge{p1: solid.Vec3{X: 1}}},
		{A: 0, B: 2, Edge: &lineEdge{p1: solid.Vec3{X: 1}}},
		{A: 0, B: 1, Edge: &lineEdge{p1: solid.Vec3{X: 1}}},
	}
	g, err := uvgraph.Build(&fakeSolid{faces: faces, pairs: pairs}, uvgraph.DefaultSampleOpts())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	wantSrc := []int{1, 0, 0}
	wantDst := []int{2, 2, 1}
	for j := range wantSrc {
		if g.Src[j] != wantSrc[j] || g.Dst[j] != wantDst[j] {
			t.Errorf("edge %d: (%d, %d), want (%d, %d)", j, g.Src[j], g.Dst[j], wantSrc[j], wantDst[j])
		}
	}
}

func TestBuildZeroFaces(t *testing.T) {
	_, err := uvgraph.Build(&fakeSolid{}, uvgraph.DefaultSampleOpts())
	var gerr *solid.GeometryError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GeometryError for zero faces, got %v", err)
	}
}

func TestBuildIsAllOrNothing(t *testing.T) {
	s := &fakeSolid{
		faces: []solid.Face{&gridFace{}, &gridFace{fail: true}},
	}
	g, err := uvgraph.Build(s, uvgraph.DefaultSampleOpts())
	if err == nil {
		t.Fatal("expected error from failing face")
	}
	if g != nil {
		t.Fatalf("expected no partial graph, got %d nodes", g.NumNodes())
	}

	s2 := twoFaceSolid()
	s2.pairs[0].Edge.(*lineEdge).fail = true
	g, err = uvgraph.Build(s2, uvgraph.DefaultSampleOpts())
	if err == nil {
		t.Fatal("expected error from failing edge")
	}
	if g != nil {
		t.Fatal("expected no partial graph on edge failure")
	}
}

func TestBuildRejectsBadSampleOpts(t *testing.T) {
	_, err := uvgraph.Build(twoFaceSolid(), uvgraph.SampleOpts{CurveU: 1, SurfU: 10, SurfV: 10})
	if err == nil {
		t.Fatal("expected error for curve_u below minimum")
	}
}
