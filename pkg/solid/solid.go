// Package solid defines the abstract boundary-representation adapter
// interface. Implementations (sdfxsolid in-tree, an OpenCASCADE bridge
// externally) expose faces, edges and face adjacency of loaded solids
// behind this interface. The adapter abstraction allows swapping CAD
// kernels without changing the conversion pipeline.
package solid

// Visibility classifies one parametric sample of a trimmed face.
type Visibility int

const (
	// VisibleOnSurface means the sample lies on the trimmed, exposed face region.
	VisibleOnSurface Visibility = 0
	// OutsideTrim means the sample lies outside the face's trim region.
	OutsideTrim Visibility = 1
	// OccludedOnSurface means the sample lies on the underlying surface but
	// is buried inside the solid (covered by material after a union).
	OccludedOnSurface Visibility = 2
)

func (v Visibility) String() string {
	switch v {
	case VisibleOnSurface:
		return "visible"
	case OutsideTrim:
		return "outside-trim"
	case OccludedOnSurface:
		return "occluded"
	default:
		return "unknown"
	}
}

// Vec3 is a 3D point or direction.
type Vec3 struct {
	X, Y, Z float64
}

// Face is one bounded surface of a solid. Sampling is over a uniform
// nu x nv parametric grid; results are row-major with v varying fastest.
type Face interface {
	// SamplePoints returns the 3D position at each grid sample.
	SamplePoints(nu, nv int) ([]Vec3, error)
	// SampleNormals returns the outward surface normal at each grid sample.
	SampleNormals(nu, nv int) ([]Vec3, error)
	// SampleVisibility classifies each grid sample against the trim region.
	SampleVisibility(nu, nv int) ([]Visibility, error)
}

// Edge is one bounding curve of a solid. An edge may lack curve geometry
// (e.g. a parametric seam); such edges cannot be sampled.
type Edge interface {
	// HasCurve reports whether the edge carries defined curve geometry.
	HasCurve() bool
	// SamplePoints returns nu positions at uniform curve parameters.
	SamplePoints(nu int) ([]Vec3, error)
	// SampleTangents returns nu unit tangents at uniform curve parameters.
	SampleTangents(nu int) ([]Vec3, error)
}

// FacePair is one adjacency relation: faces A and B share Edge.
// Indices refer to the solid's face enumeration order.
type FacePair struct {
	A, B int
	Edge Edge
}

// Solid is a loaded boundary-representation solid. It exists only for the
// duration of one conversion call and is never mutated.
type Solid interface {
	// Faces returns the solid's faces in enumeration order.
	Faces() []Face
	// FaceAdjacency returns one FacePair per pair of faces sharing a
	// bounding edge, in deterministic encounter order: for each face in
	// enumeration order, its incident shared edges in local order, each
	// unordered pair reported once.
	FaceAdjacency() []FacePair
}

// Loader loads solids from a file. A file may contain several solids;
// the conversion pipeline uses the first.
type Loader interface {
	LoadSolids(path string) ([]Solid, error)
}
