// Package sdfxsolid implements the solid.Loader interface using the
// github.com/deadsy/sdfx SDF-based CAD library. It models assemblies of
// primitive solids (boxes and z-axis cylinders, optionally drilled) with
// analytic boundary faces, and classifies per-sample visibility by
// evaluating the assembly's signed distance field.
//
// A production deployment bridges to a full B-rep kernel for native file
// parsing; this backend reads a compact JSON solid description instead,
// which keeps the conversion pipeline usable and testable without one.
package sdfxsolid

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/brepmaster/uvgraph/pkg/solid"
)

// Compile-time interface checks.
var (
	_ solid.Loader = (*Loader)(nil)
	_ solid.Solid  = (*brepSolid)(nil)
	_ solid.Face   = (*planarFace)(nil)
	_ solid.Face   = (*wallFace)(nil)
	_ solid.Face   = (*capFace)(nil)
	_ solid.Edge   = (*segmentEdge)(nil)
	_ solid.Edge   = (*circleEdge)(nil)
	_ solid.Edge   = (*seamEdge)(nil)
)

// surfTol is the signed-distance band classified as "on surface".
// Analytic face points evaluate exactly against sdfx primitives, so a
// tight constant tolerance is sufficient.
const surfTol = 1e-6

// Primitive describes one primitive in a solid description.
type Primitive struct {
	Kind      string     `json:"kind"` // "box" or "cylinder"
	Size      [3]float64 `json:"size,omitempty"`
	Radius    float64    `json:"radius,omitempty"`
	Height    float64    `json:"height,omitempty"`
	Translate [3]float64 `json:"translate,omitempty"`
	// Subtract drills the primitive out of the assembly instead of adding
	// it. Subtracted primitives contribute no boundary faces of their own.
	Subtract bool `json:"subtract,omitempty"`
}

// SolidDesc describes one solid as an assembly of primitives.
type SolidDesc struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Description is the top-level solid description file format.
type Description struct {
	Solids []SolidDesc `json:"solids"`
}

// Loader loads solid description files.
type Loader struct{}

// New returns a new Loader.
func New() *Loader {
	return &Loader{}
}

// LoadSolids reads a solid description file and builds its solids.
func (l *Loader) LoadSolids(path string) ([]solid.Solid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", solid.ErrNotFound, path)
		}
		return nil, fmt.Errorf("sdfxsolid: read %s: %w", path, err)
	}

	var desc Description
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("sdfxsolid: parse %s: %w", path, err)
	}
	if len(desc.Solids) == 0 {
		return nil, fmt.Errorf("sdfxsolid: %s describes no solids", path)
	}

	solids := make([]solid.Solid, 0, len(desc.Solids))
	for i, sd := range desc.Solids {
		s, err := Build(sd)
		if err != nil {
			return nil, fmt.Errorf("sdfxsolid: %s solid %d: %w", path, i, err)
		}
		solids = append(solids, s)
	}
	return solids, nil
}

// Build constructs a boundary-representation solid from a description.
func Build(desc SolidDesc) (solid.Solid, error) {
	if len(desc.Primitives) == 0 {
		return nil, fmt.Errorf("solid %q has no primitives", desc.Name)
	}

	bs := &brepSolid{name: desc.Name}

	var added, drilled sdf.SDF3
	for i, p := range desc.Primitives {
		s3, err := primitiveSDF(p)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		if p.Subtract {
			if drilled == nil {
				drilled = s3
			} else {
				drilled = sdf.Union3D(drilled, s3)
			}
			continue
		}
		if added == nil {
			added = s3
		} else {
			added = sdf.Union3D(added, s3)
		}
		// Boundary topology comes from added primitives only.
		switch p.Kind {
		case "box":
			bs.addBox(p)
		case "cylinder":
			bs.addCylinder(p)
		}
	}
	if added == nil {
		return nil, fmt.Errorf("solid %q has only subtracted primitives", desc.Name)
	}
	if drilled != nil {
		bs.field = sdf.Difference3D(added, drilled)
	} else {
		bs.field = added
	}
	return bs, nil
}

// primitiveSDF builds the signed distance field of one primitive.
// Boxes are anchored at a min-corner origin; cylinders are centered on
// their translated origin with the axis along Z.
func primitiveSDF(p Primitive) (sdf.SDF3, error) {
	var s sdf.SDF3
	switch p.Kind {
	case "box":
		if p.Size[0] <= 0 || p.Size[1] <= 0 || p.Size[2] <= 0 {
			return nil, fmt.Errorf("box size must be positive, got %v", p.Size)
		}
		b, err := sdf.Box3D(v3.Vec{X: p.Size[0], Y: p.Size[1], Z: p.Size[2]}, 0)
		if err != nil {
			return nil, fmt.Errorf("sdf.Box3D: %w", err)
		}
		// Shift from center-origin to min-corner-origin.
		m := sdf.Translate3d(v3.Vec{X: p.Size[0] / 2, Y: p.Size[1] / 2, Z: p.Size[2] / 2})
		s = sdf.Transform3D(b, m)
	case "cylinder":
		if p.Radius <= 0 || p.Height <= 0 {
			return nil, fmt.Errorf("cylinder radius/height must be positive, got r=%g h=%g", p.Radius, p.Height)
		}
		c, err := sdf.Cylinder3D(p.Height, p.Radius, 0)
		if err != nil {
			return nil, fmt.Errorf("sdf.Cylinder3D: %w", err)
		}
		s = c
	default:
		return nil, fmt.Errorf("unknown primitive kind %q", p.Kind)
	}
	if p.Translate != [3]float64{} {
		m := sdf.Translate3d(v3.Vec{X: p.Translate[0], Y: p.Translate[1], Z: p.Translate[2]})
		s = sdf.Transform3D(s, m)
	}
	return s, nil
}

// brepSolid is an assembly with analytic boundary faces and an SDF used
// for visibility classification.
type brepSolid struct {
	name      string
	field     sdf.SDF3
	faces     []solid.Face
	adjacency []solid.FacePair
}

func (s *brepSolid) Faces() []solid.Face             { return s.faces }
func (s *brepSolid) FaceAdjacency() []solid.FacePair { return s.adjacency }

// classify maps a surface sample to its visibility status using the
// assembly SDF. Points on the underlying surface sit inside the band;
// drilled-away points fall outside the solid; points buried by a union
// sit strictly inside.
func (s *brepSolid) classify(p solid.Vec3) solid.Visibility {
	d := s.field.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
	switch {
	case d > surfTol:
		return solid.OutsideTrim
	case d < -surfTol:
		return solid.OccludedOnSurface
	default:
		return solid.VisibleOnSurface
	}
}

// addBox appends the six faces and twelve edges of an axis-aligned box.
func (s *brepSolid) addBox(p Primitive) {
	min := solid.Vec3{X: p.Translate[0], Y: p.Translate[1], Z: p.Translate[2]}
	size := solid.Vec3{X: p.Size[0], Y: p.Size[1], Z: p.Size[2]}

	// corner returns the box corner selected by axis bits (bit0=x, bit1=y, bit2=z).
	corner := func(bits int) solid.Vec3 {
		c := min
		if bits&1 != 0 {
			c.X += size.X
		}
		if bits&2 != 0 {
			c.Y += size.Y
		}
		if bits&4 != 0 {
			c.Z += size.Z
		}
		return c
	}

	// Face order: -X +X -Y +Y -Z +Z. Face index for (axis, positive side)
	// is 2*axis + side.
	base := len(s.faces)
	for axis := 0; axis < 3; axis++ {
		for side := 0; side < 2; side++ {
			s.faces = append(s.faces, newBoxFace(min, size, axis, side == 1, s))
		}
	}

	// Edges run along one axis and are fixed on the other two. Each edge is
	// shared by the two faces fixed on the non-running axes.
	for axis := 0; axis < 3; axis++ {
		o1 := (axis + 1) % 3
		o2 := (axis + 2) % 3
		for b1 := 0; b1 < 2; b1++ {
			for b2 := 0; b2 < 2; b2++ {
				bits := b1<<uint(o1) | b2<<uint(o2)
				p0 := corner(bits)
				p1 := corner(bits | 1<<uint(axis))
				e := &segmentEdge{p0: p0, p1: p1}
				fa := base + 2*o1 + b1
				fb := base + 2*o2 + b2
				if fa > fb {
					fa, fb = fb, fa
				}
				s.adjacency = append(s.adjacency, solid.FacePair{A: fa, B: fb, Edge: e})
			}
		}
	}
}

// addCylinder appends the wall and two cap faces of a z-axis cylinder,
// the two circular rim edges, and the wall's curveless seam edge.
func (s *brepSolid) addCylinder(p Primitive) {
	center := solid.Vec3{X: p.Translate[0], Y: p.Translate[1], Z: p.Translate[2]}
	z0 := center.Z - p.Height/2
	z1 := center.Z + p.Height/2

	base := len(s.faces)
	wall := &wallFace{cx: center.X, cy: center.Y, r: p.Radius, z0: z0, z1: z1, owner: s}
	bottom := &capFace{cx: center.X, cy: center.Y, r: p.Radius, z: z0, up: false, owner: s}
	top := &capFace{cx: center.X, cy: center.Y, r: p.Radius, z: z1, up: true, owner: s}
	s.faces = append(s.faces, wall, bottom, top)

	bottomRim := &circleEdge{cx: center.X, cy: center.Y, r: p.Radius, z: z0}
	topRim := &circleEdge{cx: center.X, cy: center.Y, r: p.Radius, z: z1}
	s.adjacency = append(s.adjacency,
		solid.FacePair{A: base, B: base + 1, Edge: bottomRim},
		solid.FacePair{A: base, B: base + 2, Edge: topRim},
		// The wall's parametric seam closes the surface onto itself and
		// carries no lifted 3D curve in this kernel.
		solid.FacePair{A: base, B: base, Edge: &seamEdge{}},
	)
}

// gridParams returns nu uniform parameters over [0,1] including endpoints.
func gridParams(n int) ([]float64, error) {
	if n < 2 {
		return nil, solid.Geometryf("grid resolution %d is below minimum 2", n)
	}
	ps := make([]float64, n)
	for i := range ps {
		ps[i] = float64(i) / float64(n-1)
	}
	return ps, nil
}

// planarFace is a rectangular planar face of a box.
type planarFace struct {
	origin solid.Vec3 // corner at (u,v) = (0,0)
	du, dv solid.Vec3 // edge vectors spanning the rectangle
	normal solid.Vec3
	owner  *brepSolid
}

// newBoxFace builds the planar face of a box on the given axis and side.
// Face parameterization spans the other two axes in order.
func newBoxFace(min, size solid.Vec3, axis int, positive bool, owner *brepSolid) *planarFace {
	sz := [3]float64{size.X, size.Y, size.Z}
	mn := [3]float64{min.X, min.Y, min.Z}

	o1 := (axis + 1) % 3
	o2 := (axis + 2) % 3

	var origin, du, dv, n [3]float64
	origin = mn
	if positive {
		origin[axis] += sz[axis]
		n[axis] = 1
	} else {
		n[axis] = -1
	}
	du[o1] = sz[o1]
	dv[o2] = sz[o2]

	toVec := func(a [3]float64) solid.Vec3 { return solid.Vec3{X: a[0], Y: a[1], Z: a[2]} }
	return &planarFace{
		origin: toVec(origin),
		du:     toVec(du),
		dv:     toVec(dv),
		normal: toVec(n),
		owner:  owner,
	}
}

func (f *planarFace) point(u, v float64) solid.Vec3 {
	return solid.Vec3{
		X: f.origin.X + u*f.du.X + v*f.dv.X,
		Y: f.origin.Y + u*f.du.Y + v*f.dv.Y,
		Z: f.origin.Z + u*f.du.Z + v*f.dv.Z,
	}
}

func (f *planarFace) SamplePoints(nu, nv int) ([]solid.Vec3, error) {
	return sampleSurface(nu, nv, f.point)
}

func (f *planarFace) SampleNormals(nu, nv int) ([]solid.Vec3, error) {
	return sampleSurface(nu, nv, func(u, v float64) solid.Vec3 { return f.normal })
}

func (f *planarFace) SampleVisibility(nu, nv int) ([]solid.Visibility, error) {
	return sampleVisibility(nu, nv, f.point, f.owner)
}

// wallFace is the lateral surface of a z-axis cylinder. u is the angular
// parameter, v runs along the axis.
type wallFace struct {
	cx, cy, r float64
	z0, z1    float64
	owner     *brepSolid
}

func (f *wallFace) point(u, v float64) solid.Vec3 {
	a := 2 * math.Pi * u
	return solid.Vec3{
		X: f.cx + f.r*math.Cos(a),
		Y: f.cy + f.r*math.Sin(a),
		Z: f.z0 + v*(f.z1-f.z0),
	}
}

func (f *wallFace) SamplePoints(nu, nv int) ([]solid.Vec3, error) {
	return sampleSurface(nu, nv, f.point)
}

func (f *wallFace) SampleNormals(nu, nv int) ([]solid.Vec3, error) {
	return sampleSurface(nu, nv, func(u, v float64) solid.Vec3 {
		a := 2 * math.Pi * u
		return solid.Vec3{X: math.Cos(a), Y: math.Sin(a)}
	})
}

func (f *wallFace) SampleVisibility(nu, nv int) ([]solid.Visibility, error) {
	return sampleVisibility(nu, nv, f.point, f.owner)
}

// capFace is a circular end cap of a cylinder. u is the angular parameter,
// v runs radially from the center to the rim.
type capFace struct {
	cx, cy, r float64
	z         float64
	up        bool
	owner     *brepSolid
}

func (f *capFace) point(u, v float64) solid.Vec3 {
	a := 2 * math.Pi * u
	return solid.Vec3{
		X: f.cx + v*f.r*math.Cos(a),
		Y: f.cy + v*f.r*math.Sin(a),
		Z: f.z,
	}
}

func (f *capFace) SamplePoints(nu, nv int) ([]solid.Vec3, error) {
	return sampleSurface(nu, nv, f.point)
}

func (f *capFace) SampleNormals(nu, nv int) ([]solid.Vec3, error) {
	n := solid.Vec3{Z: -1}
	if f.up {
		n = solid.Vec3{Z: 1}
	}
	return sampleSurface(nu, nv, func(u, v float64) solid.Vec3 { return n })
}

func (f *capFace) SampleVisibility(nu, nv int) ([]solid.Visibility, error) {
	return sampleVisibility(nu, nv, f.point, f.owner)
}

// sampleSurface evaluates fn over the uniform nu x nv grid, row-major with
// v varying fastest.
func sampleSurface(nu, nv int, fn func(u, v float64) solid.Vec3) ([]solid.Vec3, error) {
	us, err := gridParams(nu)
	if err != nil {
		return nil, err
	}
	vs, err := gridParams(nv)
	if err != nil {
		return nil, err
	}
	out := make([]solid.Vec3, 0, nu*nv)
	for _, u := range us {
		for _, v := range vs {
			out = append(out, fn(u, v))
		}
	}
	return out, nil
}

func sampleVisibility(nu, nv int, fn func(u, v float64) solid.Vec3, owner *brepSolid) ([]solid.Visibility, error) {
	pts, err := sampleSurface(nu, nv, fn)
	if err != nil {
		return nil, err
	}
	out := make([]solid.Visibility, len(pts))
	for i, p := range pts {
		out[i] = owner.classify(p)
	}
	return out, nil
}

// segmentEdge is a straight bounding edge between two corners.
type segmentEdge struct {
	p0, p1 solid.Vec3
}

func (e *segmentEdge) HasCurve() bool { return true }

func (e *segmentEdge) SamplePoints(nu int) ([]solid.Vec3, error) {
	ts, err := gridParams(nu)
	if err != nil {
		return nil, err
	}
	out := make([]solid.Vec3, nu)
	for i, t := range ts {
		out[i] = solid.Vec3{
			X: e.p0.X + t*(e.p1.X-e.p0.X),
			Y: e.p0.Y + t*(e.p1.Y-e.p0.Y),
			Z: e.p0.Z + t*(e.p1.Z-e.p0.Z),
		}
	}
	return out, nil
}

func (e *segmentEdge) SampleTangents(nu int) ([]solid.Vec3, error) {
	if _, err := gridParams(nu); err != nil {
		return nil, err
	}
	dx := e.p1.X - e.p0.X
	dy := e.p1.Y - e.p0.Y
	dz := e.p1.Z - e.p0.Z
	l := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if l == 0 {
		return nil, solid.Geometryf("degenerate edge with zero length")
	}
	t := solid.Vec3{X: dx / l, Y: dy / l, Z: dz / l}
	out := make([]solid.Vec3, nu)
	for i := range out {
		out[i] = t
	}
	return out, nil
}

// circleEdge is a circular rim edge in a z = const plane.
type circleEdge struct {
	cx, cy, r float64
	z         float64
}

func (e *circleEdge) HasCurve() bool { return true }

func (e *circleEdge) SamplePoints(nu int) ([]solid.Vec3, error) {
	ts, err := gridParams(nu)
	if err != nil {
		return nil, err
	}
	out := make([]solid.Vec3, nu)
	for i, t := range ts {
		a := 2 * math.Pi * t
		out[i] = solid.Vec3{X: e.cx + e.r*math.Cos(a), Y: e.cy + e.r*math.Sin(a), Z: e.z}
	}
	return out, nil
}

func (e *circleEdge) SampleTangents(nu int) ([]solid.Vec3, error) {
	ts, err := gridParams(nu)
	if err != nil {
		return nil, err
	}
	out := make([]solid.Vec3, nu)
	for i, t := range ts {
		a := 2 * math.Pi * t
		out[i] = solid.Vec3{X: -math.Sin(a), Y: math.Cos(a)}
	}
	return out, nil
}

// seamEdge closes a periodic surface onto itself and has no lifted curve.
type seamEdge struct{}

func (e *seamEdge) HasCurve() bool { return false }

func (e *seamEdge) SamplePoints(nu int) ([]solid.Vec3, error) {
	return nil, solid.Geometryf("seam edge has no curve geometry")
}

func (e *seamEdge) SampleTangents(nu int) ([]solid.Vec3, error) {
	return nil, solid.Geometryf("seam edge has no curve geometry")
}
