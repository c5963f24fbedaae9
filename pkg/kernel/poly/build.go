package poly

import (
	"math"

	"github.com/chazu/brep/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// planarTolerance bounds the deviation of a face loop from its plane,
// relative to the loop's size.
const planarTolerance = 1e-6

// Vertex creates a free vertex at p.
func (k *Kernel) Vertex(p v3.Vec) kernel.Shape {
	return wrap(newVertex(p))
}

// Edge creates a straight edge from a to b.
func (k *Kernel) Edge(a, b v3.Vec) (kernel.Shape, error) {
	if a.Sub(b).Length() <= k.cfg.Tolerance {
		return nil, errors.Wrap(ErrDegenerate, "edge: endpoints coincide")
	}
	return wrap(newNode(kernel.KindEdge, newVertex(a), newVertex(b))), nil
}

// Polygon creates a planar face bounded by the closed loop through points.
// The face normal follows the right-hand rule over the point order.
func (k *Kernel) Polygon(points ...v3.Vec) (kernel.Shape, error) {
	if len(points) < 3 {
		return nil, errors.Wrapf(ErrDegenerate, "polygon: need 3 points, got %d", len(points))
	}
	if polygonArea(points) <= k.cfg.MinArea {
		return nil, errors.Wrap(ErrDegenerate, "polygon: zero area")
	}
	var size float64
	for _, p := range points[1:] {
		size = math.Max(size, p.Sub(points[0]).Length())
	}
	if maxPlaneDeviation(points) > planarTolerance*math.Max(1, size) {
		return nil, errors.Wrap(ErrDegenerate, "polygon: points are not coplanar")
	}
	verts := make([]*tshape, len(points))
	for i, p := range points {
		verts[i] = newVertex(p)
	}
	return wrap(faceFromVertices(verts)), nil
}

// Rectangle creates a w by h face in the XY plane with its min corner at
// the origin and its normal along +Z.
func (k *Kernel) Rectangle(w, h float64) (kernel.Shape, error) {
	return k.Polygon(
		v3.Vec{X: 0, Y: 0, Z: 0},
		v3.Vec{X: w, Y: 0, Z: 0},
		v3.Vec{X: w, Y: h, Z: 0},
		v3.Vec{X: 0, Y: h, Z: 0},
	)
}

// Disk creates a flat regular polygon approximating a circle of the given
// radius in the XY plane, centered on the origin, normal along +Z.
func (k *Kernel) Disk(radius float64, segments int) (kernel.Shape, error) {
	if segments < 3 {
		segments = 3
	}
	points := make([]v3.Vec, segments)
	for i := range points {
		a := 2 * math.Pi * float64(i) / float64(segments)
		points[i] = v3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return k.Polygon(points...)
}

// MakeShell groups faces into a shell. Faces are referenced, not copied.
func (k *Kernel) MakeShell(faces ...kernel.Shape) (kernel.Shape, error) {
	children := make([]*tshape, len(faces))
	for i, f := range faces {
		t := unwrap(f)
		if t.kind != kernel.KindFace {
			return nil, errors.Wrapf(ErrKind, "shell: child %d is a %s", i, t.kind)
		}
		children[i] = t
	}
	return wrap(newNode(kernel.KindShell, children...)), nil
}

// MakeSolid creates a solid from an outer shell followed by optional void
// shells. Shells are referenced, not copied.
func (k *Kernel) MakeSolid(shells ...kernel.Shape) (kernel.Shape, error) {
	if len(shells) == 0 {
		return nil, errors.Wrap(ErrNoArguments, "solid: no shells")
	}
	children := make([]*tshape, len(shells))
	for i, s := range shells {
		t := unwrap(s)
		if t.kind != kernel.KindShell {
			return nil, errors.Wrapf(ErrKind, "solid: child %d is a %s", i, t.kind)
		}
		children[i] = t
	}
	return wrap(newNode(kernel.KindSolid, children...)), nil
}

// Box creates the closed, outward-oriented shell of an x by y by z box.
// The box has its minimum corner at the origin (0,0,0) so that placement
// translations work intuitively.
func (k *Kernel) Box(x, y, z float64) kernel.Shape {
	if x <= 0 || y <= 0 || z <= 0 {
		panic(errors.Wrapf(ErrDegenerate, "box: dimensions %gx%gx%g", x, y, z))
	}
	var p [2][2][2]*tshape
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for l := 0; l < 2; l++ {
				p[i][j][l] = newVertex(v3.Vec{X: float64(i) * x, Y: float64(j) * y, Z: float64(l) * z})
			}
		}
	}
	// Loops are counter-clockwise seen from outside.
	loops := [][]*tshape{
		{p[0][0][0], p[0][1][0], p[1][1][0], p[1][0][0]}, // bottom, -Z
		{p[0][0][1], p[1][0][1], p[1][1][1], p[0][1][1]}, // top, +Z
		{p[0][0][0], p[1][0][0], p[1][0][1], p[0][0][1]}, // front, -Y
		{p[0][1][0], p[0][1][1], p[1][1][1], p[1][1][0]}, // back, +Y
		{p[0][0][0], p[0][0][1], p[0][1][1], p[0][1][0]}, // left, -X
		{p[1][0][0], p[1][1][0], p[1][1][1], p[1][0][1]}, // right, +X
	}
	faces := make([]*tshape, len(loops))
	for i, loop := range loops {
		faces[i] = faceFromVertices(loop)
	}
	return wrap(newNode(kernel.KindShell, faces...))
}

// ReverseFace returns a new face with the opposite orientation. Vertices
// are shared with the original.
func (k *Kernel) ReverseFace(f kernel.Shape) (kernel.Shape, error) {
	t := unwrap(f)
	if t.kind != kernel.KindFace {
		return nil, errors.Wrapf(ErrKind, "reverse: got a %s", t.kind)
	}
	verts := faceVertices(t)
	rev := make([]*tshape, len(verts))
	for i, v := range verts {
		rev[len(verts)-1-i] = v
	}
	return wrap(faceFromVertices(rev)), nil
}

// FaceLoop returns the boundary points of a face in orientation order.
func (k *Kernel) FaceLoop(f kernel.Shape) ([]v3.Vec, error) {
	t := unwrap(f)
	if t.kind != kernel.KindFace {
		return nil, errors.Wrapf(ErrKind, "face loop: got a %s", t.kind)
	}
	return faceLoop(t), nil
}

// faceFromVertices builds edges, a wire and a face over a vertex loop.
// Edges are owned by the face; only vertices may be shared between faces.
func faceFromVertices(verts []*tshape) *tshape {
	edges := make([]*tshape, len(verts))
	for i := range verts {
		edges[i] = newNode(kernel.KindEdge, verts[i], verts[(i+1)%len(verts)])
	}
	return newNode(kernel.KindFace, newNode(kernel.KindWire, edges...))
}

// faceVertices returns the start vertex of every wire edge of a face.
func faceVertices(f *tshape) []*tshape {
	if len(f.children) == 0 {
		return nil
	}
	wire := f.children[0]
	out := make([]*tshape, len(wire.children))
	for i, e := range wire.children {
		out[i] = e.children[0]
	}
	return out
}
