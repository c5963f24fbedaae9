package poly

import (
	"math"
	"slices"
	"sort"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// MakeVolume reconstructs the solids enclosed by the faces of args.
//
// Faces are gathered from every argument (shells and solids contribute
// their faces), vertices are welded within tolerance and duplicate faces
// are dropped. Each remaining face has two sides. Around every edge the
// incident faces are ordered by angle, and the two sides facing the same
// wedge between neighbouring faces are joined: the sides bounding one
// region of space end up in the same group. A face shared by two boxes is
// therefore a boundary of both, and boxes touching along an edge stay
// separate.
//
// A group enclosing positive volume is the outer boundary of a cell and
// becomes a solid with outward-facing faces. A group enclosing negative
// volume bounds a cavity and becomes a void of the smallest cell that
// contains it; groups outside every cell are the boundary of unbounded
// space and are dropped. Faces with the same region on both sides bound
// nothing and are left out.
//
// Faces are expected to meet only along shared edges; surfaces crossing
// through each other are not split. One solid is returned bare, several
// are returned as a compound in the order of their first argument face.
// The result shares no topology with args.
func (k *Kernel) MakeVolume(args []kernel.Shape, pr kernel.ProgressRange) (kernel.Shape, error) {
	if len(args) == 0 {
		return nil, errors.Wrap(ErrNoArguments, "make volume")
	}
	pr.Step(0)

	w := newWelder(k.cfg.Tolerance)
	var loops [][]int
	seen := make(map[string]bool)
	for _, a := range args {
		for _, f := range faceOccurrences(unwrap(a)) {
			idx := w.weldLoop(faceLoop(f))
			if len(idx) < 3 || polygonArea(w.loopPoints(idx)) <= k.cfg.MinArea {
				continue
			}
			key := loopKey(idx)
			if seen[key] {
				continue
			}
			seen[key] = true
			loops = append(loops, idx)
		}
	}
	if len(loops) == 0 {
		return nil, errors.Wrap(ErrNoVolume, "make volume: arguments contain no faces")
	}

	edges := make(map[edgeKey][]int)
	var order []edgeKey
	for fi, loop := range loops {
		forEachEdge(loop, func(a, b int) {
			key := newEdgeKey(a, b)
			fs, ok := edges[key]
			if !ok {
				order = append(order, key)
			}
			if !slices.Contains(fs, fi) {
				edges[key] = append(fs, fi)
			}
		})
	}

	normals := make([]v3.Vec, len(loops))
	for fi, loop := range loops {
		normals[fi] = vectorArea(w.loopPoints(loop)).Normalize()
	}

	// Half-face 2f is the side of face f its normal points to, 2f+1 the
	// opposite side.
	uf := newUnionFind(2 * len(loops))
	tangled := make(map[int]bool)
	for _, key := range order {
		fs := edges[key]
		if len(fs) > 2 && !k.cfg.NonManifold {
			for _, f := range fs {
				tangled[f] = true
			}
		}
		around := aroundEdge(key, fs, loops, normals, w)
		for i, cur := range around {
			next := around[(i+1)%len(around)]
			uf.union(cur.side(true), next.side(false))
		}
	}

	groups := make(map[int][]int)
	var roots []int
	for hf := 0; hf < 2*len(loops); hf++ {
		r := uf.find(hf)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], hf)
	}

	var cells, cavities []*cell
	for _, r := range roots {
		c := newCell(groups[r], loops, w)
		switch {
		case len(c.loops) == 0:
			continue
		case c.touches(tangled):
			k.log.Debug("make volume: non-manifold region skipped", "faces", len(c.loops))
			continue
		case math.Abs(c.volume) <= k.cfg.MinArea*k.cfg.Tolerance:
			k.log.Debug("make volume: flat region skipped", "faces", len(c.loops))
			continue
		case c.volume > 0:
			cells = append(cells, c)
		default:
			cavities = append(cavities, c)
		}
	}
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].first < cells[j].first })
	pr.Step(0.5)

	holes := make([][]*cell, len(cells))
	for _, h := range cavities {
		parent := -1
		probe := h.probe()
		for i, c := range cells {
			if c.shares(h) || !containsBox(c.bbox, h.bbox, k.cfg.Tolerance) || !insideLoops(probe, c.points) {
				continue
			}
			if parent < 0 || c.volume < cells[parent].volume {
				parent = i
			}
		}
		if parent >= 0 {
			holes[parent] = append(holes[parent], h)
		}
	}

	verts := make(map[int]*tshape)
	solids := make([]*tshape, 0, len(cells))
	for i, c := range cells {
		shells := []*tshape{c.shell(w, verts)}
		for _, h := range holes[i] {
			shells = append(shells, h.shell(w, verts))
		}
		solids = append(solids, newNode(kernel.KindSolid, shells...))
	}

	k.log.Debug("make volume",
		"arguments", len(args),
		"faces", len(loops),
		"regions", len(roots),
		"solids", len(solids),
	)
	if len(solids) == 0 {
		return nil, errors.Wrapf(ErrNoVolume, "make volume: %d faces bound no closed region", len(loops))
	}
	pr.Step(1)

	if len(solids) == 1 {
		return wrap(solids[0]), nil
	}
	return wrap(newNode(kernel.KindCompound, solids...)), nil
}

// incidence is one face around an edge.
type incidence struct {
	face    int
	forward bool    // the face traverses the edge from key.a to key.b
	angle   float64 // direction the face leaves the edge, around the edge axis
}

// side returns the half-face of the incidence facing the wedge that
// follows it in angular order (ahead) or precedes it.
func (in incidence) side(ahead bool) int {
	normalSide := in.forward == ahead
	if normalSide {
		return 2 * in.face
	}
	return 2*in.face + 1
}

// aroundEdge orders the faces of an edge counter-clockwise about the axis
// from key.a to key.b.
func aroundEdge(key edgeKey, faces []int, loops [][]int, normals []v3.Vec, w *welder) []incidence {
	d := w.points[key.b].Sub(w.points[key.a]).Normalize()
	out := make([]incidence, len(faces))
	var ref, perp v3.Vec
	for i, f := range faces {
		fwd := hasDirectedEdge(loops[f], key.a, key.b)
		t := d
		if !fwd {
			t = d.MulScalar(-1)
		}
		// Left of the traversal direction is the face interior.
		u := normals[f].Cross(t)
		if i == 0 {
			ref, perp = u, d.Cross(u)
		}
		a := math.Atan2(u.Dot(perp), u.Dot(ref))
		if a < 0 {
			a += 2 * math.Pi
		}
		out[i] = incidence{face: f, forward: fwd, angle: a}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].angle != out[j].angle {
			return out[i].angle < out[j].angle
		}
		return out[i].face < out[j].face
	})
	return out
}

// cell is the boundary of one region of space, oriented so its faces point
// away from the region.
type cell struct {
	faces  []int
	loops  [][]int
	points [][]v3.Vec
	volume float64
	bbox   sdf.Box3
	first  int // lowest face index, for argument order
}

// newCell builds the oriented boundary of a group of half-faces. Faces
// whose two sides are both in the group are skipped.
func newCell(halves []int, loops [][]int, w *welder) *cell {
	in := make(map[int]bool, len(halves))
	for _, hf := range halves {
		in[hf] = true
	}
	c := &cell{first: -1}
	for _, hf := range halves {
		f := hf / 2
		if in[2*f] && in[2*f+1] {
			continue
		}
		loop := loops[f]
		if hf%2 == 0 {
			// The region lies on the normal side: face away from it.
			loop = slices.Clone(loop)
			slices.Reverse(loop)
		}
		c.faces = append(c.faces, f)
		c.loops = append(c.loops, loop)
		c.points = append(c.points, w.loopPoints(loop))
		if c.first < 0 || f < c.first {
			c.first = f
		}
	}
	if len(c.loops) == 0 {
		return c
	}
	c.volume = signedVolume(c.points)
	c.bbox = sdf.Box3{Min: c.points[0][0], Max: c.points[0][0]}
	for _, loop := range c.points {
		for _, p := range loop {
			c.bbox = includePoint(c.bbox, p)
		}
	}
	return c
}

// touches reports whether any face of the cell is in set.
func (c *cell) touches(set map[int]bool) bool {
	for _, f := range c.faces {
		if set[f] {
			return true
		}
	}
	return false
}

// shares reports whether c and o have a face in common.
func (c *cell) shares(o *cell) bool {
	for _, f := range o.faces {
		if slices.Contains(c.faces, f) {
			return true
		}
	}
	return false
}

// probe returns a point on the cell's boundary, used to test containment
// in other cells.
func (c *cell) probe() v3.Vec {
	loop := c.points[0]
	return loop[0].Add(loop[1]).Add(loop[2]).DivScalar(3)
}

// shell builds fresh topology for the cell. Vertices are shared through
// verts across every shell built from the same welder.
func (c *cell) shell(w *welder, verts map[int]*tshape) *tshape {
	faces := make([]*tshape, len(c.loops))
	for i, loop := range c.loops {
		vs := make([]*tshape, len(loop))
		for j, idx := range loop {
			v, ok := verts[idx]
			if !ok {
				v = newVertex(w.points[idx])
				verts[idx] = v
			}
			vs[j] = v
		}
		faces[i] = faceFromVertices(vs)
	}
	return newNode(kernel.KindShell, faces...)
}

// edgeKey is an undirected edge between two welded vertices.
type edgeKey struct{ a, b int }

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func forEachEdge(loop []int, fn func(a, b int)) {
	for i := range loop {
		fn(loop[i], loop[(i+1)%len(loop)])
	}
}

func hasDirectedEdge(loop []int, a, b int) bool {
	found := false
	forEachEdge(loop, func(x, y int) {
		if x == a && y == b {
			found = true
		}
	})
	return found
}

// unionFind is a disjoint-set forest over dense indices.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
