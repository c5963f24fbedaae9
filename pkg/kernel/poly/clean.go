package poly

import (
	"slices"
	"strconv"
	"strings"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Clean returns a cleaned copy of s: coincident vertices are welded, and
// zero-length edges, zero-area faces, duplicate faces and elements left
// empty are dropped. A compound reduced to a single child is replaced by
// that child, so the result kind may differ from the input kind. A shape
// with nothing left becomes an empty compound.
func (k *Kernel) Clean(s kernel.Shape) (kernel.Shape, error) {
	if s == nil {
		return nil, errors.Wrap(ErrNoArguments, "clean: nil shape")
	}
	c := &cleaner{
		k:     k,
		w:     newWelder(k.cfg.Tolerance),
		verts: make(map[int]*tshape),
		memo:  make(map[*tshape]*tshape),
		keys:  make(map[*tshape]string),
	}
	t := unwrap(s)
	out := c.clean(t)
	k.log.Debug("clean",
		"kind", t.kind,
		"vertices", len(c.w.points),
		"dropped", c.dropped,
	)
	if out == nil {
		return wrap(newNode(kernel.KindCompound)), nil
	}
	return wrap(out), nil
}

// cleaner carries the state of one Clean call.
type cleaner struct {
	k       *Kernel
	w       *welder
	verts   map[int]*tshape     // welded index -> result vertex
	memo    map[*tshape]*tshape // input node -> result node (nil if dropped)
	keys    map[*tshape]string  // result face -> orientation-free loop key
	dropped int
}

func (c *cleaner) vertex(i int) *tshape {
	v, ok := c.verts[i]
	if !ok {
		v = newVertex(c.w.points[i])
		c.verts[i] = v
	}
	return v
}

func (c *cleaner) clean(t *tshape) *tshape {
	if out, ok := c.memo[t]; ok {
		return out
	}
	out := c.cleanNode(t)
	if out == nil {
		c.dropped++
	}
	c.memo[t] = out
	return out
}

func (c *cleaner) cleanNode(t *tshape) *tshape {
	switch t.kind {
	case kernel.KindVertex:
		return c.vertex(c.w.weld(t.point))

	case kernel.KindEdge:
		a := c.w.weld(t.children[0].point)
		b := c.w.weld(t.children[1].point)
		if a == b {
			return nil
		}
		return newNode(kernel.KindEdge, c.vertex(a), c.vertex(b))

	case kernel.KindWire:
		edges := c.cleanChildren(t)
		if len(edges) == 0 {
			return nil
		}
		return newNode(kernel.KindWire, edges...)

	case kernel.KindFace:
		idx := c.w.weldLoop(faceLoop(t))
		if len(idx) < 3 || polygonArea(c.w.loopPoints(idx)) <= c.k.cfg.MinArea {
			return nil
		}
		f := faceFromVertices(lo.Map(idx, func(j, _ int) *tshape { return c.vertex(j) }))
		c.keys[f] = loopKey(idx)
		return f

	case kernel.KindShell, kernel.KindSolid:
		children := c.cleanChildren(t)
		if len(children) == 0 {
			return nil
		}
		if t.kind == kernel.KindSolid && c.memo[t.children[0]] == nil {
			// Outer shell vanished.
			return nil
		}
		return newNode(t.kind, children...)

	default:
		children := c.cleanChildren(t)
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		}
		return newNode(t.kind, children...)
	}
}

// cleanChildren cleans each child, dropping removed ones and faces whose
// loop duplicates an earlier sibling.
func (c *cleaner) cleanChildren(t *tshape) []*tshape {
	out := make([]*tshape, 0, len(t.children))
	seen := make(map[string]bool)
	for _, ch := range t.children {
		r := c.clean(ch)
		if r == nil {
			continue
		}
		if key, ok := c.keys[r]; ok {
			if seen[key] {
				c.dropped++
				continue
			}
			seen[key] = true
		}
		out = append(out, r)
	}
	return out
}

// loopKey identifies a loop of welded indices regardless of starting point
// and orientation.
func loopKey(idx []int) string {
	best := canonicalRotation(idx)
	rev := slices.Clone(idx)
	slices.Reverse(rev)
	if r := canonicalRotation(rev); slices.Compare(r, best) < 0 {
		best = r
	}
	return strings.Join(lo.Map(best, func(v, _ int) string { return strconv.Itoa(v) }), ",")
}

// canonicalRotation rotates idx so its smallest element comes first.
func canonicalRotation(idx []int) []int {
	start := 0
	for i, v := range idx {
		if v < idx[start] {
			start = i
		}
	}
	out := make([]int, 0, len(idx))
	out = append(out, idx[start:]...)
	return append(out, idx[:start]...)
}
