package poly

import (
	"github.com/chazu/brep/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// walk visits t and every node below it depth-first. Shared nodes are
// visited once per occurrence.
func walk(t *tshape, visit func(*tshape)) {
	visit(t)
	for _, c := range t.children {
		walk(c, visit)
	}
}

// walkUnique visits every distinct node below t once, in first-seen order.
func walkUnique(t *tshape, visit func(*tshape)) {
	seen := make(map[*tshape]bool)
	var rec func(*tshape)
	rec = func(n *tshape) {
		if seen[n] {
			return
		}
		seen[n] = true
		visit(n)
		for _, c := range n.children {
			rec(c)
		}
	}
	rec(t)
}

// uniqueVertices returns each distinct vertex below t once.
func uniqueVertices(t *tshape) []*tshape {
	var out []*tshape
	walkUnique(t, func(n *tshape) {
		if n.kind == kernel.KindVertex {
			out = append(out, n)
		}
	})
	return out
}

// faceOccurrences returns every face below t, once per occurrence, the way
// a topological explorer would.
func faceOccurrences(t *tshape) []*tshape {
	var out []*tshape
	walk(t, func(n *tshape) {
		if n.kind == kernel.KindFace {
			out = append(out, n)
		}
	})
	return out
}

// faceLoop returns the ordered boundary points of a face. Wire edges are
// stored head to tail, so the start vertex of each edge is the loop.
func faceLoop(f *tshape) []v3.Vec {
	if len(f.children) == 0 {
		return nil
	}
	wire := f.children[0]
	loop := make([]v3.Vec, 0, len(wire.children))
	for _, e := range wire.children {
		loop = append(loop, e.children[0].point)
	}
	return loop
}
