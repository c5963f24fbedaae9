package poly

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
)

// weldPoint is a representative point stored in the welder's R-tree.
type weldPoint struct {
	index int
	p     v3.Vec
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (w *weldPoint) Bounds() rtreego.Rect {
	return w.rect
}

// welder merges points closer than a tolerance into one representative.
// The first point seen in a cluster becomes its representative, so results
// depend only on input order.
type welder struct {
	tol    float64
	tree   *rtreego.Rtree
	points []v3.Vec
}

func newWelder(tol float64) *welder {
	return &welder{tol: tol, tree: rtreego.NewTree(3, 25, 50)}
}

// weld returns the index of the representative for p, adding p as a new
// representative when none lies within tolerance.
func (w *welder) weld(p v3.Vec) int {
	q := rtreego.Point{p.X, p.Y, p.Z}
	best := -1
	for _, s := range w.tree.SearchIntersect(q.ToRect(w.tol)) {
		wp := s.(*weldPoint)
		if wp.p.Sub(p).Length() > w.tol {
			continue
		}
		if best < 0 || wp.index < best {
			best = wp.index
		}
	}
	if best >= 0 {
		return best
	}
	idx := len(w.points)
	w.points = append(w.points, p)
	w.tree.Insert(&weldPoint{index: idx, p: p, rect: q.ToRect(w.tol)})
	return idx
}

// weldLoop welds every point of loop and drops consecutive duplicates,
// including the closing pair.
func (w *welder) weldLoop(loop []v3.Vec) []int {
	out := make([]int, 0, len(loop))
	for _, p := range loop {
		i := w.weld(p)
		if len(out) > 0 && out[len(out)-1] == i {
			continue
		}
		out = append(out, i)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// loopPoints resolves representative indices back to points.
func (w *welder) loopPoints(idx []int) []v3.Vec {
	out := make([]v3.Vec, len(idx))
	for i, j := range idx {
		out[i] = w.points[j]
	}
	return out
}
