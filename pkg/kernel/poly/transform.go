package poly

import (
	"math"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Translate moves every vertex below s by (x, y, z) in place. All shapes
// sharing those vertices observe the move.
func (k *Kernel) Translate(s kernel.Shape, x, y, z float64) {
	k.transform(unwrap(s), sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates every vertex below s in place by Euler angles (degrees)
// around the X, Y, Z axes.
func (k *Kernel) Rotate(s kernel.Shape, x, y, z float64) {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	k.transform(unwrap(s), m)
}

func (k *Kernel) transform(t *tshape, m sdf.M44) {
	k.gen++
	walkUnique(t, func(n *tshape) {
		switch n.kind {
		case kernel.KindVertex:
			n.point = m.MulPosition(n.point)
		case kernel.KindFace:
			n.mesh = nil
		}
	})
}
