package poly

import (
	"github.com/chazu/brep/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// SurfaceProperties integrates over every face occurrence below s. A face
// reachable through two parents is counted twice. Shapes without faces
// integrate to zero mass and a zero centre; interpreting that is left to
// the caller.
func (k *Kernel) SurfaceProperties(s kernel.Shape) (kernel.Properties, error) {
	if s == nil {
		return kernel.Properties{}, errors.Wrap(ErrNoArguments, "surface properties: nil shape")
	}
	var (
		mass float64
		acc  v3.Vec
	)
	for _, f := range faceOccurrences(unwrap(s)) {
		c, a := polygonCentroid(faceLoop(f))
		mass += a
		acc = acc.Add(c.MulScalar(a))
	}
	if mass == 0 {
		return kernel.Properties{}, nil
	}
	return kernel.Properties{Mass: mass, Centre: acc.DivScalar(mass)}, nil
}
