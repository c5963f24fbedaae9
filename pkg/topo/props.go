package topo

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// CenterOfMass returns the centroid of the kernel's surface integration
// over s: every face occurrence weighted by its area. For a solid this is
// the centroid of its boundary, which differs from the volumetric centroid
// for most non-symmetric shapes.
//
// A shape whose boundary integrates to zero area (an empty compound, bare
// vertices or edges) has no centroid; the result is an *OperationError
// wrapping ErrZeroArea. A null handle yields one wrapping ErrNullShape.
func CenterOfMass(s Shaper) (v3.Vec, error) {
	sh := s.Upcast()
	if sh.IsNull() {
		return v3.Vec{}, &OperationError{Op: "center of mass", Err: ErrNullShape}
	}
	p, err := sh.k.SurfaceProperties(sh.s)
	if err != nil {
		return v3.Vec{}, &OperationError{Op: "center of mass", Err: err}
	}
	if p.Mass <= 0 {
		return v3.Vec{}, &OperationError{Op: "center of mass", Err: ErrZeroArea}
	}
	return p.Centre, nil
}

// SurfaceArea returns the total area of every face occurrence below s.
// Shapes without faces have zero area.
func SurfaceArea(s Shaper) (float64, error) {
	sh := s.Upcast()
	if sh.IsNull() {
		return 0, &OperationError{Op: "surface area", Err: ErrNullShape}
	}
	p, err := sh.k.SurfaceProperties(sh.s)
	if err != nil {
		return 0, &OperationError{Op: "surface area", Err: err}
	}
	return p.Mass, nil
}
