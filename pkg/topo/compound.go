package topo

import (
	"github.com/chazu/brep/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FromShapes creates a compound in k and appends every shape to it in
// order, by reference. Inputs are neither copied, deduplicated nor
// validated, so kinds may be mixed freely. With no shapes the compound is
// empty.
func FromShapes(k kernel.Kernel, shapes ...Shape) Compound {
	c := k.MakeCompound()
	for _, s := range shapes {
		k.Add(c, s.s)
	}
	return Compound{NewShape(k, c)}
}

// FromShapesOf is FromShapes over a slice of typed handles.
func FromShapesOf[T Shaper](k kernel.Kernel, shapes []T) Compound {
	c := k.MakeCompound()
	for _, s := range shapes {
		k.Add(c, s.Upcast().s)
	}
	return Compound{NewShape(k, c)}
}

// Clone returns a deep copy of the compound and everything it references.
// Geometry is duplicated; cached tessellations are not. The copy shares no
// mutable state with c.
func (c Compound) Clone() (Compound, error) {
	if c.IsNull() {
		return Compound{}, &OperationError{Op: "clone", Err: ErrNullShape}
	}
	cp, err := c.k.Copy(c.s, kernel.CopyOptions{Geometry: true, Mesh: false})
	if err != nil {
		return Compound{}, &OperationError{Op: "clone", Err: err}
	}
	return AsCompound(NewShape(c.k, cp))
}

// Clean runs the kernel's cleanup over the compound. The result is a new
// shape whose kind is chosen by the kernel; a compound reduced to a single
// child may come back as that child.
func (c Compound) Clean() (Shape, error) {
	if c.IsNull() {
		return Shape{}, &OperationError{Op: "clean", Err: ErrNullShape}
	}
	out, err := c.k.Clean(c.s)
	if err != nil {
		return Shape{}, &OperationError{Op: "clean", Err: err}
	}
	return NewShape(c.k, out), nil
}

// CenterOfMass returns the area-weighted centroid of the compound's
// boundary surfaces. It is not a volumetric centroid, even when every
// child is a solid. See CenterOfMass.
func (c Compound) CenterOfMass() (v3.Vec, error) {
	return CenterOfMass(c)
}

// Len returns the number of direct children.
func (c Compound) Len() int {
	if c.s == nil {
		return 0
	}
	return len(c.k.Children(c.s))
}

// IsEmpty reports whether the compound has no children.
func (c Compound) IsEmpty() bool {
	return c.Len() == 0
}
