// Package topo is the aggregation and volume-reconstruction layer over a
// kernel.Kernel. It wraps kernel-resident topology in kind-tagged handles,
// narrows them with fallible downcasts, groups them into compounds by
// reference, deep-copies compounds on request, evaluates surface centroids
// and rebuilds enclosed solids from loose boundary surfaces.
//
// Handles borrow the kernel's topology. Nothing in this package copies
// implicitly: FromShapes references its inputs and Clone is the only
// duplicating operation. Topology is released by the garbage collector
// once no handle reaches it.
//
// Like the kernel, handles are not safe for concurrent mutation.
package topo

import (
	"fmt"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	"github.com/google/uuid"
)

// Shaper is implemented by Shape and by every typed handle.
type Shaper interface {
	Upcast() Shape
}

// Shape is a generic handle to kernel-resident topology of any kind. The
// zero Shape is a null handle of kind kernel.KindShape.
type Shape struct {
	k kernel.Kernel
	s kernel.Shape
}

// NewShape wraps a shape owned by k.
func NewShape(k kernel.Kernel, s kernel.Shape) Shape {
	return Shape{k: k, s: s}
}

// Kind returns the runtime kind of the handle.
func (s Shape) Kind() kernel.ShapeKind {
	if s.s == nil {
		return kernel.KindShape
	}
	return s.s.Kind()
}

// IsNull reports whether the handle references nothing.
func (s Shape) IsNull() bool { return s.s == nil }

// Kernel returns the kernel the topology lives in.
func (s Shape) Kernel() kernel.Kernel { return s.k }

// Raw returns the kernel-level shape.
func (s Shape) Raw() kernel.Shape { return s.s }

// ID returns the identity of the referenced topology, or uuid.Nil for a
// null handle.
func (s Shape) ID() uuid.UUID {
	if s.s == nil {
		return uuid.Nil
	}
	return s.s.ID()
}

// BoundingBox returns the axis-aligned bounds of the referenced topology.
func (s Shape) BoundingBox() sdf.Box3 {
	if s.s == nil {
		return sdf.Box3{}
	}
	return s.s.BoundingBox()
}

// SameTopology reports whether both handles reference the same
// kernel-resident topology. Equal geometry is not enough.
func (s Shape) SameTopology(other Shape) bool {
	return s.s != nil && other.s != nil && s.s.ID() == other.s.ID()
}

// Children returns handles to the direct children of s. The children are
// the kernel's own topology, not copies.
func (s Shape) Children() []Shape {
	if s.s == nil {
		return nil
	}
	raw := s.k.Children(s.s)
	out := make([]Shape, len(raw))
	for i, c := range raw {
		out[i] = NewShape(s.k, c)
	}
	return out
}

// Upcast implements Shaper.
func (s Shape) Upcast() Shape { return s }

func (s Shape) String() string {
	if s.s == nil {
		return "null shape"
	}
	return fmt.Sprintf("%s %s", s.Kind(), s.s.ID().String()[:8])
}

// Face is a handle known to reference a face.
type Face struct{ Shape }

// Shell is a handle known to reference a shell.
type Shell struct{ Shape }

// Solid is a handle known to reference a solid.
type Solid struct{ Shape }

// Compound is a handle known to reference a compound: an ordered, possibly
// empty, acyclic collection of children of any kind. Child order is kept
// but carries no meaning.
type Compound struct{ Shape }
