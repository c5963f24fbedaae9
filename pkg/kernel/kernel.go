// Package kernel defines the abstract BREP kernel interface consumed by the
// topology layer. Implementations (poly) own the kernel-resident topology:
// construction, aggregation, structural copy, cleanup, surface integration
// and boolean volume making all happen behind this interface.
package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// Shape is an opaque reference to kernel-resident topology.
// Implementations wrap their internal representation.
type Shape interface {
	// Kind returns the runtime topological kind. It never changes.
	Kind() ShapeKind

	// ID identifies the underlying topology. Two Shapes with the same ID
	// reference the same kernel-resident data.
	ID() uuid.UUID

	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() sdf.Box3
}

// CopyOptions controls what a structural copy duplicates.
type CopyOptions struct {
	Geometry bool // duplicate geometric data (points, surfaces)
	Mesh     bool // duplicate cached tessellation
}

// Properties is the result of integrating over a shape's boundary surfaces.
type Properties struct {
	Mass   float64 // total surface area
	Centre v3.Vec  // area-weighted centroid
}

// ProgressRange is passed to long-running operations. The zero value means
// "run to completion, no reporting".
type ProgressRange struct {
	// Report, when set, receives the completed fraction in [0, 1].
	Report func(fraction float64)
}

// DefaultProgressRange returns the unbounded, non-reporting range.
func DefaultProgressRange() ProgressRange {
	return ProgressRange{}
}

// Step reports fraction to the range's hook, if any.
func (p ProgressRange) Step(fraction float64) {
	if p.Report != nil {
		p.Report(fraction)
	}
}

// Kernel is the abstract BREP kernel interface.
type Kernel interface {
	// Aggregation
	MakeCompound() Shape
	Add(compound, child Shape) // panics if compound is not a compound or the add creates a cycle

	// Introspection
	Children(s Shape) []Shape

	// Structural copy
	Copy(s Shape, opts CopyOptions) (Shape, error)

	// Cleanup (weld, dedupe, drop degenerate elements)
	Clean(s Shape) (Shape, error)

	// Mass properties over boundary surfaces
	SurfaceProperties(s Shape) (Properties, error)

	// Boolean volume making
	MakeVolume(args []Shape, pr ProgressRange) (Shape, error)

	// Mesh output
	ToMesh(s Shape) (*Mesh, error)
}
