package kernel

// ShapeKind enumerates the runtime topological kinds of a shape.
type ShapeKind int

const (
	KindCompound      ShapeKind = iota // aggregate of arbitrary shapes
	KindCompoundSolid                  // solids sharing faces
	KindSolid                          // region bounded by shells
	KindShell                          // connected set of faces
	KindFace                           // bounded surface patch
	KindWire                           // connected edge loop
	KindEdge                           // bounded curve
	KindVertex                         // point
	KindShape                          // unknown / any
)

func (k ShapeKind) String() string {
	switch k {
	case KindCompound:
		return "compound"
	case KindCompoundSolid:
		return "compsolid"
	case KindSolid:
		return "solid"
	case KindShell:
		return "shell"
	case KindFace:
		return "face"
	case KindWire:
		return "wire"
	case KindEdge:
		return "edge"
	case KindVertex:
		return "vertex"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// IsAggregate reports whether shapes of this kind hold arbitrary children.
func (k ShapeKind) IsAggregate() bool {
	return k == KindCompound || k == KindCompoundSolid
}
