package topo

import "github.com/chazu/brep/pkg/kernel"

// Classify returns the runtime kind of s. A null handle is
// kernel.KindShape.
func Classify(s Shaper) kernel.ShapeKind {
	return s.Upcast().Kind()
}

// Downcast checks that s has kind want and returns it as a generic handle.
// On mismatch it returns a *CastError naming both kinds.
func Downcast(s Shaper, want kernel.ShapeKind) (Shape, error) {
	sh := s.Upcast()
	if got := sh.Kind(); got != want {
		return Shape{}, &CastError{Expected: want, Actual: got}
	}
	return sh, nil
}

// AsFace narrows s to a Face.
func AsFace(s Shaper) (Face, error) {
	sh, err := Downcast(s, kernel.KindFace)
	if err != nil {
		return Face{}, err
	}
	return Face{sh}, nil
}

// AsShell narrows s to a Shell.
func AsShell(s Shaper) (Shell, error) {
	sh, err := Downcast(s, kernel.KindShell)
	if err != nil {
		return Shell{}, err
	}
	return Shell{sh}, nil
}

// AsSolid narrows s to a Solid.
func AsSolid(s Shaper) (Solid, error) {
	sh, err := Downcast(s, kernel.KindSolid)
	if err != nil {
		return Solid{}, err
	}
	return Solid{sh}, nil
}

// AsCompound narrows s to a Compound.
func AsCompound(s Shaper) (Compound, error) {
	sh, err := Downcast(s, kernel.KindCompound)
	if err != nil {
		return Compound{}, err
	}
	return Compound{sh}, nil
}
