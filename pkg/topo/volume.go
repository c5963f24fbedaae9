package topo

import (
	"github.com/chazu/brep/pkg/kernel"
	"github.com/samber/lo"
)

// Volume rebuilds the solids enclosed by the given boundary surfaces.
//
// The inputs are flattened into one argument list, faces first, then
// shells, then solids, and handed to the kernel's volume maker with the
// default progress range. The result is always a Compound: a compound
// from the kernel is returned as is, and any other kind becomes the only
// child of a new compound. When several solids are found they are the
// direct children of the returned compound.
//
// The only failure is a kernel fault, returned as an *OperationError with
// no partial result.
func Volume(k kernel.Kernel, faces []Face, shells []Shell, solids []Solid) (Compound, error) {
	args := lo.Flatten([][]kernel.Shape{
		lo.Map(faces, func(f Face, _ int) kernel.Shape { return f.s }),
		lo.Map(shells, func(s Shell, _ int) kernel.Shape { return s.s }),
		lo.Map(solids, func(s Solid, _ int) kernel.Shape { return s.s }),
	})

	out, err := k.MakeVolume(args, kernel.DefaultProgressRange())
	if err != nil {
		return Compound{}, &OperationError{Op: "volume", Err: err}
	}

	result := NewShape(k, out)
	if c, err := AsCompound(result); err == nil {
		return c, nil
	}
	return FromShapes(k, result), nil
}
