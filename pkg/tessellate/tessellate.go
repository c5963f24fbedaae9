// Package tessellate walks a shape tree and produces triangle meshes using
// a geometry kernel. One mesh is produced per part: every solid, every
// shell outside a solid and every face outside a shell.
package tessellate

import (
	"fmt"

	"github.com/chazu/brep/pkg/kernel"
)

// Tessellate walks s and produces one triangle mesh per part using the
// provided kernel. Each mesh's PartName is the path of child indices and
// kinds from the root, e.g. "compound/1/solid". The tessellator is
// read-only and never changes the topology.
func Tessellate(k kernel.Kernel, s kernel.Shape) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}
	return walkShape(k, s, s.Kind().String())
}

// walkShape dispatches on the kind of s.
func walkShape(k kernel.Kernel, s kernel.Shape, path string) ([]*kernel.Mesh, error) {
	switch s.Kind() {
	case kernel.KindSolid, kernel.KindShell, kernel.KindFace:
		return handlePart(k, s, path)

	case kernel.KindCompound, kernel.KindCompoundSolid:
		return handleAggregate(k, s, path)

	case kernel.KindWire, kernel.KindEdge, kernel.KindVertex:
		// No surface to tessellate.
		return nil, nil

	default:
		return nil, fmt.Errorf("tessellate: unknown shape kind %v at %s", s.Kind(), path)
	}
}

// handlePart meshes a solid, shell or face as a single part.
func handlePart(k kernel.Kernel, s kernel.Shape, path string) ([]*kernel.Mesh, error) {
	mesh, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", path, err)
	}
	if mesh.IsEmpty() {
		return nil, nil
	}
	mesh.PartName = path
	return []*kernel.Mesh{mesh}, nil
}

// handleAggregate recurses into children transparently.
func handleAggregate(k kernel.Kernel, s kernel.Shape, path string) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for i, child := range k.Children(s) {
		collected, err := walkShape(k, child, fmt.Sprintf("%s/%d/%s", path, i, child.Kind()))
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// Merge concatenates meshes into one, as needed by single-mesh viewers.
func Merge(meshes []*kernel.Mesh, name string) *kernel.Mesh {
	out := &kernel.Mesh{PartName: name}
	for _, m := range meshes {
		out.Append(m)
	}
	return out
}
