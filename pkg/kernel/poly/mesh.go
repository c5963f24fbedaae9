package poly

import (
	"github.com/chazu/brep/pkg/kernel"
	"github.com/pkg/errors"
)

// ToMesh converts every face below s to triangles by fanning each face
// loop from its first point. Per-face meshes are cached on the face until
// the next in-place transform; Copy does not duplicate the cache unless
// asked to.
func (k *Kernel) ToMesh(s kernel.Shape) (*kernel.Mesh, error) {
	if s == nil {
		return nil, errors.Wrap(ErrNoArguments, "to mesh: nil shape")
	}
	out := &kernel.Mesh{}
	for _, f := range faceOccurrences(unwrap(s)) {
		out.Append(k.faceMesh(f))
	}
	return out, nil
}

// faceMesh returns the cached mesh of a face, building it if needed.
func (k *Kernel) faceMesh(f *tshape) *kernel.Mesh {
	if f.mesh != nil && f.meshGen == k.gen {
		return f.mesh
	}
	loop := faceLoop(f)
	m := &kernel.Mesh{}
	va := vectorArea(loop)
	if l := va.Length(); l > 0 {
		n := va.DivScalar(l)
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for i, tri := range fanTriangles(loop) {
			for j := 0; j < 3; j++ {
				v := tri[j]
				m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
				m.Normals = append(m.Normals, nx, ny, nz)
				m.Indices = append(m.Indices, uint32(i*3+j))
			}
		}
	}
	f.mesh = m
	f.meshGen = k.gen
	return m
}

// HasCachedMesh reports whether any face below s holds a current cached
// tessellation.
func (k *Kernel) HasCachedMesh(s kernel.Shape) bool {
	for _, f := range faceOccurrences(unwrap(s)) {
		if f.mesh != nil && f.meshGen == k.gen {
			return true
		}
	}
	return false
}
