package kernel

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // path of the shape this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Append adds the triangles of other to m, offsetting indices.
func (m *Mesh) Append(other *Mesh) {
	if other == nil {
		return
	}
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, other.Vertices...)
	m.Normals = append(m.Normals, other.Normals...)
	for _, i := range other.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}

// Clone returns an independent copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	return &Mesh{
		Vertices: append([]float32(nil), m.Vertices...),
		Normals:  append([]float32(nil), m.Normals...),
		Indices:  append([]uint32(nil), m.Indices...),
		PartName: m.PartName,
	}
}
