package poly_test

import (
	"testing"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/kernel/poly"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

// collect returns every distinct node of the given kind below s.
func collect(k *poly.Kernel, s kernel.Shape, kind kernel.ShapeKind) []kernel.Shape {
	seen := make(map[uuid.UUID]bool)
	var out []kernel.Shape
	var rec func(kernel.Shape)
	rec = func(n kernel.Shape) {
		if seen[n.ID()] {
			return
		}
		seen[n.ID()] = true
		if n.Kind() == kind {
			out = append(out, n)
		}
		for _, c := range k.Children(n) {
			rec(c)
		}
	}
	rec(s)
	return out
}

func ids(shapes []kernel.Shape) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(shapes))
	for _, s := range shapes {
		out[s.ID()] = true
	}
	return out
}

func assertVec(t *testing.T, want, got v3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestBox(t *testing.T) {
	k := poly.New()
	box := k.Box(10, 20, 30)

	assert.Equal(t, kernel.KindShell, box.Kind())
	assert.Len(t, k.Children(box), 6)
	assert.Len(t, collect(k, box, kernel.KindVertex), 8, "corners are shared between faces")

	bb := box.BoundingBox()
	assertVec(t, v3.Vec{}, bb.Min)
	assertVec(t, v3.Vec{X: 10, Y: 20, Z: 30}, bb.Max)
}

func TestBoxPanicsOnZeroDimension(t *testing.T) {
	k := poly.New()
	assert.Panics(t, func() { k.Box(1, 0, 1) })
}

func TestPolygonRejectsDegenerateInput(t *testing.T) {
	k := poly.New()
	tests := []struct {
		name   string
		points []v3.Vec
	}{
		{"two points", []v3.Vec{{X: 0}, {X: 1}}},
		{"collinear", []v3.Vec{{X: 0}, {X: 1}, {X: 2}}},
		{"non-planar", []v3.Vec{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1, Z: 0.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.Polygon(tt.points...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, poly.ErrDegenerate), "got %v", err)
		})
	}
}

func TestEdge(t *testing.T) {
	k := poly.New()
	e, err := k.Edge(v3.Vec{}, v3.Vec{X: 1})
	require.NoError(t, err)
	assert.Equal(t, kernel.KindEdge, e.Kind())
	assert.Len(t, k.Children(e), 2)

	_, err = k.Edge(v3.Vec{}, v3.Vec{})
	assert.True(t, errors.Is(err, poly.ErrDegenerate))
}

func TestMakeShellAndSolidCheckKinds(t *testing.T) {
	k := poly.New()
	box := k.Box(1, 1, 1)

	_, err := k.MakeShell(box)
	assert.True(t, errors.Is(err, poly.ErrKind))

	_, err = k.MakeSolid(k.Children(box)[0])
	assert.True(t, errors.Is(err, poly.ErrKind))

	_, err = k.MakeSolid()
	assert.True(t, errors.Is(err, poly.ErrNoArguments))

	solid, err := k.MakeSolid(box)
	require.NoError(t, err)
	assert.Equal(t, kernel.KindSolid, solid.Kind())
	assert.Equal(t, box.ID(), k.Children(solid)[0].ID())
}

func TestAddIsReferential(t *testing.T) {
	k := poly.New()
	box := k.Box(1, 1, 1)
	c := k.MakeCompound()
	k.Add(c, box)
	k.Add(c, box)

	children := k.Children(c)
	require.Len(t, children, 2)
	assert.Equal(t, box.ID(), children[0].ID())
	assert.Equal(t, box.ID(), children[1].ID())
}

func TestAddPanicsOnCycle(t *testing.T) {
	k := poly.New()
	outer := k.MakeCompound()
	inner := k.MakeCompound()
	k.Add(outer, inner)

	assert.Panics(t, func() { k.Add(inner, outer) })
	assert.Panics(t, func() { k.Add(outer, outer) })
}

func TestAddPanicsOnNonAggregate(t *testing.T) {
	k := poly.New()
	box := k.Box(1, 1, 1)
	assert.Panics(t, func() { k.Add(box, k.MakeCompound()) })
}

func TestCopyIsDeep(t *testing.T) {
	k := poly.New()
	box := k.Box(1, 1, 1)

	cp, err := k.Copy(box, kernel.CopyOptions{Geometry: true})
	require.NoError(t, err)
	assert.NotEqual(t, box.ID(), cp.ID())
	assert.Len(t, collect(k, cp, kernel.KindVertex), 8, "sharing is preserved inside the copy")

	orig := ids(collect(k, box, kernel.KindVertex))
	for _, v := range collect(k, cp, kernel.KindVertex) {
		assert.False(t, orig[v.ID()], "copy shares vertex %s", v.ID())
	}

	k.Translate(box, 5, 0, 0)
	assertVec(t, v3.Vec{}, cp.BoundingBox().Min)
	assertVec(t, v3.Vec{X: 5}, box.BoundingBox().Min)
}

func TestCopyWithoutGeometrySharesVertices(t *testing.T) {
	k := poly.New()
	box := k.Box(1, 1, 1)

	cp, err := k.Copy(box, kernel.CopyOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, box.ID(), cp.ID())

	k.Translate(box, 0, 0, 2)
	assertVec(t, v3.Vec{Z: 2}, cp.BoundingBox().Min)
}

func TestCopyMeshPolicy(t *testing.T) {
	k := poly.New()
	box := k.Box(1, 1, 1)
	_, err := k.ToMesh(box)
	require.NoError(t, err)
	require.True(t, k.HasCachedMesh(box))

	plain, err := k.Copy(box, kernel.CopyOptions{Geometry: true})
	require.NoError(t, err)
	assert.False(t, k.HasCachedMesh(plain))

	withMesh, err := k.Copy(box, kernel.CopyOptions{Geometry: true, Mesh: true})
	require.NoError(t, err)
	assert.True(t, k.HasCachedMesh(withMesh))
}

func TestTranslateInvalidatesMeshCache(t *testing.T) {
	k := poly.New()
	box := k.Box(1, 1, 1)
	_, err := k.ToMesh(box)
	require.NoError(t, err)

	k.Translate(box, 1, 0, 0)
	assert.False(t, k.HasCachedMesh(box))

	m, err := k.ToMesh(box)
	require.NoError(t, err)
	for i := 0; i < len(m.Vertices); i += 3 {
		assert.GreaterOrEqual(t, m.Vertices[i], float32(1))
	}
}

func TestRotate(t *testing.T) {
	k := poly.New()
	box := k.Box(1, 1, 1)
	k.Rotate(box, 0, 0, 90)

	bb := box.BoundingBox()
	assertVec(t, v3.Vec{X: -1}, bb.Min)
	assertVec(t, v3.Vec{Y: 1, Z: 1}, bb.Max)
}

func TestToMesh(t *testing.T) {
	k := poly.New()
	m, err := k.ToMesh(k.Box(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 12, m.TriangleCount(), "two triangles per quad face")
	assert.Equal(t, len(m.Vertices), len(m.Normals))

	empty, err := k.ToMesh(k.MakeCompound())
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestSurfaceProperties(t *testing.T) {
	k := poly.New()

	t.Run("cube", func(t *testing.T) {
		p, err := k.SurfaceProperties(k.Box(1, 1, 1))
		require.NoError(t, err)
		assert.InDelta(t, 6, p.Mass, tol)
		assertVec(t, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, p.Centre)
	})

	t.Run("empty compound", func(t *testing.T) {
		p, err := k.SurfaceProperties(k.MakeCompound())
		require.NoError(t, err)
		assert.Zero(t, p.Mass)
		assertVec(t, v3.Vec{}, p.Centre)
	})

	t.Run("face occurrences are counted", func(t *testing.T) {
		f, err := k.Rectangle(2, 1)
		require.NoError(t, err)
		c := k.MakeCompound()
		k.Add(c, f)
		k.Add(c, f)

		p, err := k.SurfaceProperties(c)
		require.NoError(t, err)
		assert.InDelta(t, 4, p.Mass, tol)
		assertVec(t, v3.Vec{X: 1, Y: 0.5}, p.Centre)
	})

	t.Run("non-convex face", func(t *testing.T) {
		// L shape: 2x2 square minus its upper-right unit square.
		f, err := k.Polygon(
			v3.Vec{X: 0, Y: 0}, v3.Vec{X: 2, Y: 0}, v3.Vec{X: 2, Y: 1},
			v3.Vec{X: 1, Y: 1}, v3.Vec{X: 1, Y: 2}, v3.Vec{X: 0, Y: 2},
		)
		require.NoError(t, err)
		p, err := k.SurfaceProperties(f)
		require.NoError(t, err)
		assert.InDelta(t, 3, p.Mass, tol)
		assertVec(t, v3.Vec{X: 5.0 / 6, Y: 5.0 / 6}, p.Centre)
	})
}

func TestConfigFromEnv(t *testing.T) {
	cfg, err := poly.ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, poly.DefaultConfig(), cfg)

	t.Setenv("BREP_TOLERANCE", "0.01")
	t.Setenv("BREP_NON_MANIFOLD", "false")
	cfg, err = poly.ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0.01, cfg.Tolerance)
	assert.False(t, cfg.NonManifold)

	k := poly.New(poly.WithConfig(cfg))
	assert.Equal(t, 0.01, k.Config().Tolerance)
}
