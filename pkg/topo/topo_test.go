package topo_test

import (
	"fmt"
	"testing"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/kernel/poly"
	"github.com/chazu/brep/pkg/topo"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeShell(t *testing.T, k *poly.Kernel, size, x, y, z float64) topo.Shell {
	t.Helper()
	raw := k.Box(size, size, size)
	k.Translate(raw, x, y, z)
	s, err := topo.AsShell(topo.NewShape(k, raw))
	require.NoError(t, err)
	return s
}

func disk(t *testing.T, k *poly.Kernel) topo.Face {
	t.Helper()
	raw, err := k.Disk(1, 32)
	require.NoError(t, err)
	f, err := topo.AsFace(topo.NewShape(k, raw))
	require.NoError(t, err)
	return f
}

func assertVec(t *testing.T, want, got v3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestClassifyAndDowncast(t *testing.T) {
	k := poly.New()
	vertex := topo.NewShape(k, k.Vertex(v3.Vec{}))
	face := disk(t, k).Shape
	shell := cubeShell(t, k, 1, 0, 0, 0).Shape
	solidRaw, err := k.MakeSolid(shell.Raw())
	require.NoError(t, err)
	solid := topo.NewShape(k, solidRaw)
	compound := topo.NewShape(k, k.MakeCompound())
	compsolid := topo.NewShape(k, k.MakeCompSolid())

	tests := []struct {
		shape topo.Shape
		kind  kernel.ShapeKind
	}{
		{vertex, kernel.KindVertex},
		{face, kernel.KindFace},
		{shell, kernel.KindShell},
		{solid, kernel.KindSolid},
		{compound, kernel.KindCompound},
		{compsolid, kernel.KindCompoundSolid},
		{topo.Shape{}, kernel.KindShape},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, topo.Classify(tt.shape))

			c, err := topo.AsCompound(tt.shape)
			if tt.kind == kernel.KindCompound {
				require.NoError(t, err)
				assert.True(t, c.SameTopology(tt.shape))
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, topo.ErrCast))

			var ce *topo.CastError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, kernel.KindCompound, ce.Expected)
			assert.Equal(t, tt.kind, ce.Actual)
			assert.Contains(t, err.Error(), tt.kind.String())
		})
	}
}

func TestTypedDowncasts(t *testing.T) {
	k := poly.New()
	shell := cubeShell(t, k, 1, 0, 0, 0)

	_, err := topo.AsFace(shell)
	assert.True(t, errors.Is(err, topo.ErrCast))
	_, err = topo.AsSolid(shell)
	assert.True(t, errors.Is(err, topo.ErrCast))

	back, err := topo.AsShell(shell.Upcast())
	require.NoError(t, err)
	assert.True(t, back.SameTopology(shell.Shape))

	got, err := topo.Downcast(shell, kernel.KindShell)
	require.NoError(t, err)
	assert.Equal(t, shell.ID(), got.ID())
}

func TestFromShapesIsReferential(t *testing.T) {
	k := poly.New()
	s1 := cubeShell(t, k, 1, 0, 0, 0)
	s2 := disk(t, k)

	c := topo.FromShapes(k, s1.Shape, s2.Shape, s1.Shape)
	children := c.Children()
	require.Len(t, children, 3, "no deduplication")
	assert.True(t, children[0].SameTopology(s1.Shape))
	assert.True(t, children[1].SameTopology(s2.Shape))
	assert.True(t, children[2].SameTopology(s1.Shape))
	assert.Equal(t, kernel.KindShell, children[0].Kind())
	assert.Equal(t, kernel.KindFace, children[1].Kind())

	// Mutating an input is visible through the compound.
	before, err := c.CenterOfMass()
	require.NoError(t, err)
	k.Translate(s2.Raw(), 0, 0, 10)
	after, err := c.CenterOfMass()
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestFromShapesNested(t *testing.T) {
	k := poly.New()
	inner := topo.FromShapes(k, cubeShell(t, k, 1, 0, 0, 0).Shape)
	outer := topo.FromShapesOf(k, []topo.Compound{inner, inner})

	assert.Equal(t, 2, outer.Len())
	area, err := topo.SurfaceArea(outer)
	require.NoError(t, err)
	assert.InDelta(t, 12, area, 1e-9, "every occurrence counts")
}

func TestEmptyAggregation(t *testing.T) {
	k := poly.New()
	c := topo.FromShapes(k)

	assert.Equal(t, kernel.KindCompound, c.Kind())
	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Children())

	for i := 0; i < 2; i++ {
		_, err := c.CenterOfMass()
		require.Error(t, err)
		assert.True(t, errors.Is(err, topo.ErrZeroArea))

		var oe *topo.OperationError
		require.True(t, errors.As(err, &oe))
		assert.Equal(t, "center of mass", oe.Op)
	}

	area, err := topo.SurfaceArea(c)
	require.NoError(t, err)
	assert.Zero(t, area)
}

func TestZeroAreaShapes(t *testing.T) {
	k := poly.New()
	edge, err := k.Edge(v3.Vec{}, v3.Vec{X: 1})
	require.NoError(t, err)
	c := topo.FromShapes(k, topo.NewShape(k, k.Vertex(v3.Vec{X: 3})), topo.NewShape(k, edge))

	_, err = topo.CenterOfMass(c)
	assert.True(t, errors.Is(err, topo.ErrZeroArea))
}

func TestCloneIsIndependent(t *testing.T) {
	k := poly.New()
	a := cubeShell(t, k, 1, 0, 0, 0)
	b := cubeShell(t, k, 2, 5, 0, 0)
	c := topo.FromShapes(k, a.Shape, b.Shape)

	c2, err := c.Clone()
	require.NoError(t, err)
	assert.False(t, c2.SameTopology(c.Shape))
	require.Equal(t, c.Len(), c2.Len())
	for i, ch := range c2.Children() {
		assert.False(t, ch.SameTopology(c.Children()[i]))
		assert.Equal(t, c.Children()[i].Kind(), ch.Kind())
	}

	orig, err := c.CenterOfMass()
	require.NoError(t, err)
	copied, err := c2.CenterOfMass()
	require.NoError(t, err)
	assertVec(t, orig, copied)

	// Source mutated: clone unchanged.
	k.Translate(a.Raw(), 0, 10, 0)
	got, err := c2.CenterOfMass()
	require.NoError(t, err)
	assertVec(t, copied, got)

	// Clone mutated: source unchanged.
	moved, err := c.CenterOfMass()
	require.NoError(t, err)
	k.Translate(c2.Raw(), 0, 0, -7)
	got, err = c.CenterOfMass()
	require.NoError(t, err)
	assertVec(t, moved, got)
}

func TestCloneDoesNotCopyMeshes(t *testing.T) {
	k := poly.New()
	c := topo.FromShapes(k, cubeShell(t, k, 1, 0, 0, 0).Shape)
	_, err := k.ToMesh(c.Raw())
	require.NoError(t, err)
	require.True(t, k.HasCachedMesh(c.Raw()))

	c2, err := c.Clone()
	require.NoError(t, err)
	assert.False(t, k.HasCachedMesh(c2.Raw()))
}

func TestCenterOfMassIsSurfaceWeighted(t *testing.T) {
	k := poly.New()
	big := cubeShell(t, k, 3, 0, 0, 0)
	small := cubeShell(t, k, 1, 10, 0, 0)

	solids, err := topo.Volume(k, nil, []topo.Shell{big, small}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, solids.Len())

	got, err := solids.CenterOfMass()
	require.NoError(t, err)

	// Areas 54 and 6 weight the centres, not volumes 27 and 1.
	surface := (54*1.5 + 6*10.5) / 60
	volumetric := (27*1.5 + 1*10.5) / 28
	assert.InDelta(t, surface, got.X, 1e-9)
	assert.NotEqual(t, volumetric, got.X)
}

func TestClean(t *testing.T) {
	k := poly.New()
	f := disk(t, k)
	dup, err := k.Copy(f.Raw(), kernel.CopyOptions{Geometry: true})
	require.NoError(t, err)

	c := topo.FromShapes(k, f.Shape, topo.NewShape(k, dup))
	cleaned, err := c.Clean()
	require.NoError(t, err)
	assert.Equal(t, kernel.KindFace, cleaned.Kind(), "cleanup decides the result kind")
	assert.Equal(t, 2, c.Len(), "input is untouched")

	empty, err := topo.FromShapes(k).Clean()
	require.NoError(t, err)
	assert.Equal(t, kernel.KindCompound, empty.Kind())
}

func TestVolumeScenarios(t *testing.T) {
	k := poly.New()

	t.Run("lone disk has no volume", func(t *testing.T) {
		c, err := topo.Volume(k, []topo.Face{disk(t, k)}, nil, nil)
		require.Error(t, err)
		assert.True(t, c.IsNull())

		var oe *topo.OperationError
		require.True(t, errors.As(err, &oe))
		assert.Equal(t, "volume", oe.Op)
		assert.True(t, errors.Is(err, poly.ErrNoVolume))
	})

	t.Run("unit cube shell gives one solid", func(t *testing.T) {
		c, err := topo.Volume(k, nil, []topo.Shell{cubeShell(t, k, 1, 0, 0, 0)}, nil)
		require.NoError(t, err)
		assert.Equal(t, kernel.KindCompound, c.Kind())
		children := c.Children()
		require.Len(t, children, 1)
		assert.Equal(t, kernel.KindSolid, children[0].Kind())

		com, err := c.CenterOfMass()
		require.NoError(t, err)
		assertVec(t, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, com)
	})

	t.Run("disjoint shells give flat compound of solids", func(t *testing.T) {
		a := cubeShell(t, k, 1, 0, 0, 0)
		b := cubeShell(t, k, 1, 3, 0, 0)
		c, err := topo.Volume(k, nil, []topo.Shell{a, b}, nil)
		require.NoError(t, err)
		children := c.Children()
		require.Len(t, children, 2)
		for _, ch := range children {
			assert.Equal(t, kernel.KindSolid, ch.Kind())
		}
	})

	t.Run("shells sharing a face give two solids", func(t *testing.T) {
		a := cubeShell(t, k, 1, 0, 0, 0)
		b := cubeShell(t, k, 1, 1, 0, 0)
		c, err := topo.Volume(k, nil, []topo.Shell{a, b}, nil)
		require.NoError(t, err)
		children := c.Children()
		require.Len(t, children, 2)
		for i, ch := range children {
			assert.Equal(t, kernel.KindSolid, ch.Kind())
			area, err := topo.SurfaceArea(ch)
			require.NoError(t, err)
			assert.InDelta(t, 6, area, 1e-9, "solid %d is a whole cube", i)
		}

		com, err := c.CenterOfMass()
		require.NoError(t, err)
		assertVec(t, v3.Vec{X: 1, Y: 0.5, Z: 0.5}, com)
	})

	t.Run("shells sharing an edge give two solids", func(t *testing.T) {
		a := cubeShell(t, k, 1, 0, 0, 0)
		b := cubeShell(t, k, 1, 1, 1, 0)
		c, err := topo.Volume(k, nil, []topo.Shell{a, b}, nil)
		require.NoError(t, err)
		children := c.Children()
		require.Len(t, children, 2)
		for _, ch := range children {
			assert.Equal(t, kernel.KindSolid, ch.Kind())
			assert.Len(t, ch.Children(), 1, "one outer shell, no voids")
		}
	})

	t.Run("no arguments", func(t *testing.T) {
		_, err := topo.Volume(k, nil, nil, nil)
		assert.True(t, errors.Is(err, poly.ErrNoArguments))
	})
}

func TestNullCompoundOperations(t *testing.T) {
	k := poly.New()
	c, err := topo.Volume(k, nil, nil, nil)
	require.Error(t, err)
	require.True(t, c.IsNull())

	_, err = c.CenterOfMass()
	assert.True(t, errors.Is(err, topo.ErrNullShape), "center of mass: %v", err)
	_, err = c.Clone()
	assert.True(t, errors.Is(err, topo.ErrNullShape), "clone: %v", err)
	_, err = c.Clean()
	assert.True(t, errors.Is(err, topo.ErrNullShape), "clean: %v", err)
	_, err = topo.SurfaceArea(topo.Shape{})
	assert.True(t, errors.Is(err, topo.ErrNullShape), "surface area: %v", err)

	var oe *topo.OperationError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "surface area", oe.Op)
	assert.Zero(t, c.Len())
}

func TestVolumeMixedInputs(t *testing.T) {
	k := poly.New()
	shell := cubeShell(t, k, 1, 0, 0, 0)

	// Loose faces of a second cube.
	var faces []topo.Face
	for _, ch := range cubeShell(t, k, 1, 4, 0, 0).Children() {
		f, err := topo.AsFace(ch)
		require.NoError(t, err)
		faces = append(faces, f)
	}

	solidRaw, err := k.MakeSolid(cubeShell(t, k, 1, 8, 0, 0).Raw())
	require.NoError(t, err)
	solid, err := topo.AsSolid(topo.NewShape(k, solidRaw))
	require.NoError(t, err)

	c, err := topo.Volume(k, faces, []topo.Shell{shell}, []topo.Solid{solid})
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	// Faces come first in the argument list, then shells, then solids.
	xs := make([]float64, 0, 3)
	for _, ch := range c.Children() {
		xs = append(xs, ch.BoundingBox().Min.X)
	}
	assert.InDeltaSlice(t, []float64{4, 0, 8}, xs, 1e-9)
}

func TestVolumeIsDeterministic(t *testing.T) {
	k := poly.New()
	shells := []topo.Shell{
		cubeShell(t, k, 2, 0, 0, 0),
		cubeShell(t, k, 1, 5, 5, 5),
	}

	first, err := topo.Volume(k, nil, shells, nil)
	require.NoError(t, err)
	second, err := topo.Volume(k, nil, shells, nil)
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	for i := range first.Children() {
		a, b := first.Children()[i], second.Children()[i]
		assert.Equal(t, a.Kind(), b.Kind())
		assert.Equal(t, a.BoundingBox(), b.BoundingBox())
		ca, err := topo.CenterOfMass(a)
		require.NoError(t, err)
		cb, err := topo.CenterOfMass(b)
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
	}
}

func TestVolumeNormalizesKernelCompound(t *testing.T) {
	k := poly.New()
	outer := cubeShell(t, k, 3, 0, 0, 0)
	inner := cubeShell(t, k, 1, 1, 1, 1)

	c, err := topo.Volume(k, nil, []topo.Shell{outer, inner}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len(), "kernel compound returned as is, not nested")
	assert.Len(t, c.Children()[0].Children(), 2, "outer solid has a void")
}

func TestOperationErrorFromKernelFaults(t *testing.T) {
	fault := errors.New("kernel fault")
	k := &faultyKernel{Kernel: poly.New(), err: fault}
	c := topo.FromShapes(k, topo.NewShape(k, k.Box(1, 1, 1)))

	_, err := c.Clone()
	assert.True(t, errors.Is(err, fault))
	_, err = c.Clean()
	assert.True(t, errors.Is(err, fault))
	_, err = c.CenterOfMass()
	assert.True(t, errors.Is(err, fault))
	assert.False(t, errors.Is(err, topo.ErrZeroArea))
	_, err = topo.SurfaceArea(c)
	assert.True(t, errors.Is(err, fault))

	var oe *topo.OperationError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, fmt.Sprintf("topo: surface area: %v", fault), oe.Error())
}

// faultyKernel fails every fallible operation.
type faultyKernel struct {
	*poly.Kernel
	err error
}

func (k *faultyKernel) Copy(kernel.Shape, kernel.CopyOptions) (kernel.Shape, error) {
	return nil, k.err
}

func (k *faultyKernel) Clean(kernel.Shape) (kernel.Shape, error) {
	return nil, k.err
}

func (k *faultyKernel) SurfaceProperties(kernel.Shape) (kernel.Properties, error) {
	return kernel.Properties{}, k.err
}

func TestShapeString(t *testing.T) {
	k := poly.New()
	s := topo.NewShape(k, k.MakeCompound())
	assert.Contains(t, s.String(), "compound ")
	assert.Equal(t, "null shape", topo.Shape{}.String())
	assert.True(t, topo.Shape{}.IsNull())
	assert.False(t, topo.Shape{}.SameTopology(topo.Shape{}))
}
