// Package sdfx builds faceted boundary shells from github.com/deadsy/sdfx
// signed-distance primitives. Surfaces are sampled with marching cubes and
// the resulting triangles become faces of a poly kernel shell, so curved
// primitives can take part in volume making alongside planar input.
package sdfx

import (
	"fmt"

	"github.com/chazu/brep/pkg/config"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/kernel/poly"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// ErrEmpty is returned when sampling a field produces no usable faces.
var ErrEmpty = errors.New("sdfx: surface produced no faces")

// Config controls the marching cubes resolution.
type Config struct {
	// Cells is the number of cells along the longest bounding box axis.
	Cells int `env:"BREP_SDF_CELLS" envDefault:"24"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{Cells: 24}
}

// ConfigFromEnv loads a Config from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Builder turns SDF primitives into closed triangle shells.
type Builder struct {
	k   *poly.Kernel
	cfg Config
}

// New returns a Builder that creates its shells in k.
func New(k *poly.Kernel, cfg ...Config) *Builder {
	b := &Builder{k: k, cfg: DefaultConfig()}
	if len(cfg) > 0 {
		b.cfg = cfg[0]
	}
	if b.cfg.Cells < 2 {
		b.cfg.Cells = 2
	}
	return b
}

// Box samples an x by y by z box. The resulting shell has its minimum
// corner at the origin (0,0,0) so that placement translations work
// intuitively. sdf.Box3D centers the box at the origin, so it is shifted
// by half-dimensions.
func (b *Builder) Box(x, y, z float64) (kernel.Shape, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return b.Facet(sdf.Transform3D(s, m))
}

// Cylinder samples a cylinder along Z, centered on the origin.
func (b *Builder) Cylinder(height, radius float64) (kernel.Shape, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return b.Facet(s)
}

// Sphere samples a sphere centered on the origin.
func (b *Builder) Sphere(radius float64) (kernel.Shape, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return b.Facet(s)
}

// Facet samples any signed distance field and returns its surface as a
// shell of triangular faces with welded vertices. Slivers that the kernel
// rejects as degenerate are skipped.
func (b *Builder) Facet(s sdf.SDF3) (kernel.Shape, error) {
	renderer := render.NewMarchingCubesUniform(b.cfg.Cells)
	triangles := render.ToTriangles(s, renderer)

	faces := make([]kernel.Shape, 0, len(triangles))
	for _, tri := range triangles {
		f, err := b.k.Polygon(tri[0], tri[1], tri[2])
		if err != nil {
			continue
		}
		faces = append(faces, f)
	}
	if len(faces) == 0 {
		return nil, ErrEmpty
	}

	shell, err := b.k.MakeShell(faces...)
	if err != nil {
		return nil, fmt.Errorf("sdfx: shell: %w", err)
	}
	welded, err := b.k.Clean(shell)
	if err != nil {
		return nil, fmt.Errorf("sdfx: weld: %w", err)
	}
	if welded.Kind() != kernel.KindShell {
		return nil, ErrEmpty
	}
	return welded, nil
}
