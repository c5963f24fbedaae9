// Package poly implements the kernel.Kernel interface with an in-process
// polyhedral boundary representation. Faces are planar polygons bounded by a
// single wire; shells, solids and compounds aggregate them by reference.
//
// The kernel is not safe for concurrent mutation. Readers may share shapes
// as long as nothing translates, rotates or adds to them meanwhile.
package poly

import (
	"log/slog"
	"math"

	"github.com/chazu/brep/pkg/config"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*Kernel)(nil)
var _ kernel.Shape = (*tshape)(nil)

// minTolerance keeps the weld search box non-degenerate.
const minTolerance = 1e-12

// Config holds the numeric tolerances of the kernel.
type Config struct {
	// Tolerance is the distance under which two points are the same vertex.
	Tolerance float64 `env:"BREP_TOLERANCE" envDefault:"1e-7"`
	// MinArea is the area under which a face is degenerate.
	MinArea float64 `env:"BREP_MIN_AREA" envDefault:"1e-12"`
	// NonManifold lets MakeVolume bound cells with edges shared by more
	// than two faces, such as boxes touching along a face or an edge. When
	// false, regions with such an edge are skipped.
	NonManifold bool `env:"BREP_NON_MANIFOLD" envDefault:"true"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Tolerance:   1e-7,
		MinArea:     1e-12,
		NonManifold: true,
	}
}

// ConfigFromEnv loads a Config from BREP_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithConfig sets the kernel tolerances.
func WithConfig(cfg Config) Option {
	return func(k *Kernel) { k.cfg = cfg }
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(k *Kernel) { k.log = l }
}

// Kernel implements kernel.Kernel over planar-polygon topology.
type Kernel struct {
	cfg Config
	log *slog.Logger
	gen uint64 // bumped by every in-place transform
}

// New returns a new Kernel.
func New(opts ...Option) *Kernel {
	k := &Kernel{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(k)
	}
	if k.log == nil {
		k.log = slog.Default()
	}
	k.cfg.Tolerance = math.Max(k.cfg.Tolerance, minTolerance)
	return k
}

// Config returns the kernel's effective configuration.
func (k *Kernel) Config() Config {
	return k.cfg
}

// tshape is a node of kernel-resident topology. Vertices carry a point,
// every other kind carries children. Handles are *tshape pointers, so two
// handles share topology exactly when the pointers are equal.
type tshape struct {
	id       uuid.UUID
	kind     kernel.ShapeKind
	point    v3.Vec
	children []*tshape
	mesh     *kernel.Mesh // cached tessellation, faces only
	meshGen  uint64       // kernel generation the cached mesh belongs to
}

func newNode(kind kernel.ShapeKind, children ...*tshape) *tshape {
	return &tshape{id: uuid.New(), kind: kind, children: children}
}

func newVertex(p v3.Vec) *tshape {
	return &tshape{id: uuid.New(), kind: kernel.KindVertex, point: p}
}

// Kind returns the topological kind.
func (t *tshape) Kind() kernel.ShapeKind { return t.kind }

// ID returns the identity of the node.
func (t *tshape) ID() uuid.UUID { return t.id }

// BoundingBox returns the axis-aligned bounding box of all vertices. An
// empty shape has a zero box.
func (t *tshape) BoundingBox() sdf.Box3 {
	verts := uniqueVertices(t)
	if len(verts) == 0 {
		return sdf.Box3{}
	}
	bb := sdf.Box3{Min: verts[0].point, Max: verts[0].point}
	for _, v := range verts[1:] {
		bb = includePoint(bb, v.point)
	}
	return bb
}

// unwrap extracts the underlying *tshape from a kernel.Shape.
func unwrap(s kernel.Shape) *tshape {
	return s.(*tshape)
}

// wrap exposes a *tshape as a kernel.Shape.
func wrap(t *tshape) kernel.Shape {
	return t
}

func includePoint(bb sdf.Box3, p v3.Vec) sdf.Box3 {
	bb.Min = v3.Vec{X: math.Min(bb.Min.X, p.X), Y: math.Min(bb.Min.Y, p.Y), Z: math.Min(bb.Min.Z, p.Z)}
	bb.Max = v3.Vec{X: math.Max(bb.Max.X, p.X), Y: math.Max(bb.Max.Y, p.Y), Z: math.Max(bb.Max.Z, p.Z)}
	return bb
}

func containsBox(outer, inner sdf.Box3, tol float64) bool {
	return inner.Min.X >= outer.Min.X-tol && inner.Min.Y >= outer.Min.Y-tol && inner.Min.Z >= outer.Min.Z-tol &&
		inner.Max.X <= outer.Max.X+tol && inner.Max.Y <= outer.Max.Y+tol && inner.Max.Z <= outer.Max.Z+tol
}
