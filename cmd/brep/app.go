package main

import (
	"errors"
	"log/slog"

	"github.com/chazu/brep/pkg/engine"
	"github.com/chazu/brep/pkg/kernel/poly"
	"github.com/chazu/brep/pkg/kernel/sdfx"
	"github.com/chazu/brep/pkg/tessellate"
	"github.com/chazu/brep/pkg/topo"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the script engine to the tessellator.
type App struct {
	engine *engine.Engine
	log    *slog.Logger
}

// MeshData is the serializable mesh format written by the CLI.
type MeshData struct {
	Vertices []float32 `json:"vertices" yaml:"vertices"`
	Normals  []float32 `json:"normals" yaml:"normals"`
	Indices  []uint32  `json:"indices" yaml:"indices"`
	PartName string    `json:"partName" yaml:"partName"`
	Color    string    `json:"color" yaml:"color"`
}

// EvalErrorData is a serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line" yaml:"line"`
	Col     int    `json:"col" yaml:"col"`
	Message string `json:"message" yaml:"message"`
}

// ShapeReport summarizes the shape a script produced.
type ShapeReport struct {
	Kind     string      `json:"kind" yaml:"kind"`
	ID       string      `json:"id" yaml:"id"`
	Children []string    `json:"children" yaml:"children"`
	Area     float64     `json:"area" yaml:"area"`
	Centroid *[3]float64 `json:"centroid,omitempty" yaml:"centroid,omitempty"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Shape  *ShapeReport    `json:"shape,omitempty" yaml:"shape,omitempty"`
	Meshes []MeshData      `json:"meshes" yaml:"meshes"`
	Errors []EvalErrorData `json:"errors" yaml:"errors"`
}

// NewApp creates an App whose kernel and faceting resolution come from
// BREP_* environment variables.
func NewApp(log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	polyCfg, err := poly.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	sdfCfg, err := sdfx.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return &App{
		engine: engine.NewEngine(
			engine.WithLogger(log),
			engine.WithKernelConfig(polyCfg),
			engine.WithSDFConfig(sdfCfg),
		),
		log:    log,
	}, nil
}

// Evaluate takes script source and returns a report of the resulting shape,
// plus one mesh per part when meshes is set.
func (a *App) Evaluate(source string, meshes bool) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a shape.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the output format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Summarize the topology.
	report, err := a.report(s)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	result.Shape = report

	if !meshes {
		return result
	}

	// Step 4: Tessellate every part.
	parts, err := tessellate.Tessellate(s.Kernel(), s.Raw())
	if err != nil {
		a.log.Error("tessellation failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	for i, m := range parts {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}

func (a *App) report(s topo.Shape) (*ShapeReport, error) {
	area, err := topo.SurfaceArea(s)
	if err != nil {
		return nil, err
	}
	r := &ShapeReport{
		Kind:     s.Kind().String(),
		ID:       s.ID().String(),
		Children: []string{},
		Area:     area,
	}
	for _, ch := range s.Children() {
		r.Children = append(r.Children, ch.Kind().String())
	}

	p, err := topo.CenterOfMass(s)
	switch {
	case errors.Is(err, topo.ErrZeroArea):
		a.log.Debug("no centroid for zero-area shape", "kind", r.Kind)
	case err != nil:
		return nil, err
	default:
		r.Centroid = &[3]float64{p.X, p.Y, p.Z}
	}
	return r, nil
}
