// Package engine provides a Lisp scripting front end over the topo API.
// It wraps zygomys in a sandboxed environment in which scripts build
// faces and shells, aggregate them and reconstruct solids.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/brep/pkg/kernel/poly"
	"github.com/chazu/brep/pkg/kernel/sdfx"
	"github.com/chazu/brep/pkg/topo"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithKernelConfig sets the tolerances of the kernels scripts build in.
func WithKernelConfig(cfg poly.Config) Option {
	return func(e *Engine) { e.kernelCfg = cfg }
}

// WithSDFConfig sets the marching cubes resolution of curved primitives.
func WithSDFConfig(cfg sdfx.Config) Option {
	return func(e *Engine) { e.sdfCfg = cfg }
}

// Engine wraps the zygomys interpreter. Each call to Evaluate creates a
// fresh sandboxed environment and a fresh kernel for determinism, so no
// topology is shared between evaluations.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	kernelCfg poly.Config
	sdfCfg    sdfx.Config
	log       *slog.Logger
}

// NewEngine creates a new Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{kernelCfg: poly.DefaultConfig(), sdfCfg: sdfx.DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// Evaluate runs Lisp source and returns the shape produced by its last
// expression. A program whose value is not a shape yields an empty
// compound. The shape lives in a kernel of its own, reachable through
// Shape.Kernel.
//
// A timed-out evaluation is abandoned, not stopped: its goroutine keeps
// running until the script ends, but it only touches the kernel created
// for it, never the shapes of other evaluations.
//
// Return semantics:
//   - On success: returns shape + nil errors + nil error
//   - On parse/eval failure: returns null shape + eval errors + nil error
//   - On fatal failure (timeout, panic): returns null shape + nil + error
func (e *Engine) Evaluate(source string) (topo.Shape, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{shape: s, errors: evalErrs, err: err}
	}()

	s, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation)
	if err != nil {
		e.log.Error("evaluation failed", "generation", gen, "error", err)
	}
	return s, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (topo.Shape, []EvalError, error) {
	k := poly.New(poly.WithConfig(e.kernelCfg), poly.WithLogger(e.log))

	// Empty source is a valid program that produces an empty compound.
	if strings.TrimSpace(source) == "" {
		return topo.FromShapes(k).Shape, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, k, sdfx.New(k, e.sdfCfg))

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return topo.Shape{}, parseZygomysError(err), nil
	}

	out, err := env.Run()
	if err != nil {
		return topo.Shape{}, parseZygomysError(err), nil
	}

	if s, ok := out.(*sexpShape); ok {
		return s.shape, nil, nil
	}
	return topo.FromShapes(k).Shape, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
