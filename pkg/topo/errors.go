package topo

import (
	"fmt"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/pkg/errors"
)

var (
	// ErrCast matches every *CastError.
	ErrCast = errors.New("topo: shape kind mismatch")
	// ErrZeroArea is reported when a centroid is requested for a shape
	// whose boundary has no area.
	ErrZeroArea = errors.New("topo: shape has zero surface area")
	// ErrNullShape is reported by operations given a handle that
	// references nothing, such as the Compound returned with an error.
	ErrNullShape = errors.New("topo: null shape")
)

// CastError reports a downcast to a kind the shape does not have.
type CastError struct {
	Expected kernel.ShapeKind
	Actual   kernel.ShapeKind
}

func (e *CastError) Error() string {
	return fmt.Sprintf("topo: cannot downcast %s to %s", e.Actual, e.Expected)
}

// Is makes errors.Is(err, ErrCast) hold for any CastError.
func (e *CastError) Is(target error) bool {
	return target == ErrCast
}

// OperationError reports a fault raised by a kernel operation. Err is the
// kernel's error, unchanged.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("topo: %s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
