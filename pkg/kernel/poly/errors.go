package poly

import "github.com/pkg/errors"

var (
	// ErrNoArguments is returned when an operation receives no shapes.
	ErrNoArguments = errors.New("poly: no arguments")
	// ErrNoVolume is returned when volume making finds no enclosed region.
	ErrNoVolume = errors.New("poly: no enclosed volume")
	// ErrDegenerate is returned for zero-length edges, zero-area faces and
	// non-planar loops.
	ErrDegenerate = errors.New("poly: degenerate geometry")
	// ErrKind is returned when a shape of the wrong kind is supplied.
	ErrKind = errors.New("poly: unexpected shape kind")
)
