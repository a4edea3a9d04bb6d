// Package kernelerr defines the kernel's closed error taxonomy.
//
// Every fallible kernel operation returns one of these kinds through the
// normal error channel; nothing is recovered internally (see SPEC_FULL.md
// §7). Construction goes through chk.Err for message formatting, the same
// helper the teacher codebase uses for its own error values.
package kernelerr

import (
	"fmt"

	"github.com/cpmech/gosl/chk"
)

// Kind is one of the closed set of error categories named in the spec.
type Kind int

const (
	// Input errors
	InvalidCage Kind = iota
	InvalidFace
	ParameterOutOfRange
	InvalidDraftAngle
	InvalidWallThickness
	InvalidNURBSData

	// State errors
	NotInitialized
	AlreadyRefined

	// Numerical errors
	DegenerateMetric
	DegenerateTriangle
	EigenSolverDidNotConverge
	FittingToleranceExceeded
	BooleanOperationFailed
	NullSurface

	// Region-algebra errors
	SplitNotSeparating
	MultiFaceFitDeferred

	// Cancellation
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidCage:
		return "InvalidCage"
	case InvalidFace:
		return "InvalidFace"
	case ParameterOutOfRange:
		return "ParameterOutOfRange"
	case InvalidDraftAngle:
		return "InvalidDraftAngle"
	case InvalidWallThickness:
		return "InvalidWallThickness"
	case InvalidNURBSData:
		return "InvalidNURBSData"
	case NotInitialized:
		return "NotInitialized"
	case AlreadyRefined:
		return "AlreadyRefined"
	case DegenerateMetric:
		return "DegenerateMetric"
	case DegenerateTriangle:
		return "DegenerateTriangle"
	case EigenSolverDidNotConverge:
		return "EigenSolverDidNotConverge"
	case FittingToleranceExceeded:
		return "FittingToleranceExceeded"
	case BooleanOperationFailed:
		return "BooleanOperationFailed"
	case NullSurface:
		return "NullSurface"
	case SplitNotSeparating:
		return "SplitNotSeparating"
	case MultiFaceFitDeferred:
		return "MultiFaceFitDeferred"
	case Cancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// Error is the concrete error value returned by the kernel.
type Error struct {
	Kind    Kind
	Message string
	Face    *int       // offending control-face id, if applicable
	Vertex  *int       // offending vertex id, if applicable
	Param   *[2]float64 // offending (u,v), if applicable
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an Error of the given kind with a chk.Err-formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: chk.Err(format, args...).Error()}
}

// WithFace attaches an offending face id to an existing error.
func (e *Error) WithFace(face int) *Error {
	e.Face = &face
	return e
}

// WithVertex attaches an offending vertex id to an existing error.
func (e *Error) WithVertex(v int) *Error {
	e.Vertex = &v
	return e
}

// WithParam attaches an offending (u,v) pair to an existing error.
func (e *Error) WithParam(u, v float64) *Error {
	e.Param = &[2]float64{u, v}
	return e
}

// Is reports whether err is a *Error of the given kind, following the
// standard library's errors.Is convention loosely (no wrapping chain is
// needed since the kernel never wraps these further).
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}
