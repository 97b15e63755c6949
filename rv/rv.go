// Package rv resolves the size of random variables from the user's shape, size, dims and observed hints.
//
// Creation of a random variable goes through two steps:
//
//  1. FindSize turns the shape or size hints into the size used to create the variable, along with the
//     number of dimensions expected of the result.
//  2. Once created, MaybeResize compares the actual rank of the variable with the expected one and, if
//     needed, expands the variable in place or rebuilds it. The decision itself is taken by PlanResize,
//     which is a pure function.
//
// After that, dims or observed values may add leading dimensions, see ResizeFromDims and ResizeFromObserved.
package rv

import (
	"fmt"

	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/pkg/errors"
)

// Unknown is the value of dimension counts that can't be determined before the variable is created.
const Unknown = -1

var (
	// ErrUnknownDims is returned when a dimension name used to resize a variable has no known length.
	ErrUnknownDims = errors.New("unknown dimensions")

	// ErrShape is returned for a shape incompatible with the distribution, e.g. with fewer
	// dimensions than the support of the distribution.
	ErrShape = errors.New("invalid shape")

	// ErrShapeMismatch is returned when a variable can't be created with the expected number of dimensions
	// after all resize attempts. It signals an inconsistency in the shape inference of the variable, and
	// is always wrapped in a *ShapeError.
	ErrShapeMismatch = errors.New("failed to create the random variable with the expected dimensionality")
)

// Variable is a random variable whose dimensions are known, possibly symbolically.
type Variable interface {
	// Rank is the number of dimensions.
	Rank() int

	// Dims returns the dimensions of the variable.
	Dims() []shapespec.Dim
}

// Expander is implemented by variables that can be resized in place: Expand returns the variable
// with newSize prepended to its current dimensions.
type Expander interface {
	Expand(newSize shapespec.Size) (Variable, error)
}

// Factory creates a variable from scratch with the given size, or with the size implied by its
// parameters alone if size is nil.
type Factory interface {
	Create(size *shapespec.Size) (Variable, error)
}

// FactoryFunc adapts a function to a Factory.
type FactoryFunc func(size *shapespec.Size) (Variable, error)

// Create implements Factory.
func (f FactoryFunc) Create(size *shapespec.Size) (Variable, error) { return f(size) }

// Model is a registry of named dimensions lengths.
type Model interface {
	// DimLength returns the length associated with the dimension name, and whether it is known.
	DimLength(name string) (shapespec.Dim, bool)
}

// Shaped values know their dimensions. Observed values that don't implement Shaped are converted first.
type Shaped interface {
	Dimensions() []int
}

// ShapeError is returned (wrapping ErrShapeMismatch) when a variable doesn't have the expected rank.
type ShapeError struct {
	Actual, Expected int
}

// Error implements error.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: this indicates a severe problem in the shape inference of the variable (actual=%d, expected=%d)",
		ErrShapeMismatch, e.Actual, e.Expected)
}

// Unwrap returns ErrShapeMismatch.
func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// ShapeWarning describes a variable created with a rank different from what the requested size implied.
// It is not an error: the variable is kept with its actual rank.
type ShapeWarning struct {
	SizeRank, NDimSupp, Actual int
}

// String implements fmt.Stringer.
func (w *ShapeWarning) String() string {
	return fmt.Sprintf("You may have expected a (%d+%d)-dimensional RV, but the resulting RV will be %d-dimensional.",
		w.SizeRank, w.NDimSupp, w.Actual)
}

// Option configures MaybeResize.
type Option func(*options)

type options struct {
	warningHandler func(*ShapeWarning)
}

// WithWarningHandler sets a handler called with every shape warning, besides the logged warning.
func WithWarningHandler(handler func(*ShapeWarning)) Option {
	return func(o *options) {
		o.warningHandler = handler
	}
}
