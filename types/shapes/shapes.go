// Package shapes defines the concrete Shape (DType plus dimensions) of realized values.
//
// Realized values are the sample tensors (see package tensors) and the values of the
// StableHLO sampling programs (see package backends/stablehlo). User-supplied shape
// specifications, which may be symbolic or end with an ellipsis, live in package shapespec.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/rvshape/internal/utils"
	"github.com/pkg/errors"
)

// Shape of a realized value: its DType and the dimension of each axis.
//
// Use Make to create a new shape.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape structure filled with the values given.
//
// Dimensions of 0 are accepted (empty tensors), negative dimensions panic.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim < 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension < 0", s)
		}
	}
	return s
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. A "zero" shape, that is just instantiating it with Shape{} will be invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of axes.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar, that is there are no axes (rank==0).
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Size returns the number of elements of the shape: the product of its dimensions.
// A scalar has size 1.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s.Dimensions {
		size *= dim
	}
	return size
}

// Memory returns the number of bytes used to store a value of this shape.
func (s Shape) Memory() uintptr {
	return s.DType.Memory() * uintptr(s.Size())
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{DType: s.DType, Dimensions: slices.Clone(s.Dimensions)}
}

// Equal compares two shapes for equality: dtype and dimensions are compared.
func (s Shape) Equal(s2 Shape) bool {
	return s.DType == s2.DType && slices.Equal(s.Dimensions, s2.Dimensions)
}

// EqualDimensions compares only the dimensions of the shapes.
func (s Shape) EqualDimensions(s2 Shape) bool {
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Check that the shape has the given dtype and dimensions, returning an error otherwise.
func (s Shape) Check(dtype dtypes.DType, dimensions ...int) error {
	if s.DType != dtype {
		return errors.Errorf("shape %s has dtype %s, wanted %s", s, s.DType, dtype)
	}
	if !slices.Equal(s.Dimensions, dimensions) {
		return errors.Errorf("shape %s has dimensions %v, wanted %v", s, s.Dimensions, dimensions)
	}
	return nil
}

// String implements fmt.Stringer, and pretty-prints the shape, e.g. "(Float64)[2 3]".
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}

// ToStableHLO returns the ToStableHLO representation of the shape's type, e.g. "tensor<2x3xf64>".
func (s Shape) ToStableHLO() string {
	var sb strings.Builder
	sb.WriteString("tensor<")
	for _, dim := range s.Dimensions {
		fmt.Fprintf(&sb, "%dx", dim)
	}
	sb.WriteString(utils.DTypeToStableHLO(s.DType))
	sb.WriteString(">")
	return sb.String()
}
