// Package shapespec defines the user-facing specifications of a random variable's shape,
// size and dims, and normalizes them into canonical values.
//
// A specification starts as a Spec: a tagged variant that is either none, a scalar or a
// sequence of elements (Elem). Each element is a dimension (concrete or symbolic, see Dim),
// a dimension name, an unnamed placeholder or an ellipsis.
//
// ConvertShape, ConvertSize and ConvertDims are the single normalization entry point for
// each concept. They return nil when nothing was given, otherwise an immutable Shape, Size
// or Dims.
//
// ## Glossary
//
//   - Shape: the final shape of a random variable. It may end with an ellipsis, meaning
//     "expand to fill the dimensions implied by the parameters".
//   - Size: the number of independent draws, prepended to a distribution's support shape.
//     It never contains an ellipsis.
//   - Dims: names of the dimensions of a random variable, resolved against a model's
//     registry of dimension lengths.
package shapespec

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
)

// Dim is the length of one axis: either a concrete non-negative integer or a symbolic
// length identified by its name.
//
// The zero value is the concrete dimension 0.
type Dim struct {
	value  int
	symbol string
}

// Int returns a concrete dimension. It panics if n is negative.
func Int(n int) Dim {
	if n < 0 {
		exceptions.Panicf("shapespec.Int(%d): dimensions cannot be negative", n)
	}
	return Dim{value: n}
}

// Symbol returns a symbolic dimension with the given name. It panics if name is empty.
func Symbol(name string) Dim {
	if name == "" {
		exceptions.Panicf("shapespec.Symbol(): symbolic dimensions must have a name")
	}
	return Dim{value: -1, symbol: name}
}

// IsSymbolic returns whether the dimension is only known symbolically.
func (d Dim) IsSymbolic() bool { return d.symbol != "" }

// Value returns the concrete value of the dimension, and false if it is symbolic.
func (d Dim) Value() (int, bool) {
	if d.IsSymbolic() {
		return 0, false
	}
	return d.value, true
}

// Symbol returns the name of a symbolic dimension, or "" for concrete ones.
func (d Dim) Symbol() string { return d.symbol }

// IsOne returns whether the dimension is the concrete value 1, the broadcastable dimension.
func (d Dim) IsOne() bool { return !d.IsSymbolic() && d.value == 1 }

// String implements fmt.Stringer.
func (d Dim) String() string {
	if d.IsSymbolic() {
		return d.symbol
	}
	return strconv.Itoa(d.value)
}

// Ints converts concrete values to dimensions.
func Ints(values ...int) []Dim {
	dims := make([]Dim, len(values))
	for i, v := range values {
		dims[i] = Int(v)
	}
	return dims
}

// ToInts converts dimensions to their concrete values.
// It returns false if any of them is symbolic.
func ToInts(dims []Dim) ([]int, bool) {
	values := make([]int, len(dims))
	for i, d := range dims {
		v, ok := d.Value()
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// EqualDims returns whether the two lists of dimensions are the same.
func EqualDims(a, b []Dim) bool {
	return slices.Equal(a, b)
}

// DimsString formats dimensions as a tuple, e.g. "(2, n, 3)".
func DimsString(dims []Dim) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = d.String()
	}
	return tupleString(parts)
}

func tupleString(parts []string) string {
	if len(parts) == 1 {
		return fmt.Sprintf("(%s,)", parts[0])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
