package shapeinference

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/pkg/errors"
)

// ErrBroadcast is returned when shapes cannot be broadcast together.
var ErrBroadcast = errors.New("shapes do not broadcast")

// incompatible marks an axis whose dimensions cannot be broadcast.
const incompatible = -1

// ShapesBroadcasting returns the shape resulting from broadcasting multiple shapes, following NumPy's
// broadcasting rules.
//
// Each shape is anything shapespec.CheckShapeType accepts (an int, a slice of ints, ...), and all of
// them are validated before broadcasting starts: invalid ones return a shapespec.ErrType error.
//
// If the shapes don't broadcast together, it returns (nil, nil) if raiseException is false, and an
// ErrBroadcast error listing all shapes otherwise. With no shapes it returns an empty shape.
func ShapesBroadcasting(raiseException bool, shapes ...any) ([]int, error) {
	tuples := make([][]int, len(shapes))
	for i, s := range shapes {
		tuple, err := shapespec.CheckShapeType(s)
		if err != nil {
			return nil, err
		}
		tuples[i] = tuple
	}
	result, ok := broadcastTuples(tuples)
	if !ok {
		if raiseException {
			return nil, errors.Wrapf(ErrBroadcast, "supplied shapes %s do not broadcast together", tuplesString(tuples))
		}
		return nil, nil
	}
	return result, nil
}

// broadcastTuples reduces the shapes pairwise, aligned on the trailing axes.
func broadcastTuples(tuples [][]int) ([]int, bool) {
	if len(tuples) == 0 {
		return []int{}, true
	}
	x := slices.Clone(tuples[0])
	for _, y := range tuples[1:] {
		if len(x) < len(y) {
			x, y = slices.Clone(y), x
		}
		offset := len(x) - len(y)
		for axis, j := range y {
			i := x[offset+axis]
			switch {
			case i == 1:
				x[offset+axis] = j
			case j == 1 || i == j:
				// x keeps i.
			default:
				x[offset+axis] = incompatible
			}
		}
		if slices.Contains(x, incompatible) {
			return nil, false
		}
	}
	return x, true
}

// BroadcastDistSamplesShape applies shape broadcasting to the shapes of draws from random variables,
// where each shape may be prefixed with the size of the draw.
//
// The size prefix is ignored to decide whether shapes broadcast together, and is kept in the result if
// any of the shapes had it. A nil size means there is no size prefix, and shapes are simply broadcast.
//
// Example:
//
//	BroadcastDistSamplesShape([][]int{{100}, {100, 5}, {100, 4, 5}}, []int{100}) // -> [100 4 5]
//	BroadcastDistSamplesShape([][]int{{100}, {5}, {4, 5}}, []int{100})           // -> [100 4 5]
//	BroadcastDistSamplesShape([][]int{{1}, {5}, {4, 5}}, []int{100})             // -> [4 5]
func BroadcastDistSamplesShape(shapes [][]int, size []int) ([]int, error) {
	if size == nil {
		result, ok := broadcastTuples(shapes)
		if !ok {
			return nil, errors.Wrapf(ErrBroadcast, "cannot broadcast provided shapes %s given size: None", tuplesString(shapes))
		}
		return result, nil
	}

	// Sample shapes without the size prefix.
	spShapes := StripSizePrefix(shapes, size)
	broadcastShape, ok := broadcastTuples(spShapes)
	if !ok {
		return nil, errors.Wrapf(ErrBroadcast, "cannot broadcast provided shapes %s given size: %s",
			tuplesString(shapes), tupleString(size))
	}
	broadcastableShapes := make([][]int, len(shapes))
	for i, shape := range shapes {
		if HasSizePrefix(shape, size) {
			// If size prefixes the shape, then broadcasting axes are added in the middle.
			pShape := slices.Clone(size)
			pShape = append(pShape, ones(len(broadcastShape)-len(spShapes[i]))...)
			pShape = append(pShape, shape[len(size):]...)
			broadcastableShapes[i] = pShape
		} else {
			broadcastableShapes[i] = shape
		}
	}
	result, ok := broadcastTuples(broadcastableShapes)
	if !ok {
		return nil, errors.Wrapf(ErrBroadcast, "supplied shapes %s do not broadcast together", tuplesString(broadcastableShapes))
	}
	return result, nil
}

// HasSizePrefix returns whether shape starts with the size prefix.
// An empty size prefixes every shape.
func HasSizePrefix(shape, size []int) bool {
	return len(shape) >= len(size) && slices.Equal(shape[:len(size)], size)
}

// StripSizePrefix returns the shapes with the size prefix removed from those that have it.
func StripSizePrefix(shapes [][]int, size []int) [][]int {
	stripped := make([][]int, len(shapes))
	for i, shape := range shapes {
		if HasSizePrefix(shape, size) {
			stripped[i] = shape[len(size):]
		} else {
			stripped[i] = shape
		}
	}
	return stripped
}

func ones(n int) []int {
	s := make([]int, max(n, 0))
	for i := range s {
		s[i] = 1
	}
	return s
}

// BroadcastDims broadcasts dimensions that may be symbolic, aligned on the trailing axes.
//
// For each axis: a dimension of 1 takes the other one; equal dimensions (including symbols with
// the same name) are kept; a symbol facing a concrete dimension other than 1 takes the concrete
// one, its equality is then only checked at run time. Different symbols, or different concrete
// dimensions, return an ErrBroadcast error.
func BroadcastDims(dims ...[]shapespec.Dim) ([]shapespec.Dim, error) {
	if len(dims) == 0 {
		return []shapespec.Dim{}, nil
	}
	x := slices.Clone(dims[0])
	for _, y := range dims[1:] {
		if len(x) < len(y) {
			x, y = slices.Clone(y), x
		}
		offset := len(x) - len(y)
		for axis, j := range y {
			i := x[offset+axis]
			switch {
			case i.IsOne():
				x[offset+axis] = j
			case j.IsOne() || i == j:
				// x keeps i.
			case i.IsSymbolic() && !j.IsSymbolic():
				x[offset+axis] = j
			case !i.IsSymbolic() && j.IsSymbolic():
				// x keeps the concrete i.
			default:
				return nil, errors.Wrapf(ErrBroadcast, "dimensions %s do not broadcast together", dimsListString(dims))
			}
		}
	}
	return x, nil
}

func tupleString(tuple []int) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = fmt.Sprint(v)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func tuplesString(tuples [][]int) string {
	parts := make([]string, len(tuples))
	for i, t := range tuples {
		parts[i] = tupleString(t)
	}
	return strings.Join(parts, ", ")
}

func dimsListString(dims [][]shapespec.Dim) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = shapespec.DimsString(d)
	}
	return strings.Join(parts, ", ")
}
