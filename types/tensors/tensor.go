// Package tensors implements a host Tensor used to hold realized samples and observed data.
//
// Values are stored as float64, whatever the DType of the source data: the DType is kept only as
// metadata (it is reported by Shape). A Tensor is a strided view over its storage, so views that
// insert new axes or broadcast axes (stride 0) share the storage with the original tensor and
// are never copied until Materialize (or Flat) is called.
//
// There are various ways to construct a Tensor:
//
//   - FromFlat[T Numeric](data []T, dimensions ...int): from flat row-major data.
//   - FromFloat16(data []float16.Float16, dimensions ...int): from half-precision data, as returned
//     by accelerators.
//   - FromScalar[T Numeric](value T): a scalar tensor.
//   - FromAnyValue(value any): from a scalar or a (possibly nested) slice of numbers.
package tensors

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/rvshape/types/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// Numeric are the Go types accepted as tensor data.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// Tensor is a multidimensional array of float64 values, possibly a view of another tensor.
type Tensor struct {
	dtype   dtypes.DType
	data    []float64
	dims    []int
	strides []int
	offset  int
}

// rowMajorStrides returns the strides of a contiguous row-major layout for dims.
func rowMajorStrides(dims []int) []int {
	strides := make([]int, len(dims))
	stride := 1
	for axis := len(dims) - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= dims[axis]
	}
	return strides
}

func sizeOf(dims []int) int {
	size := 1
	for _, dim := range dims {
		size *= dim
	}
	return size
}

func newContiguous(dtype dtypes.DType, data []float64, dims []int) *Tensor {
	for _, dim := range dims {
		if dim < 0 {
			exceptions.Panicf("tensors: negative dimension in %v", dims)
		}
	}
	if len(data) != sizeOf(dims) {
		exceptions.Panicf("tensors: data size is %d, but dimensions %v have size %d", len(data), dims, sizeOf(dims))
	}
	return &Tensor{
		dtype:   dtype,
		data:    data,
		dims:    slices.Clone(dims),
		strides: rowMajorStrides(dims),
	}
}

// FromFlat creates a tensor with the given dimensions from the flattened row-major data.
// The data is converted (copied) to float64, and the DType is inferred from T.
//
// It panics if the size of data doesn't match the dimensions.
func FromFlat[T Numeric](data []T, dimensions ...int) *Tensor {
	values := make([]float64, len(data))
	for ii, v := range data {
		values[ii] = float64(v)
	}
	var zero T
	dtype := dtypes.FromGoType(reflect.TypeOf(zero))
	if dtype == dtypes.InvalidDType {
		dtype = dtypes.Float64
	}
	return newContiguous(dtype, values, dimensions)
}

// FromFloat16 creates a Float16 tensor from the flattened row-major data.
func FromFloat16(data []float16.Float16, dimensions ...int) *Tensor {
	values := make([]float64, len(data))
	for ii, v := range data {
		values[ii] = float64(v.Float32())
	}
	return newContiguous(dtypes.Float16, values, dimensions)
}

// FromScalar creates a tensor of rank 0 holding value.
func FromScalar[T Numeric](value T) *Tensor {
	return FromFlat([]T{value})
}

// Full returns a Float64 tensor with the given dimensions filled with value.
func Full(value float64, dimensions ...int) *Tensor {
	data := make([]float64, sizeOf(dimensions))
	for ii := range data {
		data[ii] = value
	}
	return newContiguous(dtypes.Float64, data, dimensions)
}

// FromAnyValue converts a scalar or a regular (possibly nested) slice of numbers to a tensor.
// If value is already a *Tensor it is returned as is.
//
// Booleans are converted to 0 and 1.
func FromAnyValue(value any) (*Tensor, error) {
	if t, ok := value.(*Tensor); ok {
		return t, nil
	}
	shape, err := shapes.FromAnyValue(value)
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot create tensor from %T", value)
	}
	data := make([]float64, 0, shape.Size())
	data, err = appendFlat(data, reflect.ValueOf(value))
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot create tensor from %T", value)
	}
	return newContiguous(shape.DType, data, shape.Dimensions), nil
}

var float16Type = reflect.TypeOf(float16.Float16(0))

func appendFlat(data []float64, v reflect.Value) ([]float64, error) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if v.Type() == float16Type {
		return append(data, float64(float16.Float16(v.Uint()).Float32())), nil
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		var err error
		for ii := range v.Len() {
			data, err = appendFlat(data, v.Index(ii))
			if err != nil {
				return nil, err
			}
		}
		return data, nil
	case reflect.Bool:
		if v.Bool() {
			return append(data, 1), nil
		}
		return append(data, 0), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return append(data, float64(v.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return append(data, float64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return append(data, v.Float()), nil
	default:
		return nil, errors.Errorf("unsupported value type %s", v.Type())
	}
}

// DType of the source data.
func (t *Tensor) DType() dtypes.DType { return t.dtype }

// Shape returns the tensor shape, with the source DType.
func (t *Tensor) Shape() shapes.Shape { return shapes.Make(t.dtype, t.dims...) }

// Dimensions returns a copy of the tensor dimensions.
func (t *Tensor) Dimensions() []int { return slices.Clone(t.dims) }

// Rank is the number of axes.
func (t *Tensor) Rank() int { return len(t.dims) }

// Size is the number of elements.
func (t *Tensor) Size() int { return sizeOf(t.dims) }

// IsScalar returns whether the tensor has rank 0.
func (t *Tensor) IsScalar() bool { return len(t.dims) == 0 }

// IsView returns whether the tensor is not a contiguous row-major layout of its own storage.
func (t *Tensor) IsView() bool {
	return t.offset != 0 || len(t.data) != t.Size() || !slices.Equal(t.strides, rowMajorStrides(t.dims))
}

func (t *Tensor) position(indices []int) int {
	if len(indices) != len(t.dims) {
		exceptions.Panicf("tensors: %d indices given for tensor of rank %d", len(indices), len(t.dims))
	}
	pos := t.offset
	for axis, idx := range indices {
		if idx < 0 || idx >= t.dims[axis] {
			exceptions.Panicf("tensors: index %d out of bounds for axis %d with dimension %d", idx, axis, t.dims[axis])
		}
		pos += idx * t.strides[axis]
	}
	return pos
}

// At returns the value at the given indices, one per axis.
//
// It panics if the number of indices doesn't match the rank or if an index is out of bounds.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.position(indices)]
}

// Value returns the value of a scalar tensor (or of a tensor with a single element).
func (t *Tensor) Value() float64 {
	if t.Size() != 1 {
		exceptions.Panicf("tensors: Value() requires a single element, tensor has shape %s", t.Shape())
	}
	return t.At(make([]int, t.Rank())...)
}

// Flat returns the values of the tensor in row-major order, as a new slice.
func (t *Tensor) Flat() []float64 {
	flat := make([]float64, 0, t.Size())
	for indices := range shapes.Make(t.dtype, t.dims...).Iter() {
		flat = append(flat, t.data[t.position(indices)])
	}
	return flat
}

// Materialize returns a contiguous copy of the tensor: views are expanded and broadcast axes
// are replicated.
func (t *Tensor) Materialize() *Tensor {
	return newContiguous(t.dtype, t.Flat(), t.dims)
}

// Equal returns whether both tensors have the same dimensions and values.
// NaN values are considered equal to each other.
func (t *Tensor) Equal(other *Tensor) bool {
	if !slices.Equal(t.dims, other.dims) {
		return false
	}
	return slices.EqualFunc(t.Flat(), other.Flat(), func(a, b float64) bool {
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	})
}

// InDelta returns whether both tensors have the same dimensions and |t - other| <= delta for every element.
func (t *Tensor) InDelta(other *Tensor, delta float64) bool {
	if !slices.Equal(t.dims, other.dims) {
		return false
	}
	return slices.EqualFunc(t.Flat(), other.Flat(), func(a, b float64) bool {
		return math.Abs(a-b) <= delta
	})
}

// HasNaN returns whether any element is NaN.
func (t *Tensor) HasNaN() bool {
	return slices.ContainsFunc(t.Flat(), math.IsNaN)
}

// Mean of all elements. It returns NaN for empty tensors.
func (t *Tensor) Mean() float64 {
	if t.Size() == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range t.Flat() {
		sum += v
	}
	return sum / float64(t.Size())
}

// String implements fmt.Stringer. Large tensors are summarized with their shape only.
func (t *Tensor) String() string {
	if t.Size() > 100 {
		return fmt.Sprintf("%s{...}", t.Shape())
	}
	var sb strings.Builder
	sb.WriteString(t.Shape().String())
	flat := t.Flat()
	var pos int
	var write func(axis int)
	write = func(axis int) {
		if axis == len(t.dims) {
			fmt.Fprintf(&sb, "%g", flat[pos])
			pos++
			return
		}
		sb.WriteString("[")
		for ii := range t.dims[axis] {
			if ii > 0 {
				sb.WriteString(" ")
			}
			write(axis + 1)
		}
		sb.WriteString("]")
	}
	if t.Size() == 0 {
		sb.WriteString("[]")
		return sb.String()
	}
	write(0)
	return sb.String()
}
