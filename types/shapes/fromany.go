package shapes

import (
	"fmt"
	"reflect"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// FromAnyValue attempts to convert a Go "any" value to its expected shape.
// Accepted values are plain-old-data (POD) types (ints, floats, bools), slices (or multiple level of slices) of POD,
// and slices of `any` holding those.
//
// Slices of `any` take the DType of their first leaf, and all leaves must share it.
//
// Example:
//
//	shape := shapes.FromAnyValue([][]float64{{0, 0}}) // Returns shape (Float64)[1 2]
func FromAnyValue(v any) (shape Shape, err error) {
	if v == nil {
		return Invalid(), errors.New("cannot take the shape of a nil value")
	}
	err = shapeForAnyValueRecursive(&shape, reflect.ValueOf(v))
	return
}

func shapeForAnyValueRecursive(shape *Shape, v reflect.Value) error {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return errors.New("nil element not valid for shape conversion")
		}
		v = v.Elem()
	}
	t := v.Type()
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		// If it's not a slice, it must be one of the supported scalar types.
		dtype := dtypes.FromGoType(t)
		if dtype == dtypes.InvalidDType {
			return errors.Errorf("cannot convert type %q to a valid shape (maybe type not supported yet?)", t)
		}
		if shape.DType != dtypes.InvalidDType && shape.DType != dtype {
			return errors.Errorf("mixed data types %s and %s in value", shape.DType, dtype)
		}
		shape.DType = dtype
		return nil
	}

	// Slice: recurse into its elements (again slices or a supported POD).
	shape.Dimensions = append(shape.Dimensions, v.Len())
	shapePrefix := shape.Clone()

	// The first element is the reference
	if v.Len() == 0 {
		return errors.Errorf("value with empty slice not valid for shape conversion: %T: %v -- it wouldn't be possible to figure out the inner dimensions", v.Interface(), v)
	}
	err := shapeForAnyValueRecursive(shape, v.Index(0))
	if err != nil {
		return err
	}

	// Test that other elements have the same shape as the first one.
	for ii := 1; ii < v.Len(); ii++ {
		shapeTest := shapePrefix.Clone()
		shapeTest.DType = shape.DType
		err = shapeForAnyValueRecursive(&shapeTest, v.Index(ii))
		if err != nil {
			return err
		}
		if !shape.Equal(shapeTest) {
			return fmt.Errorf("sub-slices have irregular shapes, found shapes %q, and %q", shape, shapeTest)
		}
	}
	return nil
}
