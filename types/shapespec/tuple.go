package shapespec

import (
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// ToTuple converts nil, integers, sequences of integers and sizes to a tuple of ints.
//
// nil and empty sequences return an empty tuple, a scalar n returns (n,).
// Values are validated as in CheckShapeType.
func ToTuple(v any) ([]int, error) {
	if v == nil {
		return []int{}, nil
	}
	if size, ok := v.(*Size); ok && size == nil {
		return []int{}, nil
	}
	return CheckShapeType(v)
}

// CheckShapeType validates that v represents a concrete shape and returns it as a tuple of ints.
//
// Accepted values are integers, integral floats, concrete Dim values, *Size with concrete
// dimensions, and flat slices or arrays of those. Anything else returns an ErrType error.
func CheckShapeType(v any) ([]int, error) {
	tuple, err := checkShapeType(v)
	if err != nil {
		return nil, errors.WithMessagef(err, "supplied value %v does not represent a valid shape", v)
	}
	return tuple, nil
}

func checkShapeType(v any) ([]int, error) {
	switch x := v.(type) {
	case nil:
		return nil, errors.Wrap(ErrType, "nil is not a valid integer")
	case *Size:
		if x == nil {
			return nil, errors.Wrap(ErrType, "nil is not a valid integer")
		}
		return concreteDims(x.Dims)
	case []Dim:
		return concreteDims(x)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		tuple := make([]int, rv.Len())
		for i := range rv.Len() {
			n, err := integralValue(rv.Index(i))
			if err != nil {
				return nil, err
			}
			tuple[i] = n
		}
		return tuple, nil
	}
	n, err := integralValue(rv)
	if err != nil {
		return nil, err
	}
	return []int{n}, nil
}

func concreteDims(dims []Dim) ([]int, error) {
	tuple := make([]int, len(dims))
	for i, d := range dims {
		n, ok := d.Value()
		if !ok {
			return nil, errors.Wrapf(ErrType, "symbolic dimension %s is not a valid integer", d)
		}
		tuple[i] = n
	}
	return tuple, nil
}

func integralValue(rv reflect.Value) (int, error) {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return 0, errors.Wrap(ErrType, "nil is not a valid integer")
		}
		rv = rv.Elem()
	}
	if d, ok := rv.Interface().(Dim); ok {
		n, ok := d.Value()
		if !ok {
			return 0, errors.Wrapf(ErrType, "symbolic dimension %s is not a valid integer", d)
		}
		return n, nil
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, errors.Wrapf(ErrType, "value %v is not a valid integer", f)
		}
		return int(f), nil
	default:
		return 0, errors.Wrapf(ErrType, "value %v (type %s) is not a valid integer", rv.Interface(), rv.Type())
	}
}
