package shapespec

import (
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrType is returned when a specification or one of its elements has a type that is not
	// valid for the concept: e.g. a dimension name in a shape, or a non-integral value.
	ErrType = errors.New("invalid type")

	// ErrValue is returned when a specification is well-typed but has an invalid value:
	// e.g. an ellipsis that is not in the last position.
	ErrValue = errors.New("invalid value")
)

// ElemKind enumerates the kinds of elements of a specification.
type ElemKind int

const (
	// ElemDim is a concrete or symbolic dimension, used by shapes and sizes.
	ElemDim ElemKind = iota

	// ElemName is a dimension name, used by dims.
	ElemName

	// ElemUnnamed is a placeholder for a dimension without a name, used by dims.
	ElemUnnamed

	// ElemEllipsis stands for "all the implied dimensions". Only valid as the last
	// element of shapes and dims.
	ElemEllipsis
)

// String implements fmt.Stringer.
func (k ElemKind) String() string {
	switch k {
	case ElemDim:
		return "dim"
	case ElemName:
		return "name"
	case ElemUnnamed:
		return "unnamed"
	case ElemEllipsis:
		return "ellipsis"
	default:
		return "invalid"
	}
}

// Elem is one element of a specification.
type Elem struct {
	Kind ElemKind
	Dim  Dim
	Name string
}

var (
	// Ellipsis element: only valid in the last position of shapes and dims.
	Ellipsis = Elem{Kind: ElemEllipsis}

	// Unnamed is the placeholder for a dimension without a name in dims.
	Unnamed = Elem{Kind: ElemUnnamed}
)

// I returns an element with a concrete dimension.
func I(n int) Elem { return Elem{Kind: ElemDim, Dim: Int(n)} }

// Sym returns an element with a symbolic dimension.
func Sym(name string) Elem { return Elem{Kind: ElemDim, Dim: Symbol(name)} }

// D returns an element holding the given dimension.
func D(d Dim) Elem { return Elem{Kind: ElemDim, Dim: d} }

// Name returns an element with a dimension name.
func Name(name string) Elem { return Elem{Kind: ElemName, Name: name} }

// String implements fmt.Stringer.
func (e Elem) String() string {
	switch e.Kind {
	case ElemDim:
		return e.Dim.String()
	case ElemName:
		return e.Name
	case ElemUnnamed:
		return "None"
	case ElemEllipsis:
		return "..."
	default:
		return "?"
	}
}

// SpecKind enumerates the variants of Spec.
type SpecKind int

const (
	// SpecNone means nothing was specified.
	SpecNone SpecKind = iota

	// SpecScalar holds exactly one element given on its own, e.g. `shape=5` or `dims="city"`.
	SpecScalar

	// SpecSequence holds zero or more elements, e.g. `shape=(2, 3)`.
	SpecSequence
)

// Spec is a user-supplied shape, size or dims specification, before normalization.
//
// The zero value is SpecNone.
type Spec struct {
	kind  SpecKind
	elems []Elem
}

// None returns the empty specification.
func None() Spec { return Spec{} }

// Scalar returns a specification with a single element given on its own.
func Scalar(e Elem) Spec { return Spec{kind: SpecScalar, elems: []Elem{e}} }

// Sequence returns a specification with the given elements.
func Sequence(elems ...Elem) Spec {
	return Spec{kind: SpecSequence, elems: append([]Elem{}, elems...)}
}

// IntsSpec returns a sequence specification of concrete dimensions.
func IntsSpec(values ...int) Spec {
	elems := make([]Elem, len(values))
	for i, v := range values {
		elems[i] = I(v)
	}
	return Spec{kind: SpecSequence, elems: elems}
}

// NamesSpec returns a sequence specification of dimension names.
// Empty names are taken as Unnamed placeholders.
func NamesSpec(names ...string) Spec {
	elems := make([]Elem, len(names))
	for i, name := range names {
		if name == "" {
			elems[i] = Unnamed
		} else {
			elems[i] = Name(name)
		}
	}
	return Spec{kind: SpecSequence, elems: elems}
}

// Kind returns the variant of the specification.
func (s Spec) Kind() SpecKind { return s.kind }

// IsNone returns whether nothing was specified.
func (s Spec) IsNone() bool { return s.kind == SpecNone }

// IsSymbolicScalar returns whether the specification is a single symbolic dimension.
func (s Spec) IsSymbolicScalar() bool {
	return s.kind == SpecScalar && s.elems[0].Kind == ElemDim && s.elems[0].Dim.IsSymbolic()
}

// Elems returns a copy of the elements of the specification.
func (s Spec) Elems() []Elem { return append([]Elem{}, s.elems...) }

// String implements fmt.Stringer.
func (s Spec) String() string {
	switch s.kind {
	case SpecNone:
		return "None"
	case SpecScalar:
		return s.elems[0].String()
	default:
		parts := make([]string, len(s.elems))
		for i, e := range s.elems {
			parts[i] = e.String()
		}
		return tupleString(parts)
	}
}

// SpecFromAny maps a plain Go value onto a Spec:
//
//   - nil: None.
//   - Spec, Elem or Dim: taken as is (the last two as scalars).
//   - any integer type: a scalar concrete dimension.
//   - string: a scalar dimension name.
//   - slices or arrays of the above, where nil elements are Unnamed placeholders
//     and Ellipsis marks an ellipsis: a sequence.
//
// Other types, and negative integers, are rejected.
func SpecFromAny(v any) (Spec, error) {
	switch x := v.(type) {
	case nil:
		return None(), nil
	case Spec:
		return x, nil
	case *Shape:
		if x == nil {
			return None(), nil
		}
		return x.Spec(), nil
	case *Size:
		if x == nil {
			return None(), nil
		}
		return x.Spec(), nil
	case *Dims:
		if x == nil {
			return None(), nil
		}
		return x.Spec(), nil
	case Elem, Dim, string:
		e, err := elemFromAny(x)
		if err != nil {
			return None(), err
		}
		return Scalar(e), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		e, err := elemFromAny(v)
		if err != nil {
			return None(), err
		}
		return Scalar(e), nil
	case reflect.Slice, reflect.Array:
		elems := make([]Elem, rv.Len())
		for i := range rv.Len() {
			e, err := elemFromAny(rv.Index(i).Interface())
			if err != nil {
				return None(), errors.WithMessagef(err, "element #%d of %v", i, v)
			}
			elems[i] = e
		}
		return Spec{kind: SpecSequence, elems: elems}, nil
	}
	return None(), errors.Wrapf(ErrType, "specification must be an int, a string, a dimension or a sequence of them, got %T", v)
}

func elemFromAny(v any) (Elem, error) {
	switch x := v.(type) {
	case nil:
		return Unnamed, nil
	case Elem:
		return x, nil
	case Dim:
		return D(x), nil
	case string:
		return Name(x), nil
	}
	rv := reflect.ValueOf(v)
	var n int64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = int64(rv.Uint())
	default:
		return Elem{}, errors.Wrapf(ErrType, "value %v (type %T) is not a valid specification element", v, v)
	}
	if n < 0 {
		return Elem{}, errors.Wrapf(ErrValue, "dimension %d cannot be negative", n)
	}
	return I(int(n)), nil
}
