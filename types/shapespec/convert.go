package shapespec

import (
	"github.com/pkg/errors"
)

// Shape is a normalized shape specification: the dimensions of a random variable,
// optionally followed by an ellipsis.
type Shape struct {
	Dims     []Dim
	Ellipsis bool
}

// Len returns the number of elements of the shape, counting the ellipsis.
func (s *Shape) Len() int {
	if s.Ellipsis {
		return len(s.Dims) + 1
	}
	return len(s.Dims)
}

// Spec converts the shape back to its specification.
func (s *Shape) Spec() Spec {
	elems := make([]Elem, 0, s.Len())
	for _, d := range s.Dims {
		elems = append(elems, D(d))
	}
	if s.Ellipsis {
		elems = append(elems, Ellipsis)
	}
	return Spec{kind: SpecSequence, elems: elems}
}

// String implements fmt.Stringer, e.g. "(2, 3, ...)".
func (s *Shape) String() string {
	if s == nil {
		return "None"
	}
	return s.Spec().String()
}

// Size is a normalized size specification: the number of independent draws along each
// of the leading dimensions of a random variable.
type Size struct {
	Dims []Dim
}

// NewSize returns a Size with the given dimensions.
func NewSize(dims ...Dim) *Size { return &Size{Dims: append(make([]Dim, 0, len(dims)), dims...)} }

// Len returns the number of dimensions of the size.
func (s *Size) Len() int { return len(s.Dims) }

// Spec converts the size back to its specification.
func (s *Size) Spec() Spec {
	elems := make([]Elem, len(s.Dims))
	for i, d := range s.Dims {
		elems[i] = D(d)
	}
	return Spec{kind: SpecSequence, elems: elems}
}

// String implements fmt.Stringer, e.g. "(100,)".
func (s *Size) String() string {
	if s == nil {
		return "None"
	}
	return DimsString(s.Dims)
}

// Dims is a normalized dims specification: the names of the dimensions of a random
// variable, optionally followed by an ellipsis. Empty names are unnamed placeholders.
type Dims struct {
	Names    []string
	Ellipsis bool
}

// Len returns the number of elements of dims, counting the ellipsis.
func (d *Dims) Len() int {
	if d.Ellipsis {
		return len(d.Names) + 1
	}
	return len(d.Names)
}

// Spec converts dims back to its specification.
func (d *Dims) Spec() Spec {
	s := NamesSpec(d.Names...)
	if d.Ellipsis {
		s.elems = append(s.elems, Ellipsis)
	}
	return s
}

// String implements fmt.Stringer, e.g. "(city, None, ...)".
func (d *Dims) String() string {
	if d == nil {
		return "None"
	}
	return d.Spec().String()
}

// ConvertShape processes a user-provided shape into nil (not given) or a valid Shape.
//
// Scalars must be dimensions; sequences may hold dimensions and a final ellipsis.
func ConvertShape(spec Spec) (*Shape, error) {
	if spec.IsNone() {
		return nil, nil
	}
	if spec.Kind() == SpecScalar && spec.elems[0].Kind != ElemDim {
		return nil, errors.Wrapf(ErrType, "the `shape` parameter must be a sequence, a dimension or an int, got %s %q",
			spec.elems[0].Kind, spec.elems[0])
	}
	shape := &Shape{Dims: make([]Dim, 0, len(spec.elems))}
	for i, e := range spec.elems {
		switch e.Kind {
		case ElemDim:
			shape.Dims = append(shape.Dims, e.Dim)
		case ElemEllipsis:
			if i != len(spec.elems)-1 {
				return nil, errors.Wrapf(ErrValue, "ellipsis in `shape` may only appear in the last position, got %s", spec)
			}
			shape.Ellipsis = true
		default:
			return nil, errors.Wrapf(ErrType, "the `shape` parameter can only hold dimensions and a final ellipsis, got %s %q in %s",
				e.Kind, e, spec)
		}
	}
	return shape, nil
}

// ConvertSize processes a user-provided size into nil (not given) or a valid Size.
//
// Sizes hold only dimensions: any ellipsis is an error.
func ConvertSize(spec Spec) (*Size, error) {
	if spec.IsNone() {
		return nil, nil
	}
	size := &Size{Dims: make([]Dim, 0, len(spec.elems))}
	for _, e := range spec.elems {
		switch e.Kind {
		case ElemDim:
			size.Dims = append(size.Dims, e.Dim)
		case ElemEllipsis:
			return nil, errors.Wrapf(ErrValue, "the `size` parameter cannot contain an ellipsis, got %s", spec)
		default:
			return nil, errors.Wrapf(ErrType, "the `size` parameter must be a sequence, a dimension or an int, got %s %q in %s",
				e.Kind, e, spec)
		}
	}
	return size, nil
}

// ConvertDims processes user-provided dims into nil (not given) or valid Dims.
//
// Scalars must be names; sequences may hold names, unnamed placeholders and a final ellipsis.
func ConvertDims(spec Spec) (*Dims, error) {
	if spec.IsNone() {
		return nil, nil
	}
	if spec.Kind() == SpecScalar && spec.elems[0].Kind != ElemName {
		return nil, errors.Wrapf(ErrType, "the `dims` parameter must be a sequence or a name, got %s %q",
			spec.elems[0].Kind, spec.elems[0])
	}
	dims := &Dims{Names: make([]string, 0, len(spec.elems))}
	for i, e := range spec.elems {
		switch e.Kind {
		case ElemName:
			dims.Names = append(dims.Names, e.Name)
		case ElemUnnamed:
			dims.Names = append(dims.Names, "")
		case ElemEllipsis:
			if i != len(spec.elems)-1 {
				return nil, errors.Wrapf(ErrValue, "ellipsis in `dims` may only appear in the last position, got %s", spec)
			}
			dims.Ellipsis = true
		default:
			return nil, errors.Wrapf(ErrType, "the `dims` parameter can only hold names, None and a final ellipsis, got %s %q in %s",
				e.Kind, e, spec)
		}
	}
	return dims, nil
}
