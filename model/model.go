// Package model holds the named dimensions (coords) of a model and its registered random variables.
package model

import (
	"maps"
	"slices"

	"github.com/gomlx/rvshape/rv"
	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Model is a registry of named dimensions and of the random variables defined over them.
// It implements rv.Model.
//
// It is not safe for concurrent use.
type Model struct {
	coords     map[string][]any
	dimLengths map[string]shapespec.Dim
	vars       map[string]*Variable
	order      []string
}

// Variable is a random variable registered in a Model.
type Variable struct {
	Name string
	RV   rv.Variable

	// Dims are the names of the dimensions of the variable, nil if not given.
	// Empty names are unnamed placeholders.
	Dims []string

	// Observed value, if any.
	Observed rv.Shaped
}

// Option configures a new Model.
type Option func(*Model) error

// WithCoords adds named dimensions with their coordinate values. The length of each dimension
// is the number of values.
func WithCoords(coords map[string][]any) Option {
	return func(m *Model) error {
		for _, name := range sortedNames(coords) {
			if err := m.AddCoord(name, coords[name]); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithDimLengths adds named dimensions with only their lengths (possibly symbolic).
func WithDimLengths(lengths map[string]shapespec.Dim) Option {
	return func(m *Model) error {
		for _, name := range sortedNames(lengths) {
			if err := m.SetDimLength(name, lengths[name]); err != nil {
				return err
			}
		}
		return nil
	}
}

func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// New creates a Model configured with the given options.
func New(opts ...Option) (*Model, error) {
	m := &Model{
		coords:     make(map[string][]any),
		dimLengths: make(map[string]shapespec.Dim),
		vars:       make(map[string]*Variable),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddCoord adds the named dimension with the given coordinate values.
// Adding the same values again is a no-op, different values for an existing dimension is an error.
func (m *Model) AddCoord(name string, values []any) error {
	if name == "" {
		return errors.New("coordinate name cannot be empty")
	}
	if existing, found := m.coords[name]; found {
		if slices.Equal(existing, values) {
			return nil
		}
		return errors.Errorf("duplicate and incompatible coordinate %q", name)
	}
	if length, found := m.dimLengths[name]; found && !length.IsSymbolic() {
		if v, _ := length.Value(); v != len(values) {
			return errors.Errorf("coordinate %q has %d values, but the dimension has length %d", name, len(values), v)
		}
	}
	m.coords[name] = slices.Clone(values)
	m.dimLengths[name] = shapespec.Int(len(values))
	return nil
}

// SetDimLength sets the length of the named dimension. It fails if the dimension has coordinate
// values of a different length.
func (m *Model) SetDimLength(name string, length shapespec.Dim) error {
	if name == "" {
		return errors.New("dimension name cannot be empty")
	}
	if values, found := m.coords[name]; found {
		if v, ok := length.Value(); !ok || v != len(values) {
			return errors.Errorf("dimension %q has %d coordinate values, cannot set its length to %s", name, len(values), length)
		}
	}
	m.dimLengths[name] = length
	return nil
}

// DimLength implements rv.Model.
func (m *Model) DimLength(name string) (shapespec.Dim, bool) {
	length, found := m.dimLengths[name]
	return length, found
}

// Coords returns the coordinate values of the named dimension, or nil if it has none.
func (m *Model) Coords(name string) []any {
	return slices.Clone(m.coords[name])
}

// Register adds random variable v under name.
//
// If dims is given, it must have one name per dimension of v, and every name (except empty
// placeholders) must be a dimension known to the model with a length matching v.
func (m *Model) Register(name string, v rv.Variable, dims []string, observed rv.Shaped) error {
	if name == "" {
		return errors.New("random variable name cannot be empty")
	}
	if _, found := m.vars[name]; found {
		return errors.Errorf("variable name %q already exists in the model", name)
	}
	if dims != nil {
		if len(dims) != v.Rank() {
			return errors.Errorf("variable %q: dims %q have length %d, but the variable has %d dimensions",
				name, dims, len(dims), v.Rank())
		}
		vDims := v.Dims()
		for axis, dimName := range dims {
			if dimName == "" {
				continue
			}
			length, found := m.dimLengths[dimName]
			if !found {
				return errors.Errorf("variable %q: dimension %q is unknown to the model", name, dimName)
			}
			if length != vDims[axis] && !length.IsSymbolic() && !vDims[axis].IsSymbolic() {
				return errors.Errorf("variable %q: dimension %q has length %s, but axis %d of the variable has length %s",
					name, dimName, length, axis, vDims[axis])
			}
		}
	}
	m.vars[name] = &Variable{Name: name, RV: v, Dims: slices.Clone(dims), Observed: observed}
	m.order = append(m.order, name)
	klog.V(2).Infof("model: registered %q with dims %s", name, shapespec.DimsString(v.Dims()))
	return nil
}

// Variable returns the registered variable with the given name, or nil if not found.
func (m *Model) Variable(name string) *Variable {
	return m.vars[name]
}

// Variables returns the registered variables in the order they were registered.
func (m *Model) Variables() []*Variable {
	vars := make([]*Variable, len(m.order))
	for ii, name := range m.order {
		vars[ii] = m.vars[name]
	}
	return vars
}
