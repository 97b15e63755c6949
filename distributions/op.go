// Package distributions defines random variable operations and their shape inference, and the factories
// Dist and New that create random variables from user shape, size, dims and observed hints.
package distributions

import (
	"slices"

	"github.com/gomlx/rvshape/rv"
	"github.com/gomlx/rvshape/shapeinference"
	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/gomlx/rvshape/types/tensors"
	"github.com/pkg/errors"
)

// Param is a parameter of a random variable: either a constant value, or a symbolic value of which
// only the dimensions are known.
type Param struct {
	Name string

	// Value of a constant parameter, nil for symbolic parameters.
	Value *tensors.Tensor

	dims []shapespec.Dim
}

// Constant returns a parameter with a known value.
func Constant(value *tensors.Tensor) Param {
	return Param{Value: value, dims: shapespec.Ints(value.Dimensions()...)}
}

// Scalar returns a constant scalar parameter.
func Scalar(value float64) Param {
	return Constant(tensors.FromScalar(value))
}

// Symbolic returns a parameter of which only the dimensions are known.
func Symbolic(dims ...shapespec.Dim) Param {
	return Param{dims: slices.Clone(dims)}
}

// Dims of the parameter.
func (p Param) Dims() []shapespec.Dim { return slices.Clone(p.dims) }

// IsConstant returns whether the value of the parameter is known.
func (p Param) IsConstant() bool { return p.Value != nil }

// Op is a random variable operation: a family of distributions along with its shape inference.
type Op struct {
	Name string

	// NDimSupp is the number of dimensions of a single draw.
	NDimSupp int

	// ParamNames and NDimsParams are the name and the number of core dimensions of each parameter.
	// The remaining leading dimensions of a parameter are batch dimensions.
	ParamNames  []string
	NDimsParams []int

	// Positive is set for distributions with positive support, whose draws can be log-transformed.
	Positive bool

	// support returns the support dimensions given the core dimensions of each parameter.
	support func(core [][]shapespec.Dim) ([]shapespec.Dim, error)
}

// String implements fmt.Stringer.
func (op *Op) String() string { return op.Name }

// BatchAndCore splits the dimensions of each parameter into its batch and core dimensions.
func (op *Op) BatchAndCore(params []Param) (batch, core [][]shapespec.Dim, err error) {
	if len(params) != len(op.NDimsParams) {
		return nil, nil, errors.Errorf("%s takes %d parameters (%q), got %d", op.Name, len(op.NDimsParams), op.ParamNames, len(params))
	}
	batch = make([][]shapespec.Dim, len(params))
	core = make([][]shapespec.Dim, len(params))
	for ii, p := range params {
		rank := len(p.dims)
		if rank < op.NDimsParams[ii] {
			return nil, nil, errors.Errorf("%s: parameter %q must have at least %d dimension(s), got shape %s",
				op.Name, op.ParamNames[ii], op.NDimsParams[ii], shapespec.DimsString(p.dims))
		}
		split := rank - op.NDimsParams[ii]
		batch[ii] = p.dims[:split]
		core[ii] = p.dims[split:]
	}
	return batch, core, nil
}

// InferDims returns the dimensions of a random variable of this op with the given parameters and size.
//
// With a size, the dimensions are the size followed by the support dimensions, and the batch dimensions
// of every parameter must broadcast to the size. Without a size (nil), the batch dimensions are the
// broadcast of the batch dimensions of the parameters.
func (op *Op) InferDims(params []Param, size *shapespec.Size) ([]shapespec.Dim, error) {
	batch, core, err := op.BatchAndCore(params)
	if err != nil {
		return nil, err
	}
	support, err := op.support(core)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s", op.Name)
	}
	if size != nil {
		for ii, b := range batch {
			if !broadcastsInto(b, size.Dims) {
				return nil, errors.Wrapf(shapeinference.ErrBroadcast, "%s: batch shape %s of parameter %q is not compatible with size %s",
					op.Name, shapespec.DimsString(b), op.ParamNames[ii], size)
			}
		}
		return concatDims(size.Dims, support), nil
	}
	batchDims, err := shapeinference.BroadcastDims(batch...)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: parameters batch dimensions", op.Name)
	}
	return concatDims(batchDims, support), nil
}

func concatDims(batch, support []shapespec.Dim) []shapespec.Dim {
	dims := make([]shapespec.Dim, 0, len(batch)+len(support))
	dims = append(dims, batch...)
	return append(dims, support...)
}

// broadcastsInto returns whether dims broadcast to target without changing it. Symbolic lengths
// can only be checked once their values are known, so they are accepted.
func broadcastsInto(dims, target []shapespec.Dim) bool {
	if len(dims) > len(target) {
		return false
	}
	offset := len(target) - len(dims)
	for axis, d := range dims {
		t := target[offset+axis]
		if d.IsOne() || d == t || d.IsSymbolic() || t.IsSymbolic() {
			continue
		}
		return false
	}
	return true
}

// Make creates a random variable with the given parameters and size (nil for the size implied by the
// parameters).
func (op *Op) Make(params []Param, size *shapespec.Size) (*RandomVariable, error) {
	dims, err := op.InferDims(params, size)
	if err != nil {
		return nil, err
	}
	v := &RandomVariable{op: op, params: slices.Clone(params), dims: dims}
	if size != nil {
		v.size = shapespec.NewSize(size.Dims...)
	}
	return v, nil
}

// RandomVariable is a symbolic random variable: an op, its parameters and its resulting dimensions.
//
// It implements rv.Variable and rv.Expander.
type RandomVariable struct {
	op     *Op
	params []Param
	size   *shapespec.Size
	dims   []shapespec.Dim
}

var (
	_ rv.Variable = (*RandomVariable)(nil)
	_ rv.Expander = (*RandomVariable)(nil)
)

// Op of the random variable.
func (v *RandomVariable) Op() *Op { return v.op }

// Params returns the parameters of the random variable.
func (v *RandomVariable) Params() []Param { return slices.Clone(v.params) }

// Size the random variable was created with, nil if none.
func (v *RandomVariable) Size() *shapespec.Size { return v.size }

// Rank implements rv.Variable.
func (v *RandomVariable) Rank() int { return len(v.dims) }

// Dims implements rv.Variable.
func (v *RandomVariable) Dims() []shapespec.Dim { return slices.Clone(v.dims) }

// NDimSupp is the number of support dimensions.
func (v *RandomVariable) NDimSupp() int { return v.op.NDimSupp }

// BatchDims returns the dimensions that are not support dimensions.
func (v *RandomVariable) BatchDims() []shapespec.Dim {
	return slices.Clone(v.dims[:len(v.dims)-v.op.NDimSupp])
}

// ConcreteDims returns the dimensions as integers, if none is symbolic.
func (v *RandomVariable) ConcreteDims() ([]int, bool) {
	return shapespec.ToInts(v.dims)
}

// Expand implements rv.Expander: it returns a new random variable with newSize prepended to its
// batch dimensions.
func (v *RandomVariable) Expand(newSize shapespec.Size) (rv.Variable, error) {
	size := shapespec.NewSize(append(slices.Clone(newSize.Dims), v.BatchDims()...)...)
	return v.op.Make(v.params, size)
}

// String implements fmt.Stringer.
func (v *RandomVariable) String() string {
	return v.op.Name + shapespec.DimsString(v.dims)
}
