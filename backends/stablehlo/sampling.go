package stablehlo

import (
	"math"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/rvshape/distributions"
	"github.com/gomlx/rvshape/types/shapes"
	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrNotLowerable is returned when a random variable can't be lowered to a sampling program.
var ErrNotLowerable = errors.New("random variable cannot be lowered to StableHLO")

// RNGStateShape is the shape of the RNG state input and output of sampling programs.
var RNGStateShape = shapes.Make(dtypes.Uint64, 2)

// SamplingOptions configure SamplingProgram.
type SamplingOptions struct {
	// Name of the program module. Defaults to "sample".
	Name string

	// DType of the draws. Defaults to dtypes.Float64.
	DType dtypes.DType

	// KeepTransformed adds the log of the draws as a third output, for distributions with positive support.
	KeepTransformed bool
}

// SamplingProgram builds a StableHLO program that draws one sample of the random variable v.
//
// The program main function takes the RNG state (RNGStateShape) and returns the updated state and the
// draws, shaped as v.Dims(). If opts.KeepTransformed is set and v has positive support, it also returns
// the log of the draws.
//
// The random variable must have concrete dimensions and constant parameters, and only distributions
// with scalar support are lowered.
func SamplingProgram(v *distributions.RandomVariable, opts SamplingOptions) ([]byte, error) {
	dims, ok := v.ConcreteDims()
	if !ok {
		return nil, errors.Wrapf(ErrNotLowerable, "%s has symbolic dimensions %s", v, shapespec.DimsString(v.Dims()))
	}
	if v.NDimSupp() != 0 {
		return nil, errors.Wrapf(ErrNotLowerable, "%s has %d support dimensions", v, v.NDimSupp())
	}
	params := v.Params()
	for i, p := range params {
		if !p.IsConstant() {
			return nil, errors.Wrapf(ErrNotLowerable, "parameter %q of %s is not a constant", v.Op().ParamNames[i], v)
		}
	}
	if opts.Name == "" {
		opts.Name = "sample"
	}
	if opts.DType == dtypes.InvalidDType {
		opts.DType = dtypes.Float64
	}
	if !opts.DType.IsFloat() {
		return nil, errors.Errorf("draws must have a float dtype, got %s", opts.DType)
	}
	klog.V(2).Infof("lowering %s to StableHLO program %q (dtype=%s)", v, opts.Name, opts.DType)

	b := New(opts.Name)
	fn := b.Main()
	s := &sampler{fn: fn, state: fn.NamedInput("rng_state", RNGStateShape), dims: dims}
	draws, err := s.draw(v.Op(), params)
	if err != nil {
		return nil, errors.WithMessagef(err, "while lowering %s", v)
	}
	outputs := []*Value{draws}
	if opts.KeepTransformed && v.Op().Positive {
		logDraws, err := Log(draws)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, logDraws)
	}
	if opts.DType != dtypes.Float64 {
		for i, output := range outputs {
			if outputs[i], err = Convert(output, opts.DType); err != nil {
				return nil, err
			}
		}
	}
	if err = fn.Return(s.state, outputs...); err != nil {
		return nil, err
	}
	return b.Build()
}

// sampler holds the RNG state threaded through the draw operations.
type sampler struct {
	fn    *Function
	state *Value
	dims  []int
}

func (s *sampler) draw(op *distributions.Op, params []distributions.Param) (*Value, error) {
	values := make([]*Value, len(params))
	for i, p := range params {
		var err error
		if values[i], err = s.param(p); err != nil {
			return nil, errors.WithMessagef(err, "parameter %q", op.ParamNames[i])
		}
	}
	switch op {
	case distributions.Normal:
		z, err := s.standardNormal()
		if err != nil {
			return nil, err
		}
		return affine(values[0], values[1], z)

	case distributions.HalfNormal:
		z, err := s.standardNormal()
		if err != nil {
			return nil, err
		}
		if z, err = Abs(z); err != nil {
			return nil, err
		}
		return Multiply(values[0], z)

	case distributions.Uniform:
		u, err := s.uniform()
		if err != nil {
			return nil, err
		}
		width, err := Subtract(values[1], values[0])
		if err != nil {
			return nil, err
		}
		return affine(values[0], width, u)
	}
	return nil, errors.Wrapf(ErrNotLowerable, "no sampler for %s", op)
}

// param returns the constant parameter broadcast to the draws dimensions.
func (s *sampler) param(p distributions.Param) (*Value, error) {
	c, err := s.fn.ConstantFromFlatAndDimensions(p.Value.Flat(), p.Value.Dimensions()...)
	if err != nil {
		return nil, err
	}
	return BroadcastTrailing(c, s.dims...)
}

// scalar returns a float64 constant broadcast to the draws dimensions.
func (s *sampler) scalar(value any) (*Value, error) {
	c, err := s.fn.ConstantFromScalar(value)
	if err != nil {
		return nil, err
	}
	return BroadcastTrailing(c, s.dims...)
}

// uniform draws values uniformly distributed in [0, 1).
//
// The 52 high bits of random uint64 values are used as the mantissa of a float64 in [1, 2).
func (s *sampler) uniform() (*Value, error) {
	var bits *Value
	var err error
	s.state, bits, err = RNGBitGenerator(s.state, shapes.Make(dtypes.Uint64, s.dims...), RNGThreeFry)
	if err != nil {
		return nil, err
	}
	shift, err := s.scalar(uint64(12))
	if err != nil {
		return nil, err
	}
	exponent, err := s.scalar(math.Float64bits(1.0))
	if err != nil {
		return nil, err
	}
	if bits, err = ShiftRightLogical(bits, shift); err != nil {
		return nil, err
	}
	if bits, err = Or(bits, exponent); err != nil {
		return nil, err
	}
	oneToTwo, err := BitcastConvert(bits, dtypes.Float64)
	if err != nil {
		return nil, err
	}
	one, err := s.scalar(1.0)
	if err != nil {
		return nil, err
	}
	return Subtract(oneToTwo, one)
}

// standardNormal draws values from Normal(0, 1) with the Box-Muller transform.
func (s *sampler) standardNormal() (*Value, error) {
	u1, err := s.uniform()
	if err != nil {
		return nil, err
	}
	u2, err := s.uniform()
	if err != nil {
		return nil, err
	}
	one, err := s.scalar(1.0)
	if err != nil {
		return nil, err
	}
	two, err := s.scalar(2.0)
	if err != nil {
		return nil, err
	}
	twoPi, err := s.scalar(2 * math.Pi)
	if err != nil {
		return nil, err
	}

	// radius = sqrt(-2 * log(1 - u1)), with 1 - u1 in (0, 1].
	radius, err := Subtract(one, u1)
	if err != nil {
		return nil, err
	}
	for _, step := range []func(*Value) (*Value, error){
		Log,
		Negate,
		func(x *Value) (*Value, error) { return Multiply(two, x) },
		Sqrt,
	} {
		if radius, err = step(radius); err != nil {
			return nil, err
		}
	}

	angle, err := Multiply(twoPi, u2)
	if err != nil {
		return nil, err
	}
	if angle, err = Cosine(angle); err != nil {
		return nil, err
	}
	return Multiply(radius, angle)
}

// affine returns loc + scale * x.
func affine(loc, scale, x *Value) (*Value, error) {
	scaled, err := Multiply(scale, x)
	if err != nil {
		return nil, err
	}
	return Add(loc, scaled)
}
