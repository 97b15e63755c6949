package distributions

import (
	"github.com/gomlx/rvshape/model"
	"github.com/gomlx/rvshape/rv"
	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DistOptions configure Dist. Shape and Size are mutually exclusive, leave them as shapespec.None() if not used.
type DistOptions struct {
	// Shape is the full shape of the variable, optionally ending in an ellipsis standing for
	// the dimensions implied by the parameters.
	Shape shapespec.Spec

	// Size is the number of independent draws along each leading dimension.
	Size shapespec.Spec

	// ResizeOptions are passed to rv.MaybeResize, e.g. rv.WithWarningHandler.
	ResizeOptions []rv.Option
}

// Dist creates a random variable, not registered in any model, with the given op and parameters.
//
// The variable is created with the size resolved by rv.FindSize and then resized with rv.MaybeResize if
// its dimensions don't match the requested shape.
func Dist(op *Op, params []Param, opts DistOptions) (*RandomVariable, error) {
	if !opts.Shape.IsNone() && !opts.Size.IsNone() {
		return nil, errors.Wrapf(shapespec.ErrValue, "cannot pass both shape (%s) and size (%s)", opts.Shape, opts.Size)
	}
	shape, err := shapespec.ConvertShape(opts.Shape)
	if err != nil {
		return nil, err
	}
	size, err := shapespec.ConvertSize(opts.Size)
	if err != nil {
		return nil, err
	}
	res, err := rv.FindSize(shape, size, op.NDimSupp)
	if err != nil {
		return nil, err
	}
	v, err := op.Make(params, res.CreateSize)
	if err != nil {
		return nil, err
	}
	factory := rv.FactoryFunc(func(size *shapespec.Size) (rv.Variable, error) {
		return op.Make(params, size)
	})
	resized, err := rv.MaybeResize(v, factory, res, shape, size, opts.ResizeOptions...)
	if err != nil {
		return nil, err
	}
	return resized.(*RandomVariable), nil
}

// Options configure New. Dims can't be combined with Shape or Size. Dims and Observed may both be given,
// in which case dims determine the resize.
type Options struct {
	// Dims are the names of the dimensions of the variable, optionally ending with an ellipsis standing
	// for the dimensions implied by the parameters. Leading dimensions not implied by the parameters
	// are added with the lengths registered in the model.
	Dims shapespec.Spec

	// Observed value of the variable. Its leading dimensions not implied by the parameters are added.
	Observed any

	Shape, Size   shapespec.Spec
	ResizeOptions []rv.Option
}

// New creates a random variable with the given op and parameters, and registers it in the model m under name.
func New(m *model.Model, name string, op *Op, params []Param, opts Options) (*RandomVariable, error) {
	dims, err := shapespec.ConvertDims(opts.Dims)
	if err != nil {
		return nil, err
	}
	if dims != nil && (!opts.Shape.IsNone() || !opts.Size.IsNone()) {
		return nil, errors.Wrapf(shapespec.ErrValue, "%q: passing both dims %s and shape or size is not supported", name, dims)
	}
	v, err := Dist(op, params, DistOptions{Shape: opts.Shape, Size: opts.Size, ResizeOptions: opts.ResizeOptions})
	if err != nil {
		return nil, errors.WithMessagef(err, "%q", name)
	}

	var (
		resizeShape shapespec.Size
		names       []string
		observed    rv.Shaped
	)
	if dims != nil {
		_, resizeShape, names, err = rv.ResizeFromDims(dims, v.Rank(), m)
		if err != nil {
			return nil, errors.WithMessagef(err, "%q", name)
		}
	}
	if opts.Observed != nil {
		var obsResize shapespec.Size
		_, obsResize, observed, err = rv.ResizeFromObserved(opts.Observed, v.Rank())
		if err != nil {
			return nil, errors.WithMessagef(err, "%q", name)
		}
		if dims == nil {
			resizeShape = obsResize
		}
	}
	if len(resizeShape.Dims) > 0 {
		klog.V(2).Infof("%q: expanding %s with %s", name, v, &resizeShape)
		expanded, err := rv.Expand(v, resizeShape)
		if err != nil {
			return nil, errors.WithMessagef(err, "%q", name)
		}
		v = expanded.(*RandomVariable)
	}
	if err := m.Register(name, v, names, observed); err != nil {
		return nil, err
	}
	return v, nil
}
