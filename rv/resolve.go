package rv

import (
	"slices"

	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// SizeResolution is the result of FindSize.
type SizeResolution struct {
	// CreateSize is the size to create the variable with, nil to create it
	// with the shape implied by its parameters.
	CreateSize *shapespec.Size

	// NDimExpected is the number of dimensions expected of the created variable, NDimBatch the
	// number of batch dimensions among those. Both are Unknown if they can't be determined yet.
	NDimExpected, NDimBatch int

	// NDimSupp is the number of support dimensions of the distribution.
	NDimSupp int
}

// FindSize determines the size used to create a variable, from its shape or its size (they are
// mutually exclusive, shape is used if both are given).
//
//   - shape without ellipsis: all its dimensions are expected, and the size is the leading batch part
//     (all but the last ndimSupp dimensions).
//   - shape with an ellipsis: the variable is created with its implied shape and resized later, the
//     expected dimensions are Unknown.
//   - size: the expected dimensions are the size followed by the support dimensions.
//   - none given: the variable is created with its implied shape, the expected dimensions are Unknown.
//
// It returns an error wrapping ErrShape if shape has fewer dimensions than ndimSupp.
func FindSize(shape *shapespec.Shape, size *shapespec.Size, ndimSupp int) (SizeResolution, error) {
	res := SizeResolution{NDimExpected: Unknown, NDimBatch: Unknown, NDimSupp: ndimSupp}
	switch {
	case shape != nil:
		if shape.Ellipsis {
			return res, nil
		}
		res.NDimExpected = len(shape.Dims)
		res.NDimBatch = res.NDimExpected - ndimSupp
		if res.NDimBatch < 0 {
			return res, errors.Wrapf(ErrShape, "shape %s has fewer dimensions than the %d support dimension(s) of the distribution",
				shape, ndimSupp)
		}
		res.CreateSize = shapespec.NewSize(shape.Dims[:res.NDimBatch]...)
	case size != nil:
		res.NDimBatch = len(size.Dims)
		res.NDimExpected = res.NDimBatch + ndimSupp
		res.CreateSize = shapespec.NewSize(size.Dims...)
	}
	return res, nil
}

// ResizeAction is the action to take on a variable after its creation.
type ResizeAction int

const (
	// ResizeNone keeps the variable as created.
	ResizeNone ResizeAction = iota

	// ResizeExpand prepends ResizePlan.ExpandSize to the dimensions of the variable, in place.
	ResizeExpand

	// ResizeRebuild creates the variable again with no size, and then expands it with as many leading
	// dimensions of the shape as needed to reach the expected rank.
	ResizeRebuild
)

var resizeActionNames = [...]string{
	ResizeNone:    "none",
	ResizeExpand:  "expand",
	ResizeRebuild: "rebuild",
}

// String implements fmt.Stringer.
func (a ResizeAction) String() string {
	if a < 0 || int(a) >= len(resizeActionNames) {
		return "ResizeAction(?)"
	}
	return resizeActionNames[a]
}

// ResizePlan is the decision taken by PlanResize.
type ResizePlan struct {
	Action ResizeAction

	// ExpandSize is the size to prepend for ResizeExpand.
	ExpandSize shapespec.Size

	// Warn is set if the variable rank doesn't match the requested size. Warning holds the details.
	Warn    bool
	Warning *ShapeWarning
}

// PlanResize decides what to do with a variable of rank ndimActual, created after FindSize
// returned res for the given shape and size.
//
// The checks happen in this order:
//
//  1. If shape was given and the rank is unexpected: a shape ending in ellipsis expands the variable with
//     the shape dimensions (before the ellipsis), otherwise the variable is rebuilt.
//  2. If size was given and the rank is unexpected, a warning is issued.
func PlanResize(ndimActual int, res SizeResolution, shape *shapespec.Shape, size *shapespec.Size) ResizePlan {
	var plan ResizePlan
	unexpected := res.NDimExpected == Unknown || ndimActual != res.NDimExpected
	if shape != nil && unexpected {
		if shape.Ellipsis {
			plan.Action = ResizeExpand
			plan.ExpandSize = shapespec.Size{Dims: slices.Clone(shape.Dims)}
		} else {
			plan.Action = ResizeRebuild
		}
	}
	if size != nil && unexpected {
		plan.Warn = true
		plan.Warning = &ShapeWarning{SizeRank: len(size.Dims), NDimSupp: res.NDimSupp, Actual: ndimActual}
	}
	return plan
}

// Expand prepends newSize to the dimensions of v, in place: v must implement Expander.
func Expand(v Variable, newSize shapespec.Size) (Variable, error) {
	expander, ok := v.(Expander)
	if !ok {
		return nil, errors.Errorf("random variable of type %T cannot be resized in place", v)
	}
	return expander.Expand(newSize)
}

// MaybeResize resizes the variable v, just created by factory with res.CreateSize, if its rank
// doesn't match what res (returned by FindSize for shape and size) expects. See PlanResize for the
// decision.
//
// When rebuilding, the factory is called with a nil size, and the result is expanded with the leading
// dimensions of shape if it still has fewer dimensions than expected. If the rank still doesn't match,
// it returns a *ShapeError wrapping ErrShapeMismatch.
//
// Shape warnings are logged and passed to the handler given by WithWarningHandler, if any.
func MaybeResize(v Variable, factory Factory, res SizeResolution, shape *shapespec.Shape, size *shapespec.Size,
	opts ...Option) (Variable, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	ndimActual := v.Rank()
	plan := PlanResize(ndimActual, res, shape, size)
	if plan.Action != ResizeNone {
		klog.V(2).Infof("resizing random variable of rank %d (expected %d, shape=%s): %s",
			ndimActual, res.NDimExpected, shape, plan.Action)
	}

	var err error
	switch plan.Action {
	case ResizeExpand:
		v, err = Expand(v, plan.ExpandSize)
		if err != nil {
			return nil, err
		}

	case ResizeRebuild:
		if factory == nil {
			return nil, errors.New("a factory is required to rebuild the random variable")
		}
		v, err = factory.Create(nil)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to rebuild random variable without size")
		}
		if v.Rank() < res.NDimExpected {
			expandSize := shapespec.Size{Dims: slices.Clone(shape.Dims[:res.NDimExpected-v.Rank()])}
			v, err = Expand(v, expandSize)
			if err != nil {
				return nil, err
			}
		}
		if v.Rank() != res.NDimExpected {
			return nil, &ShapeError{Actual: ndimActual, Expected: res.NDimBatch + res.NDimSupp}
		}
	}

	if plan.Warn {
		klog.Warningf("%s", plan.Warning)
		if o.warningHandler != nil {
			o.warningHandler(plan.Warning)
		}
	}
	return v, nil
}
