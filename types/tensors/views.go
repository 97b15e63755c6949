package tensors

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/rvshape/shapeinference"
	"github.com/pkg/errors"
)

// InsertAxes returns a view of t with numAxes new axes of dimension 1 inserted at position axis.
// The view shares the storage of t.
//
// A negative axis counts from the end, with -1 meaning after the last axis.
// It panics if axis is out of range.
func (t *Tensor) InsertAxes(axis, numAxes int) *Tensor {
	rank := t.Rank()
	if axis < 0 {
		axis = rank + 1 + axis
	}
	if axis < 0 || axis > rank {
		exceptions.Panicf("tensors.InsertAxes(axis=%d): out of range for tensor of rank %d", axis, rank)
	}
	if numAxes < 0 {
		exceptions.Panicf("tensors.InsertAxes(numAxes=%d): number of axes must be >= 0", numAxes)
	}
	view := *t
	view.dims = slices.Insert(slices.Clone(t.dims), axis, ones(numAxes)...)
	// Strides of length-1 axes are irrelevant, 0 keeps the view compatible with broadcasting.
	view.strides = slices.Insert(slices.Clone(t.strides), axis, make([]int, numAxes)...)
	return &view
}

func ones(n int) []int {
	s := make([]int, n)
	for ii := range s {
		s[ii] = 1
	}
	return s
}

// BroadcastTo returns a read-only view of t broadcast to the given dimensions, following NumPy
// broadcasting rules (axes aligned from the trailing end, dimension 1 stretches).
//
// Broadcast axes have stride 0, so no data is copied. An error wrapping
// shapeinference.ErrBroadcast is returned if t cannot be broadcast to dims.
func (t *Tensor) BroadcastTo(dims ...int) (*Tensor, error) {
	rank := len(dims)
	if t.Rank() > rank {
		return nil, errors.Wrapf(shapeinference.ErrBroadcast,
			"cannot broadcast tensor of shape %v to %v: target has lower rank", t.dims, dims)
	}
	view := *t
	view.dims = slices.Clone(dims)
	view.strides = make([]int, rank)
	offset := rank - t.Rank()
	for axis, dim := range dims {
		if dim < 0 {
			return nil, errors.Errorf("cannot broadcast to negative dimension in %v", dims)
		}
		if axis < offset {
			continue
		}
		srcDim := t.dims[axis-offset]
		switch {
		case srcDim == dim:
			view.strides[axis] = t.strides[axis-offset]
		case srcDim == 1:
			view.strides[axis] = 0
		default:
			return nil, errors.Wrapf(shapeinference.ErrBroadcast,
				"cannot broadcast tensor of shape %v to %v: axis %d has dimension %d", t.dims, dims, axis, srcDim)
		}
	}
	return &view, nil
}

// BroadcastArrays broadcasts all tensors against each other and returns views with the common shape,
// the equivalent of NumPy's broadcast_arrays.
func BroadcastArrays(tensors ...*Tensor) ([]*Tensor, error) {
	shapes := make([]any, len(tensors))
	for ii, t := range tensors {
		shapes[ii] = t.dims
	}
	dims, err := shapeinference.ShapesBroadcasting(true, shapes...)
	if err != nil {
		return nil, err
	}
	views := make([]*Tensor, len(tensors))
	for ii, t := range tensors {
		views[ii], err = t.BroadcastTo(dims...)
		if err != nil {
			return nil, err
		}
	}
	return views, nil
}

// BroadcastEqual returns whether a and b are element-wise equal once broadcast against each other,
// the equivalent of NumPy's np.all(a == b).
//
// It returns an error if their shapes don't broadcast.
func BroadcastEqual(a, b *Tensor) (bool, error) {
	views, err := BroadcastArrays(a, b)
	if err != nil {
		return false, err
	}
	return slices.Equal(views[0].Flat(), views[1].Flat()), nil
}
