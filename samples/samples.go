// Package samples broadcasts realized draws of random variables against each other.
//
// Draws are tensors whose shape may carry a leading size prefix (the number of draws requested).
// The functions here insert the length-1 axes needed between the size prefix and each sample's own
// shape so that NumPy broadcasting lines the sample shapes up, and not the size with a sample axis.
package samples

import (
	"github.com/gomlx/rvshape/shapeinference"
	"github.com/gomlx/rvshape/types/tensors"
	"github.com/pkg/errors"
)

// GetBroadcastableDistSamples returns views of the samples with new length-1 axes inserted right after
// the size prefix, such that the views broadcast against each other (and against mustBcastWith, if given).
// Samples that don't start with the size prefix are returned unchanged.
//
// It also returns the broadcast output shape, size prefix included.
//
// Example, with size=[100] and mustBcastWith=[3, 1, 5]: samples of shapes (100,), (100, 5) and
// (100, 4, 5) return views of shapes (100, 1, 1, 1), (100, 1, 1, 5) and (100, 1, 4, 5), and an
// output shape (100, 3, 4, 5).
//
// A nil size means no size was requested: every sample is then padded on the left to the broadcast rank.
func GetBroadcastableDistSamples(samples []*tensors.Tensor, size []int, mustBcastWith []int) (
	views []*tensors.Tensor, outShape []int, err error) {
	sampleShapes := make([][]int, 0, len(samples)+1)
	for _, sample := range samples {
		sampleShapes = append(sampleShapes, sample.Dimensions())
	}
	if mustBcastWith == nil {
		mustBcastWith = []int{}
	}
	sampleShapes = append(sampleShapes, mustBcastWith)

	outShape, err = shapeinference.BroadcastDistSamplesShape(sampleShapes, size)
	if err != nil {
		return nil, nil, err
	}
	if size == nil {
		size = []int{}
	}
	stripped := shapeinference.StripSizePrefix(sampleShapes, size)
	anyStripped := make([]any, len(stripped))
	for ii, s := range stripped {
		anyStripped[ii] = s
	}
	broadcastShape, err := shapeinference.ShapesBroadcasting(true, anyStripped...)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "samples can't be broadcast once the size is removed")
	}

	views = make([]*tensors.Tensor, len(samples))
	for ii, sample := range samples {
		if !shapeinference.HasSizePrefix(sampleShapes[ii], size) {
			views[ii] = sample
			continue
		}
		views[ii] = sample.InsertAxes(len(size), len(broadcastShape)-len(stripped[ii]))
	}
	return views, outShape, nil
}

// BroadcastDistributionSamples broadcasts the samples, taking into account the size prefix, and
// returns contiguous tensors that all have the common broadcast shape.
//
// Example, with size=[100]: samples of shapes (100,), (100, 5) and (100, 4, 5) all become (100, 4, 5).
func BroadcastDistributionSamples(samples []*tensors.Tensor, size []int) ([]*tensors.Tensor, error) {
	views, _, err := GetBroadcastableDistSamples(samples, size, nil)
	if err != nil {
		return nil, err
	}
	broadcast, err := tensors.BroadcastArrays(views...)
	if err != nil {
		return nil, err
	}
	for ii, t := range broadcast {
		broadcast[ii] = t.Materialize()
	}
	return broadcast, nil
}

// BroadcastDistSamplesTo broadcasts the samples to toShape prefixed by size, taking into account the
// size prefix of the samples. The results are broadcast views of the samples: no data is copied.
//
// Example, with size=[100] and toShape=[3, 1, 5]: samples of shapes (100,), (100, 5) and (100, 4, 5)
// all become (100, 3, 4, 5).
func BroadcastDistSamplesTo(toShape []int, samples []*tensors.Tensor, size []int) ([]*tensors.Tensor, error) {
	views, outShape, err := GetBroadcastableDistSamples(samples, size, toShape)
	if err != nil {
		return nil, err
	}
	results := make([]*tensors.Tensor, len(views))
	for ii, view := range views {
		results[ii], err = view.BroadcastTo(outShape...)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
