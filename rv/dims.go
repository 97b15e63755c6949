package rv

import (
	"slices"

	"github.com/gomlx/rvshape/internal/utils"
	"github.com/gomlx/rvshape/observed"
	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/pkg/errors"
)

// ResizeFromDims determines the leading dimensions to add to a variable from its dims.
//
// A trailing ellipsis in dims is expanded into ndimImplied unnamed ("") placeholders, standing
// for the ndimImplied dimensions already implied by the parameters of the variable.
// The remaining leading len(dims) - ndimImplied names are looked up in the model.
//
// It returns the number of dimensions to add (ndimResize), their lengths, and the dims names with
// the ellipsis expanded. A ndimResize <= 0 means nothing is to be added.
// If any of the leading names isn't known to the model, it returns an error wrapping ErrUnknownDims.
func ResizeFromDims(dims *shapespec.Dims, ndimImplied int, m Model) (
	ndimResize int, resizeShape shapespec.Size, names []string, err error) {
	if dims == nil {
		return 0, resizeShape, nil, errors.New("ResizeFromDims requires dims")
	}
	names = slices.Clone(dims.Names)
	if dims.Ellipsis {
		names = append(names, make([]string, ndimImplied)...)
	}
	ndimResize = len(names) - ndimImplied

	resizeNames := names[:max(ndimResize, 0)]
	unknown := utils.MakeSet[string]()
	resizeShape.Dims = make([]shapespec.Dim, 0, len(resizeNames))
	for _, name := range resizeNames {
		length, found := m.DimLength(name)
		if name == "" || !found {
			unknown.Insert(name)
			continue
		}
		resizeShape.Dims = append(resizeShape.Dims, length)
	}
	if len(unknown) > 0 {
		return 0, shapespec.Size{}, nil, errors.Wrapf(ErrUnknownDims,
			"dimensions %q are unknown to the model and cannot be used to specify a size", utils.SortedKeys(unknown))
	}
	return ndimResize, resizeShape, names, nil
}

// ResizeFromObserved determines the leading dimensions to add to a variable from its observed value.
//
// Observed values that don't implement Shaped are converted with observed.ToTensor.
// It returns the number of dimensions to add (the observed rank minus ndimImplied), their
// lengths (the leading dimensions of the observed value) and the (possibly converted) observed value.
func ResizeFromObserved(obs any, ndimImplied int) (ndimResize int, resizeShape shapespec.Size, shaped Shaped, err error) {
	var ok bool
	if shaped, ok = obs.(Shaped); !ok {
		shaped, err = observed.ToTensor(obs)
		if err != nil {
			return 0, shapespec.Size{}, nil, err
		}
	}
	dimensions := shaped.Dimensions()
	ndimResize = len(dimensions) - ndimImplied
	resizeShape = shapespec.Size{Dims: shapespec.Ints(dimensions[:max(ndimResize, 0)]...)}
	return ndimResize, resizeShape, shaped, nil
}
