// Package observed converts observed data given to random variables into tensors.
//
// Accepted values are tensors, tabular data (gota DataFrame and Series), scalars and regular
// (possibly nested) slices of numbers. Missing values in tabular data are represented by NaN.
package observed

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/gomlx/rvshape/types/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ToTensor converts an observed value to a tensor:
//
//   - *tensors.Tensor: returned as is.
//   - dataframe.DataFrame: a tensor of shape (rows, columns), in the column order of the frame.
//   - series.Series: a tensor of shape (length,).
//   - Scalars and nested slices of numbers: see tensors.FromAnyValue.
//
// Only numeric (float, int) and bool columns are accepted.
func ToTensor(value any) (*tensors.Tensor, error) {
	switch v := value.(type) {
	case nil:
		return nil, errors.New("cannot convert nil observed value")
	case *tensors.Tensor:
		return v, nil
	case dataframe.DataFrame:
		return fromDataFrame(v)
	case *dataframe.DataFrame:
		return fromDataFrame(*v)
	case series.Series:
		return fromSeries(v)
	case *series.Series:
		return fromSeries(*v)
	}
	t, err := tensors.FromAnyValue(value)
	if err != nil {
		return nil, errors.WithMessage(err, "cannot convert observed value")
	}
	return t, nil
}

func checkSeriesType(s series.Series) error {
	switch s.Type() {
	case series.Float, series.Int, series.Bool:
		return nil
	default:
		return errors.Errorf("column %q has non-numeric type %s", s.Name, s.Type())
	}
}

func fromSeries(s series.Series) (*tensors.Tensor, error) {
	if s.Err != nil {
		return nil, errors.Wrap(s.Err, "invalid observed series")
	}
	if err := checkSeriesType(s); err != nil {
		return nil, err
	}
	return tensors.FromFlat(s.Float(), s.Len()), nil
}

func fromDataFrame(df dataframe.DataFrame) (*tensors.Tensor, error) {
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "invalid observed data frame")
	}
	numRows, numCols := df.Dims()
	data := make([]float64, numRows*numCols)
	for colIdx, name := range df.Names() {
		col := df.Col(name)
		if err := checkSeriesType(col); err != nil {
			return nil, err
		}
		for rowIdx, value := range col.Float() {
			data[rowIdx*numCols+colIdx] = value
		}
	}
	klog.V(2).Infof("observed data frame converted to tensor of shape (%d, %d)", numRows, numCols)
	return tensors.FromFlat(data, numRows, numCols), nil
}

// HasMissing returns whether the observed tensor has missing values (NaN).
func HasMissing(t *tensors.Tensor) bool {
	return t.HasNaN()
}
