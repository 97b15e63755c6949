package shapes

import (
	"slices"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func collectIndices(shape Shape) [][]int {
	collect := make([][]int, 0, shape.Size())
	for indices := range shape.Iter() {
		collect = append(collect, slices.Clone(indices))
	}
	return collect
}

func TestShape_Iter(t *testing.T) {
	require.Equal(t, [][]int{{}}, collectIndices(Make(dtypes.F64)))
	require.Equal(t, [][]int{{0, 0, 0}}, collectIndices(Make(dtypes.F64, 1, 1, 1)))
	require.Equal(t, [][]int{
		{0, 0},
		{0, 1},
		{1, 0},
		{1, 1},
		{2, 0},
		{2, 1},
	}, collectIndices(Make(dtypes.F32, 3, 2)))
	require.Equal(t, [][]int{
		{0, 0, 0},
		{0, 0, 1},
		{1, 0, 0},
		{1, 0, 1},
	}, collectIndices(Make(dtypes.F32, 2, 1, 2)))
	require.Empty(t, collectIndices(Make(dtypes.F32, 2, 0, 3)))
	require.Empty(t, collectIndices(Invalid()))

	// Early break.
	count := 0
	for range Make(dtypes.Int32, 10, 10).Iter() {
		count++
		if count == 5 {
			break
		}
	}
	require.Equal(t, 5, count)
}
