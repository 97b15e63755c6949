package shapespec

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDim(t *testing.T) {
	d := Int(3)
	v, ok := d.Value()
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.False(t, d.IsSymbolic())
	assert.Equal(t, "3", d.String())

	n := Symbol("n")
	_, ok = n.Value()
	assert.False(t, ok)
	assert.True(t, n.IsSymbolic())
	assert.Equal(t, "n", n.String())
	assert.Equal(t, Symbol("n"), n)
	assert.NotEqual(t, Symbol("m"), n)
	assert.True(t, Int(1).IsOne())
	assert.False(t, Symbol("one").IsOne())

	assert.Panics(t, func() { _ = Int(-1) })
	assert.Panics(t, func() { _ = Symbol("") })

	ints, ok := ToInts(Ints(2, 3))
	require.True(t, ok)
	assert.Equal(t, []int{2, 3}, ints)
	_, ok = ToInts([]Dim{Int(2), n})
	assert.False(t, ok)
	assert.Equal(t, "(2, n)", DimsString([]Dim{Int(2), n}))
	assert.Equal(t, "(2,)", DimsString(Ints(2)))
	assert.Equal(t, "()", DimsString(nil))
}

func TestSpecFromAny(t *testing.T) {
	s, err := SpecFromAny(nil)
	require.NoError(t, err)
	assert.True(t, s.IsNone())

	s, err = SpecFromAny(5)
	require.NoError(t, err)
	assert.Equal(t, SpecScalar, s.Kind())
	assert.Equal(t, []Elem{I(5)}, s.Elems())

	s, err = SpecFromAny("city")
	require.NoError(t, err)
	assert.Equal(t, SpecScalar, s.Kind())
	assert.Equal(t, []Elem{Name("city")}, s.Elems())

	s, err = SpecFromAny(Symbol("n"))
	require.NoError(t, err)
	assert.True(t, s.IsSymbolicScalar())

	s, err = SpecFromAny([]int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, SpecSequence, s.Kind())
	assert.Equal(t, "(2, 3)", s.String())

	s, err = SpecFromAny([]any{"city", nil, Ellipsis})
	require.NoError(t, err)
	assert.Equal(t, []Elem{Name("city"), Unnamed, Ellipsis}, s.Elems())
	assert.Equal(t, "(city, None, ...)", s.String())

	s, err = SpecFromAny([]int{})
	require.NoError(t, err)
	assert.Equal(t, SpecSequence, s.Kind())
	assert.Empty(t, s.Elems())

	_, err = SpecFromAny(2.5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrType))

	_, err = SpecFromAny([]any{1, map[string]int{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrType))

	_, err = SpecFromAny(-3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValue))
}

func TestConvertShape(t *testing.T) {
	shape, err := ConvertShape(None())
	require.NoError(t, err)
	assert.Nil(t, shape)

	shape, err = ConvertShape(Scalar(I(5)))
	require.NoError(t, err)
	assert.Equal(t, Ints(5), shape.Dims)
	assert.False(t, shape.Ellipsis)

	shape, err = ConvertShape(Scalar(Sym("n")))
	require.NoError(t, err)
	assert.Equal(t, []Dim{Symbol("n")}, shape.Dims)

	shape, err = ConvertShape(Sequence(I(2), Sym("n"), Ellipsis))
	require.NoError(t, err)
	assert.Equal(t, []Dim{Int(2), Symbol("n")}, shape.Dims)
	assert.True(t, shape.Ellipsis)
	assert.Equal(t, 3, shape.Len())
	assert.Equal(t, "(2, n, ...)", shape.String())

	_, err = ConvertShape(Sequence(Ellipsis, I(2)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValue))
	assert.Contains(t, err.Error(), "last position")

	_, err = ConvertShape(Scalar(Name("city")))
	assert.True(t, errors.Is(err, ErrType))
	_, err = ConvertShape(Scalar(Ellipsis))
	assert.True(t, errors.Is(err, ErrType))
	_, err = ConvertShape(Sequence(I(2), Name("city")))
	assert.True(t, errors.Is(err, ErrType))
}

func TestConvertSize(t *testing.T) {
	size, err := ConvertSize(None())
	require.NoError(t, err)
	assert.Nil(t, size)

	size, err = ConvertSize(Scalar(I(100)))
	require.NoError(t, err)
	assert.Equal(t, Ints(100), size.Dims)
	assert.Equal(t, "(100,)", size.String())

	size, err = ConvertSize(Sequence())
	require.NoError(t, err)
	require.NotNil(t, size)
	assert.Equal(t, 0, size.Len())

	for _, spec := range []Spec{
		Sequence(I(2), Ellipsis),
		Sequence(Ellipsis),
		Sequence(Ellipsis, I(2)),
		Scalar(Ellipsis),
	} {
		_, err = ConvertSize(spec)
		require.Errorf(t, err, "size %s", spec)
		assert.Truef(t, errors.Is(err, ErrValue), "size %s: %v", spec, err)
	}

	_, err = ConvertSize(Sequence(Name("city")))
	assert.True(t, errors.Is(err, ErrType))
}

func TestConvertDims(t *testing.T) {
	dims, err := ConvertDims(None())
	require.NoError(t, err)
	assert.Nil(t, dims)

	dims, err = ConvertDims(Scalar(Name("city")))
	require.NoError(t, err)
	assert.Equal(t, []string{"city"}, dims.Names)

	dims, err = ConvertDims(Sequence(Name("year"), Unnamed, Ellipsis))
	require.NoError(t, err)
	assert.Equal(t, []string{"year", ""}, dims.Names)
	assert.True(t, dims.Ellipsis)
	assert.Equal(t, "(year, None, ...)", dims.String())

	_, err = ConvertDims(Sequence(Name("year"), Ellipsis, Name("city")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValue))

	_, err = ConvertDims(Scalar(I(3)))
	assert.True(t, errors.Is(err, ErrType))
	_, err = ConvertDims(Sequence(Name("year"), I(3)))
	assert.True(t, errors.Is(err, ErrType))
}

func TestRoundTripSpec(t *testing.T) {
	shape, err := ConvertShape(Sequence(I(2), Ellipsis))
	require.NoError(t, err)
	shape2, err := ConvertShape(shape.Spec())
	require.NoError(t, err)
	assert.Equal(t, shape, shape2)

	dims, err := ConvertDims(NamesSpec("a", "", "b"))
	require.NoError(t, err)
	s, err := SpecFromAny(dims)
	require.NoError(t, err)
	dims2, err := ConvertDims(s)
	require.NoError(t, err)
	assert.Equal(t, dims, dims2)

	var nilSize *Size
	s, err = SpecFromAny(nilSize)
	require.NoError(t, err)
	assert.True(t, s.IsNone())
}

func TestToTuple(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want []int
	}{
		{nil, []int{}},
		{5, []int{5}},
		{[]int{2, 3}, []int{2, 3}},
		{[]int{}, []int{}},
		{[2]int64{4, 5}, []int{4, 5}},
		{[]float64{2, 3}, []int{2, 3}},
		{[]any{2, uint8(3)}, []int{2, 3}},
		{NewSize(Ints(7, 8)...), []int{7, 8}},
		{Int(9), []int{9}},
	} {
		got, err := ToTuple(tc.in)
		require.NoErrorf(t, err, "ToTuple(%v)", tc.in)
		assert.Equalf(t, tc.want, got, "ToTuple(%v)", tc.in)
	}
}

func TestCheckShapeType(t *testing.T) {
	for _, bad := range []any{
		nil,
		2.5,
		[]float64{1, 2.5},
		[][]int{{1, 2}},
		"abc",
		[]any{1, "a"},
		[]Dim{Int(2), Symbol("n")},
		true,
	} {
		_, err := CheckShapeType(bad)
		require.Errorf(t, err, "CheckShapeType(%v)", bad)
		assert.Truef(t, errors.Is(err, ErrType), "CheckShapeType(%v): %v", bad, err)
	}
	got, err := CheckShapeType(3.0)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got)
}
