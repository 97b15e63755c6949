package model

import (
	"testing"

	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedVariable []shapespec.Dim

func (v fixedVariable) Rank() int { return len(v) }
func (v fixedVariable) Dims() []shapespec.Dim { return v }

func TestNew(t *testing.T) {
	n := shapespec.Symbol("n_obs")
	m, err := New(
		WithCoords(map[string][]any{"city": {"Lisbon", "Porto", "Faro"}}),
		WithDimLengths(map[string]shapespec.Dim{"obs": n, "year": shapespec.Int(4)}),
	)
	require.NoError(t, err)

	length, found := m.DimLength("city")
	require.True(t, found)
	assert.Equal(t, shapespec.Int(3), length)
	length, found = m.DimLength("obs")
	require.True(t, found)
	assert.Equal(t, n, length)
	_, found = m.DimLength("unknown")
	assert.False(t, found)
	assert.Equal(t, []any{"Lisbon", "Porto", "Faro"}, m.Coords("city"))
	assert.Nil(t, m.Coords("obs"))

	_, err = New(WithDimLengths(map[string]shapespec.Dim{"": shapespec.Int(1)}))
	require.Error(t, err)
}

func TestCoords(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	require.NoError(t, m.AddCoord("x", []any{1, 2}))
	require.NoError(t, m.AddCoord("x", []any{1, 2}))
	require.Error(t, m.AddCoord("x", []any{1, 2, 3}))

	require.NoError(t, m.SetDimLength("x", shapespec.Int(2)))
	require.Error(t, m.SetDimLength("x", shapespec.Int(3)))
	require.Error(t, m.SetDimLength("x", shapespec.Symbol("n")))

	require.NoError(t, m.SetDimLength("y", shapespec.Int(5)))
	require.Error(t, m.AddCoord("y", []any{"a"}))
	require.NoError(t, m.AddCoord("y", []any{"a", "b", "c", "d", "e"}))
}

func TestRegister(t *testing.T) {
	m, err := New(WithCoords(map[string][]any{"city": {"a", "b", "c"}}))
	require.NoError(t, err)

	require.NoError(t, m.Register("mu", fixedVariable(shapespec.Ints(3)), []string{"city"}, nil))
	require.NoError(t, m.Register("sigma", fixedVariable(nil), nil, nil))
	require.NoError(t, m.Register("x", fixedVariable(shapespec.Ints(3, 2)), []string{"city", ""}, nil))

	// Duplicate name.
	require.Error(t, m.Register("mu", fixedVariable(nil), nil, nil))
	// Rank mismatch.
	require.Error(t, m.Register("y", fixedVariable(shapespec.Ints(3, 2)), []string{"city"}, nil))
	// Length mismatch.
	require.Error(t, m.Register("z", fixedVariable(shapespec.Ints(4)), []string{"city"}, nil))
	// Unknown dimension.
	require.Error(t, m.Register("w", fixedVariable(shapespec.Ints(4)), []string{"year"}, nil))
	// Symbolic lengths are not checked.
	require.NoError(t, m.Register("s", fixedVariable([]shapespec.Dim{shapespec.Symbol("k")}), []string{"city"}, nil))

	var names []string
	for _, v := range m.Variables() {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"mu", "sigma", "x", "s"}, names)
	assert.Equal(t, []string{"city", ""}, m.Variable("x").Dims)
	assert.Nil(t, m.Variable("y"))
}
