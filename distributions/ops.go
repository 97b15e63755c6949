package distributions

import (
	"github.com/gomlx/rvshape/types/shapespec"
	"github.com/pkg/errors"
)

func scalarSupport([][]shapespec.Dim) ([]shapespec.Dim, error) { return nil, nil }

var (
	// Normal(mu, sigma) distribution.
	Normal = &Op{
		Name:        "Normal",
		ParamNames:  []string{"mu", "sigma"},
		NDimsParams: []int{0, 0},
		support:     scalarSupport,
	}

	// HalfNormal(sigma) distribution: the absolute value of a Normal(0, sigma).
	HalfNormal = &Op{
		Name:        "HalfNormal",
		ParamNames:  []string{"sigma"},
		NDimsParams: []int{0},
		Positive:    true,
		support:     scalarSupport,
	}

	// Uniform(lower, upper) distribution.
	Uniform = &Op{
		Name:        "Uniform",
		ParamNames:  []string{"lower", "upper"},
		NDimsParams: []int{0, 0},
		support:     scalarSupport,
	}

	// MvNormal(mu, cov) multivariate normal distribution: draws are vectors.
	MvNormal = &Op{
		Name:        "MvNormal",
		NDimSupp:    1,
		ParamNames:  []string{"mu", "cov"},
		NDimsParams: []int{1, 2},
		support:     mvNormalSupport,
	}

	// Dirichlet(alpha) distribution: draws are vectors in the simplex.
	Dirichlet = &Op{
		Name:        "Dirichlet",
		NDimSupp:    1,
		ParamNames:  []string{"alpha"},
		NDimsParams: []int{1},
		support: func(core [][]shapespec.Dim) ([]shapespec.Dim, error) {
			return []shapespec.Dim{core[0][0]}, nil
		},
	}
)

// compatible returns whether two lengths may be equal: symbolic lengths are only known later.
func compatible(a, b shapespec.Dim) bool {
	return a == b || a.IsSymbolic() || b.IsSymbolic()
}

func mvNormalSupport(core [][]shapespec.Dim) ([]shapespec.Dim, error) {
	k, cov := core[0][0], core[1]
	if !compatible(cov[0], cov[1]) {
		return nil, errors.Errorf("cov must be a square matrix, got shape %s", shapespec.DimsString(cov))
	}
	if k.IsOne() {
		// mu broadcasts over the support.
		return []shapespec.Dim{cov[1]}, nil
	}
	if !compatible(k, cov[1]) {
		return nil, errors.Errorf("mu of length %s is incompatible with cov of shape %s", k, shapespec.DimsString(cov))
	}
	return []shapespec.Dim{k}, nil
}
