// Package stablehlo lowers random variables into StableHLO programs (text format), to be
// JIT-compiled and executed by PJRT (github.com/gomlx/gopjrt/pjrt).
//
// It holds a small program builder (Builder, Function, Statement and Value) with the operations
// needed to draw samples from a RNG state, plus SamplingProgram, which builds the program that
// draws from a distributions.RandomVariable with concrete dimensions.
//
// Shape inference for the operations is done by package shapeinference: StableHLO doesn't
// broadcast implicitly, so parameters are explicitly broadcast with BroadcastInDim.
//
// See StableHLO documentation and specifications in https://openxla.org/stablehlo/spec
package stablehlo

import "github.com/gomlx/rvshape/internal/utils"

// NormalizeIdentifier converts the name of an identifier (function name or function input parameter
// name, etc.) to a valid one: only letters, digits, and underscores are allowed.
//
// Invalid characters are replaced with underscores.
// If the name starts with a digit, it is prefixed with an underscore.
func NormalizeIdentifier(name string) string {
	return utils.NormalizeIdentifier(name)
}
