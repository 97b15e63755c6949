// Package optypes defines OpType and lists the operations the sampling programs are built from.
package optypes

import (
	"fmt"

	"github.com/gomlx/rvshape/internal/utils"
)

// OpType is an enum of the StableHLO operations used to lower random variable draws.
type OpType int

const (
	Invalid OpType = iota
	FuncReturn
	Constant

	Abs
	Add
	BitcastConvert
	BroadcastInDim
	Convert
	Cosine
	Divide
	Exponential
	Log
	Maximum
	Multiply
	Negate
	Or
	RngBitGenerator
	ShiftRightLogical
	Sqrt
	Subtract

	// Last should always be kept the last, it is used as a counter/marker.
	Last
)

var opTypeNames = [...]string{
	Invalid:           "Invalid",
	FuncReturn:        "FuncReturn",
	Constant:          "Constant",
	Abs:               "Abs",
	Add:               "Add",
	BitcastConvert:    "BitcastConvert",
	BroadcastInDim:    "BroadcastInDim",
	Convert:           "Convert",
	Cosine:            "Cosine",
	Divide:            "Divide",
	Exponential:       "Exponential",
	Log:               "Log",
	Maximum:           "Maximum",
	Multiply:          "Multiply",
	Negate:            "Negate",
	Or:                "Or",
	RngBitGenerator:   "RngBitGenerator",
	ShiftRightLogical: "ShiftRightLogical",
	Sqrt:              "Sqrt",
	Subtract:          "Subtract",
	Last:              "Last",
}

// String implements fmt.Stringer.
func (op OpType) String() string {
	if op < 0 || int(op) >= len(opTypeNames) {
		return fmt.Sprintf("OpType(%d)", int(op))
	}
	return opTypeNames[op]
}

var (
	// stableHLOMappings maps OpType to the corresponding StableHLO name, when the default
	// "snake case" doesn't work.
	stableHLOMappings = map[OpType]string{
		FuncReturn: "func.return",
	}
)

// ToStableHLO returns the StableHLO name of the operation.
func (op OpType) ToStableHLO() string {
	name, ok := stableHLOMappings[op]
	if !ok {
		name = fmt.Sprintf("stablehlo.%s", utils.ToSnakeCase(op.String()))
	}
	return name
}
