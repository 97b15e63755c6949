package stablehlo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/rvshape/internal/optypes"
	"github.com/gomlx/rvshape/internal/utils"
	"github.com/gomlx/rvshape/shapeinference"
	"github.com/gomlx/rvshape/types/shapes"
	"github.com/pkg/errors"
)

// addOp adds a new operation to the function.
func (fn *Function) addOp(opType optypes.OpType, outputShape shapes.Shape, inputs ...*Value) *Statement {
	stmt := &Statement{
		Function: fn,
		OpType:   opType,
		Inputs:   inputs,
		Outputs:  []*Value{fn.newValue(outputShape)},
	}
	fn.Statements = append(fn.Statements, stmt)
	return stmt
}

// addMultiOp adds a new operation with multiple outputs to the function.
func (fn *Function) addMultiOp(opType optypes.OpType, outputShapes []shapes.Shape, inputs []*Value) *Statement {
	outputs := make([]*Value, len(outputShapes))
	for i, shape := range outputShapes {
		outputs[i] = fn.newValue(shape)
	}
	stmt := &Statement{
		Function: fn,
		OpType:   opType,
		Inputs:   inputs,
		Outputs:  outputs,
	}
	fn.Statements = append(fn.Statements, stmt)
	return stmt
}

// checkOperands returns the function owning the operands, or an error if the function
// already returned or the operands belong to different functions.
func checkOperands(op optypes.OpType, operands ...*Value) (*Function, error) {
	fn := operands[0].fn
	if fn.Returned {
		return nil, errors.Errorf("cannot add operation %s after returning, in function %q",
			op, fn.Name)
	}
	for _, operand := range operands[1:] {
		if operand.fn != fn {
			return nil, errors.Errorf("cannot add operation %s to function %q, because operands are from different functions (%q and %q)",
				op, fn.Name, fn.Name, operand.fn.Name)
		}
	}
	return fn, nil
}

// binaryOp adds a new binary operation to the function.
func binaryOp(op optypes.OpType, lhs, rhs *Value) (*Value, error) {
	fn, err := checkOperands(op, lhs, rhs)
	if err != nil {
		return nil, err
	}
	outputShape, err := shapeinference.BinaryOp(op, lhs.shape, rhs.shape)
	if err != nil {
		return nil, err
	}
	return fn.addOp(op, outputShape, lhs, rhs).Outputs[0], nil
}

// unaryOp adds a new unary operation to the function.
func unaryOp(op optypes.OpType, operand *Value) (*Value, error) {
	fn, err := checkOperands(op, operand)
	if err != nil {
		return nil, err
	}
	outputShape, err := shapeinference.UnaryOp(op, operand.shape)
	if err != nil {
		return nil, err
	}
	return fn.addOp(op, outputShape, operand).Outputs[0], nil
}

// Add implements the corresponding standard binary operation.
func Add(lhs, rhs *Value) (*Value, error) { return binaryOp(optypes.Add, lhs, rhs) }

// Subtract implements the corresponding standard binary operation.
func Subtract(lhs, rhs *Value) (*Value, error) { return binaryOp(optypes.Subtract, lhs, rhs) }

// Multiply implements the corresponding standard binary operation.
func Multiply(lhs, rhs *Value) (*Value, error) { return binaryOp(optypes.Multiply, lhs, rhs) }

// Divide implements the corresponding standard binary operation.
func Divide(lhs, rhs *Value) (*Value, error) { return binaryOp(optypes.Divide, lhs, rhs) }

// Maximum implements the corresponding standard binary operation.
func Maximum(lhs, rhs *Value) (*Value, error) { return binaryOp(optypes.Maximum, lhs, rhs) }

// Or implements the corresponding standard binary operation: logical or for booleans, bitwise or for integers.
func Or(lhs, rhs *Value) (*Value, error) { return binaryOp(optypes.Or, lhs, rhs) }

// ShiftRightLogical shifts the bits of lhs right by rhs, filling with zeros.
func ShiftRightLogical(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.ShiftRightLogical, lhs, rhs)
}

// Abs implements the corresponding standard unary operation.
func Abs(operand *Value) (*Value, error) { return unaryOp(optypes.Abs, operand) }

// Cosine implements the corresponding standard unary operation.
func Cosine(operand *Value) (*Value, error) { return unaryOp(optypes.Cosine, operand) }

// Exponential implements the corresponding standard unary operation.
func Exponential(operand *Value) (*Value, error) { return unaryOp(optypes.Exponential, operand) }

// Log implements the corresponding standard unary operation.
func Log(operand *Value) (*Value, error) { return unaryOp(optypes.Log, operand) }

// Negate implements the corresponding standard unary operation.
func Negate(operand *Value) (*Value, error) { return unaryOp(optypes.Negate, operand) }

// Sqrt implements the corresponding standard unary operation.
func Sqrt(operand *Value) (*Value, error) { return unaryOp(optypes.Sqrt, operand) }

// BroadcastInDim broadcasts dimensions from the operand to the target shape.
// It can also transpose axes and add new ones.
//
// The axesMapping should have one value per operand axes. It maps the axes from the operand to
// the corresponding value on the target shape.
func BroadcastInDim(operand *Value, target shapes.Shape, axesMapping []int) (*Value, error) {
	op := optypes.BroadcastInDim
	fn, err := checkOperands(op, operand)
	if err != nil {
		return nil, err
	}
	axesMapping = slices.Clone(axesMapping)
	err = shapeinference.BroadcastInDim(operand.shape, target, axesMapping)
	if err != nil {
		return nil, err
	}
	stmt := fn.addOp(op, target, operand)
	stmt.Attributes = map[string]any{"broadcast_dimensions": intSliceToArrayI64StableHLO(axesMapping)}
	return stmt.Outputs[0], nil
}

// BroadcastTrailing broadcasts the operand to the target dimensions, aligning its axes with the
// trailing axes of the target, as NumPy broadcasting does.
func BroadcastTrailing(operand *Value, dimensions ...int) (*Value, error) {
	target := shapes.Make(operand.shape.DType, dimensions...)
	mapping, err := shapeinference.TrailingAxesMapping(operand.shape.Rank(), target.Rank())
	if err != nil {
		return nil, err
	}
	return BroadcastInDim(operand, target, mapping)
}

// BitcastConvert performs an elementwise bit-cast operation from a dtype to another dtype.
//
// If the bit-widths differ, the last axis is split (or merged) accordingly, see shapeinference.BitcastConvert.
func BitcastConvert(operand *Value, targetDtype dtypes.DType) (*Value, error) {
	op := optypes.BitcastConvert
	fn, err := checkOperands(op, operand)
	if err != nil {
		return nil, err
	}
	outputShape, err := shapeinference.BitcastConvert(operand.shape, targetDtype)
	if err != nil {
		return nil, err
	}
	return fn.addOp(op, outputShape, operand).Outputs[0], nil
}

// Convert x to the given dtype.
func Convert(x *Value, dtype dtypes.DType) (*Value, error) {
	op := optypes.Convert
	fn, err := checkOperands(op, x)
	if err != nil {
		return nil, err
	}
	if dtype == dtypes.InvalidDType {
		return nil, errors.Errorf("cannot %s %s to an invalid dtype", op, x.shape)
	}
	outputShape := x.shape.Clone()
	outputShape.DType = dtype
	return fn.addOp(op, outputShape, x).Outputs[0], nil
}

// RNGAlgorithm used by the RNGBitGenerator operation.
type RNGAlgorithm int

const (
	RNGDefault RNGAlgorithm = iota
	RNGPhilox
	RNGThreeFry
)

var rngAlgorithmNames = [...]string{
	RNGDefault:  "Default",
	RNGPhilox:   "Philox",
	RNGThreeFry: "ThreeFry",
}

// String implements fmt.Stringer.
func (a RNGAlgorithm) String() string {
	if a < 0 || int(a) >= len(rngAlgorithmNames) {
		return fmt.Sprintf("RNGAlgorithm(%d)", int(a))
	}
	return rngAlgorithmNames[a]
}

// ToStableHLO returns the attribute value of the algorithm, e.g. "#stablehlo<rng_algorithm THREE_FRY>".
func (a RNGAlgorithm) ToStableHLO() string {
	return fmt.Sprintf("#stablehlo<rng_algorithm %s>", strings.ToUpper(utils.ToSnakeCase(a.String())))
}

// RNGBitGenerator generates the given shape filled with random bits.
// It takes the current random number generator (RNG) state, and returns the new state of the RNG and
// the generated values with the given shape.
//
// The state shape depends on the algorithm:
//
//   - RNGDefault: PJRT implementation defined.
//   - RNGThreeFry: 2xUint64
//   - RNGPhilox: 2xUint64 or 3xUint64
func RNGBitGenerator(state *Value, shape shapes.Shape, algorithm RNGAlgorithm) (newState, values *Value, err error) {
	op := optypes.RngBitGenerator
	fn, err := checkOperands(op, state)
	if err != nil {
		return nil, nil, err
	}
	if !shape.Ok() || !(shape.DType.IsInt() || shape.DType.IsFloat()) {
		return nil, nil, errors.Errorf("%s requires an integer or float output shape, got %s", op, shape)
	}
	stmt := fn.addMultiOp(op, []shapes.Shape{state.shape, shape}, []*Value{state})
	stmt.Attributes = map[string]any{"rng_algorithm": algorithm}
	return stmt.Outputs[0], stmt.Outputs[1], nil
}
