// Package shapeinference calculates the shape resulting from operations and validates its inputs.
//
// It holds two families of functions:
//
//   - Broadcasting of distribution shapes (ShapesBroadcasting, BroadcastDistSamplesShape and
//     BroadcastDims), following NumPy broadcasting rules: shapes are aligned on their trailing
//     axes, and an axis of dimension 1 stretches to match the other.
//   - Shape inference for the StableHLO operations used by the sampling backend (BinaryOp,
//     UnaryOp, BroadcastInDim, BitcastConvert). StableHLO itself does not broadcast: binary
//     operations require matching shapes, and broadcasting is explicit with BroadcastInDim.
package shapeinference

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/rvshape/internal/optypes"
	"github.com/gomlx/rvshape/internal/utils"
	"github.com/gomlx/rvshape/types/shapes"
	"github.com/pkg/errors"
)

var (
	// BooleanOrBitwiseOperations take booleans or integers as input.
	BooleanOrBitwiseOperations = utils.SetWith(
		optypes.Or,
	)

	// BitwiseOperations operates only on integer (binary) numbers and won't work on floats or complex numbers.
	BitwiseOperations = utils.SetWith(
		optypes.ShiftRightLogical,
	)

	// NumberOperations can take any type of number as input: integers, floats, or complex numbers.
	NumberOperations = utils.SetWith(
		optypes.Add,
		optypes.Subtract,
		optypes.Multiply,
		optypes.Divide,
		optypes.Maximum,

		// Notice Abs works for unsigned ints: it's just a trivial implementation.
		optypes.Abs,
	)

	SignedNumberOperations = utils.SetWith(
		optypes.Negate,
	)

	// FloatOperations operates only on float (and not on complex numbers).
	FloatOperations = utils.SetWith(
		optypes.Cosine,
	)

	// FloatOrComplexOperations operates only on float or complex numbers and won't work on integer or boolean values.
	FloatOrComplexOperations = utils.SetWith(
		optypes.Exponential,
		optypes.Log,
		optypes.Sqrt,
	)

	// StandardBinaryOperations include all operations that have two operands usually named lhs (left-hand-side) and
	// rhs (right-hand-side).
	StandardBinaryOperations = utils.SetWith(
		optypes.Add,
		optypes.Subtract,
		optypes.Multiply,
		optypes.Divide,
		optypes.Maximum,
		optypes.Or,
		optypes.ShiftRightLogical,
	)

	// StandardUnaryOperations include all operations that have a single operand as input, and the return shape is the
	// same as the input (so no reductions).
	StandardUnaryOperations = utils.SetWith(
		optypes.Abs,
		optypes.Cosine,
		optypes.Exponential,
		optypes.Log,
		optypes.Negate,
		optypes.Sqrt,
	)
)

// BinaryOp returns the expected output shape for ops in the StandardBinaryOperations set.
//
// It returns an error if the data type (shape.DType) is invalid for the operation, or if the shapes don't match.
func BinaryOp(opType optypes.OpType, lhsShape, rhsShape shapes.Shape) (output shapes.Shape, err error) {
	if !StandardBinaryOperations.Has(opType) {
		err = errors.Errorf("operations %s is not in the StandardBinaryOperations set, cannot process it with BinaryOp", opType)
		return
	}
	if lhsShape.DType == dtypes.InvalidDType || rhsShape.DType == dtypes.InvalidDType {
		err = errors.Errorf("invalid shape for %s or %s for %q", lhsShape, rhsShape, opType)
		return
	}
	if !lhsShape.Equal(rhsShape) {
		err = errors.Errorf("shapes for %q must match, got %s and %s", opType, lhsShape, rhsShape)
		return
	}
	if err = checkDType(opType, lhsShape); err != nil {
		return
	}
	output = lhsShape.Clone()
	return
}

// UnaryOp checks the validity of the data type for StandardUnaryOperations and returns either an error or
// the output shape, which is the same as the operand.
func UnaryOp(opType optypes.OpType, operand shapes.Shape) (output shapes.Shape, err error) {
	if !StandardUnaryOperations.Has(opType) {
		err = errors.Errorf("operation %s is not in the StandardUnaryOperations set, cannot process it with UnaryOp", opType)
		return
	}
	if operand.DType == dtypes.InvalidDType {
		err = errors.Errorf("invalid shape %s for UnaryOp %s", operand, opType)
		return
	}
	if SignedNumberOperations.Has(opType) && (operand.DType.IsUnsigned() ||
		!(operand.DType.IsInt() || operand.DType.IsFloat() || operand.DType.IsComplex())) {
		err = errors.Errorf("signed UnaryOp %s must have a signed data type as input, got %s", opType, operand)
		return
	}
	if err = checkDType(opType, operand); err != nil {
		return
	}

	// Special cases:
	if opType == optypes.Abs && operand.DType.IsComplex() {
		// Abs(complex) -> real.
		output = operand.Clone()
		output.DType = operand.DType.RealDType()
		return
	}

	// Default: output shape is the same as the operand.
	output = operand.Clone()
	return
}

// checkDType validates the operand dtype against the sets the operation belongs to.
func checkDType(opType optypes.OpType, operand shapes.Shape) error {
	dtype := operand.DType
	if BooleanOrBitwiseOperations.Has(opType) && dtype != dtypes.Bool && !dtype.IsInt() {
		return errors.Errorf("logical/bitwise %s must have boolean (dtype.Bool) or integer data types as input, got %s", opType, operand)
	}
	if BitwiseOperations.Has(opType) && !dtype.IsInt() {
		return errors.Errorf("bitwise %s must have an integer (Int8, UInt8, Int32, ...) data type as input, got %s", opType, operand)
	}
	if NumberOperations.Has(opType) && !(dtype.IsInt() || dtype.IsFloat() || dtype.IsComplex()) {
		return errors.Errorf("numeric %s must have a number (Int32, Float32, Complex64, ...) data type as input, got %s", opType, operand)
	}
	if FloatOperations.Has(opType) && !dtype.IsFloat() {
		return errors.Errorf("float %s must have a float (Float32, Float64, ...) data type as input, got %s", opType, operand)
	}
	if FloatOrComplexOperations.Has(opType) && !(dtype.IsFloat() || dtype.IsComplex()) {
		return errors.Errorf("float/complex %s must have a float or complex (Float32, Complex64, ...) data type as input, got %s", opType, operand)
	}
	return nil
}

// AdjustAxisToRank returns a positive axis, adjusting negative numbers to the correct rank.
func AdjustAxisToRank(axis, rank int) (int, error) {
	if axis < -rank || axis >= rank {
		return -1, errors.Errorf("axis %d is out of range for the rank %d", axis, rank)
	}
	if axis < 0 {
		axis += rank
	}
	return axis, nil
}

// BroadcastInDim verifies that the arguments are valid.
// The output shape is already known, so nothing is returned.
//
// The axesMapping is changed in place, replacing negative axes with their positive equivalent.
func BroadcastInDim(operand, targetShape shapes.Shape, axesMapping []int) error {
	if operand.DType != targetShape.DType {
		return errors.Errorf("BroadcastInDim() requires the operand and the target shape to have the same data type, got operand=%s and targetShape=%s",
			operand, targetShape)
	}
	targetRank := targetShape.Rank()
	if targetRank < operand.Rank() {
		return errors.Errorf("BroadcastInDim() cannot be used to shrink the rank of the operand, got operand=%s and targetShape=%s",
			operand, targetShape)
	}
	if len(axesMapping) != operand.Rank() {
		return errors.Errorf("BroadcastInDim() requires all operand's axes mappings to be defined, operand has shape %s, but %d axes were given",
			operand, len(axesMapping))
	}
	usedAxis := utils.MakeSet[int](len(axesMapping))
	for operandAxis, targetAxis := range axesMapping {
		targetAxis, err := AdjustAxisToRank(targetAxis, targetRank)
		if err != nil {
			return errors.WithMessagef(err, "invalid axes mapping of operand axis %d to targetShape axis %d, targetShape is %s", operandAxis, targetAxis, targetShape)
		}
		if usedAxis.Has(targetAxis) {
			return errors.Errorf("BroadcastInDim() requires all targetShape axes to be unique, got duplicate axis %d", targetAxis)
		}
		usedAxis.Insert(targetAxis)
		operandDim := operand.Dimensions[operandAxis]
		targetDim := targetShape.Dimensions[targetAxis]
		if operandDim != 1 && operandDim != targetDim {
			return errors.Errorf("BroadcastInDim() requires all operand axes to be broadcast to be of dimension 1, but got operand.Dimensions[%d]=%d and targetShape.Dimension[%d]=%d",
				operandAxis, operandDim, targetAxis, targetDim)
		}
		axesMapping[operandAxis] = targetAxis
	}
	return nil
}

// TrailingAxesMapping returns the BroadcastInDim axes mapping that aligns an operand of the given rank
// with the trailing axes of a target of rank targetRank, as in NumPy broadcasting.
func TrailingAxesMapping(operandRank, targetRank int) ([]int, error) {
	if operandRank > targetRank {
		return nil, errors.Errorf("cannot align operand of rank %d to the trailing axes of rank %d", operandRank, targetRank)
	}
	mapping := make([]int, operandRank)
	for axis := range mapping {
		mapping[axis] = targetRank - operandRank + axis
	}
	return mapping, nil
}

// BitcastConvert returns the shape resulting from reinterpreting the bits of operand as targetDType.
func BitcastConvert(operand shapes.Shape, targetDType dtypes.DType) (outputShape shapes.Shape, err error) {
	if operand.DType == dtypes.InvalidDType {
		return shapes.Invalid(), errors.New("BitcastConvert: operand data type is invalid")
	}
	sourceDType := operand.DType
	outputShape = operand.Clone()
	outputShape.DType = targetDType
	if sourceDType.Bits() == targetDType.Bits() {
		// No changes in shape.
		return
	}
	if sourceDType.Bits() > targetDType.Bits() {
		// Convert to a smaller data type, append to a new dimension.
		newDim := sourceDType.Bits() / targetDType.Bits()
		outputShape.Dimensions = append(outputShape.Dimensions, newDim)
		return
	}

	// Convert to a larger data type, shrink the last dimension.
	if outputShape.Rank() == 0 || outputShape.Dim(-1) != (targetDType.Bits()+sourceDType.Bits()-1)/sourceDType.Bits() {
		return shapes.Invalid(), errors.Errorf("BitcastConvert: cannot convert from %s (%d bits) to %s (%d bits)",
			operand, sourceDType.Bits(), targetDType, targetDType.Bits())
	}
	outputShape.Dimensions = outputShape.Dimensions[:len(outputShape.Dimensions)-1]
	return
}
