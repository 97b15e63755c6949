package shapeinference

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/rvshape/internal/optypes"
	"github.com/gomlx/rvshape/types/shapes"
)

// Aliases
var (
	Bool = dtypes.Bool
	I8   = dtypes.Int8
	I32  = dtypes.Int32
	F32  = dtypes.Float32
	F64  = dtypes.Float64
	U64  = dtypes.Uint64

	S = shapes.Make
)

// must1 panics if there is an error.
func must1[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}

func panics(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic, but code did not panic")
		}
	}()
	f()
}

func TestBinaryOp(t *testing.T) {
	// Invalid data types check.
	var err error
	_, err = BinaryOp(optypes.Or, S(F32), S(F32))
	if err == nil {
		t.Error("expected error for Or(F32, F32), got nil")
	}
	_, err = BinaryOp(optypes.Multiply, S(Bool, 1), S(Bool, 1))
	if err == nil {
		t.Error("expected error for Multiply(Bool, Bool), got nil")
	}
	_, err = BinaryOp(optypes.ShiftRightLogical, S(F64, 2), S(F64, 2))
	if err == nil {
		t.Error("expected error for ShiftRightLogical(F64, F64), got nil")
	}

	// Invalid operation type (not binary op).
	_, err = BinaryOp(optypes.Exponential, S(F32), S(F32))
	if err == nil {
		t.Error("expected error for Exponential(F32, F32), got nil")
	}

	// The same shape should be ok.
	intMatrixShape := S(U64, 3, 3)
	output, err := BinaryOp(optypes.Or, intMatrixShape, intMatrixShape)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !intMatrixShape.Equal(output) {
		t.Errorf("expected output shape %s, got %s", intMatrixShape, output)
	}
	output, err = BinaryOp(optypes.ShiftRightLogical, intMatrixShape, intMatrixShape)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !intMatrixShape.Equal(output) {
		t.Errorf("expected output shape %s, got %s", intMatrixShape, output)
	}

	// Broadcasting: not provided in StableHLO.
	_, err = BinaryOp(optypes.Add, S(F32, 2, 1, 3), S(F32, 1, 4, 3))
	if err == nil {
		t.Error("expected error for Add with different shapes, got nil")
	}
	_, err = BinaryOp(optypes.Add, S(F32), S(F32, 2, 3))
	if err == nil {
		t.Error("expected error for Add(scalar, matrix), got nil")
	}
}

func TestUnaryOp(t *testing.T) {
	// Invalid data types check.
	panics(t, func() { must1(UnaryOp(optypes.Log, S(I32))) })
	panics(t, func() { must1(UnaryOp(optypes.Cosine, S(dtypes.Complex64))) })
	panics(t, func() { must1(UnaryOp(optypes.Negate, S(Bool))) })
	panics(t, func() { must1(UnaryOp(optypes.Negate, S(U64))) })

	// Invalid operation type (not unary op).
	panics(t, func() { must1(UnaryOp(optypes.Add, S(F32))) })

	// Valid operations
	floatShape := S(F64, 2, 3)
	for _, op := range []optypes.OpType{optypes.Log, optypes.Sqrt, optypes.Cosine, optypes.Negate, optypes.Exponential, optypes.Abs} {
		if out := must1(UnaryOp(op, floatShape)); !floatShape.Equal(out) {
			t.Errorf("%s: expected %s, got %s", op, floatShape, out)
		}
	}
	if out := must1(UnaryOp(optypes.Abs, S(dtypes.Complex128, 2))); !out.Equal(S(F64, 2)) {
		t.Errorf("Abs(complex128) should be float64, got %s", out)
	}
}

func TestBroadcastInDim(t *testing.T) {
	if err := BroadcastInDim(S(F64, 3), S(F64, 2, 3), []int{1}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	axes := []int{-1}
	if err := BroadcastInDim(S(F64, 1), S(F64, 2, 3), axes); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if axes[0] != 1 {
		t.Errorf("negative axis should have been adjusted in place, got %v", axes)
	}
	if err := BroadcastInDim(S(F64), S(F64, 2, 3), nil); err != nil {
		t.Errorf("scalar broadcast: unexpected error: %v", err)
	}

	if err := BroadcastInDim(S(F32, 3), S(F64, 2, 3), []int{1}); err == nil {
		t.Error("expected dtype mismatch error")
	}
	if err := BroadcastInDim(S(F64, 2, 3), S(F64, 3), []int{0, 1}); err == nil {
		t.Error("expected rank shrink error")
	}
	if err := BroadcastInDim(S(F64, 2), S(F64, 2, 3), []int{1}); err == nil {
		t.Error("expected incompatible dimension error")
	}
	if err := BroadcastInDim(S(F64, 1, 1), S(F64, 2, 3), []int{1, 1}); err == nil {
		t.Error("expected duplicate axes error")
	}
	if err := BroadcastInDim(S(F64, 3), S(F64, 2, 3), []int{}); err == nil {
		t.Error("expected missing axes mapping error")
	}
}

func TestTrailingAxesMapping(t *testing.T) {
	mapping := must1(TrailingAxesMapping(2, 4))
	if len(mapping) != 2 || mapping[0] != 2 || mapping[1] != 3 {
		t.Errorf("TrailingAxesMapping(2, 4) = %v, want [2 3]", mapping)
	}
	if mapping := must1(TrailingAxesMapping(0, 3)); len(mapping) != 0 {
		t.Errorf("TrailingAxesMapping(0, 3) = %v, want []", mapping)
	}
	if _, err := TrailingAxesMapping(3, 2); err == nil {
		t.Error("expected error for operand rank larger than target")
	}
}

func TestBitcastConvert(t *testing.T) {
	out := must1(BitcastConvert(S(U64, 3), F64))
	if !out.Equal(S(F64, 3)) {
		t.Errorf("BitcastConvert(U64[3], F64) = %s", out)
	}
	out = must1(BitcastConvert(S(U64, 3), dtypes.Uint32))
	if !out.Equal(S(dtypes.Uint32, 3, 2)) {
		t.Errorf("BitcastConvert(U64[3], U32) = %s", out)
	}
	out = must1(BitcastConvert(S(dtypes.Uint32, 3, 2), U64))
	if !out.Equal(S(U64, 3)) {
		t.Errorf("BitcastConvert(U32[3,2], U64) = %s", out)
	}
	if _, err := BitcastConvert(S(dtypes.Uint32, 3), U64); err == nil {
		t.Error("expected error converting U32[3] to U64")
	}
	if _, err := BitcastConvert(shapes.Invalid(), U64); err == nil {
		t.Error("expected error for invalid shape")
	}
}
