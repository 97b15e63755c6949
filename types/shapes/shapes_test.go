/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package shapes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
)

func TestShape(t *testing.T) {
	invalidShape := Invalid()
	if invalidShape.Ok() {
		t.Error("Invalid().Ok() should be false")
	}

	shape0 := Make(dtypes.Float64)
	if !shape0.Ok() {
		t.Error("shape0.Ok() should be true")
	}
	if !shape0.IsScalar() {
		t.Error("shape0.IsScalar() should be true")
	}
	if shape0.Rank() != 0 {
		t.Errorf("shape0.Rank() = %d, want 0", shape0.Rank())
	}
	if shape0.Size() != 1 {
		t.Errorf("shape0.Size() = %d, want 1", shape0.Size())
	}
	if int(shape0.Memory()) != 8 {
		t.Errorf("shape0.Memory() = %d, want 8", int(shape0.Memory()))
	}

	shape1 := Make(dtypes.Float32, 4, 3, 2)
	if shape1.IsScalar() {
		t.Error("shape1.IsScalar() should be false")
	}
	if shape1.Rank() != 3 {
		t.Errorf("shape1.Rank() = %d, want 3", shape1.Rank())
	}
	if shape1.Size() != 4*3*2 {
		t.Errorf("shape1.Size() = %d, want %d", shape1.Size(), 4*3*2)
	}
	if int(shape1.Memory()) != 4*4*3*2 {
		t.Errorf("shape1.Memory() = %d, want %d", int(shape1.Memory()), 4*4*3*2)
	}
	if !shape1.Clone().Equal(shape1) {
		t.Errorf("Clone() should be equal to the original")
	}
	if shape1.Equal(Make(dtypes.Float64, 4, 3, 2)) {
		t.Errorf("shapes with different dtypes should not be equal")
	}
	if !shape1.EqualDimensions(Make(dtypes.Float64, 4, 3, 2)) {
		t.Errorf("EqualDimensions should ignore the dtype")
	}
	if got := shape1.String(); got != "(Float32)[4 3 2]" {
		t.Errorf("String() = %q", got)
	}

	// Empty axes are valid.
	if Make(dtypes.Float64, 0, 3).Size() != 0 {
		t.Errorf("shape with a 0 dimension should have size 0")
	}
	panics(t, func() { _ = Make(dtypes.Float64, -1) })
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

func TestDim(t *testing.T) {
	shape := Make(dtypes.Float32, 4, 3, 2)
	if d := shape.Dim(0); d != 4 {
		t.Errorf("shape.Dim(0) = %d, want 4", d)
	}
	if d := shape.Dim(-1); d != 2 {
		t.Errorf("shape.Dim(-1) = %d, want 2", d)
	}
	if d := shape.Dim(-3); d != 4 {
		t.Errorf("shape.Dim(-3) = %d, want 4", d)
	}
	panics(t, func() { _ = shape.Dim(3) })
	panics(t, func() { _ = shape.Dim(-4) })
}

func TestCheck(t *testing.T) {
	shape := Make(dtypes.Float64, 2, 3)
	if err := shape.Check(dtypes.Float64, 2, 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := shape.Check(dtypes.Float32, 2, 3); err == nil {
		t.Errorf("expected dtype mismatch error")
	}
	if err := shape.Check(dtypes.Float64, 3, 2); err == nil {
		t.Errorf("expected dimensions mismatch error")
	}
}

func TestFromAnyValue(t *testing.T) {
	shape, err := FromAnyValue([]int32{1, 2, 3})
	if err != nil {
		t.Fatalf("FromAnyValue failed: %v", err)
	}
	if err := shape.Check(dtypes.Int32, 3); err != nil {
		t.Error(err)
	}

	shape, err = FromAnyValue([][][]float64{{{1, 2, -3}, {3, 4, -7}}})
	if err != nil {
		t.Fatalf("FromAnyValue failed: %v", err)
	}
	if err := shape.Check(dtypes.Float64, 1, 2, 3); err != nil {
		t.Error(err)
	}

	shape, err = FromAnyValue([]any{[]float64{1, 2}, []float64{3, 4}})
	if err != nil {
		t.Fatalf("FromAnyValue failed: %v", err)
	}
	if err := shape.Check(dtypes.Float64, 2, 2); err != nil {
		t.Error(err)
	}

	shape, err = FromAnyValue(7.0)
	if err != nil {
		t.Fatalf("FromAnyValue failed: %v", err)
	}
	if !shape.IsScalar() {
		t.Errorf("scalar value should have a scalar shape, got %s", shape)
	}

	// Irregular shape is not accepted:
	shape, err = FromAnyValue([][]float32{{1, 2, 3}, {4, 5}})
	if err == nil {
		t.Errorf("irregular shape should have returned an error, instead got shape %s", shape)
	}
	// Mixed dtypes are not accepted:
	if _, err = FromAnyValue([]any{1.0, int32(2)}); err == nil {
		t.Errorf("mixed dtypes should have returned an error")
	}
	if _, err = FromAnyValue(nil); err == nil {
		t.Errorf("nil should have returned an error")
	}
	if _, err = FromAnyValue("abc"); err == nil {
		t.Errorf("strings should have returned an error")
	}
}

func TestToStableHLO(t *testing.T) {
	shape := Make(dtypes.Float32, 1, 10)
	if got := shape.ToStableHLO(); got != "tensor<1x10xf32>" {
		t.Errorf("ToStableHLO() = %q, want %q", got, "tensor<1x10xf32>")
	}

	// Test scalar.
	shape = Make(dtypes.Uint64)
	if got := shape.ToStableHLO(); got != "tensor<ui64>" {
		t.Errorf("ToStableHLO() = %q, want %q", got, "tensor<ui64>")
	}
}
