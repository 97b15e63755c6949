package stablehlo

import (
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/rvshape/internal/optypes"
	"github.com/gomlx/rvshape/types/shapes"
	"github.com/pkg/errors"
)

// Function represents a `func.func` in StableHLO.
type Function struct {
	Builder *Builder

	// Name of the function. It should not include the "@" prefix.
	Name string

	// Inputs to the function.
	Inputs []*Value

	// Outputs types of the function.
	Outputs []shapes.Shape

	// Statements in the function body.
	Statements []*Statement

	// nextArgID is the next ID to be assigned to new input arguments.
	nextArgID int

	// nextTmpID is the next ID to be assigned to new intermediary values.
	nextTmpID int

	// Returned indicates if the function has a return statement, so it can no longer be changed.
	Returned bool
}

// newValue creates a new value with the given shape and assigns it to the next available id.
func (fn *Function) newValue(shape shapes.Shape) *Value {
	v := &Value{
		fn:    fn,
		name:  strconv.Itoa(fn.nextTmpID),
		shape: shape,
	}
	fn.nextTmpID++
	return v
}

// Input creates a new input parameter for a function.
//
// The order matters: during execution of a compiled function, the input parameters must be given
// in the same order they were created.
func (fn *Function) Input(shape shapes.Shape) *Value {
	value := fn.NamedInput(fmt.Sprintf("arg%d", fn.nextArgID), shape)
	fn.nextArgID++
	return value
}

// NamedInput creates a new input parameter for a function with the given name -- it
// must be a unique input name.
//
// The name is passed through NormalizeIdentifier. Names are only used in the StableHLO code and may be
// helpful for debugging.
func (fn *Function) NamedInput(name string, shape shapes.Shape) *Value {
	value := &Value{
		fn:    fn,
		name:  NormalizeIdentifier(name),
		shape: shape,
	}
	fn.Inputs = append(fn.Inputs, value)
	return value
}

// ConstantFromScalar creates a new constant statement and returns the resulting value.
func (fn *Function) ConstantFromScalar(value any) (*Value, error) {
	if fn.Returned {
		return nil, errors.Errorf("Function.Return already called for %q", fn.Name)
	}
	dtype := dtypes.FromAny(value)
	if dtype == dtypes.InvalidDType {
		return nil, errors.Errorf("unsupported constant value type %T", value)
	}
	t, err := newTensorLiteralFromFlatAndDimensions(value)
	if err != nil {
		return nil, err
	}
	stmt := fn.addOp(optypes.Constant, shapes.Make(dtype))
	stmt.Attributes = map[string]any{"value": t}
	return stmt.Outputs[0], nil
}

// ConstantFromFlatAndDimensions creates a new constant statement from a flat slice with the raw values and the dimensions of the shape.
func (fn *Function) ConstantFromFlatAndDimensions(flat any, dimensions ...int) (*Value, error) {
	if fn.Returned {
		return nil, errors.Errorf("Function.Return already called for %q", fn.Name)
	}
	flatV := reflect.ValueOf(flat)
	if flatV.Kind() != reflect.Slice {
		return nil, errors.Errorf("ConstantFromFlatAndDimensions requires a slice, got %T", flat)
	}
	dtype := dtypes.FromGoType(flatV.Type().Elem())
	if dtype == dtypes.InvalidDType {
		return nil, errors.Errorf("unsupported constant flat values type %T -- expected a slice of a basic data type", flat)
	}
	shape := shapes.Make(dtype, dimensions...)
	if shape.Size() != flatV.Len() {
		return nil, errors.Errorf("flat values size %d doesn't match shape size %d (%s)", flatV.Len(), shape.Size(), shape)
	}
	var t *tensorLiteral
	var err error
	if shape.IsScalar() {
		t, err = newTensorLiteralFromFlatAndDimensions(flatV.Index(0).Interface())
	} else {
		t, err = newTensorLiteralFromFlatAndDimensions(flat, dimensions...)
	}
	if err != nil {
		return nil, err
	}
	stmt := fn.addOp(optypes.Constant, shape)
	stmt.Attributes = map[string]any{"value": t}
	return stmt.Outputs[0], nil
}

// Return adds a return statement to the function with the given return values.
// There must be at least one return value.
//
// There can be only one return statement from a Function, and it must be the last
// operation of a function.
func (fn *Function) Return(firstValue *Value, otherValues ...*Value) error {
	if fn.Returned {
		return errors.Errorf("Function.Return already called for %q", fn.Name)
	}
	allValues := make([]*Value, 1, len(otherValues)+1)
	allValues[0] = firstValue
	allValues = append(allValues, otherValues...)
	outputShapes := make([]shapes.Shape, len(allValues))
	for i, value := range allValues {
		if value == nil || value.fn != fn {
			return errors.Errorf("Function.Return given values that are not owned by the function %q", fn.Name)
		}
		outputShapes[i] = value.shape
	}
	fn.Returned = true
	fn.Outputs = outputShapes
	fn.Statements = append(fn.Statements, &Statement{
		Function: fn,
		OpType:   optypes.FuncReturn,
		Inputs:   allValues,
	})
	return nil
}

// Write the function as StableHLO code, with the given indentation.
func (fn *Function) Write(writer io.Writer, indentation string) error {
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}
	we := func(e elementWriter, indentation string) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		err = e.Write(writer, indentation)
	}
	nextIndent := indentation + IndentationStep

	w("%sfunc.func @%s(", indentation, fn.Name)
	for i, input := range fn.Inputs {
		if i > 0 {
			w(", ")
		}
		we(input, nextIndent)
		w(": %s", input.shape.ToStableHLO())
	}
	w(") -> ")
	if len(fn.Outputs) != 1 {
		w("(")
	}
	for i, output := range fn.Outputs {
		if i > 0 {
			w(", ")
		}
		w("%s", output.ToStableHLO())
	}
	if len(fn.Outputs) != 1 {
		w(")")
	}
	w(" {\n")
	for _, stmt := range fn.Statements {
		we(stmt, nextIndent)
		w("\n")
	}
	w("%s}", indentation)
	return err
}
