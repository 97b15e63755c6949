package stablehlo

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/rvshape/internal/utils"
	"github.com/gomlx/rvshape/types/shapes"
	"github.com/pkg/errors"
)

type hasToStableHLO interface {
	ToStableHLO() string
}

// literalStr is an attribute value written verbatim.
type literalStr string

// ToStableHLO implements hasToStableHLO.
func (s literalStr) ToStableHLO() string { return string(s) }

func literalStrF(format string, args ...any) literalStr {
	return literalStr(fmt.Sprintf(format, args...))
}

// intSliceToArrayI64StableHLO converts a slice of ints to the `array<i64: ...>` attribute format.
func intSliceToArrayI64StableHLO(values []int) literalStr {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	if len(parts) == 0 {
		return "array<i64>"
	}
	return literalStrF("array<i64: %s>", strings.Join(parts, ", "))
}

// literalToStableHLO converts a literal value, usually used in attributes, to its StableHLO string representation.
func literalToStableHLO(attr any) string {
	switch v := attr.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		dtype := dtypes.FromAny(v)
		return fmt.Sprintf("%d : %s", v, utils.DTypeToStableHLO(dtype))
	case bool:
		if v {
			return "true"
		}
		return "false"

	case hasToStableHLO:
		// For types that implement their own conversion to stablehlo, use that.
		return v.ToStableHLO()

	default:
		return fmt.Sprintf("Unknown literal type: %T %#v", v, v)
	}
}

// tensorLiteral is a dense tensor constant, written as `dense<...> : tensor<...>`.
type tensorLiteral struct {
	shape shapes.Shape

	// elements formatted in row-major order.
	elements []string
}

// newTensorLiteralFromFlatAndDimensions creates a tensor literal either from a scalar (if no dimensions
// are given) or from a flat slice of values with the given dimensions.
func newTensorLiteralFromFlatAndDimensions(flatOrScalar any, dimensions ...int) (*tensorLiteral, error) {
	value := reflect.ValueOf(flatOrScalar)
	if len(dimensions) == 0 && value.Kind() != reflect.Slice {
		dtype := dtypes.FromAny(flatOrScalar)
		if dtype == dtypes.InvalidDType {
			return nil, errors.Errorf("unsupported literal type %T", flatOrScalar)
		}
		element, err := formatElement(value, dtype)
		if err != nil {
			return nil, err
		}
		return &tensorLiteral{shape: shapes.Make(dtype), elements: []string{element}}, nil
	}
	if value.Kind() != reflect.Slice {
		return nil, errors.Errorf("literal with dimensions %v requires a flat slice, got %T", dimensions, flatOrScalar)
	}
	dtype := dtypes.FromGoType(value.Type().Elem())
	if dtype == dtypes.InvalidDType {
		return nil, errors.Errorf("unsupported literal type %T", flatOrScalar)
	}
	shape := shapes.Make(dtype, dimensions...)
	if shape.Size() != value.Len() {
		return nil, errors.Errorf("literal has %d values, but shape %s requires %d", value.Len(), shape, shape.Size())
	}
	elements := make([]string, value.Len())
	for i := range elements {
		var err error
		elements[i], err = formatElement(value.Index(i), dtype)
		if err != nil {
			return nil, err
		}
	}
	return &tensorLiteral{shape: shape, elements: elements}, nil
}

// ToStableHLO implements hasToStableHLO.
func (t *tensorLiteral) ToStableHLO() string {
	var sb strings.Builder
	sb.WriteString("dense<")
	if t.shape.IsScalar() {
		sb.WriteString(t.elements[0])
	} else {
		writeNested(&sb, t.elements, t.shape.Dimensions)
	}
	sb.WriteString("> : ")
	sb.WriteString(t.shape.ToStableHLO())
	return sb.String()
}

// writeNested writes the row-major elements as nested lists, one level per axis.
func writeNested(sb *strings.Builder, elements []string, dimensions []int) {
	sb.WriteByte('[')
	if len(dimensions) == 1 {
		sb.WriteString(strings.Join(elements, ", "))
	} else if dimensions[0] > 0 {
		stride := len(elements) / dimensions[0]
		for i := range dimensions[0] {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeNested(sb, elements[i*stride:(i+1)*stride], dimensions[1:])
		}
	}
	sb.WriteByte(']')
}

// formatElement formats one element in the StableHLO literal syntax.
func formatElement(v reflect.Value, dtype dtypes.DType) (string, error) {
	switch {
	case dtype == dtypes.Bool:
		if v.Bool() {
			return "true", nil
		}
		return "false", nil
	case dtype == dtypes.Float64 || dtype == dtypes.Float32:
		return formatFloat(v.Float(), dtype), nil
	case dtype.IsUnsigned():
		return strconv.FormatUint(v.Uint(), 10), nil
	case dtype.IsInt():
		return strconv.FormatInt(v.Int(), 10), nil
	default:
		return "", errors.Errorf("literals of dtype %s are not supported", dtype)
	}
}

// formatFloat formats a float with a decimal point, and uses the hexadecimal bit representation
// for non-finite values.
func formatFloat(f float64, dtype dtypes.DType) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		if dtype == dtypes.Float32 {
			return fmt.Sprintf("0x%08X", math.Float32bits(float32(f)))
		}
		return fmt.Sprintf("0x%016X", math.Float64bits(f))
	}
	bitSize := 64
	if dtype == dtypes.Float32 {
		bitSize = 32
	}
	s := strconv.FormatFloat(f, 'e', -1, bitSize)
	if !strings.Contains(s, ".") {
		mantissa, exponent, _ := strings.Cut(s, "e")
		s = mantissa + ".0e" + exponent
	}
	return s
}
