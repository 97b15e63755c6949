package stablehlo

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/gomlx/rvshape/internal/optypes"
)

// Statement represents a single operation line in StableHLO.
type Statement struct {
	Function *Function

	// OpType is the type of the operation.
	OpType optypes.OpType

	// Inputs to the operation.
	Inputs []*Value

	// Attributes of the operation, written sorted by name.
	Attributes map[string]any

	// Outputs of the operation. It may be nil for operations like func.return.
	Outputs []*Value
}

// Write writes a string representation of the statement to the given writer.
func (s *Statement) Write(writer io.Writer, indentation string) error {
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}
	we := func(e elementWriter) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		err = e.Write(writer, indentation)
	}

	// Output values are written first:
	w("%s", indentation)
	if len(s.Outputs) > 0 {
		for i, output := range s.Outputs {
			if i > 0 {
				w(", ")
			}
			we(output)
		}
		w(" = ")
	}

	// Op name and arguments:
	w("%q(", s.OpType.ToStableHLO())
	for i, input := range s.Inputs {
		if i > 0 {
			w(", ")
		}
		we(input)
	}
	w(")")

	// Attributes:
	if len(s.Attributes) > 0 {
		w("{")
		for i, key := range slices.Sorted(maps.Keys(s.Attributes)) {
			if i > 0 {
				w(", ")
			}
			w("%s = %s", key, literalToStableHLO(s.Attributes[key]))
		}
		w("}")
	}

	// Signature:
	w(" : (")
	for i, input := range s.Inputs {
		if i > 0 {
			w(", ")
		}
		w("%s", input.shape.ToStableHLO())
	}
	w(") -> ")
	if len(s.Outputs) == 0 {
		w("()")
		return err
	}
	if len(s.Outputs) > 1 {
		w("(")
	}
	for i, output := range s.Outputs {
		if i > 0 {
			w(", ")
		}
		w("%s", output.shape.ToStableHLO())
	}
	if len(s.Outputs) > 1 {
		w(")")
	}
	return err
}
