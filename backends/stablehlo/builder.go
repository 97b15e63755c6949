package stablehlo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Builder is used to construct a StableHLO program (or "Module").
// See details in New.
type Builder struct {
	name string

	// functions holds all the functions created in the builder's scope.
	functions []*Function
}

// New creates a new Builder object holding a computation graph in construction.
//
// From a builder you create functions, and for each function you add operations one by one.
// The "main" function is the entry point of the program: use Builder.Main to create it.
//
// Once you are all set, call Builder.Build and it will return the StableHLO program as a []byte that can
// be compiled with PJRT.
func New(name string) *Builder {
	return &Builder{
		name: name,
	}
}

// elementWriter represents elements of the program that know how to write themselves.
type elementWriter interface {
	Write(w io.Writer, indentation string) error
}

// NewFunction creates a new function and adds it to the program.
// The function name must be unique in the program.
//
// Inputs are added with Function.Input or Function.NamedInput, and the outputs are defined by Function.Return.
func (b *Builder) NewFunction(name string) *Function {
	fn := &Function{
		Builder: b,
		Name:    NormalizeIdentifier(name),
	}
	b.functions = append(b.functions, fn)
	return fn
}

// MainFunctionName is the name of the program entry point.
const MainFunctionName = "main"

// Main creates the main function of the program.
// It is an alias to Builder.NewFunction("main").
func (b *Builder) Main() *Function {
	return b.NewFunction(MainFunctionName)
}

// IndentationStep used for each nested block.
const IndentationStep = "  "

// Write the StableHLO program (a readable string) to the given writer.
//
// It will write incomplete programs (without a main function or empty statements) without an error
// to help debugging.
//
// See Builder.Build to check and output the program.
func (b *Builder) Write(writer io.Writer) error {
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

	w("module @%s {\n", NormalizeIdentifier(b.name))
	for i, fn := range b.functions {
		if i > 0 {
			w("\n\n")
		}
		we(fn, IndentationStep)
	}
	w("\n}\n")
	return err
}

// Build checks the validity and builds the StableHLO program.
//
// If you want the output of an incomplete program (without the checking), use Builder.Write instead.
func (b *Builder) Build() ([]byte, error) {
	hasMain := false
	names := make(map[string]bool, len(b.functions))
	for _, fn := range b.functions {
		if names[fn.Name] {
			return nil, errors.Errorf("duplicate function name %q", fn.Name)
		}
		names[fn.Name] = true
		if fn.Name == MainFunctionName {
			hasMain = true
		}
		if !fn.Returned {
			return nil, errors.Errorf("function %q has no return statement", fn.Name)
		}
	}
	if !hasMain {
		return nil, errors.New("program must have a main function")
	}

	var buf bytes.Buffer
	err := b.Write(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
