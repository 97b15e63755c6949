// Package gopjrt holds integration tests that compile and execute the sampling programs with PJRT.
//
// The PJRT plugins to test are selected with the -plugins flag.
package gopjrt

import (
	"flag"
	"fmt"
	"iter"
	"strings"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/pjrt"
	"github.com/gomlx/rvshape/backends/stablehlo"
	"github.com/gomlx/rvshape/distributions"
	"github.com/gomlx/rvshape/types/tensors"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

var flagPluginNames = flag.String("plugins", "cpu", "List (|-separated) of PJRT plugin names or full paths. E.g. \"cpu|cuda\"")

// Seed used for the initial RNG state of the tests.
const seed = 42

// withLines prefix each line of text with a "%04d: " of the line number.
func withLines(text []byte) string {
	var result strings.Builder
	lines := strings.Split(string(text), "\n")
	for i, line := range lines {
		fmt.Fprintf(&result, "%04d: %s\n", i+1, line)
	}
	return result.String()
}

func getPluginNames() []string {
	names := strings.Split(*flagPluginNames, "|")
	var to int
	for _, name := range names {
		if name != "" {
			names[to] = name
			to++
		}
	}
	if to == 0 {
		panic("no XLA plugin names defined with -plugins")
	}
	names = names[:to]
	return names
}

func pjrtClientsIterator(t *testing.T) iter.Seq2[string, *pjrt.Client] {
	return func(yield func(string, *pjrt.Client) bool) {
		for _, pluginName := range getPluginNames() {
			plugin, err := pjrt.GetPlugin(pluginName)
			require.NoError(t, err, "failed to load plugin %q", pluginName)
			client, err := plugin.NewClient(nil)
			require.NoError(t, err, "failed to create client for plugin %q", pluginName)
			done := !yield(pluginName, client)
			require.NoError(t, client.Destroy())
			if done {
				return
			}
		}
	}
}

// compileAndExecute program with PJRT. All inputs are donated.
func compileAndExecute(t *testing.T, client *pjrt.Client, program []byte, inputs ...*pjrt.Buffer) []*pjrt.Buffer {
	loadedExec, err := client.Compile().WithStableHLO(program).Done()
	require.NoErrorf(t, err, "failed to compile program: \n%s", withLines(program))
	defer func() {
		err := loadedExec.Destroy()
		if err != nil {
			t.Errorf("failed to destroy loaded exec: %+v", err)
		}
	}()
	outputBuffers, err := loadedExec.Execute(inputs...).DonateAll().Done()
	require.NoErrorf(t, err, "failed to execute program: \n%s", withLines(program))
	return outputBuffers
}

// bufferToTensor copies the buffer contents to a tensor and destroys the buffer.
func bufferToTensor(t *testing.T, b *pjrt.Buffer) *tensors.Tensor {
	defer func() {
		if err := b.Destroy(); err != nil {
			t.Errorf("failed to destroy buffer: %+v", err)
		}
	}()
	flat, dims, err := b.ToFlatDataAndDimensions()
	require.NoError(t, err)
	switch values := flat.(type) {
	case []float64:
		return tensors.FromFlat(values, dims...)
	case []float32:
		return tensors.FromFlat(values, dims...)
	case []float16.Float16:
		return tensors.FromFloat16(values, dims...)
	case []uint64:
		return tensors.FromFlat(values, dims...)
	}
	t.Fatalf("unsupported buffer values type %T", flat)
	return nil
}

// sample compiles and executes the sampling program of v, and returns the draws (and the
// log-transformed draws, if requested by opts), as tensors.
func sample(t *testing.T, client *pjrt.Client, v *distributions.RandomVariable, opts stablehlo.SamplingOptions) []*tensors.Tensor {
	program := must.M1(stablehlo.SamplingProgram(v, opts))
	state := must.M1(client.BufferFromHost().FromFlatDataWithDimensions([]uint64{seed, 1}, stablehlo.RNGStateShape.Dimensions).Done())
	outputs := compileAndExecute(t, client, program, state)
	require.GreaterOrEqual(t, len(outputs), 2)
	newState := bufferToTensor(t, outputs[0])
	require.Equal(t, dtypes.Uint64, newState.DType())
	results := make([]*tensors.Tensor, 0, len(outputs)-1)
	for _, output := range outputs[1:] {
		results = append(results, bufferToTensor(t, output))
	}
	return results
}
