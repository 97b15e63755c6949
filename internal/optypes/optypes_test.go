package optypes

import "testing"

func TestToStableHLO(t *testing.T) {
	for _, tc := range []struct {
		op   OpType
		want string
	}{
		{FuncReturn, "func.return"},
		{Add, "stablehlo.add"},
		{BroadcastInDim, "stablehlo.broadcast_in_dim"},
		{RngBitGenerator, "stablehlo.rng_bit_generator"},
		{ShiftRightLogical, "stablehlo.shift_right_logical"},
		{BitcastConvert, "stablehlo.bitcast_convert"},
	} {
		if got := tc.op.ToStableHLO(); got != tc.want {
			t.Errorf("%s.ToStableHLO() = %q, want %q", tc.op, got, tc.want)
		}
	}
	if got := OpType(1000).String(); got != "OpType(1000)" {
		t.Errorf("String() of out-of-range op = %q", got)
	}
}
