package utils

import "testing"

func TestToSnakeCase(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"Add", "add"},
		{"BroadcastInDim", "broadcast_in_dim"},
		{"RngBitGenerator", "rng_bit_generator"},
		{"ShiftRightLogical", "shift_right_logical"},
		{"already_snake", "already_snake"},
	} {
		if got := ToSnakeCase(tc.in); got != tc.want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"", ""},
		{"rng_state", "rng_state"},
		{"draws-log", "draws_log"},
		{"0mu", "_0mu"},
	} {
		if got := NormalizeIdentifier(tc.in); got != tc.want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
