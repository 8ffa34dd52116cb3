package utils

import "testing"

func TestFormatWaterQuantity(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1, "1L"},
		{1.5, "1.5L"},
		{2.25, "2.25L"},
		{0.5, "500ml"},
		{0.05, "50ml"},
		{0.999, "999ml"},
	}
	for _, tc := range cases {
		if got := FormatWaterQuantity(tc.in); got != tc.want {
			t.Errorf("FormatWaterQuantity(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseWaterQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"500ml", 0.5},
		{"1L", 1},
		{"0.5l", 0.5},
		{" 250 ml ", 0.25},
		{"2", 2},
		{"1.5", 1.5},
	}
	for _, tc := range cases {
		got, err := ParseWaterQuantity(tc.in)
		if err != nil {
			t.Errorf("ParseWaterQuantity(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseWaterQuantity(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "abc", "mlml", "1x"} {
		if _, err := ParseWaterQuantity(in); err == nil {
			t.Errorf("ParseWaterQuantity(%q): expected error", in)
		}
	}
}
