package currency

import "testing"

func TestFormatCents(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{99, "$0.99"},
		{100, "$1.00"},
		{3500, "$35.00"},
		{4250, "$42.50"},
		{123456, "$1234.56"},
		{-3500, "-$35.00"},
	}

	for _, tc := range cases {
		if got := FormatCents(tc.amount); got != tc.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}
