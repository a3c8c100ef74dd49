package money

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		name     string
		amount   float64
		currency string
		expected string
	}{
		{
			name:     "idr drops decimals and groups with dots",
			amount:   128500,
			currency: "IDR",
			expected: "IDR 128.500",
		},
		{
			name:     "idr rounds half up",
			amount:   10500.5,
			currency: "IDR",
			expected: "IDR 10.501",
		},
		{
			name:     "aud keeps two decimals",
			amount:   1234.5,
			currency: "AUD",
			expected: "AUD 1,234.50",
		},
		{
			name:     "small amount without grouping",
			amount:   950,
			currency: "IDR",
			expected: "IDR 950",
		},
		{
			name:     "negative amount keeps sign",
			amount:   -2500,
			currency: "AUD",
			expected: "AUD -2,500.00",
		},
		{
			name:     "empty currency falls back to idr",
			amount:   1000000,
			currency: "",
			expected: "IDR 1.000.000",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.amount, tc.currency); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(5499.999); got != 5500 {
		t.Fatalf("expected 5500, got %v", got)
	}
	if got := Round2(10.006); got != 10.01 {
		t.Fatalf("expected 10.01, got %v", got)
	}
}

func TestMinorUnits(t *testing.T) {
	if MinorUnits("idr") != 0 {
		t.Fatalf("expected 0 minor units for IDR")
	}
	if MinorUnits("AUD") != 2 {
		t.Fatalf("expected 2 minor units for AUD")
	}
}
