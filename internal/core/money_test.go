package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"1", nil},
		{"0.01", nil},
		{"12.30", nil},
		{"99999999.99", nil},
		{"0", nil},
		{"0.00", nil},
		{"-5", nil},
		{"-99999999.99", nil},
		{"-0.001", ErrAmountScale},
		{"-100000000", ErrAmountTooLarge},
		{"1.005", ErrAmountScale},
		{"100000000", ErrAmountTooLarge},
	}
	for _, tc := range cases {
		err := ValidateAmount(decimal.RequireFromString(tc.in))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("12.5")); got != "12.50" {
		t.Fatalf("got %q", got)
	}
}

func TestRepeatedAdditionDoesNotDrift(t *testing.T) {
	sum := decimal.Zero
	step := decimal.RequireFromString("0.10")
	for i := 0; i < 1000; i++ {
		sum = sum.Add(step)
	}
	if !sum.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("sum = %s", sum)
	}
}
