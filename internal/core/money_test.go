package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"50", "50", true},
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 7 ", "7", true},
		{"0", "0", true},
		{"-5", "", false},
		{"", "", false},
		{"abc", "", false},
		{"12.3.4", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseAmount(%q) unexpected error: %v", tc.in, err)
				continue
			}
			if got.String() != tc.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tc.in, err)
		}
	}
}

func TestParseSignedAmount(t *testing.T) {
	got, err := ParseSignedAmount("-50")
	if err != nil || got.String() != "-50" {
		t.Fatalf("ParseSignedAmount(-50) = %s, %v", got, err)
	}
	if _, err := ParseSignedAmount("0"); err != nil {
		t.Fatalf("zero should be accepted: %v", err)
	}
	if _, err := ParseSignedAmount("50"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("positive quick entry should be rejected, got %v", err)
	}
	if _, err := ParseSignedAmount("-abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("garbage should be rejected, got %v", err)
	}
}

func TestFormatAmount(t *testing.T) {
	d, _ := ParseAmount("12.5")
	if got := FormatAmount(d); got != "$12.50" {
		t.Fatalf("FormatAmount = %q", got)
	}
	n, _ := ParseSignedAmount("-33.5")
	if got := FormatAmount(n); got != "$-33.50" {
		t.Fatalf("FormatAmount negative = %q", got)
	}
}
