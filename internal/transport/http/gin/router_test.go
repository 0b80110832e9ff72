package httpgin

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseIntDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"", 1, 1},
		{"5", 1, 5},
		{"not-a-number", 7, 7},
		{"-3", 1, -3},
		{"0", 1, 0},
	}

	for _, tc := range cases {
		if got := parseIntDefault(tc.in, tc.def); got != tc.want {
			t.Errorf("parseIntDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestIsRateLimitedErr(t *testing.T) {
	if isRateLimitedErr(nil) {
		t.Error("nil error should not be rate limited")
	}

	if isRateLimitedErr(errors.New("slot unavailable")) {
		t.Error("unrelated error should not be classified as rate limited")
	}

	rlErr := fmt.Errorf("service.hold.CreateHold: rate limited, retry in %s", "60s")
	if !isRateLimitedErr(rlErr) {
		t.Error("error containing 'rate limited' should be classified as such")
	}
}
