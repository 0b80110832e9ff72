package booking

import (
	"regexp"
	"strings"
	"testing"

	"github.com/slotreserve/src/internal/domain"
)

func TestNormalizeAttendee(t *testing.T) {
	cases := []struct {
		name    string
		in      domain.Attendee
		wantErr bool
	}{
		{
			name: "valid, trims whitespace",
			in: domain.Attendee{
				FirstName: "  Ada  ",
				LastName:  " Lovelace ",
				Email:     " ada@example.org ",
			},
			wantErr: false,
		},
		{
			name:    "empty first name after trim",
			in:      domain.Attendee{FirstName: "   ", LastName: "Lovelace", Email: "ada@example.org"},
			wantErr: true,
		},
		{
			name:    "empty last name after trim",
			in:      domain.Attendee{FirstName: "Ada", LastName: "  ", Email: "ada@example.org"},
			wantErr: true,
		},
		{
			name:    "malformed email",
			in:      domain.Attendee{FirstName: "Ada", LastName: "Lovelace", Email: "not-an-email"},
			wantErr: true,
		},
		{
			name:    "email missing domain dot",
			in:      domain.Attendee{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeAttendee(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none (result: %+v)", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.FirstName != "Ada" || got.LastName != "Lovelace" || got.Email != "ada@example.org" {
				t.Errorf("normalizeAttendee did not trim correctly: %+v", got)
			}
		})
	}
}

var refPattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func TestGenerateReference_Format(t *testing.T) {
	for i := 0; i < 200; i++ {
		ref := generateReference()
		if !refPattern.MatchString(ref) {
			t.Fatalf("generateReference() = %q, want match of %s", ref, refPattern.String())
		}
		if strings.ToUpper(ref) != ref {
			t.Fatalf("generateReference() = %q, want all uppercase", ref)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactlyten", 10, "exactlyten"},
		{"this is too long", 7, "this is"},
		{"", 5, ""},
	}

	for _, tc := range cases {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
