package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/slotreserve/src/internal/repository"
)

func TestTranslateDBErr(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows maps to not found", pgx.ErrNoRows, repository.ErrNotFound},
		{"context deadline maps to transient", context.DeadlineExceeded, repository.ErrTransient},
		{"context canceled maps to transient", context.Canceled, repository.ErrTransient},
		{"unique violation maps to conflict", &pgconn.PgError{Code: "23505"}, repository.ErrConflict},
		{"serialization failure maps to transient", &pgconn.PgError{Code: "40001"}, repository.ErrTransient},
		{"deadlock maps to transient", &pgconn.PgError{Code: "40P01"}, repository.ErrTransient},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateDBErr(tc.in)
			if tc.want == nil {
				if got != nil {
					t.Errorf("translateDBErr(nil) = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Errorf("translateDBErr(%v) = %v, want wrapping %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTranslateDBErr_UnknownPassesThrough(t *testing.T) {
	other := &pgconn.PgError{Code: "99999"}
	got := translateDBErr(other)
	if !errors.Is(got, other) {
		t.Errorf("unrecognized pg error should pass through unchanged, got %v", got)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"unique violation is not retryable", &pgconn.PgError{Code: "23505"}, false},
		{"context deadline is retryable", context.DeadlineExceeded, true},
		{"plain error is not retryable", errors.New("boom"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.in); got != tc.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if err := wrap("op", nil); err != nil {
		t.Errorf("wrap(op, nil) = %v, want nil", err)
	}

	err := wrap("postgres.HoldRepo.GetHold", pgx.ErrNoRows)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("wrap should preserve sentinel match, got %v", err)
	}
}
