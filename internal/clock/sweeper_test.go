package clock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type fakeReleaser struct {
	calls     int32
	toRelease int64
	err       error
}

func (f *fakeReleaser) ReleaseExpired(ctx context.Context, slotID string, now time.Time) (int64, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return 0, f.err
	}
	return f.toRelease, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeper_RunSweepsOnTickerAndStopsOnCancel(t *testing.T) {
	releaser := &fakeReleaser{toRelease: 2}
	s := NewSweeper(releaser, Real(), 5*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if atomic.LoadInt32(&releaser.calls) == 0 {
		t.Error("expected at least one sweep tick to have fired")
	}
}

func TestSweeper_ContinuesAfterReleaserError(t *testing.T) {
	releaser := &fakeReleaser{err: errors.New("boom")}
	s := NewSweeper(releaser, Real(), 5*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run should swallow releaser errors, got: %v", err)
	}

	if atomic.LoadInt32(&releaser.calls) < 2 {
		t.Errorf("expected sweep to keep ticking after an error, got %d calls", releaser.calls)
	}
}

func TestNewSweeper_DefaultsInterval(t *testing.T) {
	s := NewSweeper(&fakeReleaser{}, Real(), 0, discardLogger())
	if s.interval != 30*time.Second {
		t.Errorf("interval = %v, want default 30s", s.interval)
	}
}
