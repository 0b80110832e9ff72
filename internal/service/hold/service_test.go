package hold

import (
	"testing"
	"time"
)

func newTestService(cfg Config) *Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 10 * time.Minute
	}
	if cfg.MinTTL <= 0 {
		cfg.MinTTL = 1 * time.Minute
	}
	if cfg.MaxTTL <= 0 {
		cfg.MaxTTL = 60 * time.Minute
	}
	return &Service{cfg: cfg}
}

func TestClampTTL_DefaultWhenNilRequest(t *testing.T) {
	s := newTestService(Config{DefaultTTL: 10 * time.Minute, MinTTL: time.Minute, MaxTTL: 60 * time.Minute})

	got := s.clampTTL(nil)
	if got != 10*time.Minute {
		t.Errorf("clampTTL(nil) = %v, want default 10m", got)
	}
}

func TestClampTTL_BoundsRequestedDuration(t *testing.T) {
	s := newTestService(Config{DefaultTTL: 10 * time.Minute, MinTTL: time.Minute, MaxTTL: 60 * time.Minute})

	tooShort := 30 * time.Second
	if got := s.clampTTL(&tooShort); got != time.Minute {
		t.Errorf("clampTTL(30s) = %v, want floor of 1m", got)
	}

	tooLong := 90 * time.Minute
	if got := s.clampTTL(&tooLong); got != 60*time.Minute {
		t.Errorf("clampTTL(90m) = %v, want ceiling of 60m", got)
	}

	withinRange := 15 * time.Minute
	if got := s.clampTTL(&withinRange); got != 15*time.Minute {
		t.Errorf("clampTTL(15m) = %v, want 15m unchanged", got)
	}
}

func TestNew_AppliesConfigDefaults(t *testing.T) {
	s := New(nil, nil, nil, nil, nil, Config{})

	if s.cfg.DefaultTTL != 10*time.Minute {
		t.Errorf("default DefaultTTL = %v, want 10m", s.cfg.DefaultTTL)
	}
	if s.cfg.MinTTL != time.Minute {
		t.Errorf("default MinTTL = %v, want 1m", s.cfg.MinTTL)
	}
	if s.cfg.MaxTTL != 60*time.Minute {
		t.Errorf("default MaxTTL = %v, want 60m", s.cfg.MaxTTL)
	}
	if s.clock == nil {
		t.Error("New should default clock to a real clock when nil is passed")
	}
}
