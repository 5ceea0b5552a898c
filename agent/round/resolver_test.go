package round

import (
	"testing"
	"time"
)

func TestResolverWindowBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)
	r := NewResolver(4 * time.Hour)

	cases := []struct {
		name    string
		touched time.Time
		status  Status
		want    bool
	}{
		{name: "inside window", touched: now.Add(-time.Hour), status: StatusInProgress, want: true},
		{name: "exactly at window", touched: now.Add(-4 * time.Hour), status: StatusInProgress, want: true},
		{name: "one second past window", touched: now.Add(-4*time.Hour - time.Second), status: StatusInProgress, want: false},
		{name: "completed", touched: now.Add(-time.Minute), status: StatusCompleted, want: false},
	}
	for _, tc := range cases {
		rnd := Round{SessionID: "s", Status: tc.status, StartedAt: tc.touched, LastTouchedAt: tc.touched}
		if got := r.Eligible(rnd, now); got != tc.want {
			t.Fatalf("%s: Eligible() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResolverPicksMostRecentlyTouched(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)
	older := Round{SessionID: "a", Status: StatusInProgress, StartedAt: now.Add(-3 * time.Hour), LastTouchedAt: now.Add(-2 * time.Hour)}
	newer := Round{SessionID: "b", Status: StatusInProgress, StartedAt: now.Add(-3 * time.Hour), LastTouchedAt: now.Add(-10 * time.Minute)}
	expired := Round{SessionID: "c", Status: StatusInProgress, StartedAt: now.Add(-9 * time.Hour), LastTouchedAt: now.Add(-8 * time.Hour)}

	res := NewResolver(0).Resolve([]Round{older, expired, newer}, now)
	if res.Active == nil || res.Active.SessionID != "b" {
		t.Fatalf("Resolve().Active = %#v, want session b", res.Active)
	}
	if len(res.Stale) != 1 || res.Stale[0].SessionID != "a" {
		t.Fatalf("Resolve().Stale = %#v, want [a]", res.Stale)
	}
}

func TestResolverTieBreaks(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)
	touched := now.Add(-time.Minute)

	byStart := NewResolver(time.Hour).Resolve([]Round{
		{SessionID: "z", Status: StatusInProgress, StartedAt: now.Add(-50 * time.Minute), LastTouchedAt: touched},
		{SessionID: "y", Status: StatusInProgress, StartedAt: now.Add(-20 * time.Minute), LastTouchedAt: touched},
	}, now)
	if byStart.Active.SessionID != "y" {
		t.Fatalf("start-time tie-break picked %s, want y", byStart.Active.SessionID)
	}

	start := now.Add(-30 * time.Minute)
	byID := NewResolver(time.Hour).Resolve([]Round{
		{SessionID: "20260502T133000_sam_aaaa0000", Status: StatusInProgress, StartedAt: start, LastTouchedAt: touched},
		{SessionID: "20260502T133000_sam_ffff0000", Status: StatusInProgress, StartedAt: start, LastTouchedAt: touched},
	}, now)
	if byID.Active.SessionID != "20260502T133000_sam_ffff0000" {
		t.Fatalf("session-id tie-break picked %s", byID.Active.SessionID)
	}
}

func TestResolverNoEligibleRounds(t *testing.T) {
	t.Parallel()

	res := NewResolver(time.Hour).Resolve(nil, time.Now())
	if res.Active != nil || len(res.Stale) != 0 {
		t.Fatalf("Resolve(nil) = %#v, want empty", res)
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  bEN ": "Ben",
		"sam":    "Sam",
		"ÉLODIE": "Élodie",
	}
	for in, want := range cases {
		got, err := NormalizeName(in)
		if err != nil {
			t.Fatalf("NormalizeName(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
	for _, bad := range []string{"", "   ", "#conversation"} {
		if _, err := NormalizeName(bad); err == nil {
			t.Fatalf("NormalizeName(%q) expected error", bad)
		}
	}
}

func TestNewSessionIDFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 2, 9, 3, 7, 0, time.UTC)
	id := NewSessionID("Mary Ann", now)
	const prefix = "20260502T090307_mary-ann_"
	if len(id) != len(prefix)+8 || id[:len(prefix)] != prefix {
		t.Fatalf("NewSessionID() = %q, want prefix %q plus 8 hex chars", id, prefix)
	}
	if other := NewSessionID("Mary Ann", now); other == id {
		t.Fatalf("NewSessionID() returned duplicate id %q", id)
	}
}
