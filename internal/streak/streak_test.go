package streak

import (
	"testing"
	"time"

	"github.com/sandeepkv93/leap/internal/model"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func ptr(v time.Time) *time.Time { return &v }

func TestAdvanceStateMachine(t *testing.T) {
	now := at(t, "2026-03-10T15:00:00Z")
	cases := []struct {
		name    string
		in      model.Streaks
		want    int
		outcome Outcome
	}{
		{name: "never completed", in: model.Streaks{}, want: 1, outcome: OutcomeStarted},
		{name: "same day", in: model.Streaks{Count: 4, LastDate: ptr(at(t, "2026-03-10T08:00:00Z"))}, want: 4, outcome: OutcomeUnchanged},
		{name: "yesterday", in: model.Streaks{Count: 4, LastDate: ptr(at(t, "2026-03-09T23:59:00Z"))}, want: 5, outcome: OutcomeExtended},
		{name: "two day gap", in: model.Streaks{Count: 4, LastDate: ptr(at(t, "2026-03-08T12:00:00Z"))}, want: 1, outcome: OutcomeReset},
		{name: "long gap", in: model.Streaks{Count: 40, LastDate: ptr(at(t, "2025-12-01T12:00:00Z"))}, want: 1, outcome: OutcomeReset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, outcome := Advance(tc.in, now, time.UTC)
			if got.Count != tc.want || outcome != tc.outcome {
				t.Fatalf("Advance = (%d, %s), want (%d, %s)", got.Count, outcome, tc.want, tc.outcome)
			}
			if outcome != OutcomeUnchanged && !got.LastDate.Equal(now) {
				t.Fatalf("expected last date %v, got %v", now, got.LastDate)
			}
		})
	}
}

func TestAdvanceIsIdempotentWithinDay(t *testing.T) {
	s := model.Streaks{Freezes: 2}
	first := at(t, "2026-03-10T09:00:00Z")
	s, _ = Advance(s, first, time.UTC)
	s, outcome := Advance(s, first.Add(5*time.Hour), time.UTC)
	if outcome != OutcomeUnchanged || s.Count != 1 {
		t.Fatalf("expected second call to be a no-op, got %d %s", s.Count, outcome)
	}
	if !s.LastDate.Equal(first) {
		t.Fatalf("expected last date to stay at first completion, got %v", s.LastDate)
	}
	if s.Freezes != 2 {
		t.Fatalf("expected freezes untouched, got %d", s.Freezes)
	}
}

func TestAdvanceUsesLocalCalendar(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2026-03-09 20:00 local
	last := at(t, "2026-03-09T11:00:00Z")
	// 2026-03-10 08:00 local, same UTC date as last
	now := at(t, "2026-03-09T23:00:00Z")
	got, outcome := Advance(model.Streaks{Count: 2, LastDate: &last}, now, loc)
	if outcome != OutcomeExtended || got.Count != 3 {
		t.Fatalf("expected local-day extension, got %d %s", got.Count, outcome)
	}
}

func TestAdvanceAcrossMonthBoundary(t *testing.T) {
	last := at(t, "2026-02-28T10:00:00Z")
	now := at(t, "2026-03-01T10:00:00Z")
	got, outcome := Advance(model.Streaks{Count: 7, LastDate: &last}, now, time.UTC)
	if outcome != OutcomeExtended || got.Count != 8 {
		t.Fatalf("expected extension across month boundary, got %d %s", got.Count, outcome)
	}
}

func TestBroken(t *testing.T) {
	now := at(t, "2026-03-10T15:00:00Z")
	if Broken(model.Streaks{}, now, time.UTC) {
		t.Fatal("empty streak cannot be broken")
	}
	if Broken(model.Streaks{Count: 3, LastDate: ptr(at(t, "2026-03-09T10:00:00Z"))}, now, time.UTC) {
		t.Fatal("yesterday keeps the streak alive")
	}
	if !Broken(model.Streaks{Count: 3, LastDate: ptr(at(t, "2026-03-07T10:00:00Z"))}, now, time.UTC) {
		t.Fatal("expected a gap to report broken")
	}
}
