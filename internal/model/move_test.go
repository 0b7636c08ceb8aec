package model

import (
	"errors"
	"testing"
	"time"
)

func TestTierPointsAndEstimates(t *testing.T) {
	want := map[Tier]int{TierQuick: 1, TierPower: 3, TierBoss: 10}
	for tier, points := range want {
		if tier.Points() != points {
			t.Fatalf("%s points = %d, want %d", tier, tier.Points(), points)
		}
		if tier.TimeEstimate() == "" {
			t.Fatalf("%s has no time estimate", tier)
		}
	}
	if Tier("x").Points() != 0 {
		t.Fatal("expected unknown tier to carry zero points")
	}
}

func TestCategoryNormalizeAndRemoteMapping(t *testing.T) {
	if Category("").Normalize() != CategoryGrowth {
		t.Fatal("expected empty category to normalize to growth")
	}
	if Category("space").Normalize() != CategoryGrowth {
		t.Fatal("expected unknown category to normalize to growth")
	}
	for _, c := range Categories {
		if CategoryFromRemote(c.RemoteName()) != c {
			t.Fatalf("remote mapping does not round trip for %s", c)
		}
	}
	if _, err := ParseCategory("dragons"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestDailyMoveValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	move := DailyMove{
		ID:           "quick-2026-03-01-1",
		Tier:         TierQuick,
		Title:        "Journal for 5 minutes",
		Points:       1,
		TimeEstimate: TierQuick.TimeEstimate(),
		Date:         "2026-03-01",
	}
	if err := move.Validate(); err != nil {
		t.Fatalf("expected valid move, got %v", err)
	}

	move.Completed = true
	if err := move.Validate(); err == nil {
		t.Fatal("expected error for completed move without timestamp")
	}
	move.CompletedAt = &now
	if err := move.Validate(); err != nil {
		t.Fatalf("expected completed move to validate, got %v", err)
	}

	move.Points = 3
	if err := move.Validate(); err == nil {
		t.Fatal("expected points mismatch error")
	}

	move.Points = 1
	move.Date = "03/01/2026"
	if err := move.Validate(); err == nil {
		t.Fatal("expected date format error")
	}
}

func TestDateKeyUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	utc := time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)
	if got := DateKey(utc, loc); got != "2026-03-01" {
		t.Fatalf("DateKey = %q, want 2026-03-01", got)
	}
	if got := DateKey(utc, time.UTC); got != "2026-03-02" {
		t.Fatalf("DateKey = %q, want 2026-03-02", got)
	}
}

func TestVisionBoardFillCapsAtTotal(t *testing.T) {
	vb := NewVisionBoard()
	for i := 0; i < VisionBoardCells+5; i++ {
		vb = vb.Fill()
	}
	if vb.FilledCells != VisionBoardCells {
		t.Fatalf("filled = %d, want %d", vb.FilledCells, VisionBoardCells)
	}
	if vb.Percentage() != 100 {
		t.Fatalf("percentage = %d, want 100", vb.Percentage())
	}
	if (VisionBoard{TotalCells: 16, FilledCells: 3}).Percentage() != 19 {
		t.Fatal("expected 3/16 to round to 19")
	}
}

func TestSponsoredChallengeActiveOn(t *testing.T) {
	c := SponsoredChallenge{
		IsActive:  true,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
	}
	if !c.ActiveOn("2026-03-01") || !c.ActiveOn("2026-03-07") {
		t.Fatal("expected window bounds to be inclusive")
	}
	if c.ActiveOn("2026-03-08") {
		t.Fatal("expected date after window to be inactive")
	}
	c.IsActive = false
	if c.ActiveOn("2026-03-03") {
		t.Fatal("expected inactive challenge to be inactive")
	}
}

func TestMilestones(t *testing.T) {
	if _, ok := MilestoneFor(9); ok {
		t.Fatal("expected no milestone below 10 moves")
	}
	if m, ok := MilestoneFor(30); !ok || m.Title != "Trailblazer" {
		t.Fatalf("unexpected milestone for 30: %+v", m)
	}
	if m, ok := NextMilestone(30); !ok || m.Count != 50 {
		t.Fatalf("unexpected next milestone for 30: %+v", m)
	}
	if _, ok := NextMilestone(100); ok {
		t.Fatal("expected no milestone after 100")
	}
}
