package paywall

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/scheduler"
)

func TestCheck(t *testing.T) {
	g := NewGate(Config{}, nil, zap.NewNop())
	tests := []struct {
		premium bool
		count   int
		want    Decision
	}{
		{false, 0, Allow},
		{false, 2, Allow},
		{false, 3, HardBlock},
		{false, 7, HardBlock},
		{true, 3, Allow},
		{true, 50, Allow},
	}
	for _, tt := range tests {
		if got := g.Check(tt.premium, tt.count); got != tt.want {
			t.Fatalf("Check(%v, %d) = %v, want %v", tt.premium, tt.count, got, tt.want)
		}
	}
	// two hard blocks above
	for range 2 {
		select {
		case sig := <-g.Signals():
			if sig.Kind != SignalHard {
				t.Fatalf("unexpected signal %+v", sig)
			}
		default:
			t.Fatalf("missing hard signal")
		}
	}
}

func TestAfterCompletionOnlyAtQuota(t *testing.T) {
	g := NewGate(Config{Quota: 3}, nil, zap.NewNop())
	if g.AfterCompletion(false, 2) || g.AfterCompletion(false, 4) || g.AfterCompletion(true, 3) {
		t.Fatalf("soft upsell scheduled off quota")
	}
	if !g.AfterCompletion(false, 3) {
		t.Fatalf("expected soft upsell at quota")
	}
	if sig := <-g.Signals(); sig.Kind != SignalSoft || sig.CompletedToday != 3 {
		t.Fatalf("unexpected signal %+v", sig)
	}
}

func TestSoftUpsellIsDelayed(t *testing.T) {
	engine := scheduler.NewEngine(4)
	engine.Start()
	defer engine.Stop()

	g := NewGate(Config{Quota: 3, SoftDelay: 30 * time.Millisecond}, engine, zap.NewNop())
	start := time.Now()
	if !g.AfterCompletion(false, 3) {
		t.Fatalf("expected soft upsell")
	}
	select {
	case <-g.Signals():
		t.Fatalf("soft signal fired before the delay")
	default:
	}

	select {
	case ev := <-engine.C():
		if !g.HandleEvent(ev) {
			t.Fatalf("event not handled: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for soft event")
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatalf("soft event fired early")
	}
	if sig := <-g.Signals(); sig.Kind != SignalSoft {
		t.Fatalf("unexpected signal %+v", sig)
	}
}

func TestDismissCancelsSoftUpsell(t *testing.T) {
	engine := scheduler.NewEngine(4)
	engine.Start()
	defer engine.Stop()

	g := NewGate(Config{SoftDelay: 40 * time.Millisecond}, engine, zap.NewNop())
	g.AfterCompletion(false, 3)
	g.Dismiss()

	select {
	case ev := <-engine.C():
		t.Fatalf("cancelled event delivered: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
	if g.AfterCompletion(false, 3) {
		t.Fatalf("dismissed gate scheduled again")
	}
	if g.HandleEvent(scheduler.Event{Kind: scheduler.KindSoftPaywall, Payload: 3}) {
		t.Fatalf("dismissed gate emitted soft signal")
	}

	g.ResetDay()
	if !g.AfterCompletion(false, 3) {
		t.Fatalf("expected soft upsell after day reset")
	}
}

func TestRemaining(t *testing.T) {
	g := NewGate(Config{}, nil, zap.NewNop())
	if got := g.Remaining(false, 1); got != 2 {
		t.Fatalf("remaining = %d, want 2", got)
	}
	if got := g.Remaining(false, 9); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
	if got := g.Remaining(true, 9); got != -1 {
		t.Fatalf("premium remaining = %d, want -1", got)
	}
}
