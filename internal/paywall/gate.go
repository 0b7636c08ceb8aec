// Package paywall enforces the daily free-move quota.
package paywall

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/scheduler"
)

const (
	DefaultQuota     = 3
	DefaultSoftDelay = 1500 * time.Millisecond

	softEventID = "paywall-soft"
)

type Decision int

const (
	Allow Decision = iota
	HardBlock
)

func (d Decision) String() string {
	if d == HardBlock {
		return "hard_block"
	}
	return "allow"
}

type SignalKind string

const (
	// SignalHard fires when a completion attempt is intercepted.
	SignalHard SignalKind = "hard"
	// SignalSoft fires a short delay after the last free move completes.
	SignalSoft SignalKind = "soft"
)

type Signal struct {
	Kind           SignalKind
	CompletedToday int
}

// Scheduler is the delayed-event engine the soft upsell rides on.
type Scheduler interface {
	After(d time.Duration, ev scheduler.Event) error
	Cancel(id string) int
}

type Config struct {
	Quota     int
	SoftDelay time.Duration
}

type Gate struct {
	cfg     Config
	sched   Scheduler
	logger  *zap.Logger
	signals chan Signal
	dropped uint64

	mu        sync.Mutex
	dismissed bool
}

// NewGate builds a gate. With a nil scheduler soft signals fire at once.
func NewGate(cfg Config, sched Scheduler, logger *zap.Logger) *Gate {
	if cfg.Quota <= 0 {
		cfg.Quota = DefaultQuota
	}
	if cfg.SoftDelay < 0 {
		cfg.SoftDelay = 0
	} else if cfg.SoftDelay == 0 {
		cfg.SoftDelay = DefaultSoftDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		cfg:     cfg,
		sched:   sched,
		logger:  logger.Named("paywall"),
		signals: make(chan Signal, 8),
	}
}

func (g *Gate) Quota() int { return g.cfg.Quota }

// Signals delivers paywall presentations for the UI.
func (g *Gate) Signals() <-chan Signal { return g.signals }

func (g *Gate) Dropped() uint64 { return atomic.LoadUint64(&g.dropped) }

// Remaining is the number of free moves left today.
func (g *Gate) Remaining(isPremium bool, completedToday int) int {
	if isPremium {
		return -1
	}
	return max(g.cfg.Quota-completedToday, 0)
}

// Check runs before a completion enters the pipeline. A hard block emits a
// SignalHard.
func (g *Gate) Check(isPremium bool, completedToday int) Decision {
	if isPremium || completedToday < g.cfg.Quota {
		return Allow
	}
	g.logger.Info("Completion blocked by free quota", zap.Int("completed_today", completedToday))
	g.emit(Signal{Kind: SignalHard, CompletedToday: completedToday})
	return HardBlock
}

// AfterCompletion schedules the soft upsell when newCount reaches the quota
// exactly. It reports whether one was scheduled.
func (g *Gate) AfterCompletion(isPremium bool, newCount int) bool {
	if isPremium || newCount != g.cfg.Quota {
		return false
	}
	g.mu.Lock()
	dismissed := g.dismissed
	g.mu.Unlock()
	if dismissed {
		return false
	}

	if g.sched == nil {
		g.emit(Signal{Kind: SignalSoft, CompletedToday: newCount})
		return true
	}
	err := g.sched.After(g.cfg.SoftDelay, scheduler.Event{
		ID:      softEventID,
		Kind:    scheduler.KindSoftPaywall,
		Payload: newCount,
	})
	if err != nil {
		g.logger.Warn("Failed to schedule soft paywall", zap.Error(err))
		return false
	}
	return true
}

// HandleEvent turns a due scheduler event into a soft signal, unless the
// user dismissed the paywall in the meantime.
func (g *Gate) HandleEvent(ev scheduler.Event) bool {
	if ev.Kind != scheduler.KindSoftPaywall {
		return false
	}
	g.mu.Lock()
	dismissed := g.dismissed
	g.mu.Unlock()
	if dismissed {
		return false
	}
	count, _ := ev.Payload.(int)
	g.emit(Signal{Kind: SignalSoft, CompletedToday: count})
	return true
}

// Dismiss suppresses further soft upsells until ResetDay.
func (g *Gate) Dismiss() {
	g.mu.Lock()
	g.dismissed = true
	g.mu.Unlock()
	if g.sched != nil {
		g.sched.Cancel(softEventID)
	}
}

func (g *Gate) ResetDay() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dismissed = false
}

func (g *Gate) emit(sig Signal) {
	select {
	case g.signals <- sig:
	default:
		atomic.AddUint64(&g.dropped, 1)
	}
}
