package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const DefaultPollInterval = 5 * time.Minute

type EntitlementChecker interface {
	CheckEntitlement(ctx context.Context) (bool, error)
}

// Watcher polls the entitlement and pushes changes to listeners. The first
// successful poll always notifies.
type Watcher struct {
	checker  EntitlementChecker
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	known     bool
	premium   bool
	listeners []func(bool)

	sched  gocron.Scheduler
	cancel context.CancelFunc
}

func NewWatcher(checker EntitlementChecker, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		checker:  checker,
		interval: interval,
		timeout:  15 * time.Second,
		logger:   logger.Named("payments.watcher"),
	}
}

func (w *Watcher) OnEntitlementChange(fn func(bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Start schedules the poll job, running it once immediately.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sched != nil {
		return nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create entitlement scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() { w.Poll(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = sched.Shutdown()
		return fmt.Errorf("schedule entitlement poll: %w", err)
	}
	sched.Start()
	w.sched = sched
	w.cancel = cancel
	return nil
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	sched, cancel := w.sched, w.cancel
	w.sched, w.cancel = nil, nil
	w.mu.Unlock()
	if sched == nil {
		return nil
	}
	cancel()
	return sched.Shutdown()
}

// Poll checks once. Failures keep the last known value.
func (w *Watcher) Poll(ctx context.Context) {
	if w.checker == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	premium, err := w.checker.CheckEntitlement(cctx)
	if err != nil {
		w.logger.Warn("Entitlement check failed", zap.Error(err))
		return
	}
	w.Report(premium)
}

// Report records an entitlement value learned elsewhere, such as a purchase
// response, and notifies listeners when it changed.
func (w *Watcher) Report(premium bool) {
	w.mu.Lock()
	if w.known && w.premium == premium {
		w.mu.Unlock()
		return
	}
	w.known = true
	w.premium = premium
	listeners := append(([]func(bool))(nil), w.listeners...)
	w.mu.Unlock()

	w.logger.Info("Entitlement changed", zap.Bool("premium", premium))
	for _, fn := range listeners {
		fn(premium)
	}
}

// Premium returns the last known value and whether one is known yet.
func (w *Watcher) Premium() (bool, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.premium, w.known
}
