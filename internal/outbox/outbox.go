package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sandeepkv93/leap/internal/storage"
)

// Config tunes the worker. Zero fields fall back to DefaultConfig values.
type Config struct {
	PollInterval    time.Duration
	BaseBackoff     time.Duration
	MaxBackoff      time.Duration
	MaxAttempts     int
	RatePerSecond   float64
	Burst           int
	BatchSize       int
	DispatchTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval:    30 * time.Second,
		BaseBackoff:     2 * time.Second,
		MaxBackoff:      5 * time.Minute,
		MaxAttempts:     8,
		RatePerSecond:   5,
		Burst:           1,
		BatchSize:       50,
		DispatchTimeout: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = d.BaseBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = d.RatePerSecond
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.DispatchTimeout <= 0 {
		c.DispatchTimeout = d.DispatchTimeout
	}
	return c
}

// Outbox persists remote side effects locally and mirrors them to the
// Dispatcher in the background. Enqueue never fails the caller.
type Outbox struct {
	repo       storage.OutboxRepository
	dispatcher Dispatcher
	logger     *zap.Logger
	cfg        Config
	limiter    *rate.Limiter

	now   func() time.Time
	newID func() string

	hookMu        sync.RWMutex
	remoteID      func() string
	onUserCreated func(string)

	flushMu sync.Mutex

	mu      sync.Mutex
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	cancel  context.CancelFunc
	started bool
	stopped bool
}

func New(repo storage.OutboxRepository, dispatcher Dispatcher, logger *zap.Logger, cfg Config) *Outbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Outbox{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger.Named("outbox"),
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		now:        time.Now,
		newID:      uuid.NewString,
		remoteID:   func() string { return "" },
		wakeup:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// BindRemoteUser wires the lookup for the current remote user id and the
// callback invoked once create_user succeeds.
func (o *Outbox) BindRemoteUser(lookup func() string, onCreated func(string)) {
	o.hookMu.Lock()
	defer o.hookMu.Unlock()
	if lookup != nil {
		o.remoteID = lookup
	}
	o.onUserCreated = onCreated
}

// Enqueue records an intent for later dispatch. Failures are logged.
func (o *Outbox) Enqueue(ctx context.Context, kind Kind, payload any) {
	if !kind.IsValid() {
		o.logger.Error("Dropping intent with unknown kind", zap.String("kind", string(kind)))
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		o.logger.Error("Failed to encode intent payload", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	now := o.now().UTC()
	rec := storage.OutboxRecord{
		ID:            o.newID(),
		Kind:          string(kind),
		Payload:       raw,
		NextAttemptAt: now,
		CreatedAt:     now,
	}
	if err := o.repo.EnqueueIntent(ctx, rec); err != nil {
		o.logger.Error("Failed to persist intent", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	o.signalWakeup()
}

// Discard drops every pending intent.
func (o *Outbox) Discard(ctx context.Context) {
	if err := o.repo.ClearIntents(ctx); err != nil {
		o.logger.Warn("Failed to discard pending intents", zap.Error(err))
	}
}

func (o *Outbox) Pending(ctx context.Context) (int, error) {
	return o.repo.CountIntents(ctx)
}

func (o *Outbox) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return
	}
	o.started = true
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	go o.loop(ctx)
	o.logger.Info("Outbox worker started",
		zap.Duration("poll_interval", o.cfg.PollInterval),
		zap.Int("max_attempts", o.cfg.MaxAttempts),
	)
}

// Stop cancels in-flight dispatches and waits for the worker to exit.
// Pending intents stay persisted for the next run.
func (o *Outbox) Stop() {
	o.mu.Lock()
	if !o.started || o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.stopCh)
	o.cancel()
	o.mu.Unlock()
	<-o.doneCh
}

func (o *Outbox) loop(ctx context.Context) {
	defer close(o.doneCh)
	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	o.signalWakeup()
	for {
		select {
		case <-o.stopCh:
			return
		case <-o.wakeup:
		case <-ticker.C:
		}
		if _, err := o.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Warn("Outbox flush failed", zap.Error(err))
		}
	}
}

func (o *Outbox) signalWakeup() {
	select {
	case o.wakeup <- struct{}{}:
	default:
	}
}

// Flush dispatches every due intent in creation order and returns how many
// were delivered.
func (o *Outbox) Flush(ctx context.Context) (int, error) {
	o.flushMu.Lock()
	defer o.flushMu.Unlock()

	due, err := o.repo.ListDueIntents(ctx, o.now().UTC(), o.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list due intents: %w", err)
	}
	delivered := 0
	for _, rec := range due {
		if err := o.limiter.Wait(ctx); err != nil {
			return delivered, err
		}
		intent := intentFromRecord(rec)
		dispatchErr := o.dispatchWithTimeout(ctx, intent)
		if dispatchErr == nil {
			if err := o.repo.DeleteIntent(ctx, intent.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				o.logger.Warn("Failed to remove delivered intent", zap.String("intent_id", intent.ID), zap.Error(err))
			}
			delivered++
			continue
		}
		o.retry(ctx, intent, dispatchErr)
	}
	return delivered, nil
}

func (o *Outbox) dispatchWithTimeout(ctx context.Context, in Intent) error {
	callCtx, cancel := context.WithTimeout(ctx, o.cfg.DispatchTimeout)
	defer cancel()
	return o.dispatch(callCtx, in)
}

func (o *Outbox) dispatch(ctx context.Context, in Intent) error {
	o.hookMu.RLock()
	remoteID := o.remoteID()
	onCreated := o.onUserCreated
	o.hookMu.RUnlock()

	if in.Kind.needsRemoteUser() && remoteID == "" {
		return ErrNoRemoteUser
	}

	switch in.Kind {
	case KindCreateUser:
		var p CreateUserPayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return err
		}
		id, err := o.dispatcher.CreateUser(ctx, p)
		if err != nil {
			return err
		}
		if id == "" {
			return errors.New("outbox: create_user returned no id")
		}
		if onCreated != nil {
			onCreated(id)
		}
		return nil
	case KindUpdateStats:
		var p UpdateStatsPayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return err
		}
		return o.dispatcher.UpdateUserStats(ctx, remoteID, p)
	case KindRecordMove:
		var p RecordMovePayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return err
		}
		return o.dispatcher.RecordMove(ctx, remoteID, p)
	case KindUpsertProfile:
		var p ProfilePayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return err
		}
		return o.dispatcher.UpsertProfile(ctx, remoteID, p)
	case KindDeleteUser:
		var p DeleteUserPayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return err
		}
		if p.RemoteID == "" {
			return nil
		}
		return o.dispatcher.DeleteUser(ctx, p.RemoteID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, in.Kind)
	}
}

func (o *Outbox) retry(ctx context.Context, in Intent, cause error) {
	if errors.Is(cause, ErrNoRemoteUser) {
		// Waiting for create_user does not use up an attempt.
		o.logger.Debug("Intent waiting for remote user",
			zap.String("intent_id", in.ID),
			zap.String("kind", string(in.Kind)),
		)
		o.reschedule(ctx, in.ID, in.Attempts, o.now().UTC().Add(o.cfg.BaseBackoff), cause)
		return
	}

	attempts := in.Attempts + 1
	fields := []zap.Field{
		zap.String("intent_id", in.ID),
		zap.String("kind", string(in.Kind)),
		zap.Int("attempts", attempts),
		zap.Error(cause),
	}
	permanent := errors.Is(cause, ErrUnknownKind) || errors.Is(cause, ErrMalformedPayload)
	// create_user is never abandoned; every other intent waits on it.
	exhausted := attempts >= o.cfg.MaxAttempts && in.Kind != KindCreateUser
	if permanent || exhausted {
		o.logger.Error("Giving up on intent", fields...)
		if err := o.repo.DeleteIntent(ctx, in.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			o.logger.Warn("Failed to remove abandoned intent", zap.String("intent_id", in.ID), zap.Error(err))
		}
		return
	}
	next := o.now().UTC().Add(o.backoff(attempts))
	o.logger.Warn("Intent dispatch failed, will retry", append(fields, zap.Time("next_attempt_at", next))...)
	o.reschedule(ctx, in.ID, attempts, next, cause)
}

func (o *Outbox) reschedule(ctx context.Context, id string, attempts int, next time.Time, cause error) {
	if err := o.repo.RescheduleIntent(ctx, id, attempts, next, cause.Error()); err != nil {
		o.logger.Warn("Failed to reschedule intent", zap.String("intent_id", id), zap.Error(err))
	}
}

func decodePayload(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// backoff doubles from BaseBackoff per attempt, capped at MaxBackoff.
func (o *Outbox) backoff(attempts int) time.Duration {
	d := o.cfg.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= o.cfg.MaxBackoff {
			return o.cfg.MaxBackoff
		}
	}
	return d
}

func intentFromRecord(rec storage.OutboxRecord) Intent {
	return Intent{
		ID:            rec.ID,
		Kind:          Kind(rec.Kind),
		Payload:       rec.Payload,
		Attempts:      rec.Attempts,
		NextAttemptAt: rec.NextAttemptAt,
		LastError:     rec.LastError,
		CreatedAt:     rec.CreatedAt,
	}
}
