package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	ChannelDailyTasks          = "daily_tasks_changes"
	ChannelSponsoredChallenges = "sponsored_challenges_changes"

	TableDailyTasks          = "daily_tasks"
	TableSponsoredChallenges = "sponsored_challenges"
)

var channelTables = map[string]string{
	ChannelDailyTasks:          TableDailyTasks,
	ChannelSponsoredChallenges: TableSponsoredChallenges,
}

// Change is one catalog change notification.
type Change struct {
	Table     string          `json:"-"`
	EventType string          `json:"eventType"`
	New       json.RawMessage `json:"new"`
	Old       json.RawMessage `json:"old"`
}

func decodeChange(channel, payload string) (Change, error) {
	table, ok := channelTables[channel]
	if !ok {
		return Change{}, fmt.Errorf("remote: unknown channel %q", channel)
	}
	var c Change
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return Change{}, fmt.Errorf("remote: decode %s payload: %w", channel, err)
		}
	}
	c.Table = table
	return c, nil
}

type notifier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// Listener relays LISTEN/NOTIFY catalog changes, reconnecting with backoff.
type Listener struct {
	dial       func(ctx context.Context) (notifier, error)
	handler    func(context.Context, Change)
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewListener(dsn string, handler func(context.Context, Change), logger *zap.Logger) *Listener {
	return newListener(func(ctx context.Context) (notifier, error) {
		return pgx.Connect(ctx, dsn)
	}, handler, logger)
}

func newListener(dial func(ctx context.Context) (notifier, error), handler func(context.Context, Change), logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		dial:       dial,
		handler:    handler,
		logger:     logger.Named("remote.listener"),
		minBackoff: time.Second,
		maxBackoff: time.Minute,
	}
}

// Run blocks until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.minBackoff
	for {
		err := l.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("Realtime listener disconnected", zap.Error(err), zap.Duration("retry_in", backoff))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, l.maxBackoff)
	}
}

func (l *Listener) session(ctx context.Context) error {
	conn, err := l.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	for _, channel := range []string{ChannelDailyTasks, ChannelSponsoredChallenges} {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return fmt.Errorf("listen %s: %w", channel, err)
		}
	}
	l.logger.Info("Realtime listener connected")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		change, err := decodeChange(n.Channel, n.Payload)
		if err != nil {
			l.logger.Warn("Dropping malformed notification", zap.String("channel", n.Channel), zap.Error(err))
			continue
		}
		if l.handler != nil {
			l.handler(ctx, change)
		}
	}
}
