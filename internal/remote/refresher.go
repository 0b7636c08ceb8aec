package remote

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/model"
)

type ChallengeSource interface {
	FetchSponsoredChallenges(ctx context.Context, today string) ([]model.SponsoredChallenge, error)
}

type ChallengeStore interface {
	Today() string
	ReplaceSponsoredChallenges(ctx context.Context, list []model.SponsoredChallenge) error
}

type MoveEnsurer interface {
	EnsureTodaysMoves(ctx context.Context) (bool, error)
}

// Refresher re-fetches read-only caches when the catalog changes. Overlapping
// refreshes are not deduplicated; the last write wins.
type Refresher struct {
	source  ChallengeSource
	store   ChallengeStore
	moves   MoveEnsurer
	logger  *zap.Logger
	timeout time.Duration
}

func NewRefresher(source ChallengeSource, st ChallengeStore, moves MoveEnsurer, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		source:  source,
		store:   st,
		moves:   moves,
		logger:  logger.Named("remote.refresher"),
		timeout: 10 * time.Second,
	}
}

// RefreshChallenges replaces the cached sponsored challenges. A failed fetch
// keeps the previous cache.
func (r *Refresher) RefreshChallenges(ctx context.Context) {
	if r.source == nil {
		return
	}
	fctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	list, err := r.source.FetchSponsoredChallenges(fctx, r.store.Today())
	if err != nil {
		r.logger.Warn("Sponsored challenge refresh failed", zap.Error(err))
		return
	}
	if err := r.store.ReplaceSponsoredChallenges(ctx, list); err != nil {
		r.logger.Warn("Failed to store sponsored challenges", zap.Error(err))
		return
	}
	r.logger.Debug("Sponsored challenges refreshed", zap.Int("count", len(list)))
}

// HandleChange is the Listener callback.
func (r *Refresher) HandleChange(ctx context.Context, c Change) {
	switch c.Table {
	case TableSponsoredChallenges:
		r.RefreshChallenges(ctx)
	case TableDailyTasks:
		if r.moves == nil {
			return
		}
		if _, err := r.moves.EnsureTodaysMoves(ctx); err != nil {
			r.logger.Warn("Daily move refresh failed", zap.Error(err))
		}
	}
}
