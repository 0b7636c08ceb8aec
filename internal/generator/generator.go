// Package generator produces the three daily moves, one per tier.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/model"
)

const (
	DefaultLimit        = 50
	DefaultFetchTimeout = 8 * time.Second
)

var errShortPartition = errors.New("generator: remote catalog missing a tier")

// Catalog is the remote task source. It returns active entries for category
// at or below the progression tier.
type Catalog interface {
	FetchDailyTasks(ctx context.Context, category model.Category, tier int, limit int) ([]model.CatalogEntry, error)
}

// MoveStore is the slice of the state store the generator needs.
type MoveStore interface {
	Today() string
	TodaysMoves() []model.DailyMove
	User() model.User
	TotalMovesCompleted() int
	SetTodaysMoves(ctx context.Context, date string, moves []model.DailyMove) (bool, error)
}

type Config struct {
	Limit        int
	FetchTimeout time.Duration
}

type Generator struct {
	store    MoveStore
	remote   Catalog
	logger   *zap.Logger
	cfg      Config
	newID    func() string
	rngMu    sync.Mutex
	rng      *rand.Rand
	inFlight sync.Mutex
}

// New builds a generator. remote may be nil for local-only use; rng may be
// nil for an unseeded source.
func New(st MoveStore, remote Catalog, rng *rand.Rand, logger *zap.Logger, cfg Config) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &Generator{
		store:  st,
		remote: remote,
		logger: logger.Named("generator"),
		cfg:    cfg,
		newID:  uuid.NewString,
		rng:    rng,
	}
}

// ProgressionTier ramps difficulty every ten lifetime completions.
func ProgressionTier(totalCompleted int) int {
	if totalCompleted < 0 {
		totalCompleted = 0
	}
	return totalCompleted/10 + 1
}

// EnsureTodaysMoves generates today's set if none exists yet. It reports
// whether a new set was stored. Remote failures never surface; the local
// catalog fills in.
func (g *Generator) EnsureTodaysMoves(ctx context.Context) (bool, error) {
	g.inFlight.Lock()
	defer g.inFlight.Unlock()

	if len(g.store.TodaysMoves()) > 0 {
		return false, nil
	}
	user := g.store.User()
	if !user.FirstTimeComplete {
		return false, nil
	}

	date := g.store.Today()
	category := user.Category.Normalize()
	tier := ProgressionTier(g.store.TotalMovesCompleted())

	picks, err := g.pickRemote(ctx, category, tier)
	source := "remote"
	if err != nil {
		g.logger.Warn("Falling back to local catalog",
			zap.String("category", string(category)),
			zap.Int("tier", tier),
			zap.Error(err),
		)
		picks = g.pickLocal(category)
		source = "local"
	}

	moves := make([]model.DailyMove, 0, len(model.Tiers))
	for _, t := range model.Tiers {
		entry := picks[t]
		moves = append(moves, model.DailyMove{
			ID:           fmt.Sprintf("%s-%s-%s", t, date, g.newID()),
			Tier:         t,
			Title:        entry.Title,
			Description:  entry.Description,
			Points:       t.Points(),
			TimeEstimate: t.TimeEstimate(),
			Date:         date,
		})
	}

	stored, err := g.store.SetTodaysMoves(ctx, date, moves)
	if err != nil {
		return false, err
	}
	if stored {
		g.logger.Info("Generated daily moves",
			zap.String("date", date),
			zap.String("source", source),
			zap.String("category", string(category)),
			zap.Int("tier", tier),
		)
	}
	return stored, nil
}

func (g *Generator) pickRemote(ctx context.Context, category model.Category, tier int) (map[model.Tier]model.CatalogEntry, error) {
	if g.remote == nil {
		return nil, errors.New("generator: no remote catalog")
	}
	fetchCtx, cancel := context.WithTimeout(ctx, g.cfg.FetchTimeout)
	defer cancel()

	entries, err := g.remote.FetchDailyTasks(fetchCtx, category, tier, g.cfg.Limit)
	if err != nil {
		return nil, err
	}
	byTier := partition(entries, tier)
	out := make(map[model.Tier]model.CatalogEntry, len(model.Tiers))
	for _, t := range model.Tiers {
		candidates := byTier[t]
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: %s", errShortPartition, t)
		}
		out[t] = candidates[g.intN(len(candidates))]
	}
	return out, nil
}

func (g *Generator) pickLocal(category model.Category) map[model.Tier]model.CatalogEntry {
	out := make(map[model.Tier]model.CatalogEntry, len(model.Tiers))
	for _, t := range model.Tiers {
		candidates := LocalEntries(category, t)
		out[t] = candidates[g.intN(len(candidates))]
	}
	return out
}

func partition(entries []model.CatalogEntry, tier int) map[model.Tier][]model.CatalogEntry {
	out := make(map[model.Tier][]model.CatalogEntry, len(model.Tiers))
	for _, e := range entries {
		if !e.IsActive || !e.Tier.IsValid() || e.Level > tier {
			continue
		}
		out[e.Tier] = append(out[e.Tier], e)
	}
	return out
}

func (g *Generator) intN(n int) int {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return g.rng.IntN(n)
}
