// Package store owns the application state tree. Every mutation is applied
// locally, persisted as one blob, and only then mirrored remotely through
// the Syncer.
package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/outbox"
	"github.com/sandeepkv93/leap/internal/storage"
)

var (
	ErrNotHydrated   = errors.New("store: not hydrated")
	ErrMoveNotFound  = errors.New("store: move not found")
	ErrDreamNotFound = errors.New("store: dream not found")
)

// Syncer receives remote side effects after the local commit.
type Syncer interface {
	Enqueue(ctx context.Context, kind outbox.Kind, payload any)
	Discard(ctx context.Context)
}

type noopSyncer struct{}

func (noopSyncer) Enqueue(context.Context, outbox.Kind, any) {}
func (noopSyncer) Discard(context.Context)                   {}

type Options struct {
	Logger   *zap.Logger
	Syncer   Syncer
	Now      func() time.Time
	Location *time.Location
	Key      string
	NewID    func() string
}

type Store struct {
	blobs  storage.BlobStore
	syncer Syncer
	logger *zap.Logger
	now    func() time.Time
	loc    *time.Location
	key    string
	newID  func() string

	mu          sync.Mutex
	state       State
	hydrated    bool
	ready       chan struct{}
	subscribers map[int]func(State)
	nextSubID   int
}

func New(blobs storage.BlobStore, opts Options) *Store {
	s := &Store{
		blobs:       blobs,
		syncer:      opts.Syncer,
		logger:      opts.Logger,
		now:         opts.Now,
		loc:         opts.Location,
		key:         opts.Key,
		newID:       opts.NewID,
		state:       InitialState(),
		ready:       make(chan struct{}),
		subscribers: make(map[int]func(State)),
	}
	if s.syncer == nil {
		s.syncer = noopSyncer{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("store")
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.key == "" {
		s.key = storage.StateKey
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Hydrate loads the persisted tree once. A missing blob hydrates the
// initial state. On decode failure the store stays unhydrated and the
// blob is left untouched.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return nil
	}

	raw, err := s.blobs.Load(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.state = InitialState()
	case err != nil:
		return fmt.Errorf("load state: %w", err)
	default:
		st, decodeErr := decodeState(raw)
		if decodeErr != nil {
			return decodeErr
		}
		s.state = st
	}

	s.hydrated = true
	close(s.ready)
	s.logger.Info("State hydrated",
		zap.Int("daily_moves", len(s.state.DailyMoves)),
		zap.Int("total_moves", s.state.TotalMovesCompleted),
	)
	return nil
}

// Ready is closed once hydration has completed.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned func removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Today is the device-local calendar date.
func (s *Store) Today() string {
	return model.DateKey(s.now(), s.loc)
}

func (s *Store) Location() *time.Location {
	return s.loc
}

// mutate applies fn to a copy of the state and commits it only when fn
// succeeds. changed=false from fn skips persistence and notification.
func (s *Store) mutate(ctx context.Context, fn func(st *State) (bool, error)) error {
	s.mu.Lock()
	if !s.hydrated {
		s.mu.Unlock()
		return ErrNotHydrated
	}
	next := s.state.Clone()
	changed, err := fn(&next)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.persistLocked(ctx)
	snapshot := next.Clone()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, id := range slices.Sorted(maps.Keys(s.subscribers)) {
		subs = append(subs, s.subscribers[id])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return nil
}

// persistLocked writes the whole tree. A failed write is logged; the next
// mutation writes the full tree again.
func (s *Store) persistLocked(ctx context.Context) {
	raw, err := encodeState(s.state)
	if err != nil {
		s.logger.Error("Failed to encode state", zap.Error(err))
		return
	}
	if err := s.blobs.Save(ctx, s.key, raw); err != nil {
		s.logger.Error("Failed to persist state", zap.Error(err))
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return State{}, ErrNotHydrated
	}
	return s.state.Clone(), nil
}

// read runs fn under the lock; it returns false before hydration.
func (s *Store) read(fn func(st *State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return false
	}
	fn(&s.state)
	return true
}

// TodaysMoves returns every move dated today, completed or not.
func (s *Store) TodaysMoves() []model.DailyMove {
	today := s.Today()
	var out []model.DailyMove
	s.read(func(st *State) {
		out = st.movesOn(today)
		for i := range out {
			out[i].CompletedAt = cloneTime(out[i].CompletedAt)
		}
	})
	return out
}

// IncompleteMoves is the list the card fan browses.
func (s *Store) IncompleteMoves() []model.DailyMove {
	moves := s.TodaysMoves()
	out := make([]model.DailyMove, 0, len(moves))
	for _, m := range moves {
		if !m.Completed {
			out = append(out, m)
		}
	}
	return out
}

// TodayCompletedCount is derived from today's moves rather than stored.
func (s *Store) TodayCompletedCount() int {
	today := s.Today()
	n := 0
	s.read(func(st *State) {
		n = st.completedOn(today)
	})
	return n
}

func (s *Store) TodayPoints() int {
	points := 0
	for _, m := range s.TodaysMoves() {
		if m.Completed {
			points += m.Points
		}
	}
	return points
}

func (s *Store) TotalMovesCompleted() int {
	n := 0
	s.read(func(st *State) {
		n = st.TotalMovesCompleted
	})
	return n
}

func (s *Store) VisionBoardPercentage() int {
	pct := 0
	s.read(func(st *State) {
		pct = st.VisionBoard.Percentage()
	})
	return pct
}

// ProofHistory returns proofs newest first.
func (s *Store) ProofHistory() []model.MoveProof {
	var out []model.MoveProof
	s.read(func(st *State) {
		out = make([]model.MoveProof, len(st.Proofs))
		for i, p := range st.Proofs {
			out[len(st.Proofs)-1-i] = p
		}
	})
	return out
}

func (s *Store) User() model.User {
	var u model.User
	s.read(func(st *State) {
		u = st.User
	})
	return u
}

func (s *Store) RemoteID() string {
	return s.User().RemoteID
}

func (s *Store) IsPremium() bool {
	premium := false
	s.read(func(st *State) {
		premium = st.IsPremium
	})
	return premium
}

func (s *Store) Streaks() model.Streaks {
	var out model.Streaks
	s.read(func(st *State) {
		out = st.Streaks
		out.LastDate = cloneTime(st.Streaks.LastDate)
	})
	return out
}

func (s *Store) ActiveDream() (model.Dream, bool) {
	var (
		out   model.Dream
		found bool
	)
	s.read(func(st *State) {
		if i := st.dreamIndex(st.ActiveDreamID); i >= 0 {
			out = st.Clone().Dreams[i]
			found = true
		}
	})
	return out, found
}

func (s *Store) SponsoredChallenges() []model.SponsoredChallenge {
	today := s.Today()
	out := make([]model.SponsoredChallenge, 0)
	s.read(func(st *State) {
		for _, c := range st.SponsoredChallenges {
			if c.ActiveOn(today) {
				out = append(out, c)
			}
		}
	})
	return out
}
