package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/outbox"
	"github.com/sandeepkv93/leap/internal/streak"
)

func (s *Store) SetOnboardingCategory(ctx context.Context, c model.Category) error {
	if !c.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidCategory, c)
	}
	return s.mutate(ctx, func(st *State) (bool, error) {
		st.User.Category = c
		return true, nil
	})
}

func (s *Store) SetOnboardingBlocker(ctx context.Context, blocker string) error {
	return s.mutate(ctx, func(st *State) (bool, error) {
		st.User.Blocker = strings.TrimSpace(blocker)
		return true, nil
	})
}

func (s *Store) SetOnboardingPace(ctx context.Context, p model.Pace) error {
	if !p.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidPace, p)
	}
	return s.mutate(ctx, func(st *State) (bool, error) {
		st.User.Pace = p
		return true, nil
	})
}

// CompleteOnboarding marks the flow done and asks for a remote user record
// unless one already exists.
func (s *Store) CompleteOnboarding(ctx context.Context) error {
	var (
		payload outbox.CreateUserPayload
		create  bool
	)
	err := s.mutate(ctx, func(st *State) (bool, error) {
		if st.User.OnboardingComplete {
			return false, nil
		}
		st.User.OnboardingComplete = true
		create = st.User.RemoteID == ""
		payload = outbox.CreateUserPayload{
			Category: st.User.Category.Normalize(),
			Blocker:  st.User.Blocker,
			Pace:     st.User.Pace,
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	if create {
		s.syncer.Enqueue(ctx, outbox.KindCreateUser, payload)
	}
	return nil
}

func (s *Store) SetUserName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	return s.setProfile(ctx, func(u *model.User) { u.Name = name }, outbox.ProfilePayload{Name: &name})
}

func (s *Store) SetUserEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !model.IsValidEmail(email) {
		return fmt.Errorf("store: invalid email %q", email)
	}
	return s.setProfile(ctx, func(u *model.User) { u.Email = email }, outbox.ProfilePayload{Email: &email})
}

func (s *Store) SetUserBucketListItem(ctx context.Context, item string) error {
	item = strings.TrimSpace(item)
	return s.setProfile(ctx, func(u *model.User) { u.BucketListItem = item }, outbox.ProfilePayload{BucketListItem: &item})
}

func (s *Store) setProfile(ctx context.Context, apply func(*model.User), payload outbox.ProfilePayload) error {
	err := s.mutate(ctx, func(st *State) (bool, error) {
		apply(&st.User)
		return true, nil
	})
	if err != nil {
		return err
	}
	s.syncer.Enqueue(ctx, outbox.KindUpsertProfile, payload)
	return nil
}

func (s *Store) CompleteFirstTime(ctx context.Context) error {
	return s.mutate(ctx, func(st *State) (bool, error) {
		if st.User.FirstTimeComplete {
			return false, nil
		}
		st.User.FirstTimeComplete = true
		return true, nil
	})
}

// SetRemoteID records the id assigned by the backend. It is the only remote
// result that flows back into local state.
func (s *Store) SetRemoteID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	return s.mutate(ctx, func(st *State) (bool, error) {
		if id == "" || st.User.RemoteID == id {
			return false, nil
		}
		st.User.RemoteID = id
		return true, nil
	})
}

// AddDream stores d, filling in an id and creation time when missing.
func (s *Store) AddDream(ctx context.Context, d model.Dream) (model.Dream, error) {
	if d.ID == "" {
		d.ID = s.newID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	if d.MoveIDs == nil {
		d.MoveIDs = []string{}
	}
	if err := d.Validate(); err != nil {
		return model.Dream{}, err
	}
	err := s.mutate(ctx, func(st *State) (bool, error) {
		if st.dreamIndex(d.ID) >= 0 {
			return false, fmt.Errorf("store: dream %q already exists", d.ID)
		}
		st.Dreams = append(st.Dreams, d)
		if st.ActiveDreamID == "" {
			st.ActiveDreamID = d.ID
		}
		return true, nil
	})
	if err != nil {
		return model.Dream{}, err
	}
	return d, nil
}

type DreamPatch struct {
	Title         *string
	Description   *string
	Category      *model.Category
	Deadline      *time.Time
	ClearDeadline bool
	Completed     *bool
}

func (s *Store) UpdateDream(ctx context.Context, id string, patch DreamPatch) error {
	return s.mutate(ctx, func(st *State) (bool, error) {
		i := st.dreamIndex(id)
		if i < 0 {
			return false, fmt.Errorf("%w: %q", ErrDreamNotFound, id)
		}
		d := st.Dreams[i]
		if patch.Title != nil {
			d.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			d.Description = *patch.Description
		}
		if patch.Category != nil {
			d.Category = *patch.Category
		}
		if patch.ClearDeadline {
			d.Deadline = nil
		} else if patch.Deadline != nil {
			deadline := patch.Deadline.UTC()
			d.Deadline = &deadline
		}
		if patch.Completed != nil {
			if *patch.Completed {
				now := s.now().UTC()
				d.CompletedAt = &now
			} else {
				d.CompletedAt = nil
			}
		}
		if err := d.Validate(); err != nil {
			return false, err
		}
		st.Dreams[i] = d
		return true, nil
	})
}

func (s *Store) DeleteDream(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *State) (bool, error) {
		i := st.dreamIndex(id)
		if i < 0 {
			return false, fmt.Errorf("%w: %q", ErrDreamNotFound, id)
		}
		st.Dreams = append(st.Dreams[:i], st.Dreams[i+1:]...)
		if st.ActiveDreamID == id {
			st.ActiveDreamID = ""
		}
		return true, nil
	})
}

// SetActiveDream makes id the active dream; an empty id clears it.
func (s *Store) SetActiveDream(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *State) (bool, error) {
		if id != "" && st.dreamIndex(id) < 0 {
			return false, fmt.Errorf("%w: %q", ErrDreamNotFound, id)
		}
		st.ActiveDreamID = id
		return true, nil
	})
}

// SetTodaysMoves stores the generated set for date unless moves for that
// date already exist. It reports whether the set was stored.
func (s *Store) SetTodaysMoves(ctx context.Context, date string, moves []model.DailyMove) (bool, error) {
	for _, m := range moves {
		if m.Date != date {
			return false, fmt.Errorf("store: move %q is dated %s, not %s", m.ID, m.Date, date)
		}
		if err := m.Validate(); err != nil {
			return false, err
		}
	}
	stored := false
	err := s.mutate(ctx, func(st *State) (bool, error) {
		if len(st.movesOn(date)) > 0 {
			return false, nil
		}
		st.DailyMoves = append(st.DailyMoves, moves...)
		st.LastDailyMovesDate = date
		st.DailyMovesCompletedToday = 0
		stored = true
		return true, nil
	})
	return stored, err
}

type Completion struct {
	ProofType       model.ProofType
	ProofText       string
	ProofPhoto      string
	AIVerified      bool
	AIMessage       string
	VerifiedOffline bool
}

type Receipt struct {
	Move             model.DailyMove
	Proof            model.MoveProof
	CompletedToday   int
	TotalMoves       int
	Streaks          model.Streaks
	StreakOutcome    streak.Outcome
	AlreadyCompleted bool
}

// CompleteDailyMove commits a completion. A second call for the same id is
// a no-op that reports AlreadyCompleted.
func (s *Store) CompleteDailyMove(ctx context.Context, id string, c Completion) (Receipt, error) {
	if !c.ProofType.IsValid() {
		return Receipt{}, fmt.Errorf("%w: %q", model.ErrInvalidProofType, c.ProofType)
	}
	var receipt Receipt
	err := s.mutate(ctx, func(st *State) (bool, error) {
		i := -1
		for j := range st.DailyMoves {
			if st.DailyMoves[j].ID == id {
				i = j
				break
			}
		}
		if i < 0 {
			return false, fmt.Errorf("%w: %q", ErrMoveNotFound, id)
		}
		move := st.DailyMoves[i]
		if move.Completed {
			receipt = Receipt{Move: move, AlreadyCompleted: true, CompletedToday: st.completedOn(move.Date), Streaks: st.Streaks}
			return false, nil
		}

		now := s.now().UTC()
		move.Completed = true
		move.CompletedAt = &now
		st.DailyMoves[i] = move

		proof := model.MoveProof{
			ID:              s.newID(),
			MoveID:          move.ID,
			MoveTitle:       move.Title,
			MoveTier:        move.Tier,
			ProofType:       c.ProofType,
			ProofText:       c.ProofText,
			ProofPhoto:      c.ProofPhoto,
			AIVerified:      c.AIVerified,
			AIMessage:       c.AIMessage,
			VerifiedOffline: c.VerifiedOffline,
			CompletedAt:     now,
			Date:            move.Date,
		}
		st.Proofs = append(st.Proofs, proof)
		st.TotalMovesCompleted++
		st.VisionBoard = st.VisionBoard.Fill()
		st.DailyMovesCompletedToday = st.completedOn(move.Date)

		var outcome streak.Outcome
		st.Streaks, outcome = streak.Advance(st.Streaks, now, s.loc)

		if di := st.dreamIndex(st.ActiveDreamID); di >= 0 {
			st.Dreams[di].MoveIDs = append(st.Dreams[di].MoveIDs, move.ID)
		}

		receipt = Receipt{
			Move:           move,
			Proof:          proof,
			CompletedToday: st.DailyMovesCompletedToday,
			TotalMoves:     st.TotalMovesCompleted,
			Streaks:        st.Streaks,
			StreakOutcome:  outcome,
		}
		return true, nil
	})
	if err != nil || receipt.AlreadyCompleted {
		return receipt, err
	}

	s.syncer.Enqueue(ctx, outbox.KindRecordMove, outbox.RecordMovePayload{
		MoveID:        receipt.Move.ID,
		Tier:          receipt.Move.Tier,
		Title:         receipt.Move.Title,
		Description:   receipt.Move.Description,
		ProofText:     receipt.Proof.ProofText,
		ProofPhotoRef: receipt.Proof.ProofPhoto,
		AIVerified:    receipt.Proof.AIVerified,
		AIMessage:     receipt.Proof.AIMessage,
		Points:        receipt.Move.Points,
		CompletedAt:   receipt.Proof.CompletedAt,
	})
	s.syncer.Enqueue(ctx, outbox.KindUpdateStats, outbox.UpdateStatsPayload{
		StreakCount: receipt.Streaks.Count,
		TotalMoves:  receipt.TotalMoves,
	})
	s.logger.Debug("Move completed",
		zap.String("move_id", receipt.Move.ID),
		zap.String("tier", string(receipt.Move.Tier)),
		zap.Int("completed_today", receipt.CompletedToday),
		zap.Int("streak", receipt.Streaks.Count),
	)
	return receipt, nil
}

// StreakBroken reports whether the next completion will reset the streak.
// It only reads: the counter changes on completion, never at launch.
func (s *Store) StreakBroken() bool {
	broken := false
	s.read(func(st *State) {
		broken = streak.Broken(st.Streaks, s.now(), s.loc)
	})
	return broken
}

func (s *Store) AddFreeze(ctx context.Context, count int) error {
	if count <= 0 {
		count = 1
	}
	return s.mutate(ctx, func(st *State) (bool, error) {
		st.Streaks.Freezes += count
		return true, nil
	})
}

// UseFreeze decrements the freeze count, never below zero. Nothing in the
// streak engine calls it.
func (s *Store) UseFreeze(ctx context.Context) error {
	return s.mutate(ctx, func(st *State) (bool, error) {
		if st.Streaks.Freezes == 0 {
			return false, nil
		}
		st.Streaks.Freezes--
		return true, nil
	})
}

type SettingsPatch struct {
	Notifications *bool
	Haptics       *bool
	Theme         *model.Theme
}

func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) error {
	if patch.Theme != nil && !patch.Theme.IsValid() {
		return fmt.Errorf("store: invalid theme %q", *patch.Theme)
	}
	return s.mutate(ctx, func(st *State) (bool, error) {
		if patch.Notifications != nil {
			st.Settings.Notifications = *patch.Notifications
		}
		if patch.Haptics != nil {
			st.Settings.Haptics = *patch.Haptics
		}
		if patch.Theme != nil {
			st.Settings.Theme = *patch.Theme
		}
		return true, nil
	})
}

func (s *Store) SetPremium(ctx context.Context, premium bool) error {
	return s.mutate(ctx, func(st *State) (bool, error) {
		if st.IsPremium == premium {
			return false, nil
		}
		st.IsPremium = premium
		return true, nil
	})
}

// ReplaceSponsoredChallenges swaps the whole read-only cache.
func (s *Store) ReplaceSponsoredChallenges(ctx context.Context, list []model.SponsoredChallenge) error {
	next := append(make([]model.SponsoredChallenge, 0, len(list)), list...)
	return s.mutate(ctx, func(st *State) (bool, error) {
		st.SponsoredChallenges = next
		return true, nil
	})
}

// ResetAll restores the initial state. With deleteRemote the backend user
// is deleted too; pending sync intents are dropped either way.
func (s *Store) ResetAll(ctx context.Context, deleteRemote bool) error {
	var remoteID string
	err := s.mutate(ctx, func(st *State) (bool, error) {
		remoteID = st.User.RemoteID
		*st = InitialState()
		return true, nil
	})
	if err != nil {
		return err
	}
	s.syncer.Discard(ctx)
	if deleteRemote && remoteID != "" {
		s.syncer.Enqueue(ctx, outbox.KindDeleteUser, outbox.DeleteUserPayload{RemoteID: remoteID})
	}
	s.logger.Info("State reset", zap.Bool("delete_remote", deleteRemote))
	return nil
}
