package store

import (
	"slices"

	"github.com/sandeepkv93/leap/internal/model"
)

// State is the whole persisted tree.
type State struct {
	User                     model.User                 `json:"user"`
	Dreams                   []model.Dream              `json:"dreams"`
	ActiveDreamID            string                     `json:"activeDreamId,omitempty"`
	DailyMoves               []model.DailyMove          `json:"dailyMoves"`
	Proofs                   []model.MoveProof          `json:"proofs"`
	TotalMovesCompleted      int                        `json:"totalMovesCompleted"`
	Streaks                  model.Streaks              `json:"streaks"`
	Settings                 model.Settings             `json:"settings"`
	VisionBoard              model.VisionBoard          `json:"visionBoard"`
	DailyMovesCompletedToday int                        `json:"dailyMovesCompletedToday"`
	LastDailyMovesDate       string                     `json:"lastDailyMovesDate,omitempty"`
	SponsoredChallenges      []model.SponsoredChallenge `json:"sponsoredChallenges"`
	IsPremium                bool                       `json:"isPremium"`
}

func InitialState() State {
	return State{
		Dreams:              []model.Dream{},
		DailyMoves:          []model.DailyMove{},
		Proofs:              []model.MoveProof{},
		Settings:            model.DefaultSettings(),
		VisionBoard:         model.NewVisionBoard(),
		SponsoredChallenges: []model.SponsoredChallenge{},
	}
}

// Clone returns a copy that shares no slices or pointers with s.
func (s State) Clone() State {
	out := s
	out.Dreams = make([]model.Dream, len(s.Dreams))
	for i, d := range s.Dreams {
		d.MoveIDs = slices.Clone(d.MoveIDs)
		if d.MoveIDs == nil {
			d.MoveIDs = []string{}
		}
		d.Deadline = cloneTime(d.Deadline)
		d.CompletedAt = cloneTime(d.CompletedAt)
		out.Dreams[i] = d
	}
	out.DailyMoves = make([]model.DailyMove, len(s.DailyMoves))
	for i, m := range s.DailyMoves {
		m.CompletedAt = cloneTime(m.CompletedAt)
		out.DailyMoves[i] = m
	}
	out.Proofs = append(make([]model.MoveProof, 0, len(s.Proofs)), s.Proofs...)
	out.SponsoredChallenges = append(make([]model.SponsoredChallenge, 0, len(s.SponsoredChallenges)), s.SponsoredChallenges...)
	out.Streaks.LastDate = cloneTime(s.Streaks.LastDate)
	return out
}

// normalize fills in fields an older or partial blob may lack.
func (s *State) normalize() {
	if s.Dreams == nil {
		s.Dreams = []model.Dream{}
	}
	for i := range s.Dreams {
		if s.Dreams[i].MoveIDs == nil {
			s.Dreams[i].MoveIDs = []string{}
		}
	}
	if s.DailyMoves == nil {
		s.DailyMoves = []model.DailyMove{}
	}
	if s.Proofs == nil {
		s.Proofs = []model.MoveProof{}
	}
	if s.SponsoredChallenges == nil {
		s.SponsoredChallenges = []model.SponsoredChallenge{}
	}
	if s.VisionBoard.TotalCells <= 0 {
		s.VisionBoard.TotalCells = model.VisionBoardCells
	}
	if s.VisionBoard.FilledCells > s.VisionBoard.TotalCells {
		s.VisionBoard.FilledCells = s.VisionBoard.TotalCells
	}
	if !s.Settings.Theme.IsValid() {
		s.Settings.Theme = model.ThemeSystem
	}
}

func (s State) movesOn(date string) []model.DailyMove {
	out := make([]model.DailyMove, 0, len(model.Tiers))
	for _, m := range s.DailyMoves {
		if m.Date == date {
			out = append(out, m)
		}
	}
	return out
}

func (s State) completedOn(date string) int {
	n := 0
	for _, m := range s.DailyMoves {
		if m.Date == date && m.Completed {
			n++
		}
	}
	return n
}

func (s State) dreamIndex(id string) int {
	return slices.IndexFunc(s.Dreams, func(d model.Dream) bool { return d.ID == id })
}
