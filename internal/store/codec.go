package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/leap/internal/model"
)

// SchemaVersion is the version written by this build.
const SchemaVersion = 1

var (
	ErrUnsupportedSchema = errors.New("store: unsupported schema version")
	ErrCorruptState      = errors.New("store: corrupt persisted state")
)

type envelope struct {
	SchemaVersion int   `json:"schema_version"`
	State         State `json:"state"`
}

type probe struct {
	SchemaVersion *int            `json:"schema_version"`
	State         json.RawMessage `json:"state"`
}

// migrations[v] upgrades a raw state tree from version v to v+1.
var migrations = map[int]func(json.RawMessage) (json.RawMessage, error){
	0: migrateLegacyTree,
}

func encodeState(s State) ([]byte, error) {
	return json.Marshal(envelope{SchemaVersion: SchemaVersion, State: s})
}

func decodeState(raw []byte) (State, error) {
	var p probe
	if err := json.Unmarshal(raw, &p); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if len(p.State) == 0 {
		return State{}, fmt.Errorf("%w: missing state tree", ErrCorruptState)
	}

	// Blobs written before versioning carry no schema_version at all.
	version := 0
	if p.SchemaVersion != nil {
		version = *p.SchemaVersion
	}
	if version > SchemaVersion || version < 0 {
		return State{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, version)
	}

	tree := p.State
	for v := version; v < SchemaVersion; v++ {
		step, ok := migrations[v]
		if !ok {
			return State{}, fmt.Errorf("%w: no migration from %d", ErrUnsupportedSchema, v)
		}
		next, err := step(tree)
		if err != nil {
			return State{}, fmt.Errorf("migrate state from %d: %w", v, err)
		}
		tree = next
	}

	out := InitialState()
	if err := json.Unmarshal(tree, &out); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	out.normalize()
	return out, nil
}

type legacyUser struct {
	Name               string  `json:"name"`
	Pace               *string `json:"pace"`
	OnboardingComplete bool    `json:"onboardingComplete"`
	OnboardingData     struct {
		Dream   *string `json:"dream"`
		Blocker *string `json:"blocker"`
		Pace    *string `json:"pace"`
	} `json:"onboardingData"`
}

type legacyTree struct {
	User          legacyUser        `json:"user"`
	Dreams        []model.Dream     `json:"dreams"`
	ActiveDream   *model.Dream      `json:"activeDream"`
	DailyMoves    []model.DailyMove `json:"dailyMoves"`
	TotalMoves    int               `json:"totalMovesCompleted"`
	Streaks       model.Streaks     `json:"streaks"`
	Settings      *model.Settings   `json:"settings"`
	VisionBoard   model.VisionBoard `json:"visionBoard"`
	CompletedDay  int               `json:"dailyMovesCompletedToday"`
	LastMovesDate *string           `json:"lastDailyMovesDate"`
}

// migrateLegacyTree lifts the unversioned layout, where onboarding answers
// lived under user.onboardingData and the active dream was embedded whole.
func migrateLegacyTree(raw json.RawMessage) (json.RawMessage, error) {
	var old legacyTree
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	next := InitialState()
	next.User.Name = old.User.Name
	next.User.OnboardingComplete = old.User.OnboardingComplete
	if v := old.User.OnboardingData.Dream; v != nil {
		next.User.Category = model.Category(*v).Normalize()
	}
	if v := old.User.OnboardingData.Blocker; v != nil {
		next.User.Blocker = *v
	}
	pace := old.User.OnboardingData.Pace
	if pace == nil {
		pace = old.User.Pace
	}
	if pace != nil && model.Pace(*pace).IsValid() {
		next.User.Pace = model.Pace(*pace)
	}
	// Installs from before the first-time flow already have daily moves.
	next.User.FirstTimeComplete = next.User.OnboardingComplete

	if old.Dreams != nil {
		next.Dreams = old.Dreams
	}
	if old.ActiveDream != nil {
		next.ActiveDreamID = old.ActiveDream.ID
	}
	if old.DailyMoves != nil {
		next.DailyMoves = old.DailyMoves
	}
	next.TotalMovesCompleted = old.TotalMoves
	next.Streaks = old.Streaks
	if old.Settings != nil {
		next.Settings = *old.Settings
	}
	if old.VisionBoard.TotalCells > 0 {
		next.VisionBoard = old.VisionBoard
	}
	next.DailyMovesCompletedToday = old.CompletedDay
	if old.LastMovesDate != nil {
		next.LastDailyMovesDate = *old.LastMovesDate
	}
	return json.Marshal(next)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
