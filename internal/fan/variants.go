package fan

import (
	"strconv"
	"strings"

	"github.com/sandeepkv93/leap/internal/model"
)

// MoveItem shows a daily move. Moves are always ready to swipe up; proof
// is collected after the swipe.
type MoveItem struct {
	Move model.DailyMove
}

func (m MoveItem) ID() string { return m.Move.ID }

func (m MoveItem) Display() Display {
	return Display{
		Badge:  TierBadge(m.Move.Tier),
		Title:  m.Move.Title,
		Body:   m.Move.Description,
		Footer: m.Move.TimeEstimate,
		Points: "+" + strconv.Itoa(m.Move.Points),
	}
}

func (m MoveItem) Validation() Validation { return Validation{Ready: true} }

func MoveItems(moves []model.DailyMove) []MoveItem {
	out := make([]MoveItem, 0, len(moves))
	for _, m := range moves {
		out = append(out, MoveItem{Move: m})
	}
	return out
}

func TierBadge(t model.Tier) string {
	switch t {
	case model.TierQuick:
		return "⚡ Quick Move"
	case model.TierPower:
		return "🔥 Power Move"
	case model.TierBoss:
		return "👑 Boss Move"
	default:
		return string(t)
	}
}

type TaskKind string

const (
	TaskName       TaskKind = "name"
	TaskEmail      TaskKind = "email"
	TaskBucketList TaskKind = "bucketlist"
)

// TaskKinds is the first-time flow order.
var TaskKinds = []TaskKind{TaskName, TaskEmail, TaskBucketList}

// FirstTimeTask is one onboarding card with its typed input.
type FirstTimeTask struct {
	Kind  TaskKind
	Value string
}

func (t FirstTimeTask) ID() string { return string(t.Kind) }

func (t FirstTimeTask) Tier() model.Tier {
	switch t.Kind {
	case TaskEmail:
		return model.TierPower
	case TaskBucketList:
		return model.TierBoss
	default:
		return model.TierQuick
	}
}

func (t FirstTimeTask) Placeholder() string {
	switch t.Kind {
	case TaskEmail:
		return "your@email.com"
	case TaskBucketList:
		return "travel solo to Bali, start a business, get that promotion..."
	default:
		return "your name or nickname"
	}
}

func (t FirstTimeTask) Display() Display {
	var title string
	switch t.Kind {
	case TaskEmail:
		title = "drop your email so we can keep you in the loop 📧"
	case TaskBucketList:
		title = "what's #1 on your bucket list? dream big 🌍"
	default:
		title = "what should we call you? 💕"
	}
	tier := t.Tier()
	return Display{
		Badge:  TierBadge(tier),
		Title:  title,
		Body:   t.Value,
		Footer: t.Placeholder(),
		Points: "+" + strconv.Itoa(tier.Points()),
	}
}

func (t FirstTimeTask) Validation() Validation {
	v := strings.TrimSpace(t.Value)
	if v == "" {
		return Validation{Reason: "required"}
	}
	if t.Kind == TaskEmail && !model.IsValidEmail(v) {
		return Validation{Reason: "enter a valid email"}
	}
	return Validation{Ready: true}
}
