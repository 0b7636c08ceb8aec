// Package streak derives the consecutive-day counter from the date of the
// last qualifying completion.
package streak

import (
	"time"

	"github.com/sandeepkv93/leap/internal/model"
)

// Outcome describes what Advance did to the counter.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeExtended  Outcome = "extended"
	OutcomeStarted   Outcome = "started"
	OutcomeReset     Outcome = "reset"
)

// Advance applies one completion at now. Dates are compared in loc.
// Freezes are carried through untouched.
func Advance(s model.Streaks, now time.Time, loc *time.Location) (model.Streaks, Outcome) {
	if loc == nil {
		loc = time.Local
	}
	today := model.DateKey(now, loc)
	stamp := now.UTC()

	if s.LastDate == nil {
		s.Count++
		s.LastDate = &stamp
		return s, OutcomeStarted
	}

	last := model.DateKey(*s.LastDate, loc)
	if last == today {
		return s, OutcomeUnchanged
	}
	if last == yesterday(now, loc) {
		s.Count++
		s.LastDate = &stamp
		return s, OutcomeExtended
	}
	s.Count = 1
	s.LastDate = &stamp
	return s, OutcomeReset
}

// Broken reports whether the streak would reset on the next completion.
// It never mutates anything; the counter only changes through Advance.
func Broken(s model.Streaks, now time.Time, loc *time.Location) bool {
	if s.LastDate == nil || s.Count == 0 {
		return false
	}
	if loc == nil {
		loc = time.Local
	}
	last := model.DateKey(*s.LastDate, loc)
	return last != model.DateKey(now, loc) && last != yesterday(now, loc)
}

func yesterday(now time.Time, loc *time.Location) string {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d-1, 12, 0, 0, 0, loc).Format(model.DateLayout)
}
