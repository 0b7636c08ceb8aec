package model

type Milestone struct {
	Count int
	Title string
	Emoji string
}

var Milestones = []Milestone{
	{Count: 10, Title: "Explorer", Emoji: "🌺"},
	{Count: 25, Title: "Trailblazer", Emoji: "⚡"},
	{Count: 50, Title: "Pathfinder", Emoji: "🔥"},
	{Count: 100, Title: "Main Character", Emoji: "👑"},
}

// MilestoneFor returns the highest milestone reached with total moves.
func MilestoneFor(total int) (Milestone, bool) {
	for i := len(Milestones) - 1; i >= 0; i-- {
		if total >= Milestones[i].Count {
			return Milestones[i], true
		}
	}
	return Milestone{}, false
}

func NextMilestone(total int) (Milestone, bool) {
	for _, m := range Milestones {
		if total < m.Count {
			return m, true
		}
	}
	return Milestone{}, false
}
