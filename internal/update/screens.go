package update

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/leap/internal/fan"
	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/onboarding"
	"github.com/sandeepkv93/leap/internal/views"
)

func fanCards[T fan.Item](f *fan.Fan[T]) []views.CardData {
	items := f.Items()
	placements := f.Layout()
	cards := make([]views.CardData, 0, len(placements))
	for _, p := range placements {
		item := items[p.Index]
		d := item.Display()
		c := views.CardData{
			Slot:    p.Slot.String(),
			Badge:   d.Badge,
			Title:   d.Title,
			Body:    d.Body,
			Footer:  d.Footer,
			Points:  d.Points,
			Scale:   p.Scale,
			Opacity: p.Opacity,
		}
		if p.Slot == fan.SlotCenter {
			if v := item.Validation(); !v.Ready {
				c.Reason = v.Reason
			}
		}
		cards = append(cards, c)
	}
	return cards
}

func (m Model) renderIntake() string {
	options := m.wizard.Options()
	data := views.IntakeData{
		Step:   int(m.wizard.Step()) + 1,
		Steps:  int(onboarding.StepDone),
		Cursor: m.IntakeCursor,
	}
	switch m.wizard.Step() {
	case onboarding.StepCategory:
		data.Question = "which dream are we making real first?"
	case onboarding.StepBlocker:
		data.Question = "what usually stops you?"
	default:
		data.Question = "pick your pace"
	}
	for _, o := range options {
		data.Options = append(data.Options, views.OptionData{Text: o.Text, Description: o.Description})
	}
	return views.RenderIntake(data)
}

func (m Model) renderFirstTime() string {
	done, total := m.flow.Progress()
	return views.RenderCardFan(views.FanData{
		Heading: fmt.Sprintf("let's get you set up (%d/%d)", done, total),
		Cards:   fanCards(m.flow.Fan()),
		Input:   m.firstInput.View(),
		Empty:   "setting up your first moves...",
	})
}

func (m Model) renderToday() string {
	st := m.deps.Store
	moves := st.TodaysMoves()
	heading := fmt.Sprintf("today's moves (%d/%d done)", st.TodayCompletedCount(), len(moves))
	empty := "no moves yet"
	if len(moves) > 0 {
		empty = "all done for today. come back tomorrow 🌙"
	}
	return views.RenderCardFan(views.FanData{
		Heading: heading,
		Cards:   fanCards(m.moves),
		Empty:   empty,
		Hint:    "←/h next | →/l previous | ↑/k or enter complete",
	})
}

func (m Model) renderProofForm() string {
	data := views.ProofFormData{
		Badge: fan.TierBadge(m.Proof.Tier),
		Title: m.Proof.Title,
		Error: m.Proof.Error,
	}
	switch m.Proof.Tier {
	case model.TierPower:
		data.Prompt = "attach a photo of your proof"
		data.InputView = m.photoInput.View()
	case model.TierBoss:
		data.Prompt = fmt.Sprintf("tell us how it went (at least %d sentences)", model.MinBossSentences)
		data.InputView = m.proofText.View()
	default:
		data.Prompt = fmt.Sprintf("what did you do? (at least %d characters)", model.MinQuickProofLength)
		data.InputView = m.proofText.View()
	}
	if m.Proof.Busy {
		data.Busy = m.verifySpinner.View() + " checking your proof..."
	}
	return views.RenderProofForm(data)
}

func (m Model) renderPaywall() string {
	quota := 0
	if m.deps.Gate != nil {
		quota = m.deps.Gate.Quota()
	}
	return views.RenderPaywall(views.PaywallData{
		Hard:           m.Paywall.Hard,
		CompletedToday: m.Paywall.CompletedToday,
		Quota:          quota,
	})
}

func (m Model) renderVision() string {
	st := m.deps.Store
	pct := st.VisionBoardPercentage()
	total := st.TotalMovesCompleted()
	streaks := st.Streaks()
	data := views.VisionData{
		ProgressView: m.visionBar.ViewAs(float64(pct) / 100),
		Percentage:   pct,
		Streak:       streaks.Count,
		Freezes:      streaks.Freezes,
		TotalMoves:   total,
		Premium:      st.IsPremium(),
	}
	if d, ok := st.ActiveDream(); ok {
		data.Dream = d.Title
	}
	if ms, ok := model.MilestoneFor(total); ok {
		data.Milestone = ms.Emoji + " " + ms.Title
	}
	if next, ok := model.NextMilestone(total); ok {
		data.NextMilestone = fmt.Sprintf("%s %s at %d moves", next.Emoji, next.Title, next.Count)
	}
	for _, c := range st.SponsoredChallenges() {
		data.Challenges = append(data.Challenges, views.ChallengeData{Title: c.Title, Sponsor: c.SponsorName, Bonus: c.PointsBonus})
	}
	return views.RenderVision(data)
}

func historyMarkdown(proofs []model.MoveProof) string {
	if len(proofs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("# Proof history\n\n")
	for _, p := range proofs {
		fmt.Fprintf(&b, "- **%s** %s _%s_", p.MoveTitle, fan.TierBadge(p.MoveTier), p.Date)
		switch {
		case p.ProofText != "":
			fmt.Fprintf(&b, ": %s", strings.ReplaceAll(p.ProofText, "\n", " "))
		case p.ProofPhoto != "":
			fmt.Fprintf(&b, ": 📷 %s", p.ProofPhoto)
		}
		if p.VerifiedOffline {
			b.WriteString(" (verified offline)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHistory() string {
	md := historyMarkdown(m.deps.Store.ProofHistory())
	if md == "" {
		return "no proofs yet. your first move is waiting"
	}
	return views.RenderMarkdown(md)
}
