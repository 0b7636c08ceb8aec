package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/completion"
	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/onboarding"
	"github.com/sandeepkv93/leap/internal/paywall"
	"github.com/sandeepkv93/leap/internal/scheduler"
)

func waitForSchedulerCmd(ch <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return SchedulerEventMsg{Event: ev}
	}
}

func waitForPaywallCmd(ch <-chan paywall.Signal) tea.Cmd {
	return func() tea.Msg {
		sig, ok := <-ch
		if !ok {
			return nil
		}
		return PaywallSignalMsg{Signal: sig}
	}
}

func waitForStoreCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return StoreChangedMsg{}
	}
}

// moveEnsurer hides a nil generator from the onboarding flow.
func (m Model) moveEnsurer() onboarding.MoveEnsurer {
	if m.deps.Generator == nil {
		return nil
	}
	return m.deps.Generator
}

func (m Model) ensureMovesCmd() tea.Cmd {
	gen := m.deps.Generator
	if gen == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		generated, err := gen.EnsureTodaysMoves(ctx)
		return MovesEnsuredMsg{Generated: generated, Err: err}
	}
}

func completeCmd(ctx context.Context, p *completion.Pipeline, moveID string, proof model.Proof) tea.Cmd {
	return func() tea.Msg {
		res, err := p.CompleteMove(ctx, moveID, proof)
		return CompletionDoneMsg{MoveID: moveID, Result: res, Err: err}
	}
}

// handleSchedulerEvent reacts to a due event and re-arms the wait.
func (m Model) handleSchedulerEvent(ev scheduler.Event) (Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForSchedulerCmd(m.deps.Scheduler.C())}
	switch ev.Kind {
	case scheduler.KindSoftPaywall:
		if m.deps.Gate != nil {
			m.deps.Gate.HandleEvent(ev)
		}
	case scheduler.KindDayRollover:
		if m.deps.Gate != nil {
			m.deps.Gate.ResetDay()
		}
		if err := m.deps.Scheduler.ScheduleRollover(m.deps.Store.Location()); err != nil {
			m.logger.Warn("Failed to schedule next rollover", zap.Error(err))
		}
		m.Paywall = PaywallState{}
		cmds = append(cmds, m.ensureMovesCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handlePaywallSignal(sig paywall.Signal) (Model, tea.Cmd) {
	if !m.deps.Store.IsPremium() {
		m.Paywall = PaywallState{
			Visible:        true,
			Hard:           sig.Kind == paywall.SignalHard,
			CompletedToday: sig.CompletedToday,
		}
	}
	return m, waitForPaywallCmd(m.deps.Gate.Signals())
}
