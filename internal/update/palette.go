package update

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/leap/internal/commands"
	"github.com/sandeepkv93/leap/internal/fan"
	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/onboarding"
	"github.com/sandeepkv93/leap/internal/payments"
	"github.com/sandeepkv93/leap/internal/store"
)

var (
	errPaymentsUnavailable = errors.New("update: payments are not configured")
	errUpgradePending      = errors.New("update: purchase accepted but Pro is not active yet")
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	ctx := m.ctx
	st := m.deps.Store
	var followUp tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Dream: func(a commands.DreamArgs) (commands.Result, error) {
			d, err := st.AddDream(ctx, model.Dream{Title: a.Title, Category: st.User().Category.Normalize()})
			if err != nil {
				return commands.Result{}, err
			}
			if err := st.SetActiveDream(ctx, d.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("dream set: %s ✨", d.Title)}, nil
		},
		Category: func(a commands.CategoryArgs) (commands.Result, error) {
			if err := st.SetOnboardingCategory(ctx, a.Category); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("category set to %s. new moves start tomorrow", a.Category)}, nil
		},
		Pace: func(a commands.PaceArgs) (commands.Result, error) {
			if err := st.SetOnboardingPace(ctx, a.Pace); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("pace set to %s", a.Pace)}, nil
		},
		Freeze: func(a commands.FreezeArgs) (commands.Result, error) {
			svc := m.deps.Payments
			if svc == nil {
				return commands.Result{}, errPaymentsUnavailable
			}
			followUp = func() tea.Msg {
				if err := svc.BuyStreakFreeze(ctx, a.Receipt); err != nil {
					return PaymentDoneMsg{Err: err}
				}
				return PaymentDoneMsg{Message: "streak freeze added 🧊"}
			}
			return commands.Result{Message: "buying streak freeze..."}, nil
		},
		Upgrade: func(a commands.UpgradeArgs) (commands.Result, error) {
			svc := m.deps.Payments
			if svc == nil {
				return commands.Result{}, errPaymentsUnavailable
			}
			plan, err := payments.ParsePlan(a.Plan)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			followUp = upgradeCmd(ctx, svc, plan, a.Receipt)
			return commands.Result{Message: fmt.Sprintf("upgrading to %s...", plan)}, nil
		},
		Restore: func() (commands.Result, error) {
			c, err := m.restoreCmd()
			if err != nil {
				return commands.Result{}, err
			}
			followUp = c
			return commands.Result{Message: "restoring purchases..."}, nil
		},
		Reset: func(a commands.ResetArgs) (commands.Result, error) {
			if err := st.ResetAll(ctx, a.DeleteRemote); err != nil {
				return commands.Result{}, err
			}
			m.rebuildFlows()
			if m.deps.Gate != nil {
				m.deps.Gate.ResetDay()
			}
			if a.DeleteRemote {
				return commands.Result{Message: "everything reset, including your account"}, nil
			}
			return commands.Result{Message: "everything reset. fresh start ✨"}, nil
		},
		Settings: func(a commands.SettingsArgs) (commands.Result, error) {
			var patch store.SettingsPatch
			switch a.Key {
			case commands.SettingNotifications:
				patch.Notifications = &a.Enabled
			case commands.SettingHaptics:
				patch.Haptics = &a.Enabled
			case commands.SettingTheme:
				patch.Theme = &a.Theme
			}
			if err := st.UpdateSettings(ctx, patch); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s updated", a.Key)}, nil
		},
		History: func() (commands.Result, error) {
			m.CurrentView = ViewHistory
			return commands.Result{Message: fmt.Sprintf("%d proofs so far", len(st.ProofHistory()))}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, followUp
}

// rebuildFlows starts onboarding again after a reset.
func (m *Model) rebuildFlows() {
	m.wizard = onboarding.NewWizard(m.deps.Store)
	m.flow = onboarding.NewFlow(m.deps.Store, m.moveEnsurer(), m.deps.Logger)
	m.moves = fan.New(fan.MoveItems(m.deps.Store.IncompleteMoves()))
	m.IntakeCursor = 0
	m.CurrentView = ViewToday
	m.Paywall = PaywallState{}
	m.Proof = ProofFormState{}
	m.syncFirstInput()
}

func upgradeCmd(ctx context.Context, svc *payments.Service, plan payments.Plan, receipt string) tea.Cmd {
	return func() tea.Msg {
		premium, err := svc.Upgrade(ctx, plan, receipt)
		if err != nil {
			return PaymentDoneMsg{Err: err}
		}
		if !premium {
			return PaymentDoneMsg{Err: errUpgradePending}
		}
		return PaymentDoneMsg{Message: "welcome to Pro 👑 unlimited moves unlocked"}
	}
}

func (m Model) restoreCmd() (tea.Cmd, error) {
	svc := m.deps.Payments
	if svc == nil {
		return nil, errPaymentsUnavailable
	}
	ctx := m.ctx
	return func() tea.Msg {
		premium, err := svc.Restore(ctx)
		if err != nil {
			return PaymentDoneMsg{Err: err}
		}
		if !premium {
			return PaymentDoneMsg{Message: "no active subscription found"}
		}
		return PaymentDoneMsg{Message: "Pro restored 👑"}
	}, nil
}
