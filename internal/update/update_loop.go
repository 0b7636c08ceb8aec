package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForStoreCmd(m.changes), textinput.Blink}
	if m.flow.Done() {
		cmds = append(cmds, m.ensureMovesCmd())
	}
	if m.deps.Scheduler != nil {
		cmds = append(cmds, waitForSchedulerCmd(m.deps.Scheduler.C()))
	}
	if m.deps.Gate != nil {
		cmds = append(cmds, waitForPaywallCmd(m.deps.Gate.Signals()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.moves.SetWidth(float64(typed.Width))
		m.flow.Fan().SetWidth(float64(typed.Width))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.Proof.Busy {
			var cmd tea.Cmd
			m.verifySpinner, cmd = m.verifySpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case CompletionDoneMsg:
		return m.onCompletionDone(typed)
	case MovesEnsuredMsg:
		if typed.Err != nil {
			m.logger.Warn("Failed to ensure daily moves", zap.Error(typed.Err))
			m.Status = StatusBar{Text: "couldn't load today's moves", IsError: true}
			return m, nil
		}
		m.refreshMoves()
		if typed.Generated {
			m.Status = StatusBar{Text: fmt.Sprintf("%d new moves for today", m.moves.Len())}
		}
		return m, nil
	case SchedulerEventMsg:
		return m.handleSchedulerEvent(typed.Event)
	case PaywallSignalMsg:
		return m.handlePaywallSignal(typed.Signal)
	case StoreChangedMsg:
		m.refreshMoves()
		if m.Paywall.Visible && m.deps.Store.IsPremium() {
			m.Paywall = PaywallState{}
			m.Status = StatusBar{Text: "welcome to Pro 👑"}
		}
		return m, waitForStoreCmd(m.changes)
	case PaymentDoneMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			return m, nil
		}
		if m.deps.Store.IsPremium() {
			m.Paywall = PaywallState{}
		}
		m.Status = StatusBar{Text: typed.Message}
		return m, nil
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

// handleKey routes a key to the topmost surface: palette, proof form,
// paywall, intake, first-time tasks, then the current view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}
	if m.Proof.Active {
		return m.handleProofKey(msg)
	}
	if m.Paywall.Visible {
		return m.handlePaywallKey(msg)
	}
	if !m.wizard.Done() {
		if keyStr == m.Keys.Quit {
			m.Quitting = true
			return m, tea.Quit
		}
		return m.handleIntakeKey(msg)
	}
	if !m.flow.Done() {
		// Typing owns every rune here, so esc quits instead of q.
		if keyStr == "esc" {
			m.Quitting = true
			return m, tea.Quit
		}
		return m.handleFirstTimeKey(msg)
	}

	switch keyStr {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active"}
		return m, m.commandInput.Focus()
	case m.Keys.Today:
		m.CurrentView = ViewToday
		return m, nil
	case m.Keys.Vision:
		m.CurrentView = ViewVision
		return m, nil
	case m.Keys.History:
		m.CurrentView = ViewHistory
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}
	if m.CurrentView == ViewToday {
		return m.handleTodayKey(msg)
	}
	return m, nil
}

func (m Model) handlePaywallKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "x":
		if m.deps.Gate != nil {
			m.deps.Gate.Dismiss()
		}
		m.Paywall = PaywallState{}
		m.Status = StatusBar{Text: "maybe later. see you tomorrow 💕"}
		return m, nil
	case "r":
		cmd, err := m.restoreCmd()
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: "restoring purchases..."}
		return m, cmd
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		return m, m.commandInput.Focus()
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	data := views.AppData{
		Header: m.header(),
		Footer: m.footer(),
	}
	switch {
	case !m.wizard.Done():
		data.Body = m.renderIntake()
	case !m.flow.Done():
		data.Body = m.renderFirstTime()
	default:
		switch m.CurrentView {
		case ViewVision:
			data.Body = m.renderVision()
		case ViewHistory:
			data.Body = m.renderHistory()
		default:
			data.Body = m.renderToday()
		}
	}
	switch {
	case m.Proof.Active:
		data.Overlay = m.renderProofForm()
	case m.Paywall.Visible:
		data.Overlay = m.renderPaywall()
	}
	if m.Palette.Active {
		data.Body += "\n" + views.RenderCommandPalette(true, m.commandInput.View())
	}
	if m.HelpVisible {
		data.Body += "\n" + views.RenderPanel(m.renderHelpView())
	}
	if m.Status.Text != "" {
		data.StatusLine = m.Status.Text
		data.StatusErr = m.Status.IsError
	}
	return views.RenderApp(data)
}

func (m Model) header() string {
	st := m.deps.Store
	head := "Delusional Leap"
	if name := st.User().Name; name != "" {
		head += " | hey " + name
	}
	if !m.flow.Done() {
		return head
	}
	head += fmt.Sprintf(" | %s | 🔥 %d | %d pts today", m.CurrentView, st.Streaks().Count, st.TodayPoints())
	if st.IsPremium() {
		head += " | Pro"
	} else if m.deps.Gate != nil {
		head += fmt.Sprintf(" | %d free left", m.deps.Gate.Remaining(false, st.TodayCompletedCount()))
	}
	return head
}

func (m Model) footer() string {
	switch {
	case !m.wizard.Done():
		return fmt.Sprintf("keys: j/k choose | enter next | esc back | %s quit", m.Keys.Quit)
	case !m.flow.Done():
		return "keys: type to answer | enter done | ←/→ switch card | ↑ complete | esc quit"
	}
	return fmt.Sprintf("keys: %s today | %s vision | %s history | / cmd | %s help | %s quit",
		m.Keys.Today, m.Keys.Vision, m.Keys.History, m.Keys.Help, m.Keys.Quit)
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewVision, ViewHistory:
		return true
	default:
		return false
	}
}
