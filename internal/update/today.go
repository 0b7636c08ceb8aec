package update

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/leap/internal/completion"
	"github.com/sandeepkv93/leap/internal/fan"
	"github.com/sandeepkv93/leap/internal/model"
)

// Keys stand in for touch gestures: a drag just past the threshold, then a
// release with no velocity.
const (
	gestureDX = fan.SwipeXThreshold + 20
	gestureDY = fan.SwipeYThreshold - 20
)

func swipe[T fan.Item](f *fan.Fan[T], dx, dy float64) fan.Intent {
	f.Press()
	f.Drag(dx, dy)
	return f.Release(0, 0)
}

func gestureFor(key string) (dx, dy float64, ok bool) {
	switch key {
	case "left", "h":
		return -gestureDX, 0, true
	case "right", "l":
		return gestureDX, 0, true
	case "up", "k":
		return 0, gestureDY, true
	default:
		return 0, 0, false
	}
}

func (m *Model) refreshMoves() {
	m.moves.SetItems(fan.MoveItems(m.deps.Store.IncompleteMoves()))
}

func (m Model) handleTodayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.moves.Len() == 0 {
		return m, nil
	}
	if msg.String() == "enter" {
		if item, ok := m.moves.Focused(); ok {
			return m.openProof(item.Move)
		}
		return m, nil
	}
	dx, dy, ok := gestureFor(msg.String())
	if !ok {
		return m, nil
	}
	if swipe(m.moves, dx, dy) != fan.IntentComplete {
		return m, nil
	}
	// No exit animation in a terminal.
	id, _ := m.moves.Settle()
	for _, item := range m.moves.Items() {
		if item.ID() == id {
			return m.openProof(item.Move)
		}
	}
	return m, nil
}

// openProof asks the gate first so a blocked user sees the paywall instead
// of the proof form.
func (m Model) openProof(move model.DailyMove) (Model, tea.Cmd) {
	if err := m.deps.Pipeline.Precheck(); err != nil {
		if errors.Is(err, completion.ErrPaywall) {
			m.Paywall = PaywallState{Visible: true, Hard: true, CompletedToday: m.deps.Store.TodayCompletedCount()}
			return m, nil
		}
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Proof = ProofFormState{Active: true, MoveID: move.ID, Tier: move.Tier, Title: move.Title}
	m.proofText.Reset()
	m.photoInput.SetValue("")
	if move.Tier == model.TierPower {
		m.proofText.Blur()
		return m, m.photoInput.Focus()
	}
	m.photoInput.Blur()
	return m, m.proofText.Focus()
}

func (m Model) handleProofKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Proof.Busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.Proof = ProofFormState{}
		m.proofText.Blur()
		m.photoInput.Blur()
		return m, nil
	case "ctrl+s":
		return m.submitProof()
	case "enter":
		if m.Proof.Tier == model.TierPower {
			return m.submitProof()
		}
	}
	var cmd tea.Cmd
	if m.Proof.Tier == model.TierPower {
		m.photoInput, cmd = m.photoInput.Update(msg)
	} else {
		m.proofText, cmd = m.proofText.Update(msg)
	}
	return m, cmd
}

func (m Model) submitProof() (Model, tea.Cmd) {
	proof := model.Proof{Text: m.proofText.Value()}
	if m.Proof.Tier == model.TierPower {
		proof = model.Proof{PhotoRef: m.photoInput.Value()}
	}
	// Validation is cheap; only a valid proof goes near the verifier.
	if err := model.ValidateProof(m.Proof.Tier, proof); err != nil {
		m.Proof.Error = err.Error()
		return m, nil
	}
	m.Proof.Error = ""
	m.Proof.Busy = true
	return m, tea.Batch(
		completeCmd(m.ctx, m.deps.Pipeline, m.Proof.MoveID, proof),
		m.verifySpinner.Tick,
	)
}

func (m Model) onCompletionDone(msg CompletionDoneMsg) (Model, tea.Cmd) {
	m.Proof.Busy = false
	var rejected *completion.RejectedError
	switch {
	case msg.Err == nil:
	case errors.Is(msg.Err, completion.ErrPaywall):
		m.Proof = ProofFormState{}
		m.Paywall = PaywallState{Visible: true, Hard: true, CompletedToday: m.deps.Store.TodayCompletedCount()}
		return m, nil
	case errors.As(msg.Err, &rejected):
		m.Proof.Error = rejected.Message
		return m, nil
	case errors.Is(msg.Err, model.ErrProofTooShort),
		errors.Is(msg.Err, model.ErrProofMissingPhoto),
		errors.Is(msg.Err, model.ErrNotEnoughSentences):
		m.Proof.Error = msg.Err.Error()
		return m, nil
	default:
		m.Proof = ProofFormState{}
		m.LastError = msg.Err
		m.Status = StatusBar{Text: msg.Err.Error(), IsError: true}
		return m, nil
	}

	r := msg.Result.Receipt
	m.Proof = ProofFormState{}
	m.proofText.Blur()
	m.photoInput.Blur()
	m.refreshMoves()
	text := fmt.Sprintf("+%d points! %s done", r.Move.Points, r.Move.Title)
	if r.Proof.VerifiedOffline {
		text += " (verified offline)"
	} else if r.Proof.AIMessage != "" {
		text += ": " + r.Proof.AIMessage
	}
	if m.moves.Len() == 0 {
		text += ". all moves done today 🎉"
	}
	m.Status = StatusBar{Text: text}
	return m, nil
}

// syncFirstInput loads the focused first-time card's value into the input.
func (m *Model) syncFirstInput() {
	task, ok := m.flow.Fan().Focused()
	if !ok {
		m.firstInput.SetValue("")
		return
	}
	m.firstInput.Placeholder = task.Placeholder()
	m.firstInput.SetValue(task.Value)
	m.firstInput.CursorEnd()
}

func (m Model) handleFirstTimeKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := m.flow.Fan()
	task, ok := f.Focused()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "left", "right", "up":
		dx, dy, _ := gestureFor(msg.String())
		switch swipe(f, dx, dy) {
		case fan.IntentComplete:
			f.Settle()
			return m.completeFirstTime(task.Kind)
		case fan.IntentAdvance, fan.IntentRetreat:
			m.syncFirstInput()
		case fan.IntentSnapBack:
			if v := task.Validation(); !v.Ready {
				m.Status = StatusBar{Text: v.Reason, IsError: true}
			}
		}
		return m, nil
	case "enter":
		if v := task.Validation(); !v.Ready {
			m.Status = StatusBar{Text: v.Reason, IsError: true}
			return m, nil
		}
		return m.completeFirstTime(task.Kind)
	}
	var cmd tea.Cmd
	m.firstInput, cmd = m.firstInput.Update(msg)
	m.flow.SetValue(task.Kind, m.firstInput.Value())
	return m, cmd
}

func (m Model) completeFirstTime(kind fan.TaskKind) (Model, tea.Cmd) {
	if err := m.flow.Complete(m.ctx, kind); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.syncFirstInput()
	if m.flow.Done() {
		m.refreshMoves()
		m.Status = StatusBar{Text: "you're all set. here are today's moves"}
		return m, nil
	}
	done, total := m.flow.Progress()
	m.Status = StatusBar{Text: fmt.Sprintf("nice! %d/%d", done, total)}
	return m, nil
}

func (m Model) handleIntakeKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	options := m.wizard.Options()
	switch msg.String() {
	case "j", "down":
		if m.IntakeCursor < len(options)-1 {
			m.IntakeCursor++
		}
	case "k", "up":
		if m.IntakeCursor > 0 {
			m.IntakeCursor--
		}
	case "esc", "backspace":
		m.wizard.Back()
		m.IntakeCursor = 0
	case "enter":
		if len(options) == 0 {
			return m, nil
		}
		if err := m.wizard.Answer(m.ctx, options[m.IntakeCursor].ID); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.IntakeCursor = 0
	}
	return m, nil
}
