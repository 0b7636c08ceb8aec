package update

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/completion"
	"github.com/sandeepkv93/leap/internal/generator"
	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/paywall"
	"github.com/sandeepkv93/leap/internal/scheduler"
	"github.com/sandeepkv93/leap/internal/storage"
	"github.com/sandeepkv93/leap/internal/store"
	"github.com/sandeepkv93/leap/internal/verify"
)

const today = "2026-03-10"

type harness struct {
	model    Model
	store    *store.Store
	gate     *paywall.Gate
	pipeline *completion.Pipeline
}

func newHarness(t *testing.T, quota int, onboarded bool) *harness {
	t.Helper()
	blobs, err := storage.NewFileBlobStore(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	st := store.New(blobs, store.Options{
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return now },
		Location: time.UTC,
	})
	ctx := context.Background()
	if err := st.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if onboarded {
		seedOnboarded(t, st)
	}

	gen := generator.New(st, nil, rand.New(rand.NewPCG(1, 2)), zap.NewNop(), generator.Config{})
	gate := paywall.NewGate(paywall.Config{Quota: quota}, nil, zap.NewNop())
	p := completion.New(st, gate, verify.Disabled{}, zap.NewNop())
	m := NewModel(ctx, Deps{Store: st, Generator: gen, Pipeline: p, Gate: gate, Logger: zap.NewNop()})
	return &harness{model: m, store: st, gate: gate, pipeline: p}
}

func seedOnboarded(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	steps := []func() error{
		func() error { return st.SetOnboardingCategory(ctx, model.CategoryTravel) },
		func() error { return st.SetOnboardingPace(ctx, model.PaceSteady) },
		func() error { return st.CompleteOnboarding(ctx) },
		func() error { return st.SetUserName(ctx, "Ava") },
		func() error { return st.SetUserEmail(ctx, "ava@example.com") },
		func() error { return st.SetUserBucketListItem(ctx, "Bali") },
		func() error { return st.CompleteFirstTime(ctx) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("seed step %d: %v", i, err)
		}
	}
	moves := make([]model.DailyMove, 0, len(model.Tiers))
	for _, tier := range model.Tiers {
		moves = append(moves, model.DailyMove{
			ID:           string(tier) + "-move",
			Tier:         tier,
			Title:        "Move " + string(tier),
			Points:       tier.Points(),
			TimeEstimate: tier.TimeEstimate(),
			Date:         today,
		})
	}
	if _, err := st.SetTodaysMoves(ctx, today, moves); err != nil {
		t.Fatalf("seed moves: %v", err)
	}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) key(t tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: t})
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) command(line string) tea.Cmd {
	h.typeText("/")
	h.typeText(line)
	return h.key(tea.KeyEnter)
}

func TestIntakeWizardRecordsAnswers(t *testing.T) {
	h := newHarness(t, 3, false)

	h.key(tea.KeyEnter)
	h.typeText("j")
	if h.model.IntakeCursor != 1 {
		t.Fatalf("expected cursor 1, got %d", h.model.IntakeCursor)
	}
	h.key(tea.KeyEnter)
	h.key(tea.KeyEnter)

	u := h.store.User()
	if !u.OnboardingComplete {
		t.Fatal("expected onboarding complete")
	}
	if u.Category != model.CategoryTravel || u.Blocker != "scared" || u.Pace != model.PaceDelusional {
		t.Fatalf("unexpected answers: %+v", u)
	}
	if !strings.Contains(h.model.View(), "let's get you set up") {
		t.Fatal("expected first-time tasks after intake")
	}
}

func TestIntakeBackReturnsToPreviousQuestion(t *testing.T) {
	h := newHarness(t, 3, false)
	h.key(tea.KeyEnter)
	h.key(tea.KeyEsc)
	if h.model.wizard.Step() != 0 {
		t.Fatalf("expected first step after back, got %s", h.model.wizard.Step())
	}
}

func TestFirstTimeFlowGeneratesMoves(t *testing.T) {
	h := newHarness(t, 3, false)
	for i := 0; i < 3; i++ {
		h.key(tea.KeyEnter)
	}

	h.key(tea.KeyEnter)
	if !h.model.Status.IsError || h.model.Status.Text != "required" {
		t.Fatalf("expected required error for empty name, got %+v", h.model.Status)
	}

	h.typeText("Ava")
	h.key(tea.KeyEnter)
	if h.store.User().Name != "Ava" {
		t.Fatalf("expected name saved, got %q", h.store.User().Name)
	}

	h.typeText("not-an-email")
	h.key(tea.KeyUp)
	if h.store.User().Email != "" {
		t.Fatal("swipe up must not complete an invalid email")
	}
	h.model.firstInput.SetValue("")
	h.model.flow.SetValue("email", "")
	h.typeText("ava@example.com")
	h.key(tea.KeyUp)
	if h.store.User().Email != "ava@example.com" {
		t.Fatalf("expected email saved, got %q", h.store.User().Email)
	}

	h.typeText("travel solo to Bali")
	h.key(tea.KeyEnter)

	if !h.store.User().FirstTimeComplete {
		t.Fatal("expected first-time flow complete")
	}
	if got := len(h.store.TodaysMoves()); got != 3 {
		t.Fatalf("expected 3 generated moves, got %d", got)
	}
	if h.model.moves.Len() != 3 {
		t.Fatalf("expected fan to show 3 moves, got %d", h.model.moves.Len())
	}
}

func TestSwipeKeysMoveFocus(t *testing.T) {
	h := newHarness(t, 3, true)
	if h.model.moves.Len() != 3 {
		t.Fatalf("expected 3 moves, got %d", h.model.moves.Len())
	}
	h.typeText("h")
	if h.model.moves.FocusIndex() != 1 {
		t.Fatalf("expected focus 1 after advance, got %d", h.model.moves.FocusIndex())
	}
	h.key(tea.KeyRight)
	h.key(tea.KeyRight)
	if h.model.moves.FocusIndex() != 2 {
		t.Fatalf("expected focus to wrap to 2, got %d", h.model.moves.FocusIndex())
	}
}

func TestProofFormValidatesThenCompletes(t *testing.T) {
	h := newHarness(t, 3, true)

	h.typeText("k")
	if !h.model.Proof.Active || h.model.Proof.Tier != model.TierQuick {
		t.Fatalf("expected quick proof form, got %+v", h.model.Proof)
	}

	h.typeText("short")
	if cmd := h.key(tea.KeyCtrlS); cmd != nil {
		t.Fatal("short proof must not reach the pipeline")
	}
	if h.model.Proof.Error == "" || h.model.Proof.Busy {
		t.Fatalf("expected inline error, got %+v", h.model.Proof)
	}

	h.typeText(" walk around the block")
	if cmd := h.key(tea.KeyCtrlS); cmd == nil {
		t.Fatal("expected completion command")
	}
	if !h.model.Proof.Busy {
		t.Fatal("expected busy form while verifying")
	}

	msg := completeCmd(context.Background(), h.pipeline, h.model.Proof.MoveID, model.Proof{Text: h.model.proofText.Value()})()
	h.send(msg)

	if h.model.Proof.Active {
		t.Fatal("expected proof form closed")
	}
	if h.store.TodayCompletedCount() != 1 {
		t.Fatalf("expected 1 completion, got %d", h.store.TodayCompletedCount())
	}
	if h.model.moves.Len() != 2 {
		t.Fatalf("expected 2 remaining moves, got %d", h.model.moves.Len())
	}
	if !strings.HasPrefix(h.model.Status.Text, "+1 points!") {
		t.Fatalf("unexpected status %q", h.model.Status.Text)
	}
}

func TestProofFormEscCancels(t *testing.T) {
	h := newHarness(t, 3, true)
	h.key(tea.KeyEnter)
	h.key(tea.KeyEsc)
	if h.model.Proof.Active {
		t.Fatal("expected proof form closed")
	}
	if h.store.TodayCompletedCount() != 0 {
		t.Fatal("cancel must not complete a move")
	}
}

func TestHardPaywallBlocksProofForm(t *testing.T) {
	h := newHarness(t, 1, true)
	if _, err := h.store.CompleteDailyMove(context.Background(), "quick-move", store.Completion{
		ProofType: model.ProofText,
		ProofText: "did the thing today",
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	h.send(StoreChangedMsg{})

	h.key(tea.KeyEnter)
	if h.model.Proof.Active {
		t.Fatal("proof form must not open past the quota")
	}
	if !h.model.Paywall.Visible || !h.model.Paywall.Hard {
		t.Fatalf("expected hard paywall, got %+v", h.model.Paywall)
	}
	h.typeText("x")
	if h.model.Paywall.Visible {
		t.Fatal("expected paywall dismissed")
	}
}

func TestSoftPaywallSignalShowsOverlay(t *testing.T) {
	h := newHarness(t, 3, true)
	cmd := h.send(PaywallSignalMsg{Signal: paywall.Signal{Kind: paywall.SignalSoft, CompletedToday: 3}})
	if cmd == nil {
		t.Fatal("expected the paywall wait to be re-armed")
	}
	if !h.model.Paywall.Visible || h.model.Paywall.Hard {
		t.Fatalf("expected soft paywall, got %+v", h.model.Paywall)
	}
	if !strings.Contains(h.model.View(), "3/3 free moves done") {
		t.Fatal("expected soft paywall copy in view")
	}
	h.key(tea.KeyEsc)
	if h.model.Paywall.Visible {
		t.Fatal("expected paywall dismissed")
	}
}

func TestPaywallSignalIgnoredForPremium(t *testing.T) {
	h := newHarness(t, 3, true)
	if err := h.store.SetPremium(context.Background(), true); err != nil {
		t.Fatalf("premium: %v", err)
	}
	h.send(PaywallSignalMsg{Signal: paywall.Signal{Kind: paywall.SignalHard}})
	if h.model.Paywall.Visible {
		t.Fatal("premium users never see the paywall")
	}
}

func TestRolloverReschedulesAndRegenerates(t *testing.T) {
	h := newHarness(t, 3, true)
	engine := scheduler.NewEngine(4)
	t.Cleanup(engine.Stop)
	h.model.deps.Scheduler = engine
	h.model.Paywall = PaywallState{Visible: true}

	cmd := h.send(SchedulerEventMsg{Event: scheduler.Event{ID: "rollover", Kind: scheduler.KindDayRollover}})
	if cmd == nil {
		t.Fatal("expected follow-up commands")
	}
	if h.model.Paywall.Visible {
		t.Fatal("expected paywall cleared on rollover")
	}
	at := scheduler.NextMidnight(time.Now(), time.UTC)
	if !engine.Pending("rollover-" + at.Format("2006-01-02")) {
		t.Fatal("expected next rollover scheduled")
	}
}

func TestPaletteCommands(t *testing.T) {
	h := newHarness(t, 3, true)

	h.command("dream solo trip to Bali")
	d, ok := h.store.ActiveDream()
	if !ok || d.Title != "solo trip to Bali" || d.Category != model.CategoryTravel {
		t.Fatalf("unexpected dream %+v (found=%v)", d, ok)
	}
	if h.model.Palette.Active {
		t.Fatal("expected palette closed after command")
	}

	h.command("settings theme dark")
	snap, err := h.store.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Settings.Theme != model.ThemeDark {
		t.Fatalf("expected dark theme, got %s", snap.Settings.Theme)
	}

	h.command("upgrade monthly")
	if !h.model.Status.IsError || !strings.Contains(h.model.Status.Text, "payments are not configured") {
		t.Fatalf("expected payments error, got %+v", h.model.Status)
	}

	h.command("history")
	if h.model.CurrentView != ViewHistory {
		t.Fatalf("expected history view, got %s", h.model.CurrentView)
	}

	h.command("bogus")
	if !h.model.Status.IsError || !strings.Contains(h.model.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", h.model.Status)
	}

	h.command("reset")
	if h.store.User().OnboardingComplete {
		t.Fatal("expected onboarding cleared by reset")
	}
	if h.model.wizard.Done() {
		t.Fatal("expected wizard restarted after reset")
	}
}

func TestHistoryMarkdown(t *testing.T) {
	if historyMarkdown(nil) != "" {
		t.Fatal("expected empty markdown for no proofs")
	}
	md := historyMarkdown([]model.MoveProof{
		{MoveTitle: "Book the flight", MoveTier: model.TierBoss, Date: today, ProofText: "Booked it.\nFinally.", VerifiedOffline: true},
		{MoveTitle: "Pack", MoveTier: model.TierPower, Date: today, ProofPhoto: "bag.jpg"},
	})
	for _, want := range []string{"**Book the flight**", "Booked it. Finally.", "(verified offline)", "📷 bag.jpg"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in %q", want, md)
		}
	}
}

func TestViewSwitchingKeys(t *testing.T) {
	h := newHarness(t, 3, true)
	h.typeText(h.model.Keys.Vision)
	if h.model.CurrentView != ViewVision {
		t.Fatalf("expected vision view, got %s", h.model.CurrentView)
	}
	if !strings.Contains(h.model.View(), "vision board:") {
		t.Fatal("expected vision board in view")
	}
	h.typeText(h.model.Keys.Today)
	if h.model.CurrentView != ViewToday {
		t.Fatalf("expected today view, got %s", h.model.CurrentView)
	}
	h.typeText(h.model.Keys.Help)
	if !h.model.HelpVisible {
		t.Fatal("expected help visible")
	}
	if cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil || !h.model.Quitting {
		t.Fatal("expected quit")
	}
}
