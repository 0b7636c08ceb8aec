package update

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/completion"
	"github.com/sandeepkv93/leap/internal/fan"
	"github.com/sandeepkv93/leap/internal/generator"
	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/onboarding"
	"github.com/sandeepkv93/leap/internal/paywall"
	"github.com/sandeepkv93/leap/internal/payments"
	"github.com/sandeepkv93/leap/internal/scheduler"
	"github.com/sandeepkv93/leap/internal/store"
)

type View string

const (
	ViewToday   View = "Today"
	ViewVision  View = "Vision"
	ViewHistory View = "History"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today   string
	Vision  string
	History string
	Help    string
	Quit    string
}

// Deps are the collaborators the front end drives. Scheduler and Payments
// may be nil.
type Deps struct {
	Store     *store.Store
	Generator *generator.Generator
	Pipeline  *completion.Pipeline
	Gate      *paywall.Gate
	Scheduler *scheduler.Engine
	Payments  *payments.Service
	Logger    *zap.Logger
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type ProofFormState struct {
	Active bool
	MoveID string
	Tier   model.Tier
	Title  string
	Error  string
	Busy   bool
}

type PaywallState struct {
	Visible        bool
	Hard           bool
	CompletedToday int
}

type Model struct {
	CurrentView  View
	Status       StatusBar
	Keys         GlobalKeyMap
	Palette      CommandPaletteState
	Proof        ProofFormState
	Paywall      PaywallState
	HelpVisible  bool
	Quitting     bool
	LastError    error
	IntakeCursor int

	deps    Deps
	ctx     context.Context
	logger  *zap.Logger
	changes chan struct{}

	wizard *onboarding.Wizard
	flow   *onboarding.Flow
	moves  *fan.Fan[fan.MoveItem]

	firstInput    textinput.Model
	commandInput  textinput.Model
	proofText     textarea.Model
	photoInput    textinput.Model
	visionBar     progress.Model
	verifySpinner spinner.Model
	helpModel     help.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type CompletionDoneMsg struct {
	MoveID string
	Result completion.Result
	Err    error
}

type MovesEnsuredMsg struct {
	Generated bool
	Err       error
}

type SchedulerEventMsg struct {
	Event scheduler.Event
}

type PaywallSignalMsg struct {
	Signal paywall.Signal
}

// StoreChangedMsg arrives after a mutation made outside the update loop,
// such as an entitlement change or a catalog refresh.
type StoreChangedMsg struct{}

type PaymentDoneMsg struct {
	Message string
	Err     error
}

func NewModel(ctx context.Context, deps Deps) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := Model{
		CurrentView: ViewToday,
		Keys: GlobalKeyMap{
			Today:   "1",
			Vision:  "2",
			History: "3",
			Help:    "?",
			Quit:    "q",
		},
		deps:    deps,
		ctx:     ctx,
		logger:  logger.Named("tui"),
		changes: make(chan struct{}, 1),
	}
	m.wizard = onboarding.NewWizard(deps.Store)
	m.flow = onboarding.NewFlow(deps.Store, m.moveEnsurer(), logger)
	m.moves = fan.New(fan.MoveItems(deps.Store.IncompleteMoves()))
	deps.Store.Subscribe(func(store.State) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	m.initBubbleComponents()
	m.syncFirstInput()
	return m
}

func (m *Model) initBubbleComponents() {
	m.firstInput = textinput.New()
	m.firstInput.CharLimit = 120
	m.firstInput.Width = 40
	m.firstInput.Focus()

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.Placeholder = "dream, category, pace, freeze, upgrade, restore, reset, settings, history"

	m.proofText = textarea.New()
	m.proofText.Placeholder = "what did you do?"
	m.proofText.SetWidth(60)
	m.proofText.SetHeight(5)

	m.photoInput = textinput.New()
	m.photoInput.Placeholder = "path/to/photo.jpg"
	m.photoInput.Width = 50

	m.visionBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	m.verifySpinner = spinner.New()
	m.verifySpinner.Spinner = spinner.Dot
	m.helpModel = help.New()
}
