package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/leap/internal/model"
)

var ErrUnknownOption = errors.New("onboarding: unknown option")

type Step int

const (
	StepCategory Step = iota
	StepBlocker
	StepPace
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepCategory:
		return "category"
	case StepBlocker:
		return "blocker"
	case StepPace:
		return "pace"
	default:
		return "done"
	}
}

// IntakeStore is the store surface the intake questions write to.
type IntakeStore interface {
	User() model.User
	SetOnboardingCategory(ctx context.Context, c model.Category) error
	SetOnboardingBlocker(ctx context.Context, blocker string) error
	SetOnboardingPace(ctx context.Context, p model.Pace) error
	CompleteOnboarding(ctx context.Context) error
}

// Wizard asks category, blocker and pace in order. Answering pace finishes
// onboarding.
type Wizard struct {
	store IntakeStore
	step  Step
}

func NewWizard(st IntakeStore) *Wizard {
	w := &Wizard{store: st}
	if st.User().OnboardingComplete {
		w.step = StepDone
	}
	return w
}

func (w *Wizard) Step() Step { return w.step }

func (w *Wizard) Done() bool { return w.step == StepDone }

// Options lists the choices for the current step.
func (w *Wizard) Options() []Option {
	switch w.step {
	case StepCategory:
		return CategoryOptions
	case StepBlocker:
		return BlockerOptions
	case StepPace:
		return PaceOptions
	default:
		return nil
	}
}

// Answer records id for the current step and advances.
func (w *Wizard) Answer(ctx context.Context, id string) error {
	if _, ok := findOption(w.Options(), id); !ok {
		return fmt.Errorf("%w: %s %q", ErrUnknownOption, w.step, id)
	}

	var err error
	switch w.step {
	case StepCategory:
		err = w.store.SetOnboardingCategory(ctx, model.Category(id))
	case StepBlocker:
		err = w.store.SetOnboardingBlocker(ctx, id)
	case StepPace:
		if err = w.store.SetOnboardingPace(ctx, model.Pace(id)); err == nil {
			err = w.store.CompleteOnboarding(ctx)
		}
	}
	if err != nil {
		return err
	}
	w.step++
	return nil
}

// Back returns to the previous question.
func (w *Wizard) Back() {
	if w.step > StepCategory && w.step < StepDone {
		w.step--
	}
}
