package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/fan"
	"github.com/sandeepkv93/leap/internal/model"
)

var ErrTaskNotReady = errors.New("onboarding: task input is not valid")

// ProfileStore is the store surface the first-time tasks write to.
type ProfileStore interface {
	User() model.User
	SetUserName(ctx context.Context, name string) error
	SetUserEmail(ctx context.Context, email string) error
	SetUserBucketListItem(ctx context.Context, item string) error
	CompleteFirstTime(ctx context.Context) error
}

// MoveEnsurer generates daily moves once the flow is done.
type MoveEnsurer interface {
	EnsureTodaysMoves(ctx context.Context) (bool, error)
}

// Flow runs the name, email and bucket list cards on the shared fan.
type Flow struct {
	store  ProfileStore
	moves  MoveEnsurer
	logger *zap.Logger
	fan    *fan.Fan[fan.FirstTimeTask]
	done   map[fan.TaskKind]bool
}

// NewFlow resumes from whatever the profile already holds.
func NewFlow(st ProfileStore, moves MoveEnsurer, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Flow{
		store:  st,
		moves:  moves,
		logger: logger.Named("onboarding"),
		done:   make(map[fan.TaskKind]bool, len(fan.TaskKinds)),
	}
	u := st.User()
	if !u.FirstTimeComplete {
		f.done[fan.TaskName] = u.Name != ""
		f.done[fan.TaskEmail] = u.Email != ""
		f.done[fan.TaskBucketList] = u.BucketListItem != ""
	} else {
		for _, k := range fan.TaskKinds {
			f.done[k] = true
		}
	}
	f.fan = fan.New(f.pending())
	return f
}

func (f *Flow) Fan() *fan.Fan[fan.FirstTimeTask] { return f.fan }

func (f *Flow) Done() bool { return f.store.User().FirstTimeComplete }

// Progress reports completed and total first-time tasks.
func (f *Flow) Progress() (int, int) {
	n := 0
	for _, k := range fan.TaskKinds {
		if f.done[k] {
			n++
		}
	}
	return n, len(fan.TaskKinds)
}

// SetValue updates the typed input for kind.
func (f *Flow) SetValue(kind fan.TaskKind, value string) {
	f.fan.Replace(fan.FirstTimeTask{Kind: kind, Value: value})
}

// Value returns the current input for kind.
func (f *Flow) Value(kind fan.TaskKind) string {
	for _, t := range f.fan.Items() {
		if t.Kind == kind {
			return t.Value
		}
	}
	return ""
}

// Complete saves the input for kind. Finishing the last task marks the
// first-time flow complete and generates today's moves.
func (f *Flow) Complete(ctx context.Context, kind fan.TaskKind) error {
	task := fan.FirstTimeTask{Kind: kind, Value: f.Value(kind)}
	if v := task.Validation(); !v.Ready {
		return fmt.Errorf("%w: %s", ErrTaskNotReady, v.Reason)
	}
	value := strings.TrimSpace(task.Value)

	var err error
	switch kind {
	case fan.TaskName:
		err = f.store.SetUserName(ctx, value)
	case fan.TaskEmail:
		err = f.store.SetUserEmail(ctx, value)
	case fan.TaskBucketList:
		err = f.store.SetUserBucketListItem(ctx, value)
	default:
		return fmt.Errorf("onboarding: unknown task %q", kind)
	}
	if err != nil {
		return err
	}

	f.done[kind] = true
	f.fan.SetItems(f.pendingKeepingValues())
	if f.fan.Len() > 0 {
		return nil
	}
	return f.finish(ctx)
}

// Resume finishes a flow whose tasks were all saved before the first-time
// flag was written.
func (f *Flow) Resume(ctx context.Context) error {
	if f.Done() || f.fan.Len() > 0 {
		return nil
	}
	return f.finish(ctx)
}

func (f *Flow) finish(ctx context.Context) error {
	if err := f.store.CompleteFirstTime(ctx); err != nil {
		return err
	}
	f.logger.Info("First-time tasks complete")
	if f.moves != nil {
		if _, err := f.moves.EnsureTodaysMoves(ctx); err != nil {
			f.logger.Warn("Failed to generate daily moves", zap.Error(err))
		}
	}
	return nil
}

func (f *Flow) pending() []fan.FirstTimeTask {
	out := make([]fan.FirstTimeTask, 0, len(fan.TaskKinds))
	for _, k := range fan.TaskKinds {
		if !f.done[k] {
			out = append(out, fan.FirstTimeTask{Kind: k})
		}
	}
	return out
}

func (f *Flow) pendingKeepingValues() []fan.FirstTimeTask {
	values := make(map[fan.TaskKind]string)
	for _, t := range f.fan.Items() {
		values[t.Kind] = t.Value
	}
	out := f.pending()
	for i := range out {
		out[i].Value = values[out[i].Kind]
	}
	return out
}
