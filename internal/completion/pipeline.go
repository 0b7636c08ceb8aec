// Package completion runs a completion attempt from paywall gate to commit.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/paywall"
	"github.com/sandeepkv93/leap/internal/store"
	"github.com/sandeepkv93/leap/internal/verify"
)

const (
	OfflineMessage       = "verified offline"
	DefaultRejectMessage = "hmm, that doesn't quite match. try again?"
	DefaultVerifyTimeout = 20 * time.Second
)

var (
	ErrPaywall  = errors.New("completion: free moves used up for today")
	ErrRejected = errors.New("completion: proof rejected")
)

// RejectedError carries the verifier's message back to the user. The move
// stays incomplete and may be resubmitted.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRejected, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// MoveStore is what the pipeline needs from the state store.
type MoveStore interface {
	IsPremium() bool
	TodayCompletedCount() int
	TodaysMoves() []model.DailyMove
	CompleteDailyMove(ctx context.Context, id string, c store.Completion) (store.Receipt, error)
}

type Result struct {
	Receipt              store.Receipt
	SoftPaywallScheduled bool
}

type Pipeline struct {
	store         MoveStore
	gate          *paywall.Gate
	verifier      verify.Verifier
	logger        *zap.Logger
	verifyTimeout time.Duration
}

func New(st MoveStore, gate *paywall.Gate, verifier verify.Verifier, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if verifier == nil {
		verifier = verify.Disabled{}
	}
	if gate == nil {
		gate = paywall.NewGate(paywall.Config{}, nil, logger)
	}
	return &Pipeline{
		store:         st,
		gate:          gate,
		verifier:      verifier,
		logger:        logger.Named("completion"),
		verifyTimeout: DefaultVerifyTimeout,
	}
}

// Precheck reports whether a completion attempt may start at all. The UI
// calls it before opening the proof form.
func (p *Pipeline) Precheck() error {
	if p.gate.Check(p.store.IsPremium(), p.store.TodayCompletedCount()) == paywall.HardBlock {
		return ErrPaywall
	}
	return nil
}

// CompleteMove validates proof for moveID, verifies boss proofs, and commits.
func (p *Pipeline) CompleteMove(ctx context.Context, moveID string, proof model.Proof) (Result, error) {
	if err := p.Precheck(); err != nil {
		return Result{}, err
	}

	move, ok := p.lookup(moveID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", store.ErrMoveNotFound, moveID)
	}
	if move.Completed {
		// The store reports the repeat as AlreadyCompleted without changes.
		receipt, err := p.store.CompleteDailyMove(ctx, move.ID, store.Completion{ProofType: model.ProofText})
		if err != nil {
			return Result{}, err
		}
		return Result{Receipt: receipt}, nil
	}
	if err := model.ValidateProof(move.Tier, proof); err != nil {
		return Result{}, err
	}

	var c store.Completion
	switch move.Tier {
	case model.TierQuick:
		c = store.Completion{ProofType: model.ProofText, ProofText: proof.Text}
	case model.TierPower:
		c = store.Completion{ProofType: model.ProofPhoto, ProofPhoto: proof.PhotoRef, ProofText: proof.Text}
	case model.TierBoss:
		verdict, err := p.verifyBoss(ctx, move, proof)
		if err != nil {
			return Result{}, err
		}
		c = verdict
	default:
		return Result{}, fmt.Errorf("%w: %q", model.ErrInvalidTier, move.Tier)
	}

	receipt, err := p.store.CompleteDailyMove(ctx, move.ID, c)
	if err != nil {
		return Result{}, err
	}
	res := Result{Receipt: receipt}
	if !receipt.AlreadyCompleted {
		res.SoftPaywallScheduled = p.gate.AfterCompletion(p.store.IsPremium(), receipt.CompletedToday)
	}
	return res, nil
}

func (p *Pipeline) verifyBoss(ctx context.Context, move model.DailyMove, proof model.Proof) (store.Completion, error) {
	vctx, cancel := context.WithTimeout(ctx, p.verifyTimeout)
	defer cancel()

	verdict, err := p.verifier.Verify(vctx, verify.Request{
		TaskTitle:       move.Title,
		TaskDescription: move.Description,
		ProofText:       proof.Text,
	})
	if err != nil {
		p.logger.Warn("Verifier unavailable, completing offline",
			zap.String("move_id", move.ID),
			zap.Error(err),
		)
		return store.Completion{
			ProofType:       model.ProofAIVerified,
			ProofText:       proof.Text,
			AIVerified:      true,
			AIMessage:       OfflineMessage,
			VerifiedOffline: true,
		}, nil
	}
	if !verdict.Verified {
		msg := verdict.Message
		if msg == "" {
			msg = DefaultRejectMessage
		}
		return store.Completion{}, &RejectedError{Message: msg}
	}
	return store.Completion{
		ProofType:  model.ProofAIVerified,
		ProofText:  proof.Text,
		AIVerified: true,
		AIMessage:  verdict.Message,
	}, nil
}

func (p *Pipeline) lookup(id string) (model.DailyMove, bool) {
	for _, m := range p.store.TodaysMoves() {
		if m.ID == id {
			return m, true
		}
	}
	return model.DailyMove{}, false
}
