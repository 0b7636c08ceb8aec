// Package verify asks a language model whether a boss-move proof matches
// the move it claims to complete.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable covers every way the verifier can fail to give a verdict.
// Callers treat it as "verify offline".
var ErrUnavailable = errors.New("verify: verifier unavailable")

const (
	DefaultApprovedMessage = "Great work!"
	DefaultRejectedMessage = "Try to be more specific."
)

const systemPrompt = `You are a Move verification assistant for Delusional Leap app. The user was given a specific task (Move) and described what they did. Verify if their description reasonably matches the task. Be encouraging but honest. If it seems like they made a genuine attempt related to the task, verify it. Only reject if the response is clearly unrelated, gibberish, or obviously fake. Respond with JSON only: {"verified": true/false, "message": "one encouraging sentence"}`

type Request struct {
	TaskTitle       string
	TaskDescription string
	ProofText       string
}

type Verdict struct {
	Verified bool
	Message  string
}

type Verifier interface {
	Verify(ctx context.Context, req Request) (Verdict, error)
}

// Disabled always reports unavailable, so boss moves verify offline.
type Disabled struct{}

func (Disabled) Verify(context.Context, Request) (Verdict, error) {
	return Verdict{}, fmt.Errorf("%w: disabled", ErrUnavailable)
}

func userPrompt(req Request) string {
	return fmt.Sprintf("Task: %s. Description: %s. User's proof: %s", req.TaskTitle, req.TaskDescription, req.ProofText)
}

// parseVerdict pulls the outermost {...} block out of model output, which
// may be wrapped in prose or code fences.
func parseVerdict(content string) (Verdict, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Verdict{}, fmt.Errorf("%w: no json object in response", ErrUnavailable)
	}

	var body struct {
		Verified any    `json:"verified"`
		Message  string `json:"message"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &body); err != nil {
		return Verdict{}, fmt.Errorf("%w: decode verdict: %v", ErrUnavailable, err)
	}

	verified, _ := body.Verified.(bool)
	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		if verified {
			msg = DefaultApprovedMessage
		} else {
			msg = DefaultRejectedMessage
		}
	}
	return Verdict{Verified: verified, Message: msg}, nil
}
