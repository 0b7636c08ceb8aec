package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinQuickProofLength = 10
	MinBossSentences    = 3
	minSentenceLength   = 6
)

var (
	ErrProofTooShort      = errors.New("model: proof text too short")
	ErrProofMissingPhoto  = errors.New("model: proof photo is required")
	ErrNotEnoughSentences = errors.New("model: proof needs more sentences")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Proof is what the user submits to complete a move. PhotoRef is an image
// reference such as a file path or data URI.
type Proof struct {
	Text     string
	PhotoRef string
}

// ValidateProof applies the tier rule. It never touches the network.
func ValidateProof(tier Tier, p Proof) error {
	switch tier {
	case TierQuick:
		if n := utf8.RuneCountInString(p.Text); n < MinQuickProofLength {
			return fmt.Errorf("%w: %d of %d characters", ErrProofTooShort, n, MinQuickProofLength)
		}
	case TierPower:
		if strings.TrimSpace(p.PhotoRef) == "" {
			return ErrProofMissingPhoto
		}
	case TierBoss:
		if n := CountSentences(p.Text); n < MinBossSentences {
			return fmt.Errorf("%w: %d of %d", ErrNotEnoughSentences, n, MinBossSentences)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	return nil
}

// CountSentences counts runs of at least six non-terminator characters,
// ignoring surrounding whitespace, that end in '.', '!' or '?'. A trailing
// run without a terminator does not count.
func CountSentences(text string) int {
	count := 0
	start := 0
	for i, r := range text {
		if !isTerminator(r) {
			continue
		}
		seg := strings.TrimSpace(text[start:i])
		if utf8.RuneCountInString(seg) >= minSentenceLength {
			count++
		}
		start = i + utf8.RuneLen(r)
	}
	return count
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func IsValidEmail(v string) bool {
	return emailPattern.MatchString(strings.TrimSpace(v))
}
