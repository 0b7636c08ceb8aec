package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateKey formats t as a device-local calendar date.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

type DailyMove struct {
	ID           string     `json:"id"`
	Tier         Tier       `json:"type"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Points       int        `json:"points"`
	TimeEstimate string     `json:"timeEstimate"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Date         string     `json:"date"`
}

func (m DailyMove) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("model: move id is required")
	}
	if strings.TrimSpace(m.Title) == "" {
		return errors.New("model: move title is required")
	}
	if !m.Tier.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTier, m.Tier)
	}
	if m.Points != m.Tier.Points() {
		return fmt.Errorf("model: move points %d do not match tier %s", m.Points, m.Tier)
	}
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return fmt.Errorf("model: move date %q is not YYYY-MM-DD", m.Date)
	}
	if m.Completed && m.CompletedAt == nil {
		return errors.New("model: completed_at is required when move is completed")
	}
	if !m.Completed && m.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when move is not completed")
	}
	return nil
}

// MoveProof is appended once per completed move and never mutated.
type MoveProof struct {
	ID              string    `json:"id"`
	MoveID          string    `json:"moveId"`
	MoveTitle       string    `json:"moveTitle"`
	MoveTier        Tier      `json:"moveType"`
	ProofType       ProofType `json:"proofType"`
	ProofText       string    `json:"proofText,omitempty"`
	ProofPhoto      string    `json:"proofPhoto,omitempty"`
	AIVerified      bool      `json:"aiVerified"`
	AIMessage       string    `json:"aiMessage,omitempty"`
	VerifiedOffline bool      `json:"verifiedOffline"`
	CompletedAt     time.Time `json:"completedAt"`
	Date            string    `json:"date"`
}

// CatalogEntry is a task template, remote or built in.
type CatalogEntry struct {
	Tier        Tier
	Title       string
	Description string
	Level       int
	IsActive    bool
}
