package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type User struct {
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	BucketListItem     string   `json:"bucketListItem"`
	Category           Category `json:"category,omitempty"`
	Blocker            string   `json:"blocker,omitempty"`
	Pace               Pace     `json:"pace,omitempty"`
	OnboardingComplete bool     `json:"onboardingComplete"`
	FirstTimeComplete  bool     `json:"firstTimeComplete"`
	RemoteID           string   `json:"remoteId,omitempty"`
}

type Dream struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    Category   `json:"category"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	MoveIDs     []string   `json:"moves"`
}

func (d Dream) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("model: dream id is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("model: dream title is required")
	}
	if !d.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, d.Category)
	}
	if d.CreatedAt.IsZero() {
		return errors.New("model: dream created_at is required")
	}
	return nil
}

type Streaks struct {
	Count    int        `json:"count"`
	LastDate *time.Time `json:"lastDate"`
	Freezes  int        `json:"freezes"`
}

const VisionBoardCells = 16

type VisionBoard struct {
	TotalCells  int `json:"totalCells"`
	FilledCells int `json:"filledCells"`
}

func NewVisionBoard() VisionBoard {
	return VisionBoard{TotalCells: VisionBoardCells}
}

// Fill adds one cell, capped at the total.
func (v VisionBoard) Fill() VisionBoard {
	if v.FilledCells < v.TotalCells {
		v.FilledCells++
	}
	return v
}

func (v VisionBoard) Percentage() int {
	if v.TotalCells <= 0 {
		return 0
	}
	return int(math.Round(float64(v.FilledCells) / float64(v.TotalCells) * 100))
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	default:
		return false
	}
}

type Settings struct {
	Notifications bool  `json:"notifications"`
	Haptics       bool  `json:"haptics"`
	Theme         Theme `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{Notifications: true, Haptics: true, Theme: ThemeSystem}
}

type SponsoredChallenge struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	SponsorName    string    `json:"sponsorName"`
	SponsorLogoURL string    `json:"sponsorLogoUrl,omitempty"`
	Category       Category  `json:"category"`
	Tier           Tier      `json:"moveType"`
	PointsBonus    int       `json:"pointsBonus"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	IsActive       bool      `json:"isActive"`
}

// ActiveOn reports whether the challenge window covers the given date.
func (c SponsoredChallenge) ActiveOn(date string) bool {
	if !c.IsActive {
		return false
	}
	start := c.StartDate.Format(DateLayout)
	end := c.EndDate.Format(DateLayout)
	return start <= date && date <= end
}
