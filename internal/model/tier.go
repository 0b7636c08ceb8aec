package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTier      = errors.New("model: invalid move tier")
	ErrInvalidCategory  = errors.New("model: invalid dream category")
	ErrInvalidPace      = errors.New("model: invalid pace")
	ErrInvalidProofType = errors.New("model: invalid proof type")
)

type Tier string

const (
	TierQuick Tier = "quick"
	TierPower Tier = "power"
	TierBoss  Tier = "boss"
)

// Tiers lists every tier in the order moves are generated and displayed.
var Tiers = []Tier{TierQuick, TierPower, TierBoss}

func (t Tier) IsValid() bool {
	switch t {
	case TierQuick, TierPower, TierBoss:
		return true
	default:
		return false
	}
}

func (t Tier) Points() int {
	switch t {
	case TierQuick:
		return 1
	case TierPower:
		return 3
	case TierBoss:
		return 10
	default:
		return 0
	}
}

func (t Tier) TimeEstimate() string {
	switch t {
	case TierQuick:
		return "2-5 min"
	case TierPower:
		return "15-30 min"
	case TierBoss:
		return "The scary one"
	default:
		return ""
	}
}

func ParseTier(raw string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, raw)
	}
	return t, nil
}

type Category string

const (
	CategoryTravel Category = "travel"
	CategoryWorth  Category = "worth"
	CategoryLaunch Category = "launch"
	CategoryGrowth Category = "growth"
)

var Categories = []Category{CategoryTravel, CategoryWorth, CategoryLaunch, CategoryGrowth}

func (c Category) IsValid() bool {
	switch c {
	case CategoryTravel, CategoryWorth, CategoryLaunch, CategoryGrowth:
		return true
	default:
		return false
	}
}

// Normalize maps unknown or empty categories to growth.
func (c Category) Normalize() Category {
	if c.IsValid() {
		return c
	}
	return CategoryGrowth
}

// RemoteName is the category key used by the backend catalog tables.
func (c Category) RemoteName() string {
	switch c.Normalize() {
	case CategoryTravel:
		return "solo_trip"
	case CategoryWorth:
		return "salary"
	case CategoryLaunch:
		return "side_hustle"
	default:
		return "self_growth"
	}
}

func CategoryFromRemote(name string) Category {
	switch name {
	case "solo_trip":
		return CategoryTravel
	case "salary":
		return CategoryWorth
	case "side_hustle":
		return CategoryLaunch
	default:
		return CategoryGrowth
	}
}

func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
	return c, nil
}

type Pace string

const (
	PaceDelusional Pace = "delusional"
	PaceSteady     Pace = "steady"
	PaceFlow       Pace = "flow"
)

func (p Pace) IsValid() bool {
	switch p {
	case PaceDelusional, PaceSteady, PaceFlow:
		return true
	default:
		return false
	}
}

func ParsePace(raw string) (Pace, error) {
	p := Pace(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPace, raw)
	}
	return p, nil
}

type ProofType string

const (
	ProofText       ProofType = "text"
	ProofPhoto      ProofType = "photo"
	ProofAIVerified ProofType = "ai_verified"
)

func (p ProofType) IsValid() bool {
	switch p {
	case ProofText, ProofPhoto, ProofAIVerified:
		return true
	default:
		return false
	}
}
