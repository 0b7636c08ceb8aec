package remote

import (
	"time"

	"github.com/sandeepkv93/leap/internal/model"
)

type userRow struct {
	ID             string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email          *string   `gorm:"column:email"`
	Name           *string   `gorm:"column:name"`
	BucketListItem *string   `gorm:"column:bucket_list_item"`
	DreamCategory  *string   `gorm:"column:dream_category"`
	Blocker        *string   `gorm:"column:blocker"`
	Pace           *string   `gorm:"column:pace"`
	StreakCount    int       `gorm:"column:streak_count;not null;default:0"`
	TotalMoves     int       `gorm:"column:total_moves;not null;default:0"`
	IsPremium      bool      `gorm:"column:is_premium;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (userRow) TableName() string { return "users" }

type moveRow struct {
	ID            string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        string     `gorm:"column:user_id;type:uuid;not null;index"`
	MoveType      string     `gorm:"column:move_type;not null"`
	Title         string     `gorm:"column:title;not null"`
	Description   *string    `gorm:"column:description"`
	ProofText     *string    `gorm:"column:proof_text"`
	ProofPhotoURL *string    `gorm:"column:proof_photo_url"`
	AIVerified    bool       `gorm:"column:ai_verified;not null;default:false"`
	AIFeedback    *string    `gorm:"column:ai_feedback"`
	Points        int        `gorm:"column:points;not null"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
}

func (moveRow) TableName() string { return "moves" }

type dailyTaskRow struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	Category    string  `gorm:"column:category"`
	MoveType    string  `gorm:"column:move_type"`
	Title       string  `gorm:"column:title"`
	Description *string `gorm:"column:description"`
	Tier        int     `gorm:"column:tier"`
	IsActive    bool    `gorm:"column:is_active"`
}

func (dailyTaskRow) TableName() string { return "daily_tasks" }

func (r dailyTaskRow) entry() model.CatalogEntry {
	return model.CatalogEntry{
		Tier:        model.Tier(r.MoveType),
		Title:       r.Title,
		Description: deref(r.Description),
		Level:       r.Tier,
		IsActive:    r.IsActive,
	}
}

type sponsoredChallengeRow struct {
	ID             string     `gorm:"type:uuid;primaryKey"`
	Title          string     `gorm:"column:title"`
	Description    *string    `gorm:"column:description"`
	SponsorName    *string    `gorm:"column:sponsor_name"`
	SponsorLogoURL *string    `gorm:"column:sponsor_logo_url"`
	Category       *string    `gorm:"column:category"`
	MoveType       string     `gorm:"column:move_type"`
	PointsBonus    int        `gorm:"column:points_bonus"`
	StartDate      *time.Time `gorm:"column:start_date"`
	EndDate        *time.Time `gorm:"column:end_date"`
	IsActive       bool       `gorm:"column:is_active"`
}

func (sponsoredChallengeRow) TableName() string { return "sponsored_challenges" }

func (r sponsoredChallengeRow) challenge() model.SponsoredChallenge {
	c := model.SponsoredChallenge{
		ID:             r.ID,
		Title:          r.Title,
		Description:    deref(r.Description),
		SponsorName:    deref(r.SponsorName),
		SponsorLogoURL: deref(r.SponsorLogoURL),
		Tier:           model.Tier(r.MoveType),
		PointsBonus:    r.PointsBonus,
		IsActive:       r.IsActive,
	}
	if r.Category != nil {
		c.Category = model.CategoryFromRemote(*r.Category)
	}
	if r.StartDate != nil {
		c.StartDate = r.StartDate.UTC()
	}
	if r.EndDate != nil {
		c.EndDate = r.EndDate.UTC()
	}
	return c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional maps empty strings to NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
