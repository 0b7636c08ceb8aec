// Package remote mirrors local progress to the backend Postgres database and
// reads the task catalog and sponsored challenges from it.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/outbox"
)

var (
	ErrNotConfigured = errors.New("remote: backend not configured")
	ErrEmptyUserID   = errors.New("remote: backend returned no user id")
)

// Client implements outbox.Dispatcher and generator.Catalog.
type Client struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

var _ outbox.Dispatcher = (*Client)(nil)

// Open connects with a postgres DSN.
func Open(dsn string, logger *zap.Logger) (*Client, error) {
	if dsn == "" {
		return nil, ErrNotConfigured
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	return NewClient(db, logger), nil
}

func NewClient(db *gorm.DB, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{db: db, logger: logger.Named("remote"), now: time.Now}
}

func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// FetchDailyTasks returns active catalog rows for category up to tier.
func (c *Client) FetchDailyTasks(ctx context.Context, category model.Category, tier int, limit int) ([]model.CatalogEntry, error) {
	var rows []dailyTaskRow
	q := c.db.WithContext(ctx).
		Where("category = ?", category.RemoteName()).
		Where("tier <= ?", tier).
		Where("is_active = ?", true)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch daily tasks: %w", err)
	}
	out := make([]model.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry())
	}
	return out, nil
}

// FetchSponsoredChallenges returns active challenges whose window covers
// today (YYYY-MM-DD).
func (c *Client) FetchSponsoredChallenges(ctx context.Context, today string) ([]model.SponsoredChallenge, error) {
	var rows []sponsoredChallengeRow
	err := c.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("start_date <= ?", today).
		Where("end_date >= ?", today).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch sponsored challenges: %w", err)
	}
	out := make([]model.SponsoredChallenge, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.challenge())
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, in outbox.CreateUserPayload) (string, error) {
	category := in.Category.RemoteName()
	row := userRow{
		DreamCategory: &category,
		Blocker:       optional(in.Blocker),
		Pace:          optional(string(in.Pace)),
	}
	if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	if row.ID == "" {
		return "", ErrEmptyUserID
	}
	c.logger.Info("Created backend user", zap.String("remote_id", row.ID))
	return row.ID, nil
}

func (c *Client) UpdateUserStats(ctx context.Context, remoteID string, in outbox.UpdateStatsPayload) error {
	err := c.db.WithContext(ctx).
		Model(&userRow{}).
		Where("id = ?", remoteID).
		Updates(map[string]any{
			"streak_count": in.StreakCount,
			"total_moves":  in.TotalMoves,
		}).Error
	if err != nil {
		return fmt.Errorf("update user stats: %w", err)
	}
	return nil
}

func (c *Client) RecordMove(ctx context.Context, remoteID string, in outbox.RecordMovePayload) error {
	completedAt := in.CompletedAt
	if completedAt.IsZero() {
		completedAt = c.now()
	}
	completedAt = completedAt.UTC()
	row := moveRow{
		UserID:        remoteID,
		MoveType:      string(in.Tier),
		Title:         in.Title,
		Description:   optional(in.Description),
		ProofText:     optional(in.ProofText),
		ProofPhotoURL: optional(in.ProofPhotoRef),
		AIVerified:    in.AIVerified,
		AIFeedback:    optional(in.AIMessage),
		Points:        in.Points,
		CompletedAt:   &completedAt,
	}
	if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record move: %w", err)
	}
	return nil
}

// UpsertProfile writes only the fields present in the payload. The row
// always exists because create_user precedes it.
func (c *Client) UpsertProfile(ctx context.Context, remoteID string, in outbox.ProfilePayload) error {
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.BucketListItem != nil {
		updates["bucket_list_item"] = *in.BucketListItem
	}
	if len(updates) == 0 {
		return nil
	}
	err := c.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", remoteID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// DeleteUser removes the user's moves, then the user.
func (c *Client) DeleteUser(ctx context.Context, remoteID string) error {
	db := c.db.WithContext(ctx)
	if err := db.Where("user_id = ?", remoteID).Delete(&moveRow{}).Error; err != nil {
		return fmt.Errorf("delete user moves: %w", err)
	}
	if err := db.Where("id = ?", remoteID).Delete(&userRow{}).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	c.logger.Info("Deleted backend user", zap.String("remote_id", remoteID))
	return nil
}
