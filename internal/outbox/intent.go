package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/leap/internal/model"
)

// Kind names a remote side effect waiting to be mirrored.
type Kind string

const (
	KindCreateUser    Kind = "create_user"
	KindUpdateStats   Kind = "update_stats"
	KindRecordMove    Kind = "record_move"
	KindUpsertProfile Kind = "upsert_profile"
	KindDeleteUser    Kind = "delete_user"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindCreateUser, KindUpdateStats, KindRecordMove, KindUpsertProfile, KindDeleteUser:
		return true
	default:
		return false
	}
}

// needsRemoteUser reports whether dispatch must wait for create_user.
func (k Kind) needsRemoteUser() bool {
	return k == KindUpdateStats || k == KindRecordMove || k == KindUpsertProfile
}

var (
	ErrUnknownKind      = errors.New("outbox: unknown intent kind")
	// ErrNoRemoteUser is retried until create_user has succeeded.
	ErrNoRemoteUser     = errors.New("outbox: remote user not created yet")
	ErrMalformedPayload = errors.New("outbox: malformed intent payload")
)

type CreateUserPayload struct {
	Category model.Category `json:"category"`
	Blocker  string         `json:"blocker"`
	Pace     model.Pace     `json:"pace"`
}

type UpdateStatsPayload struct {
	StreakCount int `json:"streakCount"`
	TotalMoves  int `json:"totalMoves"`
}

type RecordMovePayload struct {
	MoveID        string     `json:"moveId"`
	Tier          model.Tier `json:"moveType"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ProofText     string     `json:"proofText,omitempty"`
	ProofPhotoRef string     `json:"proofPhotoRef,omitempty"`
	AIVerified    bool       `json:"aiVerified"`
	AIMessage     string     `json:"aiMessage,omitempty"`
	Points        int        `json:"points"`
	CompletedAt   time.Time  `json:"completedAt"`
}

// ProfilePayload only carries the fields that changed.
type ProfilePayload struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	BucketListItem *string `json:"bucketListItem,omitempty"`
}

// DeleteUserPayload captures the remote id at enqueue time because the
// local profile is wiped right after.
type DeleteUserPayload struct {
	RemoteID string `json:"remoteId"`
}

type Intent struct {
	ID            string
	Kind          Kind
	Payload       []byte
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
}

// Dispatcher performs the remote writes. Implementations must be safe to
// call from the worker goroutine.
type Dispatcher interface {
	CreateUser(ctx context.Context, in CreateUserPayload) (string, error)
	UpdateUserStats(ctx context.Context, remoteID string, in UpdateStatsPayload) error
	RecordMove(ctx context.Context, remoteID string, in RecordMovePayload) error
	UpsertProfile(ctx context.Context, remoteID string, in ProfilePayload) error
	DeleteUser(ctx context.Context, remoteID string) error
}
