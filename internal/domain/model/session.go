package model

import (
	"time"

	"github.com/google/uuid"

	"inline-post-bot/internal/domain"
)

// DefaultSessionTTL bounds how long a conversational step stays valid.
const DefaultSessionTTL = 2 * time.Hour

// UserSession is a short-lived record tracking a user's progress through a
// multi-step flow. At most one active, unexpired session per (user, state)
// is meaningful; creating a new one deactivates its predecessors.
type UserSession struct {
	ID         string
	UserID     string
	TelegramID int64
	State      string
	Data       *string
	ExpiresAt  time.Time
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewUserSession(userID string, tgID int64, state string, data *string, ttl time.Duration) (*UserSession, error) {
	if userID == "" || tgID <= 0 || state == "" {
		return nil, domain.ErrInvalidArgument
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := time.Now().UTC()
	return &UserSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		TelegramID: tgID,
		State:      state,
		Data:       data,
		ExpiresAt:  now.Add(ttl),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ExpiredAt reports whether the session is logically dead at the given time,
// regardless of row presence.
func (s *UserSession) ExpiredAt(now time.Time) bool {
	return !s.IsActive || !s.ExpiresAt.After(now)
}
