package repository

import (
	"context"
	"time"

	"inline-post-bot/internal/domain/model"
)

// -----------------------------
// User Sessions
// -----------------------------

type SessionRepository interface {
	Insert(ctx context.Context, tx Tx, s *model.UserSession) error
	Update(ctx context.Context, tx Tx, s *model.UserSession) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.UserSession, error)
	// FindActive returns the most recent active session for the user.
	// An empty state matches any state. Expiry is not filtered here; the
	// use case decides what to do with a stale row.
	FindActive(ctx context.Context, tx Tx, tgID int64, state string) (*model.UserSession, error)
	// Deactivate marks the user's active sessions inactive. An empty state
	// deactivates all of them.
	Deactivate(ctx context.Context, tx Tx, tgID int64, state string) error
	// DeactivateExpired sweeps sessions whose expiry passed before `now`
	// and reports how many rows changed.
	DeactivateExpired(ctx context.Context, tx Tx, now time.Time) (int64, error)
}
