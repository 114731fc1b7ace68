package model

import (
	"time"

	"inline-post-bot/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity representing a Telegram user in our system.
// The Telegram numeric ID is the externally stable key; sessions and
// channel ownership are joined on it rather than on the internal ID.
type User struct {
	ID           string
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	IsBot        bool
	IsPremium    bool
	LastActivity time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	IsDeleted    bool
}

func NewUser(id string, tgID int64, username, firstName, lastName string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &User{
		ID:           id,
		TelegramID:   tgID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// Touch refreshes the last-activity timestamp.
func (u *User) Touch() {
	now := time.Now().UTC()
	u.LastActivity = now
	u.UpdatedAt = now
}

// SyncProfile updates name/handle fields from a fresh Telegram profile and
// reports whether anything changed.
func (u *User) SyncProfile(username, firstName, lastName, languageCode string, premium bool) bool {
	changed := false
	if username != "" && u.Username != username {
		u.Username = username
		changed = true
	}
	if firstName != "" && u.FirstName != firstName {
		u.FirstName = firstName
		changed = true
	}
	if u.LastName != lastName {
		u.LastName = lastName
		changed = true
	}
	if languageCode != "" && u.LanguageCode != languageCode {
		u.LanguageCode = languageCode
		changed = true
	}
	if u.IsPremium != premium {
		u.IsPremium = premium
		changed = true
	}
	if changed {
		u.UpdatedAt = time.Now().UTC()
	}
	return changed
}
