package model

import (
	"time"

	"inline-post-bot/internal/domain"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimPending ClaimStatus = "pending"
	ClaimClaimed ClaimStatus = "claimed"
	ClaimExpired ClaimStatus = "expired"
)

// DefaultClaimWindow is how long a self-registered channel stays claimable.
const DefaultClaimWindow = 24 * time.Hour

// Channel is a Telegram channel or supergroup the bot can post into.
// A channel self-registers from inside the chat with no owner bound; a user
// claims it later by naming it, which sets OwnerID (the owner's Telegram ID).
type Channel struct {
	ID             string
	ChatID         int64
	Title          string
	Username       string
	Description    string
	MemberCount    int
	IsActive       bool
	IsPublic       bool
	InviteLink     string
	LastChecked    *time.Time
	ClaimStatus    ClaimStatus
	ClaimExpiresAt *time.Time
	OwnerID        *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	IsDeleted      bool
}

// NewPendingChannel creates an unowned channel registration with the default
// claim window already running.
func NewPendingChannel(chatID int64, title, username, description string) (*Channel, error) {
	if chatID == 0 || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	expires := now.Add(DefaultClaimWindow)
	return &Channel{
		ID:             uuid.NewString(),
		ChatID:         chatID,
		Title:          title,
		Username:       username,
		Description:    description,
		IsActive:       true,
		IsPublic:       username != "",
		ClaimStatus:    ClaimPending,
		ClaimExpiresAt: &expires,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Claim binds the channel to an owner and closes the claim window.
func (c *Channel) Claim(ownerTgID int64) error {
	if c.ClaimStatus == ClaimClaimed {
		return domain.ErrChannelClaimed
	}
	c.OwnerID = &ownerTgID
	c.ClaimStatus = ClaimClaimed
	c.ClaimExpiresAt = nil
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ClaimableAt reports whether the claim window is still open at the given time.
func (c *Channel) ClaimableAt(now time.Time) bool {
	if c.ClaimStatus != ClaimPending {
		return false
	}
	return c.ClaimExpiresAt == nil || c.ClaimExpiresAt.After(now)
}

// DisplayName prefers the public handle over the raw title.
func (c *Channel) DisplayName() string {
	if c.Username != "" {
		return "@" + c.Username
	}
	return c.Title
}
