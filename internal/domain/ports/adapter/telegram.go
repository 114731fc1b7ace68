// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// InlineButton is a provider-agnostic inline keyboard button. Exactly one of
// Data and URL should be set; when both are set, Data wins.
type InlineButton struct {
	Text string
	Data string
	URL  string
}

// ChatInfo is a minimal snapshot of a Telegram chat.
type ChatInfo struct {
	ID          int64
	Title       string
	Username    string
	Description string
	InviteLink  string
	MemberCount int
}

// WebhookStatus mirrors the fields of getWebhookInfo we care about.
type WebhookStatus struct {
	URL                  string
	HasCustomCertificate bool
	PendingUpdateCount   int
	LastErrorDate        int64
	LastErrorMessage     string
}

// TelegramBotAdapter is the outbound port to the Bot API.
type TelegramBotAdapter interface {
	// BotID returns the bot's own Telegram user ID. Used to drop updates the
	// bot itself originated.
	BotID() int64

	SendMessage(ctx context.Context, chatID int64, text string) (messageID int, err error)
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) (messageID int, err error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]InlineButton) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error

	// MemberStatus returns the raw status string ("creator", "administrator",
	// "member", ...) of userID in chatID.
	MemberStatus(ctx context.Context, chatID, userID int64) (string, error)
	ChatInfo(ctx context.Context, chatID int64) (ChatInfo, error)

	SetWebhook(ctx context.Context, url, secretToken string, allowedUpdates []string) error
	DeleteWebhook(ctx context.Context, dropPending bool) error
	WebhookInfo(ctx context.Context) (WebhookStatus, error)
}
