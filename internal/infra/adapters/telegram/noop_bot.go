package telegram

import (
	"context"
	"log"
	"time"

	"inline-post-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev testing.
// It logs messages instead of calling the real Bot API.
type NoopBotAdapter struct {
	nextMessageID int
}

// NewNoopBotAdapter constructs the noop adapter.
func NewNoopBotAdapter() *NoopBotAdapter {
	return &NoopBotAdapter{}
}

func (b *NoopBotAdapter) BotID() int64 { return 0 }

// SendMessage logs the message and simulates a small delay.
func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	b.nextMessageID++
	log.Printf("[noop-telegram] To chat %d: %s\n", chatID, text)
	return b.nextMessageID, nil
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) (int, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	b.nextMessageID++
	log.Printf("[noop-telegram] To chat %d: %s [buttons: %v]\n", chatID, text, rows)
	return b.nextMessageID, nil
}

func (b *NoopBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	log.Printf("[noop-telegram] Edit %d in chat %d: %s [buttons: %v]\n", messageID, chatID, text, rows)
	return nil
}

func (b *NoopBotAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	log.Printf("[noop-telegram] Delete %d in chat %d\n", messageID, chatID)
	return nil
}

func (b *NoopBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	log.Printf("[noop-telegram] AnswerCallback %s: %s\n", callbackID, text)
	return nil
}

func (b *NoopBotAdapter) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	return "administrator", nil
}

func (b *NoopBotAdapter) ChatInfo(ctx context.Context, chatID int64) (adapter.ChatInfo, error) {
	return adapter.ChatInfo{ID: chatID, Title: "noop channel"}, nil
}

func (b *NoopBotAdapter) SetWebhook(ctx context.Context, url, secretToken string, allowedUpdates []string) error {
	log.Printf("[noop-telegram] SetWebhook %s (updates: %v)\n", url, allowedUpdates)
	return nil
}

func (b *NoopBotAdapter) DeleteWebhook(ctx context.Context, dropPending bool) error {
	log.Printf("[noop-telegram] DeleteWebhook dropPending=%t\n", dropPending)
	return nil
}

func (b *NoopBotAdapter) WebhookInfo(ctx context.Context) (adapter.WebhookStatus, error) {
	return adapter.WebhookStatus{}, nil
}
