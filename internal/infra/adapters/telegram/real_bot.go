package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"inline-post-bot/internal/config"
	"inline-post-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter implements the bot port on top of tgbotapi.
// Updates arrive over the webhook HTTP surface, not polling; this type only
// makes outbound Bot API calls.
type RealTelegramBotAdapter struct {
	bot *tgbotapi.BotAPI
	cfg *config.BotConfig
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return &RealTelegramBotAdapter{bot: bot, cfg: cfg}, nil
}

func (r *RealTelegramBotAdapter) BotID() int64 {
	return r.bot.Self.ID
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := r.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendButtons sends a message with inline buttons.
// - If btn.Data is set, the button sends callback data
// - Else if btn.URL is set, the button opens a link
// - Else a safe fallback uses btn.Text as callback data
func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if markup, ok := buildMarkup(rows); ok {
		msg.ReplyMarkup = markup
	}
	sent, err := r.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (r *RealTelegramBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if markup, ok := buildMarkup(rows); ok {
		edit.ReplyMarkup = &markup
	}
	_, err := r.bot.Send(edit)
	return err
}

func (r *RealTelegramBotAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := r.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (r *RealTelegramBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

func (r *RealTelegramBotAdapter) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

func (r *RealTelegramBotAdapter) ChatInfo(ctx context.Context, chatID int64) (adapter.ChatInfo, error) {
	chat, err := r.bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: chatID}})
	if err != nil {
		return adapter.ChatInfo{}, err
	}
	count, err := r.bot.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: chatID}})
	if err != nil {
		// count is cosmetic; the chat itself resolved
		count = 0
	}
	return adapter.ChatInfo{
		ID:          chat.ID,
		Title:       chat.Title,
		Username:    chat.UserName,
		Description: chat.Description,
		InviteLink:  chat.InviteLink,
		MemberCount: count,
	}, nil
}

// SetWebhook registers the webhook endpoint. The request is assembled by
// hand because secret_token postdates the library's WebhookConfig.
func (r *RealTelegramBotAdapter) SetWebhook(ctx context.Context, url, secretToken string, allowedUpdates []string) error {
	params := make(tgbotapi.Params)
	params["url"] = url
	params.AddNonEmpty("secret_token", secretToken)
	if err := params.AddInterface("allowed_updates", allowedUpdates); err != nil {
		return err
	}
	_, err := r.bot.MakeRequest("setWebhook", params)
	return err
}

func (r *RealTelegramBotAdapter) DeleteWebhook(ctx context.Context, dropPending bool) error {
	_, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending})
	return err
}

func (r *RealTelegramBotAdapter) WebhookInfo(ctx context.Context) (adapter.WebhookStatus, error) {
	info, err := r.bot.GetWebhookInfo()
	if err != nil {
		return adapter.WebhookStatus{}, err
	}
	return adapter.WebhookStatus{
		URL:                  info.URL,
		HasCustomCertificate: info.HasCustomCertificate,
		PendingUpdateCount:   info.PendingUpdateCount,
		LastErrorDate:        int64(info.LastErrorDate),
		LastErrorMessage:     info.LastErrorMessage,
	}, nil
}

func buildMarkup(rows [][]adapter.InlineButton) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			default:
				// safe fallback: use text as callback data
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			r = append(r, kb)
		}
		kbRows = append(kbRows, r)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}
