package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"inline-post-bot/internal/domain"
	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/infra/metrics"
)

// stateRoutes maps the active session state to the handler for the next
// plain-text message.
func (r *Router) stateRoutes() map[string]textHandler {
	return map[string]textHandler{
		stateCreatingPost:     r.onPostText,
		stateAwaitingButtons:  r.nudge("Use the buttons above, or /cancel to abandon the post."),
		stateAddingButtons:    r.onButtonLine,
		stateSelectingLayout:  r.nudge("Pick a layout with the buttons above, or /cancel."),
		stateSelectingChannel: r.nudge("Pick a channel with the buttons above, or /cancel."),
		stateClaimingChannel:  r.onClaimTitle,
	}
}

func (r *Router) nudge(text string) textHandler {
	return func(ctx context.Context, msg *tgbotapi.Message, _ *model.UserSession) error {
		return r.send(ctx, msg.Chat.ID, text)
	}
}

// onPostText stores the post body and moves on to button entry. On the
// edit path the draft already carries buttons; they survive the text swap.
func (r *Router) onPostText(ctx context.Context, msg *tgbotapi.Message, _ *model.UserSession) error {
	text := msg.Text
	if strings.TrimSpace(text) == "" {
		return r.send(ctx, msg.Chat.ID, "The post needs some text. Try again.")
	}
	if len([]rune(text)) > model.MaxPostTextLen {
		return r.send(ctx, msg.Chat.ID, fmt.Sprintf("That is too long (%d characters, max %d). Send a shorter text.", len([]rune(text)), model.MaxPostTextLen))
	}

	draft, _ := r.draftFor(ctx, msg.From.ID, stateCreatingPost)
	draft.Text = text
	if err := r.sessionUC.Transition(ctx, msg.From.ID, stateAwaitingButtons, draft); err != nil {
		return err
	}
	return r.sendButtons(ctx, msg.Chat.ID, "Got it. Add inline URL buttons?", buttonsPromptKeyboard())
}

// onButtonLine parses one "Label | https://example.com" line into a button.
func (r *Router) onButtonLine(ctx context.Context, msg *tgbotapi.Message, _ *model.UserSession) error {
	label, url, err := parseButtonLine(msg.Text)
	if err != nil {
		return r.send(ctx, msg.Chat.ID, err.Error())
	}

	draft, ok := r.draftFor(ctx, msg.From.ID, stateAddingButtons)
	if !ok {
		return r.expiredFlow(ctx, msg.Chat.ID, msg.From.ID)
	}
	draft.Buttons = append(draft.Buttons, model.InlineButton{Text: label, URL: url})
	if err := r.sessionUC.UpdateData(ctx, msg.From.ID, stateAddingButtons, draft); err != nil {
		return err
	}
	return r.sendButtons(ctx, msg.Chat.ID,
		fmt.Sprintf("Button %d added. Send another, or tap Done.", len(draft.Buttons)),
		addingButtonsKeyboard())
}

// onClaimTitle resolves the claim flow from the channel title the user sent.
func (r *Router) onClaimTitle(ctx context.Context, msg *tgbotapi.Message, _ *model.UserSession) error {
	title := strings.TrimSpace(msg.Text)
	ch, err := r.channelUC.ClaimByTitle(ctx, msg.From.ID, title)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return r.send(ctx, msg.Chat.ID,
				"No channel with that exact title is waiting to be claimed. Titles are case-sensitive, and claims expire 24 hours after /register.")
		case errors.Is(err, domain.ErrNotChannelOwner):
			return r.send(ctx, msg.Chat.ID, "You have to be an administrator of that channel to claim it.")
		case errors.Is(err, domain.ErrChannelClaimed):
			return r.send(ctx, msg.Chat.ID, "That channel was already claimed.")
		case errors.Is(err, domain.ErrInvalidArgument):
			return r.send(ctx, msg.Chat.ID, "Send me the channel title as plain text.")
		default:
			return err
		}
	}

	metrics.IncChannelClaimed()
	if err := r.sessionUC.Clear(ctx, msg.From.ID, stateClaimingChannel); err != nil {
		r.log.Warn().Err(err).Int64("tg_id", msg.From.ID).Msg("failed to close claim session")
	}
	return r.sendButtons(ctx, msg.Chat.ID,
		ch.DisplayName()+" is now yours. Use /newpost to publish to it.", mainMenuKeyboard())
}

// parseButtonLine splits and validates a "label | url" line.
func parseButtonLine(line string) (label, url string, err error) {
	parts := strings.SplitN(line, "|", 2)
	if len(parts) != 2 {
		return "", "", errors.New("Format: Label | https://example.com")
	}
	label = strings.TrimSpace(parts[0])
	url = strings.TrimSpace(parts[1])
	if label == "" {
		return "", "", errors.New("The button needs a label before the | character.")
	}
	if len([]rune(label)) > model.MaxButtonTextLen {
		return "", "", fmt.Errorf("Button labels are limited to %d characters.", model.MaxButtonTextLen)
	}
	if !ValidButtonURL(url) {
		return "", "", errors.New("The link must start with http://, https://, or t.me/.")
	}
	return label, normalizeButtonURL(url), nil
}
