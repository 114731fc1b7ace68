package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"inline-post-bot/internal/domain"
	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/adapter"
	"inline-post-bot/internal/infra/metrics"
)

const channelPageSize = 5

// cbRoutes maps fixed callback data strings to handlers.
func (r *Router) cbRoutes() map[string]callbackHandler {
	return map[string]callbackHandler{
		"new_post": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			return r.startNewPost(ctx, chatID, tgID)
		},
		"my_channels": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			return r.sendChannelList(ctx, chatID, tgID, 0)
		},
		"claim_channel": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			return r.startClaim(ctx, chatID, tgID)
		},
		"help": func(ctx context.Context, chatID, _ int64, _ []string) error {
			return r.send(ctx, chatID, helpText)
		},
		"add_buttons": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			draft, ok := r.draftFor(ctx, tgID, stateAwaitingButtons)
			if !ok {
				return r.expiredFlow(ctx, chatID, tgID)
			}
			if err := r.sessionUC.Transition(ctx, tgID, stateAddingButtons, draft); err != nil {
				return err
			}
			return r.sendButtons(ctx, chatID,
				"Send buttons one per message as:\n\nLabel | https://example.com\n\nTap Done when finished.",
				addingButtonsKeyboard())
		},
		"skip_buttons": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			draft, ok := r.draftFor(ctx, tgID, stateAwaitingButtons)
			if !ok {
				return r.expiredFlow(ctx, chatID, tgID)
			}
			return r.promptChannelSelection(ctx, chatID, tgID, draft)
		},
		"finish_buttons": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			return r.finishButtons(ctx, chatID, tgID)
		},
		"layout_single": r.layoutHandler(model.LayoutSingleColumn),
		"layout_double": r.layoutHandler(model.LayoutTwoColumns),
		"layout_triple": r.layoutHandler(model.LayoutThreeColumns),
		"layout_onerow": r.layoutHandler(model.LayoutAllInOneRow),
		"layout_custom": r.layoutHandler(model.LayoutCustom),
		"confirm_post": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			return r.publishPost(ctx, chatID, tgID)
		},
		"edit_post": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			draft, ok := r.draftFor(ctx, tgID, "")
			if !ok {
				return r.expiredFlow(ctx, chatID, tgID)
			}
			if err := r.sessionUC.Transition(ctx, tgID, stateCreatingPost, draft); err != nil {
				return err
			}
			return r.send(ctx, chatID, "Send the new post text. Your buttons are kept.")
		},
		"cancel_post": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			_ = r.sessionUC.Clear(ctx, tgID, "")
			return r.sendButtons(ctx, chatID, "Post discarded.", mainMenuKeyboard())
		},
		"back_menu": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			_ = r.sessionUC.Clear(ctx, tgID, "")
			return r.sendButtons(ctx, chatID, "Choose an action:", mainMenuKeyboard())
		},
		"back_channels": func(ctx context.Context, chatID, tgID int64, _ []string) error {
			return r.sendChannelList(ctx, chatID, tgID, 0)
		},
	}
}

// cbPrefixRoutes maps decoded parameterized commands to handlers.
func (r *Router) cbPrefixRoutes() []struct {
	Command string
	Fn      callbackHandler
} {
	return []struct {
		Command string
		Fn      callbackHandler
	}{
		{
			Command: "select_channel",
			Fn: func(ctx context.Context, chatID, tgID int64, params []string) error {
				return r.chooseChannel(ctx, chatID, tgID, ParamUUID(params, 0))
			},
		},
		{
			Command: "remove_channel",
			Fn: func(ctx context.Context, chatID, tgID int64, params []string) error {
				channelID := ParamUUID(params, 0)
				if err := r.channelUC.Deactivate(ctx, tgID, channelID); err != nil {
					if errors.Is(err, domain.ErrNotChannelOwner) {
						return r.send(ctx, chatID, "That channel is not yours to remove.")
					}
					if errors.Is(err, domain.ErrNotFound) {
						return r.send(ctx, chatID, "That channel no longer exists.")
					}
					return err
				}
				return r.sendChannelList(ctx, chatID, tgID, 0)
			},
		},
		{
			Command: "channel_stats",
			Fn: func(ctx context.Context, chatID, tgID int64, params []string) error {
				return r.sendChannelStats(ctx, chatID, tgID, ParamUUID(params, 0))
			},
		},
		{
			Command: "confirm_yes",
			Fn: func(ctx context.Context, chatID, tgID int64, params []string) error {
				if len(params) > 0 && params[0] == "delete" {
					if err := r.userUC.SoftDelete(ctx, tgID); err != nil {
						r.log.Error().Err(err).Int64("tg_id", tgID).Msg("account deletion failed")
						return r.send(ctx, chatID, "Could not delete your account. Please try again.")
					}
					return r.send(ctx, chatID, "Your account is deleted. Send /start if you ever come back.")
				}
				return nil
			},
		},
		{
			Command: "confirm_no",
			Fn: func(ctx context.Context, chatID, _ int64, _ []string) error {
				return r.sendButtons(ctx, chatID, "Okay, nothing changed.", mainMenuKeyboard())
			},
		},
		{
			Command: "next_page",
			Fn: func(ctx context.Context, chatID, tgID int64, params []string) error {
				return r.sendChannelList(ctx, chatID, tgID, ParamInt(params, 0))
			},
		},
		{
			Command: "prev_page",
			Fn: func(ctx context.Context, chatID, tgID int64, params []string) error {
				return r.sendChannelList(ctx, chatID, tgID, ParamInt(params, 0))
			},
		},
		{
			Command: "goto_page",
			Fn: func(ctx context.Context, chatID, tgID int64, params []string) error {
				return r.sendChannelList(ctx, chatID, tgID, ParamInt(params, 0))
			},
		},
	}
}

func (r *Router) layoutHandler(layout model.ButtonLayout) callbackHandler {
	return func(ctx context.Context, chatID, tgID int64, _ []string) error {
		draft, ok := r.draftFor(ctx, tgID, stateSelectingLayout)
		if !ok {
			return r.expiredFlow(ctx, chatID, tgID)
		}
		draft.Layout = layout
		return r.promptChannelSelection(ctx, chatID, tgID, draft)
	}
}

// draftFor loads the post draft from the active session. Empty state means
// any state.
func (r *Router) draftFor(ctx context.Context, tgID int64, state string) (model.PostDraft, bool) {
	var draft model.PostDraft
	if state != "" {
		return draft, r.sessionUC.Data(ctx, tgID, state, &draft)
	}
	sess, err := r.sessionUC.Active(ctx, tgID)
	if err != nil {
		return draft, false
	}
	return draft, r.sessionUC.Data(ctx, tgID, sess.State, &draft)
}

// expiredFlow resets a conversation whose session vanished under a button.
func (r *Router) expiredFlow(ctx context.Context, chatID, tgID int64) error {
	_ = r.sessionUC.Clear(ctx, tgID, "")
	return r.sendButtons(ctx, chatID, "That flow expired. Start again:", mainMenuKeyboard())
}

// finishButtons ends the button entry step: with buttons the layout picker
// comes next, without them the layout is irrelevant.
func (r *Router) finishButtons(ctx context.Context, chatID, tgID int64) error {
	draft, ok := r.draftFor(ctx, tgID, stateAddingButtons)
	if !ok {
		return r.expiredFlow(ctx, chatID, tgID)
	}
	if len(draft.Buttons) == 0 {
		return r.promptChannelSelection(ctx, chatID, tgID, draft)
	}
	if err := r.sessionUC.Transition(ctx, tgID, stateSelectingLayout, draft); err != nil {
		return err
	}
	return r.sendButtons(ctx, chatID, "How should the buttons be arranged?", layoutMenuKeyboard())
}

// promptChannelSelection moves the flow to channel selection, or aborts it
// when the user owns no channels yet.
func (r *Router) promptChannelSelection(ctx context.Context, chatID, tgID int64, draft model.PostDraft) error {
	channels, err := r.channelUC.OwnedActive(ctx, tgID)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		_ = r.sessionUC.Clear(ctx, tgID, "")
		return r.send(ctx, chatID,
			"You need to add a channel first. Post /register inside your channel, then /claim it here.")
	}
	if err := r.sessionUC.Transition(ctx, tgID, stateSelectingChannel, draft); err != nil {
		return err
	}
	return r.sendButtons(ctx, chatID, "Choose a channel to publish to:", channelPickerKeyboard(channels, "select_channel"))
}

// chooseChannel pins the target channel into the draft and shows a preview.
func (r *Router) chooseChannel(ctx context.Context, chatID, tgID int64, channelID string) error {
	draft, ok := r.draftFor(ctx, tgID, stateSelectingChannel)
	if !ok {
		return r.expiredFlow(ctx, chatID, tgID)
	}
	ch, err := r.channelUC.ByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.send(ctx, chatID, "That channel no longer exists.")
		}
		return err
	}
	ok, err = r.channelUC.IsOwner(ctx, tgID, channelID)
	if err != nil {
		return err
	}
	if !ok {
		return r.send(ctx, chatID, "You can only publish to channels you own.")
	}

	draft.ChannelID = channelID
	if err := r.sessionUC.UpdateData(ctx, tgID, stateSelectingChannel, draft); err != nil {
		return err
	}

	// Preview: the post exactly as it will land, then the controls.
	if err := r.sendButtons(ctx, chatID, draft.Text, BuildKeyboard(draft.Buttons, draft.Layout)); err != nil {
		return err
	}
	return r.sendButtons(ctx, chatID, "Publish to "+ch.DisplayName()+"?", previewKeyboard())
}

// publishPost runs the final permission check and sends the post.
func (r *Router) publishPost(ctx context.Context, chatID, tgID int64) error {
	draft, ok := r.draftFor(ctx, tgID, stateSelectingChannel)
	if !ok || draft.ChannelID == "" {
		return r.expiredFlow(ctx, chatID, tgID)
	}

	allowed, err := r.channelUC.CanSendTo(ctx, tgID, draft.ChannelID)
	if err != nil {
		metrics.IncPostPublished("failed")
		return err
	}
	if !allowed {
		metrics.IncPostPublished("denied")
		_ = r.sessionUC.Clear(ctx, tgID, "")
		return r.send(ctx, chatID, "You no longer have posting rights in that channel.")
	}

	ch, err := r.channelUC.ByID(ctx, draft.ChannelID)
	if err != nil {
		metrics.IncPostPublished("failed")
		return err
	}

	if _, err := r.bot.SendButtons(ctx, ch.ChatID, draft.Text, BuildKeyboard(draft.Buttons, draft.Layout)); err != nil {
		metrics.IncPostPublished("failed")
		metrics.IncTelegramSendError()
		return r.send(ctx, chatID, "Publishing failed. Check that I am still an admin in "+ch.DisplayName()+".")
	}
	metrics.IncPostPublished("ok")
	_ = r.sessionUC.Clear(ctx, tgID, "")
	return r.sendButtons(ctx, chatID, "Published to "+ch.DisplayName()+" 🎉", mainMenuKeyboard())
}

// sendChannelList renders a page of the user's channels with per-channel
// actions and pager controls.
func (r *Router) sendChannelList(ctx context.Context, chatID, tgID int64, page int) error {
	channels, err := r.channelUC.OwnedActive(ctx, tgID)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return r.send(ctx, chatID,
			"You have no channels yet. Post /register inside your channel, then /claim it here.")
	}

	lastPage := (len(channels) - 1) / channelPageSize
	if page < 0 {
		page = 0
	}
	if page > lastPage {
		page = lastPage
	}
	start := page * channelPageSize
	end := start + channelPageSize
	if end > len(channels) {
		end = len(channels)
	}

	rows := make([][]adapter.InlineButton, 0, channelPageSize+2)
	for _, ch := range channels[start:end] {
		rows = append(rows, []adapter.InlineButton{
			{Text: ch.DisplayName(), Data: EncodeCallback("channel_stats", ch.ID)},
			{Text: "🗑", Data: EncodeCallback("remove_channel", ch.ID)},
		})
	}
	if lastPage > 0 {
		nav := make([]adapter.InlineButton, 0, 2)
		if page > 0 {
			nav = append(nav, adapter.InlineButton{Text: "⬅️", Data: EncodeCallback("prev_page", strconv.Itoa(page-1))})
		}
		if page < lastPage {
			nav = append(nav, adapter.InlineButton{Text: "➡️", Data: EncodeCallback("next_page", strconv.Itoa(page+1))})
		}
		rows = append(rows, nav)
	}
	rows = append(rows, []adapter.InlineButton{{Text: "◀️ Menu", Data: "back_menu"}})

	title := fmt.Sprintf("Your channels (%d):", len(channels))
	if lastPage > 0 {
		title = fmt.Sprintf("Your channels (%d, page %d/%d):", len(channels), page+1, lastPage+1)
	}
	return r.sendButtons(ctx, chatID, title, rows)
}

func (r *Router) sendChannelStats(ctx context.Context, chatID, tgID int64, channelID string) error {
	owner, err := r.channelUC.IsOwner(ctx, tgID, channelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.send(ctx, chatID, "That channel no longer exists.")
		}
		return err
	}
	if !owner {
		return r.send(ctx, chatID, "That channel is not yours.")
	}

	ch, err := r.channelUC.RefreshInfo(ctx, channelID)
	if err != nil {
		// stale data beats no answer
		ch, err = r.channelUC.ByID(ctx, channelID)
		if err != nil {
			return err
		}
	}

	text := fmt.Sprintf("%s\nMembers: %d", ch.DisplayName(), ch.MemberCount)
	if ch.Description != "" {
		text += "\n\n" + ch.Description
	}
	rows := [][]adapter.InlineButton{
		{{Text: "🗑 Remove", Data: EncodeCallback("remove_channel", ch.ID)}},
		{{Text: "◀️ Back", Data: "back_channels"}},
	}
	return r.sendButtons(ctx, chatID, text, rows)
}
