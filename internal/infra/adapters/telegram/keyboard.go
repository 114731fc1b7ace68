package telegram

import (
	"sort"
	"strings"

	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/adapter"
)

// ValidButtonURL reports whether a URL is acceptable for an inline URL
// button: http(s), or a bare t.me link.
func ValidButtonURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	return strings.HasPrefix(raw, "http://") ||
		strings.HasPrefix(raw, "https://") ||
		strings.HasPrefix(raw, "t.me/")
}

// normalizeButtonURL upgrades bare t.me links to https.
func normalizeButtonURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "t.me/") {
		return "https://" + raw
	}
	return raw
}

// toAdapterButton maps a stored post button to an outgoing one. A button
// whose URL no longer validates degrades to a callback button keyed on its
// lower-cased label instead of breaking the whole keyboard.
func toAdapterButton(b model.InlineButton) adapter.InlineButton {
	if ValidButtonURL(b.URL) {
		return adapter.InlineButton{Text: b.Text, URL: normalizeButtonURL(b.URL)}
	}
	return adapter.InlineButton{Text: b.Text, Data: strings.ToLower(b.Text)}
}

// BuildKeyboard arranges the draft's buttons into rows per the chosen
// layout. No buttons means no keyboard.
func BuildKeyboard(buttons []model.InlineButton, layout model.ButtonLayout) [][]adapter.InlineButton {
	if len(buttons) == 0 {
		return nil
	}

	switch layout {
	case model.LayoutAllInOneRow:
		row := make([]adapter.InlineButton, 0, len(buttons))
		for _, b := range buttons {
			row = append(row, toAdapterButton(b))
		}
		return [][]adapter.InlineButton{row}

	case model.LayoutCustom:
		return buildCustomKeyboard(buttons)

	case model.LayoutTwoColumns:
		return chunkButtons(buttons, 2)

	case model.LayoutThreeColumns:
		return chunkButtons(buttons, 3)

	default: // single column
		return chunkButtons(buttons, 1)
	}
}

func chunkButtons(buttons []model.InlineButton, perRow int) [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, (len(buttons)+perRow-1)/perRow)
	for i := 0; i < len(buttons); i += perRow {
		end := i + perRow
		if end > len(buttons) {
			end = len(buttons)
		}
		row := make([]adapter.InlineButton, 0, perRow)
		for _, b := range buttons[i:end] {
			row = append(row, toAdapterButton(b))
		}
		rows = append(rows, row)
	}
	return rows
}

// maxCustomRowWidth caps the combined label length of an auto-packed row.
const maxCustomRowWidth = 40

// buildCustomKeyboard honors per-button Row/Column coordinates: rows
// ascending, columns ascending within a row. Gaps in row numbers collapse.
// Buttons without coordinates are packed greedily by label width instead.
func buildCustomKeyboard(buttons []model.InlineButton) [][]adapter.InlineButton {
	positioned := false
	for _, b := range buttons {
		if b.Row != 0 || b.Column != 0 {
			positioned = true
			break
		}
	}
	if !positioned {
		return packButtonsByWidth(buttons)
	}

	byRow := make(map[int][]model.InlineButton)
	for _, b := range buttons {
		byRow[b.Row] = append(byRow[b.Row], b)
	}
	rowNums := make([]int, 0, len(byRow))
	for r := range byRow {
		rowNums = append(rowNums, r)
	}
	sort.Ints(rowNums)

	rows := make([][]adapter.InlineButton, 0, len(rowNums))
	for _, r := range rowNums {
		group := byRow[r]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Column < group[j].Column })
		row := make([]adapter.InlineButton, 0, len(group))
		for _, b := range group {
			row = append(row, toAdapterButton(b))
		}
		rows = append(rows, row)
	}
	return rows
}

// packButtonsByWidth opens a new row whenever the running label width
// would exceed the budget. A single oversized label still gets a row.
func packButtonsByWidth(buttons []model.InlineButton) [][]adapter.InlineButton {
	var rows [][]adapter.InlineButton
	var row []adapter.InlineButton
	width := 0
	for _, b := range buttons {
		w := len([]rune(b.Text))
		if width+w > maxCustomRowWidth && len(row) > 0 {
			rows = append(rows, row)
			row = nil
			width = 0
		}
		row = append(row, toAdapterButton(b))
		width += w
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// -----------------------------
// Static menus
// -----------------------------

func mainMenuKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "📝 New Post", Data: "new_post"}},
		{{Text: "📢 My Channels", Data: "my_channels"}},
		{{Text: "🔗 Claim a Channel", Data: "claim_channel"}},
		{{Text: "❓ Help", Data: "help"}},
	}
}

func layoutMenuKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{
			{Text: "1 column", Data: "layout_single"},
			{Text: "2 columns", Data: "layout_double"},
		},
		{
			{Text: "3 columns", Data: "layout_triple"},
			{Text: "One row", Data: "layout_onerow"},
		},
		{{Text: "✏️ Custom", Data: "layout_custom"}},
		{{Text: "◀️ Cancel", Data: "cancel_post"}},
	}
}

func buttonsPromptKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{
			{Text: "➕ Add buttons", Data: "add_buttons"},
			{Text: "⏭ Skip", Data: "skip_buttons"},
		},
		{{Text: "◀️ Cancel", Data: "cancel_post"}},
	}
}

func addingButtonsKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "✅ Done adding", Data: "finish_buttons"}},
		{{Text: "◀️ Cancel", Data: "cancel_post"}},
	}
}

func previewKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{
			{Text: "🚀 Publish", Data: "confirm_post"},
			{Text: "✏️ Edit text", Data: "edit_post"},
		},
		{{Text: "◀️ Cancel", Data: "cancel_post"}},
	}
}

func confirmKeyboard(subject string) [][]adapter.InlineButton {
	return [][]adapter.InlineButton{{
		{Text: "✅ Yes", Data: EncodeCallback("confirm_yes", subject)},
		{Text: "❌ No", Data: EncodeCallback("confirm_no", subject)},
	}}
}

// channelPickerKeyboard lists the user's channels, one per row, each
// carrying the channel UUID in its callback data.
func channelPickerKeyboard(channels []*model.Channel, action string) [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(channels)+1)
	for _, ch := range channels {
		rows = append(rows, []adapter.InlineButton{
			{Text: ch.DisplayName(), Data: EncodeCallback(action, ch.ID)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "◀️ Back", Data: "back_menu"}})
	return rows
}
