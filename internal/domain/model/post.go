package model

// ButtonLayout selects how inline buttons are arranged into rows.
type ButtonLayout string

const (
	LayoutSingleColumn ButtonLayout = "single"
	LayoutTwoColumns   ButtonLayout = "double"
	LayoutThreeColumns ButtonLayout = "triple"
	LayoutAllInOneRow  ButtonLayout = "onerow"
	LayoutCustom       ButtonLayout = "custom"
)

// InlineButton is one URL button of a post draft. Row/Column only matter for
// LayoutCustom.
type InlineButton struct {
	Text   string `json:"text"`
	URL    string `json:"url"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
}

// PostDraft is the session payload carried through the post creation flow.
// Each flow state stores exactly this shape; there is no per-state dynamic
// payload typing.
type PostDraft struct {
	Text      string         `json:"text"`
	Buttons   []InlineButton `json:"buttons"`
	Layout    ButtonLayout   `json:"layout"`
	ChannelID string         `json:"channel_id,omitempty"`
}

const (
	// MaxPostTextLen matches the Telegram message size limit.
	MaxPostTextLen = 4096
	// MaxButtonTextLen bounds a button label.
	MaxButtonTextLen = 64
)
