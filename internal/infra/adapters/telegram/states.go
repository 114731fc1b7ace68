package telegram

// Conversation states. The active session's state decides how the next
// plain-text message is interpreted.
const (
	stateCreatingPost     = "creating_post"
	stateAwaitingButtons  = "awaiting_buttons"
	stateAddingButtons    = "adding_buttons"
	stateSelectingLayout  = "selecting_layout"
	stateSelectingChannel = "selecting_channel"
	stateClaimingChannel  = "claiming_channel"
)
