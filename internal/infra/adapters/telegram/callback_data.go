package telegram

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Callback data codec. Telegram limits callback_data to 64 bytes, so
// commands and parameters are packed into one underscore-delimited string:
//
//	"select_channel_42_0df6..." -> command "select_channel", params ["42", "0df6..."]
//
// Commands themselves may contain an underscore, so decoding checks the
// two-segment command table before falling back to the first segment.

const cbDelimiter = "_"

// twoSegmentCommands are the known commands spelled with one underscore.
// Checked first during decode; everything else splits on the first segment.
var twoSegmentCommands = map[string]struct{}{
	"select_channel": {},
	"remove_channel": {},
	"channel_stats":  {},
	"view_post":      {},
	"edit_post":      {},
	"delete_post":    {},
	"confirm_yes":    {},
	"confirm_no":     {},
	"prev_page":      {},
	"next_page":      {},
	"goto_page":      {},
}

// EncodeCallback packs a command and parameters into callback data.
func EncodeCallback(command string, params ...string) string {
	if len(params) == 0 {
		return command
	}
	return command + cbDelimiter + strings.Join(params, cbDelimiter)
}

// DecodeCallback splits callback data back into command and parameters.
// Empty input yields an empty command and no params.
func DecodeCallback(data string) (command string, params []string) {
	if data == "" {
		return "", nil
	}
	segments := strings.Split(data, cbDelimiter)
	if len(segments) >= 2 {
		head2 := segments[0] + cbDelimiter + segments[1]
		if _, ok := twoSegmentCommands[head2]; ok {
			return head2, segments[2:]
		}
	}
	return segments[0], segments[1:]
}

// ParamInt reads params[i] as an int. Out-of-range or malformed values
// yield zero rather than an error; handlers treat zero as "absent".
func ParamInt(params []string, i int) int {
	if i < 0 || i >= len(params) {
		return 0
	}
	n, err := strconv.Atoi(params[i])
	if err != nil {
		return 0
	}
	return n
}

// ParamInt64 reads params[i] as an int64, zero on failure.
func ParamInt64(params []string, i int) int64 {
	if i < 0 || i >= len(params) {
		return 0
	}
	n, err := strconv.ParseInt(params[i], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParamUUID reads params[i] as a UUID string, the zero UUID on failure.
func ParamUUID(params []string, i int) string {
	if i < 0 || i >= len(params) {
		return uuid.Nil.String()
	}
	id, err := uuid.Parse(params[i])
	if err != nil {
		return uuid.Nil.String()
	}
	return id.String()
}
