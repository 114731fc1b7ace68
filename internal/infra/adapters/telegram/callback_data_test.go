//go:build !integration

package telegram

import (
	"testing"

	"github.com/google/uuid"
)

func TestCallbackCodec(t *testing.T) {
	t.Run("round-trips a command with params", func(t *testing.T) {
		data := EncodeCallback("goto_page", "3", "extra")
		cmd, params := DecodeCallback(data)
		if cmd != "goto_page" {
			t.Errorf("expected command goto_page, got %q", cmd)
		}
		if len(params) != 2 || params[0] != "3" || params[1] != "extra" {
			t.Errorf("unexpected params: %v", params)
		}
	})

	t.Run("recognizes two-segment commands before splitting", func(t *testing.T) {
		id := uuid.NewString()
		cmd, params := DecodeCallback(EncodeCallback("select_channel", id))
		if cmd != "select_channel" {
			t.Fatalf("expected select_channel, got %q", cmd)
		}
		if len(params) != 1 || params[0] != id {
			t.Errorf("expected the uuid param back, got %v", params)
		}
	})

	t.Run("splits unknown compounds on the first segment", func(t *testing.T) {
		cmd, params := DecodeCallback("layout_single")
		if cmd != "layout" {
			t.Errorf("expected command layout, got %q", cmd)
		}
		if len(params) != 1 || params[0] != "single" {
			t.Errorf("expected [single], got %v", params)
		}
	})

	t.Run("handles bare commands and empty input", func(t *testing.T) {
		cmd, params := DecodeCallback("help")
		if cmd != "help" || len(params) != 0 {
			t.Errorf("expected bare help, got %q %v", cmd, params)
		}
		cmd, params = DecodeCallback("")
		if cmd != "" || params != nil {
			t.Errorf("expected empty decode, got %q %v", cmd, params)
		}
	})
}

func TestCallbackParams(t *testing.T) {
	t.Run("malformed ints yield zero", func(t *testing.T) {
		if got := ParamInt([]string{"abc"}, 0); got != 0 {
			t.Errorf("expected 0 for malformed int, got %d", got)
		}
		if got := ParamInt([]string{"7"}, 5); got != 0 {
			t.Errorf("expected 0 for out-of-range index, got %d", got)
		}
		if got := ParamInt([]string{"7"}, 0); got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
		if got := ParamInt64([]string{"-1001234"}, 0); got != -1001234 {
			t.Errorf("expected -1001234, got %d", got)
		}
	})

	t.Run("malformed uuids yield the zero uuid", func(t *testing.T) {
		if got := ParamUUID([]string{"not-a-uuid"}, 0); got != uuid.Nil.String() {
			t.Errorf("expected zero uuid, got %s", got)
		}
		id := uuid.NewString()
		if got := ParamUUID([]string{id}, 0); got != id {
			t.Errorf("expected %s back, got %s", id, got)
		}
	})
}
