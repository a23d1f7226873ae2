package chat

import (
	"encoding/json"
	"fmt"
)

// Turn is a single user/bot exchange. Bot is nil while the completion
// for the turn is pending or has failed.
type Turn struct {
	User string
	Bot  *string
}

// Answered reports whether the turn carries a bot message.
func (t Turn) Answered() bool {
	return t.Bot != nil
}

// MarshalJSON encodes the turn as the two-element array
// [user_message, bot_message_or_null] used by the chat files on disk.
func (t Turn) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{t.User, t.Bot})
}

// UnmarshalJSON decodes the on-disk two-element array form of a turn.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("chat turn must have exactly 2 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &t.User); err != nil {
		return fmt.Errorf("chat turn user message: %w", err)
	}
	if err := json.Unmarshal(parts[1], &t.Bot); err != nil {
		return fmt.Errorf("chat turn bot message: %w", err)
	}
	return nil
}

// History is the ordered sequence of turns of one chat.
type History []Turn

// Chat is a named, ordered sequence of user/bot message pairs.
type Chat struct {
	ID      string  `json:"id"`
	History History `json:"history"`
}

// Setting is a named bundle of model-invocation parameters loaded from
// a JSON file. Data is opaque to the session core and is interpreted by
// the completion client. File records the origin path for provenance
// and is never serialized.
type Setting struct {
	ID   string         `json:"id"`
	File string         `json:"-"`
	Data map[string]any `json:"data"`
}

// Frontend is the persisted UI pointer state: which setting and which
// chat were last active. ChatID is nil when no chat was selected.
type Frontend struct {
	SettingID string  `json:"setting_id"`
	ChatID    *string `json:"chat_id"`
}
