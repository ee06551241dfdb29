package widget

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType is the discriminator of a cross-frame message.
type MessageType string

const (
	MessageToggle MessageType = "toggle"
	MessageOpen   MessageType = "open"
	MessageClose  MessageType = "close"
)

var ErrUnknownMessage = errors.New("widget: unknown message")

// Message is what a frame posts to the host page.
type Message struct {
	Type MessageType `json:"type"`
}

func (t MessageType) Valid() bool {
	switch t {
	case MessageToggle, MessageOpen, MessageClose:
		return true
	}
	return false
}

// ParseMessage decodes a posted payload. Anything that is not a JSON object
// with a known type yields ErrUnknownMessage.
func ParseMessage(raw []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrUnknownMessage, err)
	}
	if !m.Type.Valid() {
		return Message{}, fmt.Errorf("%w: type %q", ErrUnknownMessage, m.Type)
	}
	return m, nil
}
