package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeChatMessage MessageType = "chat_message"
	TypeChatReply   MessageType = "chat_reply"
	TypeErrorEvent  MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ChatMessage is one user utterance sent over the websocket.
type ChatMessage struct {
	Type    MessageType `json:"type"`
	UserID  string      `json:"user_id"`
	Message string      `json:"message"`
}

// ChatReply carries the companion's reply and its emotion.
type ChatReply struct {
	Type      MessageType `json:"type"`
	UserID    string      `json:"user_id"`
	Response  string      `json:"response"`
	Emotion   string      `json:"emotion"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorEvent struct {
	Type   MessageType `json:"type"`
	Code   string      `json:"code"`
	Detail string      `json:"detail"`
}

// ParseClientMessage decodes an inbound websocket frame into its typed form.
func ParseClientMessage(data []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case TypeChatMessage:
		var msg ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode chat message: %w", err)
		}
		if strings.TrimSpace(msg.Message) == "" {
			return nil, errors.New("chat message must not be empty")
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}
}
