package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Message is the envelope of every websocket frame
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// Pool of buffers to avoid allocation and ensure thread safety
var bufferPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	msg := &Message{Type: messageType, Timestamp: time.Now()}
	if data == nil {
		return msg, nil
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(data); err != nil {
		return nil, fmt.Errorf("encode %s: %w", messageType, err)
	}
	msg.Data = bytes.TrimRight(bytes.Clone(buf.Bytes()), "\n")
	return msg, nil
}

// MustMessage is NewMessage for payloads that cannot fail to encode.
func MustMessage(messageType MessageType, data any) *Message {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		panic(err)
	}
	return msg
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%s: missing data", m.Type)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%s: %w", m.Type, err)
	}
	return nil
}
