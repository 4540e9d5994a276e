package amqp

import (
	"encoding/json"
	"errors"
	"fmt"

	"moneytracker/internal/core"
)

// ErrInvalidMessage marks a delivery that can never be processed.
var ErrInvalidMessage = errors.New("invalid change message")

// ChangeMessage is the wire form of a core.ChangeEvent.
type ChangeMessage struct {
	core.ChangeEvent
}

// NewChangeMessage wraps event for publishing.
func NewChangeMessage(event core.ChangeEvent) *ChangeMessage {
	return &ChangeMessage{ChangeEvent: event}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m.ChangeEvent)
}

// ChangeMessageFromJSON decodes and checks a delivery body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg.ChangeEvent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	switch msg.Operation {
	case core.OpAdd, core.OpEdit, core.OpDelete, core.OpImport, core.OpSeed, core.OpReset:
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrInvalidMessage, msg.Operation)
	}
	if msg.Version == 0 {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidMessage)
	}
	return &msg, nil
}
