package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies an outbound game event.
type Type string

const (
	// TypeStateUpdate carries the full session snapshot. Emitted after every
	// accepted mutation and on initial connect.
	TypeStateUpdate Type = "state-update"
	// TypeBoardUpdate carries the active board content plus the current round.
	// Emitted on connect and whenever the active board changes.
	TypeBoardUpdate Type = "board-update"
	// TypeBuzzWinner announces the player that won a buzzer race.
	TypeBuzzWinner Type = "buzz-winner"
	// TypeFeedback is a transient correct/wrong cue for client animations.
	TypeFeedback Type = "feedback"
	// TypeFinalCategory cues displays to reveal the Final Jeopardy category.
	TypeFinalCategory Type = "final-category"
)

// Envelope is the wire frame for every outbound event.
type Envelope struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New wraps a payload in an addressed envelope.
func New(t Type, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	return Envelope{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now(),
		Data:      data,
	}, nil
}
