package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

// Event type names.
const (
	TypeGenerationStarted   = "GenerationStarted"
	TypeGenerationSucceeded = "GenerationSucceeded"
	TypeGenerationFailed    = "GenerationFailed"
	TypeUpdatesBroadcast    = "UpdatesBroadcast"
)

// GenerationSucceededData is the payload of a successful generation.
type GenerationSucceededData struct {
	DurationMS  int64  `json:"duration_ms"`
	Warnings    int    `json:"warnings"`
	Outputs     int    `json:"outputs"`
	Fingerprint uint64 `json:"fingerprint"`
}

// GenerationFailedData is the payload of a failed generation.
type GenerationFailedData struct {
	DurationMS int64    `json:"duration_ms"`
	Warnings   int      `json:"warnings"`
	Errors     []string `json:"errors"`
}

// UpdatesBroadcastData is the payload of a broadcast.
type UpdatesBroadcastData struct {
	MessageType string   `json:"message_type"`
	Keys        []string `json:"keys,omitempty"`
	Clients     int      `json:"clients"`
	Delivered   int      `json:"delivered"`
}

func newEvent(gen uint64, typ string, data any) (*BaseEvent, error) {
	var payload []byte
	if data != nil {
		var err error
		payload, err = json.Marshal(data)
		if err != nil {
			return nil, errors.StoreError("failed to marshal "+typ+" payload").
				WithCause(err).
				WithContext("generation", gen).
				Build()
		}
	}
	return &BaseEvent{
		EventGeneration: gen,
		EventType:       typ,
		EventTimestamp:  time.Now(),
		EventPayload:    payload,
	}, nil
}

// NewGenerationStarted creates a GenerationStarted event.
func NewGenerationStarted(gen uint64) (*BaseEvent, error) {
	return newEvent(gen, TypeGenerationStarted, nil)
}

// NewGenerationSucceeded creates a GenerationSucceeded event.
func NewGenerationSucceeded(gen uint64, data GenerationSucceededData) (*BaseEvent, error) {
	return newEvent(gen, TypeGenerationSucceeded, data)
}

// NewGenerationFailed creates a GenerationFailed event.
func NewGenerationFailed(gen uint64, data GenerationFailedData) (*BaseEvent, error) {
	return newEvent(gen, TypeGenerationFailed, data)
}

// NewUpdatesBroadcast creates an UpdatesBroadcast event.
func NewUpdatesBroadcast(gen uint64, data UpdatesBroadcastData) (*BaseEvent, error) {
	return newEvent(gen, TypeUpdatesBroadcast, data)
}
