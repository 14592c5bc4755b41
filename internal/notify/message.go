package notify

import (
	"encoding/json"
	"fmt"
)

// Message types on the wire.
const (
	TypeHMR    = "hmr"
	TypeReload = "reload"
	TypeUpdate = "update"
)

// Update tells a client that the module or entry ID is now served at URL.
type Update struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	URL  string `json:"url"`
}

// Message is one broadcast payload. Updates is omitted for reload messages.
type Message struct {
	Type    string   `json:"type"`
	Updates []Update `json:"updates,omitempty"`
}

// NewUpdate builds an update entry.
func NewUpdate(id, url string) Update {
	return Update{Type: TypeUpdate, ID: id, URL: url}
}

// NewHMRMessage builds an hmr message. A nil slice encodes as an empty list.
func NewHMRMessage(updates []Update) Message {
	if updates == nil {
		updates = []Update{}
	}
	return Message{Type: TypeHMR, Updates: updates}
}

// ReloadMessage asks clients for a full page reload.
func ReloadMessage() Message { return Message{Type: TypeReload} }

// Encode renders the JSON wire form.
func (m Message) Encode() ([]byte, error) {
	if m.Type == TypeHMR {
		// keep "updates" present even when empty
		type wire struct {
			Type    string   `json:"type"`
			Updates []Update `json:"updates"`
		}
		updates := m.Updates
		if updates == nil {
			updates = []Update{}
		}
		data, err := json.Marshal(wire{Type: m.Type, Updates: updates})
		if err != nil {
			return nil, fmt.Errorf("encode hmr message: %w", err)
		}
		return data, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", m.Type, err)
	}
	return data, nil
}
