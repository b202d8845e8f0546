package session

import (
	"encoding/json"

	"github.com/mcdev12/livesession/go/internal/models"
)

// Actor identifies who issues a command. Host privileges require the
// session's host key; there is no other identity.
type Actor struct {
	Role    models.Role `json:"role"`
	HostKey string      `json:"host_key,omitempty"`
}

// Participant returns an anonymous participant actor.
func Participant() Actor {
	return Actor{Role: models.RoleParticipant}
}

// Host returns a host actor presenting hostKey.
func Host(hostKey string) Actor {
	return Actor{Role: models.RoleHost, HostKey: hostKey}
}

// Result is returned for every applied command.
type Result struct {
	RoomCode string `json:"room_code"`
	Version  uint64 `json:"version"`
	Data     any    `json:"data,omitempty"`
}

// CreateSessionResult is returned to the host that created a room.
type CreateSessionResult struct {
	RoomCode string `json:"room_code"`
	HostKey  string `json:"host_key"`
	Session  *View  `json:"session"`
}

// CommandEnvelope is the wire form of a command: its name and JSON payload.
type CommandEnvelope struct {
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
