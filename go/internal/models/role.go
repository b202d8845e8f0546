package models

// Role is the view role an actor uses against a session.
type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)
