package models

// AgendaItem is one timed entry of a session agenda. Duration is in seconds.
type AgendaItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
}
