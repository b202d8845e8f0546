package models

// Question is an audience question on the Q&A board.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Author   string `json:"author"`
	Upvotes  int    `json:"upvotes"`
	Answered bool   `json:"answered"`
}
