package models

// PollType defines how participants answer a poll.
type PollType string

const (
	PollTypeMultipleChoice PollType = "MULTIPLE_CHOICE"
	PollTypeOpenText       PollType = "OPEN_TEXT"
)

// Valid reports whether t is a known poll type.
func (t PollType) Valid() bool {
	return t == PollTypeMultipleChoice || t == PollTypeOpenText
}

// PollView is the host-controlled view state of the polling component.
type PollView string

const (
	PollViewCreate  PollView = "create"
	PollViewVote    PollView = "vote"
	PollViewResults PollView = "results"
)

// PollOption is a multiple-choice option and its vote counter.
type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Poll is the single active question of a session.
type Poll struct {
	Question        string       `json:"question"`
	Type            PollType     `json:"type"`
	Options         []PollOption `json:"options"`
	OpenTextAnswers []string     `json:"open_text_answers"`
}
