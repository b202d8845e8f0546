package models

// GameState is the state of the quiz game flow.
type GameState string

const (
	GameStateLobby       GameState = "lobby"
	GameStateQuestion    GameState = "question"
	GameStateResult      GameState = "result"
	GameStateLeaderboard GameState = "leaderboard"
)

// Player is a quiz participant.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// QuizQuestion is an entry of the static quiz catalog.
type QuizQuestion struct {
	ID                 string    `json:"id" yaml:"id"`
	Question           string    `json:"question" yaml:"question"`
	Options            [4]string `json:"options" yaml:"options"`
	CorrectAnswerIndex int       `json:"correct_answer_index" yaml:"correct_answer_index"`
	TimeLimit          int       `json:"time_limit" yaml:"time_limit"`
}
