// Package quiz implements the quiz game: lobby, timed questions, results and
// the leaderboard.
package quiz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/timer"
)

const (
	// CorrectBasePoints is awarded for any correct answer.
	CorrectBasePoints = 1000
	// PointsPerSecond is awarded for every second left on the clock.
	PointsPerSecond = 10
)

// AnswerRecord is the outcome of one player's answer to one question.
type AnswerRecord struct {
	PlayerID      string `json:"player_id"`
	QuestionIndex int    `json:"question_index"`
	OptionIndex   int    `json:"option_index"`
	Correct       bool   `json:"correct"`
	Points        int    `json:"points"`
}

type answerKey struct {
	playerID      string
	questionIndex int
}

// Game is the quiz component of a session.
type Game struct {
	State                models.GameState
	Players              []models.Player
	CurrentQuestionIndex int
	LastAnswerCorrect    *bool
	Timer                timer.Timer

	questions []models.QuizQuestion
	answers   map[answerKey]AnswerRecord
}

// NewGame returns a game in the lobby over a fixed question set.
func NewGame(questions []models.QuizQuestion) *Game {
	return &Game{
		State:     models.GameStateLobby,
		Players:   []models.Player{},
		questions: questions,
		answers:   make(map[answerKey]AnswerRecord),
	}
}

// Questions returns the question set.
func (g *Game) Questions() []models.QuizQuestion {
	return g.questions
}

// CurrentQuestion returns the question at the current index.
func (g *Game) CurrentQuestion() (models.QuizQuestion, bool) {
	if g.CurrentQuestionIndex < 0 || g.CurrentQuestionIndex >= len(g.questions) {
		return models.QuizQuestion{}, false
	}
	return g.questions[g.CurrentQuestionIndex], true
}

// Join appends a player to the roster. Names are unique ignoring case.
func (g *Game) Join(name string) (models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, fmt.Errorf("%w: player name is required", models.ErrValidation)
	}
	for _, p := range g.Players {
		if strings.EqualFold(p.Name, name) {
			return models.Player{}, fmt.Errorf("%w: player name %q is taken", models.ErrValidation, name)
		}
	}

	p := models.Player{ID: uuid.New().String(), Name: name}
	g.Players = append(g.Players, p)
	return p, nil
}

// Start moves the game from the lobby to the first question.
func (g *Game) Start() error {
	if g.State != models.GameStateLobby {
		return fmt.Errorf("%w: cannot start quiz in state %s", models.ErrInvalidTransition, g.State)
	}
	if len(g.Players) == 0 {
		return fmt.Errorf("%w: quiz needs at least one player", models.ErrInvalidTransition)
	}
	if len(g.questions) == 0 {
		return fmt.Errorf("%w: quiz has no questions", models.ErrInvalidTransition)
	}
	g.beginQuestion(0)
	return nil
}

// Answer scores a player's choice for the current question. Each player can
// answer each question once.
func (g *Game) Answer(playerID string, optionIndex int) (AnswerRecord, error) {
	if g.State != models.GameStateQuestion {
		return AnswerRecord{}, fmt.Errorf("%w: answers are only accepted during a question", models.ErrInvalidTransition)
	}
	player := g.player(playerID)
	if player == nil {
		return AnswerRecord{}, fmt.Errorf("%w: player %s", models.ErrNotFound, playerID)
	}
	q, _ := g.CurrentQuestion()
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return AnswerRecord{}, fmt.Errorf("%w: option index %d out of range", models.ErrValidation, optionIndex)
	}

	key := answerKey{playerID: playerID, questionIndex: g.CurrentQuestionIndex}
	if _, done := g.answers[key]; done {
		return AnswerRecord{}, fmt.Errorf("%w: player %s already answered this question", models.ErrInvalidTransition, playerID)
	}

	rec := AnswerRecord{
		PlayerID:      playerID,
		QuestionIndex: g.CurrentQuestionIndex,
		OptionIndex:   optionIndex,
		Correct:       optionIndex == q.CorrectAnswerIndex,
	}
	if rec.Correct {
		rec.Points = Score(g.Timer.Remaining)
	}

	player.Score += rec.Points
	g.answers[key] = rec
	correct := rec.Correct
	g.LastAnswerCorrect = &correct
	return rec, nil
}

// AnswerFor returns a player's answer to the current question.
func (g *Game) AnswerFor(playerID string) (AnswerRecord, bool) {
	rec, ok := g.answers[answerKey{playerID: playerID, questionIndex: g.CurrentQuestionIndex}]
	return rec, ok
}

// AnsweredCount returns how many players answered the current question.
func (g *Game) AnsweredCount() int {
	n := 0
	for key := range g.answers {
		if key.questionIndex == g.CurrentQuestionIndex {
			n++
		}
	}
	return n
}

// ShowResult ends the current question, whether its timer ran out or the
// host forced it.
func (g *Game) ShowResult() error {
	if g.State != models.GameStateQuestion {
		return fmt.Errorf("%w: no question to close in state %s", models.ErrInvalidTransition, g.State)
	}
	g.Timer.Pause()
	g.State = models.GameStateResult
	return nil
}

// Tick advances the question timer. It reports whether the tick ran and
// whether it closed the question.
func (g *Game) Tick() (ticked, finished bool) {
	if g.State != models.GameStateQuestion || !g.Timer.Active {
		return false, false
	}
	if !g.Timer.Tick() {
		return true, false
	}
	g.State = models.GameStateResult
	return true, true
}

// Next moves from a result to the next question, or to the leaderboard after
// the last one.
func (g *Game) Next() error {
	if g.State != models.GameStateResult {
		return fmt.Errorf("%w: cannot advance from state %s", models.ErrInvalidTransition, g.State)
	}
	if g.CurrentQuestionIndex+1 < len(g.questions) {
		g.beginQuestion(g.CurrentQuestionIndex + 1)
		return nil
	}
	g.Timer = timer.New(0)
	g.State = models.GameStateLeaderboard
	return nil
}

// PlayAgain returns to the lobby keeping the roster with scores reset.
func (g *Game) PlayAgain() error {
	if g.State != models.GameStateLeaderboard {
		return fmt.Errorf("%w: cannot restart from state %s", models.ErrInvalidTransition, g.State)
	}
	for i := range g.Players {
		g.Players[i].Score = 0
	}
	g.CurrentQuestionIndex = 0
	g.LastAnswerCorrect = nil
	g.answers = make(map[answerKey]AnswerRecord)
	g.Timer = timer.New(0)
	g.State = models.GameStateLobby
	return nil
}

// Leaderboard returns the roster ordered by score descending.
func (g *Game) Leaderboard() []models.Player {
	return Rank(g.Players)
}

// Rank returns a copy of players ordered by score descending.
func Rank(players []models.Player) []models.Player {
	ranked := make([]models.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Score returns the points for a correct answer with secondsRemaining left.
func Score(secondsRemaining int) int {
	if secondsRemaining < 0 {
		secondsRemaining = 0
	}
	return CorrectBasePoints + secondsRemaining*PointsPerSecond
}

func (g *Game) beginQuestion(index int) {
	g.CurrentQuestionIndex = index
	g.LastAnswerCorrect = nil
	g.State = models.GameStateQuestion
	g.Timer.ResetTo(g.questions[index].TimeLimit)
	g.Timer.Start()
}

func (g *Game) player(id string) *models.Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}
