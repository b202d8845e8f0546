package quiz

import (
	"strings"
	"testing"

	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuestions() []models.QuizQuestion {
	return []models.QuizQuestion{
		{ID: "q1", Question: "One?", Options: [4]string{"a", "b", "c", "d"}, CorrectAnswerIndex: 1, TimeLimit: 20},
		{ID: "q2", Question: "Two?", Options: [4]string{"a", "b", "c", "d"}, CorrectAnswerIndex: 3, TimeLimit: 10},
	}
}

func startedGame(t *testing.T, names ...string) (*Game, []models.Player) {
	t.Helper()
	g := NewGame(testQuestions())
	var players []models.Player
	for _, n := range names {
		p, err := g.Join(n)
		require.NoError(t, err)
		players = append(players, p)
	}
	require.NoError(t, g.Start())
	return g, players
}

func TestGame_StartRequiresPlayer(t *testing.T) {
	g := NewGame(testQuestions())
	assert.ErrorIs(t, g.Start(), models.ErrInvalidTransition)
	assert.Equal(t, models.GameStateLobby, g.State)
}

func TestGame_JoinValidation(t *testing.T) {
	g := NewGame(testQuestions())
	_, err := g.Join("  ")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = g.Join("Ann")
	require.NoError(t, err)
	_, err = g.Join("ann")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Len(t, g.Players, 1)
}

func TestGame_CorrectAnswerWithTenSecondsLeft(t *testing.T) {
	g, players := startedGame(t, "Ann")
	for i := 0; i < 10; i++ {
		g.Tick()
	}
	require.Equal(t, 10, g.Timer.Remaining)

	rec, err := g.Answer(players[0].ID, 1)
	require.NoError(t, err)
	assert.True(t, rec.Correct)
	assert.Equal(t, 1100, rec.Points)
	assert.Equal(t, 1100, g.Players[0].Score)
	require.NotNil(t, g.LastAnswerCorrect)
	assert.True(t, *g.LastAnswerCorrect)
}

func TestGame_IncorrectAnswerScoresZero(t *testing.T) {
	g, players := startedGame(t, "Ann")
	rec, err := g.Answer(players[0].ID, 0)
	require.NoError(t, err)
	assert.False(t, rec.Correct)
	assert.Equal(t, 0, rec.Points)
	assert.Equal(t, 0, g.Players[0].Score)
	require.NotNil(t, g.LastAnswerCorrect)
	assert.False(t, *g.LastAnswerCorrect)
}

func TestGame_SecondAnswerRejected(t *testing.T) {
	g, players := startedGame(t, "Ann")
	_, err := g.Answer(players[0].ID, 1)
	require.NoError(t, err)

	_, err = g.Answer(players[0].ID, 1)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, Score(20), g.Players[0].Score)
	assert.Equal(t, 1, g.AnsweredCount())
}

func TestGame_AnswerErrors(t *testing.T) {
	g, players := startedGame(t, "Ann")

	_, err := g.Answer("ghost", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = g.Answer(players[0].ID, 4)
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, g.ShowResult())
	_, err = g.Answer(players[0].ID, 1)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestGame_TimerFinishShowsResult(t *testing.T) {
	g, _ := startedGame(t, "Ann")
	var finished bool
	for i := 0; i < 20; i++ {
		_, finished = g.Tick()
	}
	assert.True(t, finished)
	assert.Equal(t, models.GameStateResult, g.State)

	ticked, _ := g.Tick()
	assert.False(t, ticked)
}

func TestGame_FullFlow(t *testing.T) {
	g, players := startedGame(t, "Ann", "Bob")
	ann, bob := players[0].ID, players[1].ID

	_, err := g.Answer(ann, 1)
	require.NoError(t, err)
	require.NoError(t, g.ShowResult())
	assert.ErrorIs(t, g.ShowResult(), models.ErrInvalidTransition)

	require.NoError(t, g.Next())
	assert.Equal(t, models.GameStateQuestion, g.State)
	assert.Equal(t, 1, g.CurrentQuestionIndex)
	assert.Equal(t, 10, g.Timer.Remaining)
	assert.True(t, g.Timer.Active)
	assert.Nil(t, g.LastAnswerCorrect)
	assert.Equal(t, 0, g.AnsweredCount())

	// A new question accepts a fresh answer from the same player.
	_, err = g.Answer(ann, 0)
	require.NoError(t, err)
	_, err = g.Answer(bob, 3)
	require.NoError(t, err)
	require.NoError(t, g.ShowResult())

	require.NoError(t, g.Next())
	assert.Equal(t, models.GameStateLeaderboard, g.State)
	assert.ErrorIs(t, g.Next(), models.ErrInvalidTransition)

	board := g.Leaderboard()
	assert.Equal(t, "Ann", board[0].Name)
	assert.Equal(t, Score(20), board[0].Score)
	assert.Equal(t, Score(10), board[1].Score)

	require.NoError(t, g.PlayAgain())
	assert.Equal(t, models.GameStateLobby, g.State)
	assert.Equal(t, 0, g.CurrentQuestionIndex)
	assert.Len(t, g.Players, 2)
	for _, p := range g.Players {
		assert.Equal(t, 0, p.Score)
	}
	_, ok := g.AnswerFor(ann)
	assert.False(t, ok)
}

func TestRank(t *testing.T) {
	ranked := Rank([]models.Player{{Name: "A", Score: 50}, {Name: "B", Score: 90}})
	assert.Equal(t, "B", ranked[0].Name)
	assert.Equal(t, "A", ranked[1].Name)
}

func TestDefaultCatalog(t *testing.T) {
	questions, err := DefaultCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, questions)
	for _, q := range questions {
		assert.Positive(t, q.TimeLimit)
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader(`questions:
  - id: x
    question: Broken?
    options: [a, b, c, d]
    correct_answer_index: 7
    time_limit: 10
`))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = LoadCatalog(strings.NewReader("questions: []\n"))
	assert.ErrorIs(t, err, models.ErrValidation)
}
