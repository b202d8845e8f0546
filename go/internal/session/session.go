package session

import (
	"time"

	"github.com/mcdev12/livesession/go/internal/agenda"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/poll"
	"github.com/mcdev12/livesession/go/internal/qna"
	"github.com/mcdev12/livesession/go/internal/quiz"
	"github.com/mcdev12/livesession/go/internal/wordcloud"
)

// Session is the full mutable state of one room. It is only touched through
// App while the owning room is locked.
type Session struct {
	RoomCode  string
	HostKey   string
	Locale    string
	CreatedAt time.Time
	Version   uint64

	Agenda    *agenda.Agenda
	Poll      *poll.Board
	QnA       *qna.Board
	WordCloud *wordcloud.Cloud
	Quiz      *quiz.Game

	// seq numbers every published event, ticks included.
	seq uint64
}

func newSession(roomCode, hostKey, locale string, questions []models.QuizQuestion, now time.Time) *Session {
	return &Session{
		RoomCode:  roomCode,
		HostKey:   hostKey,
		Locale:    locale,
		CreatedAt: now,
		Agenda:    agenda.New(),
		Poll:      poll.New(),
		QnA:       qna.New(),
		WordCloud: wordcloud.New(),
		Quiz:      quiz.NewGame(questions),
	}
}

// HasActiveTimer reports whether the agenda or quiz countdown is running.
func (s *Session) HasActiveTimer() bool {
	if s.Agenda.IsTimerActive() {
		return true
	}
	return s.Quiz.State == models.GameStateQuestion && s.Quiz.Timer.Active
}

// isHost reports whether the actor holds host privileges for this session.
func (s *Session) isHost(actor Actor) bool {
	return actor.Role == models.RoleHost && actor.HostKey != "" && actor.HostKey == s.HostKey
}
