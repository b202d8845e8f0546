package session

import (
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/poll"
	"github.com/mcdev12/livesession/go/internal/quiz"
)

// View is the read model of a session for one role. Derived data (sorted
// questions, word counts, leaderboard) is computed on every call.
type View struct {
	RoomCode string      `json:"room_code"`
	Locale   string      `json:"locale"`
	Version  uint64      `json:"version"`
	Role     models.Role `json:"role"`

	Agenda           []models.AgendaItem `json:"agenda"`
	CurrentItemIndex int                 `json:"current_item_index"`
	IsTimerActive    bool                `json:"is_timer_active"`
	TimeRemainingSec int                 `json:"time_remaining_sec"`
	AgendaComplete   bool                `json:"agenda_complete"`
	TotalDuration    int                 `json:"total_duration"`

	ActivePoll  *models.Poll        `json:"active_poll"`
	PollView    models.PollView     `json:"poll_view"`
	PollResults []poll.OptionResult `json:"poll_results,omitempty"`
	TotalVotes  int                 `json:"total_votes"`

	QnAQuestions  []models.Question `json:"qna_questions"`
	SortByUpvotes bool              `json:"sort_by_upvotes"`

	WordCloudWords []string                `json:"word_cloud_words,omitempty"`
	WordCloud      []models.WordCloudEntry `json:"word_cloud"`

	QuizState QuizView `json:"quiz_state"`
}

// QuizView is the read model of the quiz game.
type QuizView struct {
	GameState            models.GameState  `json:"game_state"`
	Players              []models.Player   `json:"players"`
	Leaderboard          []models.Player   `json:"leaderboard"`
	CurrentQuestionIndex int               `json:"current_question_index"`
	TotalQuestions       int               `json:"total_questions"`
	Question             *QuizQuestionView `json:"question,omitempty"`
	TimeRemainingSec     int               `json:"time_remaining_sec"`
	LastAnswerCorrect    *bool             `json:"last_answer_correct"`
	AnsweredCount        int               `json:"answered_count"`
}

// QuizQuestionView hides the correct answer from participants while the
// question is open.
type QuizQuestionView struct {
	ID                 string    `json:"id"`
	Question           string    `json:"question"`
	Options            [4]string `json:"options"`
	TimeLimit          int       `json:"time_limit"`
	CorrectAnswerIndex *int      `json:"correct_answer_index,omitempty"`
}

func (s *Session) view(role models.Role) *View {
	v := &View{
		RoomCode: s.RoomCode,
		Locale:   s.Locale,
		Version:  s.Version,
		Role:     role,

		Agenda:           append([]models.AgendaItem{}, s.Agenda.Items...),
		CurrentItemIndex: s.Agenda.CurrentIndex,
		IsTimerActive:    s.Agenda.IsTimerActive(),
		TimeRemainingSec: s.Agenda.Timer.Remaining,
		AgendaComplete:   s.Agenda.Complete,
		TotalDuration:    s.Agenda.TotalDuration(),

		ActivePoll: copyPoll(s.Poll.Active),
		TotalVotes: s.Poll.TotalVotes(),

		QnAQuestions:  s.QnA.Sorted(),
		SortByUpvotes: s.QnA.SortByUpvotes,

		WordCloud: s.WordCloud.Entries(),

		QuizState: quizView(s.Quiz, role),
	}

	if role == models.RoleHost {
		v.PollView = s.Poll.View
		v.PollResults = s.Poll.Results()
		v.WordCloudWords = append([]string{}, s.WordCloud.Words...)
	} else {
		v.PollView = s.Poll.ParticipantView()
		if v.PollView == models.PollViewResults {
			v.PollResults = s.Poll.Results()
		}
	}
	return v
}

func quizView(g *quiz.Game, role models.Role) QuizView {
	qv := QuizView{
		GameState:            g.State,
		Players:              append([]models.Player{}, g.Players...),
		Leaderboard:          g.Leaderboard(),
		CurrentQuestionIndex: g.CurrentQuestionIndex,
		TotalQuestions:       len(g.Questions()),
		TimeRemainingSec:     g.Timer.Remaining,
		AnsweredCount:        g.AnsweredCount(),
	}
	if g.LastAnswerCorrect != nil {
		correct := *g.LastAnswerCorrect
		qv.LastAnswerCorrect = &correct
	}

	if g.State == models.GameStateQuestion || g.State == models.GameStateResult {
		if q, ok := g.CurrentQuestion(); ok {
			qqv := &QuizQuestionView{
				ID:        q.ID,
				Question:  q.Question,
				Options:   q.Options,
				TimeLimit: q.TimeLimit,
			}
			if role == models.RoleHost || g.State == models.GameStateResult {
				idx := q.CorrectAnswerIndex
				qqv.CorrectAnswerIndex = &idx
			}
			qv.Question = qqv
		}
	}
	return qv
}

func copyPoll(p *models.Poll) *models.Poll {
	if p == nil {
		return nil
	}
	return &models.Poll{
		Question:        p.Question,
		Type:            p.Type,
		Options:         append([]models.PollOption{}, p.Options...),
		OpenTextAnswers: append([]string{}, p.OpenTextAnswers...),
	}
}
