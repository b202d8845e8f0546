package session

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/session/events"
)

// Command is a mutation intent against one session. Commands are applied by
// App.Execute, which serializes them per room.
type Command interface {
	Name() string
	HostOnly() bool
	apply(m *mutation) error
}

// Command names used on the wire.
const (
	CmdAddAgendaItem    = "agenda.add_item"
	CmdRemoveAgendaItem = "agenda.remove_item"
	CmdStartTimer       = "agenda.start"
	CmdPauseTimer       = "agenda.pause"
	CmdResetTimer       = "agenda.reset"
	CmdNextAgendaItem   = "agenda.next"

	CmdStartPoll       = "poll.start"
	CmdSubmitVote      = "poll.vote"
	CmdShowPollResults = "poll.show_results"
	CmdShowPollVote    = "poll.show_vote"
	CmdClosePoll       = "poll.close"

	CmdSubmitQuestion  = "qna.submit"
	CmdUpvoteQuestion  = "qna.upvote"
	CmdToggleAnswered  = "qna.toggle_answered"
	CmdRemoveQuestion  = "qna.remove"
	CmdSetQuestionSort = "qna.sort"

	CmdSubmitWord     = "wordcloud.submit"
	CmdClearWordCloud = "wordcloud.clear"

	CmdJoinQuiz         = "quiz.join"
	CmdStartQuiz        = "quiz.start"
	CmdAnswerQuiz       = "quiz.answer"
	CmdShowQuizResult   = "quiz.show_result"
	CmdNextQuizQuestion = "quiz.next"
	CmdPlayQuizAgain    = "quiz.play_again"
)

var commandFactories = map[string]func() Command{
	CmdAddAgendaItem:    func() Command { return &AddAgendaItem{} },
	CmdRemoveAgendaItem: func() Command { return &RemoveAgendaItem{} },
	CmdStartTimer:       func() Command { return &StartTimer{} },
	CmdPauseTimer:       func() Command { return &PauseTimer{} },
	CmdResetTimer:       func() Command { return &ResetTimer{} },
	CmdNextAgendaItem:   func() Command { return &NextAgendaItem{} },
	CmdStartPoll:        func() Command { return &StartPoll{} },
	CmdSubmitVote:       func() Command { return &SubmitVote{} },
	CmdShowPollResults:  func() Command { return &ShowPollResults{} },
	CmdShowPollVote:     func() Command { return &ShowPollVote{} },
	CmdClosePoll:        func() Command { return &ClosePoll{} },
	CmdSubmitQuestion:   func() Command { return &SubmitQuestion{} },
	CmdUpvoteQuestion:   func() Command { return &UpvoteQuestion{} },
	CmdToggleAnswered:   func() Command { return &ToggleAnswered{} },
	CmdRemoveQuestion:   func() Command { return &RemoveQuestion{} },
	CmdSetQuestionSort:  func() Command { return &SetQuestionSort{} },
	CmdSubmitWord:       func() Command { return &SubmitWord{} },
	CmdClearWordCloud:   func() Command { return &ClearWordCloud{} },
	CmdJoinQuiz:         func() Command { return &JoinQuiz{} },
	CmdStartQuiz:        func() Command { return &StartQuiz{} },
	CmdAnswerQuiz:       func() Command { return &AnswerQuiz{} },
	CmdShowQuizResult:   func() Command { return &ShowQuizResult{} },
	CmdNextQuizQuestion: func() Command { return &NextQuizQuestion{} },
	CmdPlayQuizAgain:    func() Command { return &PlayQuizAgain{} },
}

// DecodeCommand builds a command from its wire name and JSON payload.
func DecodeCommand(name string, payload json.RawMessage) (Command, error) {
	factory, ok := commandFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown command %q", models.ErrValidation, name)
	}
	cmd := factory()
	if len(bytes.TrimSpace(payload)) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return cmd, nil
	}
	if err := json.Unmarshal(payload, cmd); err != nil {
		return nil, fmt.Errorf("%w: invalid %s payload: %v", models.ErrValidation, name, err)
	}
	return cmd, nil
}

// mutation collects the effects of one command while the room is locked.
type mutation struct {
	session   *Session
	anonymous string
	events    []pendingEvent
	data      any
}

type pendingEvent struct {
	typ     events.EventType
	payload any
}

// pauseAgenda stops a running agenda countdown so a quiz question owns the
// session timer.
func (m *mutation) pauseAgenda() {
	if !m.session.Agenda.IsTimerActive() {
		return
	}
	m.session.Agenda.Pause()
	m.emit(events.EventTypeTimerPaused, agendaPayload(m.session))
}

func (m *mutation) emit(t events.EventType, payload any) {
	m.events = append(m.events, pendingEvent{typ: t, payload: payload})
}

// Agenda

// AddAgendaItem appends a timed item. DurationMinutes must be positive.
type AddAgendaItem struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (c *AddAgendaItem) Name() string   { return CmdAddAgendaItem }
func (c *AddAgendaItem) HostOnly() bool { return true }
func (c *AddAgendaItem) apply(m *mutation) error {
	item, err := m.session.Agenda.AddItem(c.Title, c.DurationMinutes)
	if err != nil {
		return err
	}
	m.data = item
	m.emit(events.EventTypeAgendaUpdated, agendaPayload(m.session))
	return nil
}

type RemoveAgendaItem struct {
	ItemID string `json:"item_id"`
}

func (c *RemoveAgendaItem) Name() string   { return CmdRemoveAgendaItem }
func (c *RemoveAgendaItem) HostOnly() bool { return true }
func (c *RemoveAgendaItem) apply(m *mutation) error {
	if err := m.session.Agenda.RemoveItem(c.ItemID); err != nil {
		return err
	}
	m.emit(events.EventTypeAgendaUpdated, agendaPayload(m.session))
	return nil
}

type StartTimer struct{}

func (c *StartTimer) Name() string   { return CmdStartTimer }
func (c *StartTimer) HostOnly() bool { return true }
func (c *StartTimer) apply(m *mutation) error {
	if m.session.Quiz.State == models.GameStateQuestion {
		return fmt.Errorf("%w: agenda timer cannot run during a quiz question", models.ErrInvalidTransition)
	}
	if err := m.session.Agenda.Start(); err != nil {
		return err
	}
	m.emit(events.EventTypeTimerStarted, agendaPayload(m.session))
	return nil
}

type PauseTimer struct{}

func (c *PauseTimer) Name() string   { return CmdPauseTimer }
func (c *PauseTimer) HostOnly() bool { return true }
func (c *PauseTimer) apply(m *mutation) error {
	m.session.Agenda.Pause()
	m.emit(events.EventTypeTimerPaused, agendaPayload(m.session))
	return nil
}

type ResetTimer struct{}

func (c *ResetTimer) Name() string   { return CmdResetTimer }
func (c *ResetTimer) HostOnly() bool { return true }
func (c *ResetTimer) apply(m *mutation) error {
	m.session.Agenda.ResetCurrent()
	m.emit(events.EventTypeTimerReset, agendaPayload(m.session))
	return nil
}

type NextAgendaItem struct{}

func (c *NextAgendaItem) Name() string   { return CmdNextAgendaItem }
func (c *NextAgendaItem) HostOnly() bool { return true }
func (c *NextAgendaItem) apply(m *mutation) error {
	if err := m.session.Agenda.NextItem(); err != nil {
		return err
	}
	if m.session.Agenda.IsTimerActive() {
		m.emit(events.EventTypeAgendaAdvanced, agendaPayload(m.session))
	} else {
		m.emit(events.EventTypeAgendaUpdated, agendaPayload(m.session))
	}
	return nil
}

// Poll

// StartPoll opens a new poll, replacing the active one.
type StartPoll struct {
	Question string          `json:"question"`
	Type     models.PollType `json:"type"`
	Options  []string        `json:"options"`
}

func (c *StartPoll) Name() string   { return CmdStartPoll }
func (c *StartPoll) HostOnly() bool { return true }
func (c *StartPoll) apply(m *mutation) error {
	p, err := m.session.Poll.Start(c.Question, c.Type, c.Options)
	if err != nil {
		return err
	}
	m.data = copyPoll(p)
	m.emit(events.EventTypePollStarted, pollPayload(m.session))
	return nil
}

// SubmitVote votes for OptionIndex on a multiple-choice poll or submits Text
// on an open-text poll.
type SubmitVote struct {
	OptionIndex *int   `json:"option_index,omitempty"`
	Text        string `json:"text,omitempty"`
}

func (c *SubmitVote) Name() string   { return CmdSubmitVote }
func (c *SubmitVote) HostOnly() bool { return false }
func (c *SubmitVote) apply(m *mutation) error {
	board := m.session.Poll
	if board.Active == nil {
		return nil
	}

	var (
		applied bool
		err     error
	)
	if board.Active.Type == models.PollTypeMultipleChoice {
		if c.OptionIndex == nil {
			return fmt.Errorf("%w: option_index is required", models.ErrValidation)
		}
		applied, err = board.Vote(*c.OptionIndex)
	} else {
		applied, err = board.Answer(c.Text)
	}
	if err != nil {
		return err
	}
	if applied {
		m.emit(events.EventTypePollVoted, pollPayload(m.session))
	}
	return nil
}

type ShowPollResults struct{}

func (c *ShowPollResults) Name() string   { return CmdShowPollResults }
func (c *ShowPollResults) HostOnly() bool { return true }
func (c *ShowPollResults) apply(m *mutation) error {
	if err := m.session.Poll.ShowResults(); err != nil {
		return err
	}
	m.emit(events.EventTypePollViewChanged, pollPayload(m.session))
	return nil
}

type ShowPollVote struct{}

func (c *ShowPollVote) Name() string   { return CmdShowPollVote }
func (c *ShowPollVote) HostOnly() bool { return true }
func (c *ShowPollVote) apply(m *mutation) error {
	if err := m.session.Poll.ShowVote(); err != nil {
		return err
	}
	m.emit(events.EventTypePollViewChanged, pollPayload(m.session))
	return nil
}

type ClosePoll struct{}

func (c *ClosePoll) Name() string   { return CmdClosePoll }
func (c *ClosePoll) HostOnly() bool { return true }
func (c *ClosePoll) apply(m *mutation) error {
	m.session.Poll.Close()
	m.emit(events.EventTypePollClosed, pollPayload(m.session))
	return nil
}

// Q&A

type SubmitQuestion struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

func (c *SubmitQuestion) Name() string   { return CmdSubmitQuestion }
func (c *SubmitQuestion) HostOnly() bool { return false }
func (c *SubmitQuestion) apply(m *mutation) error {
	q, err := m.session.QnA.Submit(c.Text, c.Author, m.anonymous)
	if err != nil {
		return err
	}
	m.data = q
	m.emit(events.EventTypeQuestionSubmitted, q)
	return nil
}

type UpvoteQuestion struct {
	QuestionID string `json:"question_id"`
}

func (c *UpvoteQuestion) Name() string   { return CmdUpvoteQuestion }
func (c *UpvoteQuestion) HostOnly() bool { return false }
func (c *UpvoteQuestion) apply(m *mutation) error {
	q, err := m.session.QnA.Upvote(c.QuestionID)
	if err != nil {
		return err
	}
	m.data = q
	m.emit(events.EventTypeQuestionUpdated, q)
	return nil
}

type ToggleAnswered struct {
	QuestionID string `json:"question_id"`
}

func (c *ToggleAnswered) Name() string   { return CmdToggleAnswered }
func (c *ToggleAnswered) HostOnly() bool { return true }
func (c *ToggleAnswered) apply(m *mutation) error {
	q, err := m.session.QnA.ToggleAnswered(c.QuestionID)
	if err != nil {
		return err
	}
	m.data = q
	m.emit(events.EventTypeQuestionUpdated, q)
	return nil
}

type RemoveQuestion struct {
	QuestionID string `json:"question_id"`
}

func (c *RemoveQuestion) Name() string   { return CmdRemoveQuestion }
func (c *RemoveQuestion) HostOnly() bool { return true }
func (c *RemoveQuestion) apply(m *mutation) error {
	if err := m.session.QnA.Remove(c.QuestionID); err != nil {
		return err
	}
	m.emit(events.EventTypeQuestionRemoved, map[string]string{"question_id": c.QuestionID})
	return nil
}

type SetQuestionSort struct {
	ByUpvotes bool `json:"by_upvotes"`
}

func (c *SetQuestionSort) Name() string   { return CmdSetQuestionSort }
func (c *SetQuestionSort) HostOnly() bool { return true }
func (c *SetQuestionSort) apply(m *mutation) error {
	m.session.QnA.SortByUpvotes = c.ByUpvotes
	m.emit(events.EventTypeQuestionUpdated, map[string]bool{"sort_by_upvotes": c.ByUpvotes})
	return nil
}

// Word cloud

type SubmitWord struct {
	Text string `json:"text"`
}

func (c *SubmitWord) Name() string   { return CmdSubmitWord }
func (c *SubmitWord) HostOnly() bool { return false }
func (c *SubmitWord) apply(m *mutation) error {
	word, err := m.session.WordCloud.Submit(c.Text)
	if err != nil {
		return err
	}
	m.data = word
	m.emit(events.EventTypeWordSubmitted, wordCloudPayload(m.session))
	return nil
}

type ClearWordCloud struct{}

func (c *ClearWordCloud) Name() string   { return CmdClearWordCloud }
func (c *ClearWordCloud) HostOnly() bool { return true }
func (c *ClearWordCloud) apply(m *mutation) error {
	m.session.WordCloud.Clear()
	m.emit(events.EventTypeWordCloudCleared, wordCloudPayload(m.session))
	return nil
}

// Quiz

type JoinQuiz struct {
	PlayerName string `json:"name"`
}

func (c *JoinQuiz) Name() string   { return CmdJoinQuiz }
func (c *JoinQuiz) HostOnly() bool { return false }
func (c *JoinQuiz) apply(m *mutation) error {
	p, err := m.session.Quiz.Join(c.PlayerName)
	if err != nil {
		return err
	}
	m.data = p
	m.emit(events.EventTypeQuizPlayerJoined, quizPayload(m.session))
	return nil
}

type StartQuiz struct{}

func (c *StartQuiz) Name() string   { return CmdStartQuiz }
func (c *StartQuiz) HostOnly() bool { return true }
func (c *StartQuiz) apply(m *mutation) error {
	if err := m.session.Quiz.Start(); err != nil {
		return err
	}
	m.pauseAgenda()
	m.emit(events.EventTypeQuizStarted, quizPayload(m.session))
	return nil
}

// AnswerQuiz records a player's answer to the current question. The result
// is returned to the caller only; the broadcast carries the answered count.
type AnswerQuiz struct {
	PlayerID    string `json:"player_id"`
	OptionIndex int    `json:"option_index"`
}

func (c *AnswerQuiz) Name() string   { return CmdAnswerQuiz }
func (c *AnswerQuiz) HostOnly() bool { return false }
func (c *AnswerQuiz) apply(m *mutation) error {
	rec, err := m.session.Quiz.Answer(c.PlayerID, c.OptionIndex)
	if err != nil {
		return err
	}
	m.data = rec
	m.emit(events.EventTypeQuizAnswered, map[string]any{
		"player_id":      rec.PlayerID,
		"answered_count": m.session.Quiz.AnsweredCount(),
	})
	return nil
}

type ShowQuizResult struct{}

func (c *ShowQuizResult) Name() string   { return CmdShowQuizResult }
func (c *ShowQuizResult) HostOnly() bool { return true }
func (c *ShowQuizResult) apply(m *mutation) error {
	if err := m.session.Quiz.ShowResult(); err != nil {
		return err
	}
	m.emit(events.EventTypeQuizResult, quizPayload(m.session))
	return nil
}

type NextQuizQuestion struct{}

func (c *NextQuizQuestion) Name() string   { return CmdNextQuizQuestion }
func (c *NextQuizQuestion) HostOnly() bool { return true }
func (c *NextQuizQuestion) apply(m *mutation) error {
	if err := m.session.Quiz.Next(); err != nil {
		return err
	}
	if m.session.Quiz.State == models.GameStateLeaderboard {
		m.emit(events.EventTypeQuizLeaderboard, quizPayload(m.session))
	} else {
		m.pauseAgenda()
		m.emit(events.EventTypeQuizQuestionStarted, quizPayload(m.session))
	}
	return nil
}

type PlayQuizAgain struct{}

func (c *PlayQuizAgain) Name() string   { return CmdPlayQuizAgain }
func (c *PlayQuizAgain) HostOnly() bool { return true }
func (c *PlayQuizAgain) apply(m *mutation) error {
	if err := m.session.Quiz.PlayAgain(); err != nil {
		return err
	}
	m.emit(events.EventTypeQuizReset, quizPayload(m.session))
	return nil
}

// Broadcast payloads are always participant-safe.

type agendaState struct {
	Agenda           []models.AgendaItem `json:"agenda"`
	CurrentItemIndex int                 `json:"current_item_index"`
	IsTimerActive    bool                `json:"is_timer_active"`
	TimeRemainingSec int                 `json:"time_remaining_sec"`
	AgendaComplete   bool                `json:"agenda_complete"`
}

func agendaPayload(s *Session) agendaState {
	return agendaState{
		Agenda:           append([]models.AgendaItem{}, s.Agenda.Items...),
		CurrentItemIndex: s.Agenda.CurrentIndex,
		IsTimerActive:    s.Agenda.IsTimerActive(),
		TimeRemainingSec: s.Agenda.Timer.Remaining,
		AgendaComplete:   s.Agenda.Complete,
	}
}

// pollPayload carries both views: poll_view is what participants render and
// host_poll_view is the host's own create/vote/results state.
func pollPayload(s *Session) map[string]any {
	payload := map[string]any{
		"active_poll":    copyPoll(s.Poll.Active),
		"poll_view":      s.Poll.ParticipantView(),
		"host_poll_view": s.Poll.View,
		"total_votes":    s.Poll.TotalVotes(),
	}
	if s.Poll.ParticipantView() == models.PollViewResults {
		payload["poll_results"] = s.Poll.Results()
	}
	return payload
}

func wordCloudPayload(s *Session) map[string]any {
	return map[string]any{"word_cloud": s.WordCloud.Entries()}
}

func quizPayload(s *Session) QuizView {
	return quizView(s.Quiz, models.RoleParticipant)
}
