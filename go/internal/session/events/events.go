package events

import (
	"encoding/json"
	"time"
)

// Event is the envelope for everything a room broadcasts.
type Event struct {
	ID        string          `json:"id"`
	RoomCode  string          `json:"room_code"`
	Type      EventType       `json:"type"`
	Seq       uint64          `json:"seq"`
	Origin    string          `json:"origin,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// EventType represents the type of room event
type EventType string

const (
	EventTypeSessionCreated  EventType = "SessionCreated"
	EventTypeStateSync       EventType = "StateSync"
	EventTypeCommandAccepted EventType = "CommandAccepted"
	EventTypeCommandRejected EventType = "CommandRejected"

	EventTypeAgendaUpdated   EventType = "AgendaUpdated"
	EventTypeAgendaAdvanced  EventType = "AgendaAdvanced"
	EventTypeAgendaCompleted EventType = "AgendaCompleted"
	EventTypeTimerStarted    EventType = "TimerStarted"
	EventTypeTimerPaused     EventType = "TimerPaused"
	EventTypeTimerReset      EventType = "TimerReset"
	EventTypeTimerTick       EventType = "TimerTick"
	EventTypeTimerFinished   EventType = "TimerFinished"

	EventTypePollStarted     EventType = "PollStarted"
	EventTypePollVoted       EventType = "PollVoted"
	EventTypePollViewChanged EventType = "PollViewChanged"
	EventTypePollClosed      EventType = "PollClosed"

	EventTypeQuestionSubmitted EventType = "QuestionSubmitted"
	EventTypeQuestionUpdated   EventType = "QuestionUpdated"
	EventTypeQuestionRemoved   EventType = "QuestionRemoved"

	EventTypeWordSubmitted    EventType = "WordSubmitted"
	EventTypeWordCloudCleared EventType = "WordCloudCleared"

	EventTypeQuizPlayerJoined    EventType = "QuizPlayerJoined"
	EventTypeQuizStarted         EventType = "QuizStarted"
	EventTypeQuizQuestionStarted EventType = "QuizQuestionStarted"
	EventTypeQuizAnswered        EventType = "QuizAnswered"
	EventTypeQuizResult          EventType = "QuizResult"
	EventTypeQuizLeaderboard     EventType = "QuizLeaderboard"
	EventTypeQuizReset           EventType = "QuizReset"

	EventTypeAudioCue EventType = "AudioCue"
)

// StartsTimer reports whether events of this type leave a room timer running.
func (t EventType) StartsTimer() bool {
	switch t {
	case EventTypeTimerStarted, EventTypeAgendaAdvanced, EventTypeQuizStarted, EventTypeQuizQuestionStarted:
		return true
	}
	return false
}

// TimerTickPayload carries the remaining time of the ticking timer.
type TimerTickPayload struct {
	Source           string `json:"source"`
	TimeRemainingSec int    `json:"time_remaining_sec"`
}

// CommandRejectedPayload is sent back to the connection whose command failed.
type CommandRejectedPayload struct {
	RequestID string `json:"request_id,omitempty"`
	Command   string `json:"command"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}
