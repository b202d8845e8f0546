package audio

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/mcdev12/livesession/go/internal/session/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPlayer struct {
	mock.Mock
}

func (m *mockPlayer) Play(roomCode string, cue Cue) {
	m.Called(roomCode, cue)
}

type captureBroadcaster struct {
	mu     sync.Mutex
	events []*events.Event
}

func (c *captureBroadcaster) BroadcastToRoom(_ string, event *events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func tickEvent(t *testing.T, remaining int) *events.Event {
	t.Helper()
	data, err := json.Marshal(events.TimerTickPayload{Source: "agenda", TimeRemainingSec: remaining})
	require.NoError(t, err)
	return &events.Event{RoomCode: "ABC123", Type: events.EventTypeTimerTick, Data: data}
}

func TestCueFor(t *testing.T) {
	tests := []struct {
		name  string
		event *events.Event
		want  Cue
		ok    bool
	}{
		{name: "timer finished", event: &events.Event{Type: events.EventTypeTimerFinished}, want: CueTimerEnd, ok: true},
		{name: "quiz started", event: &events.Event{Type: events.EventTypeQuizStarted}, want: CueQuestionStart, ok: true},
		{name: "next question", event: &events.Event{Type: events.EventTypeQuizQuestionStarted}, want: CueQuestionStart, ok: true},
		{name: "answer", event: &events.Event{Type: events.EventTypeQuizAnswered}, want: CueAnswer, ok: true},
		{name: "leaderboard", event: &events.Event{Type: events.EventTypeQuizLeaderboard}, want: CueFanfare, ok: true},
		{name: "tick in window", event: tickEvent(t, 5), want: CueTick, ok: true},
		{name: "last tick", event: tickEvent(t, 1), want: CueTick, ok: true},
		{name: "tick outside window", event: tickEvent(t, 6)},
		{name: "tick at zero", event: tickEvent(t, 0)},
		{name: "malformed tick", event: &events.Event{Type: events.EventTypeTimerTick, Data: json.RawMessage(`{`)}},
		{name: "silent event", event: &events.Event{Type: events.EventTypePollStarted}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cue, ok := CueFor(tt.event)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, cue)
		})
	}
}

func TestEveryCueHasTones(t *testing.T) {
	for _, cue := range []Cue{CueTick, CueTimerEnd, CueQuestionStart, CueAnswer, CueFanfare} {
		notes, ok := Tones(cue)
		assert.True(t, ok, cue)
		assert.NotEmpty(t, notes, cue)
	}
	_, ok := Tones("applause")
	assert.False(t, ok)
}

func TestSubscriber(t *testing.T) {
	player := &mockPlayer{}
	player.On("Play", "ABC123", CueTimerEnd).Once()

	sub := NewSubscriber(player)
	sub.HandleEvent(&events.Event{RoomCode: "ABC123", Type: events.EventTypeTimerFinished})
	sub.HandleEvent(&events.Event{RoomCode: "ABC123", Type: events.EventTypePollVoted})

	player.AssertExpectations(t)
}

func TestRoomPlayer(t *testing.T) {
	b := &captureBroadcaster{}
	p := NewRoomPlayer(b)

	p.Play("ABC123", CueFanfare)
	p.Play("ABC123", "unknown")

	require.Len(t, b.events, 1)
	ev := b.events[0]
	assert.Equal(t, events.EventTypeAudioCue, ev.Type)
	assert.Equal(t, "ABC123", ev.RoomCode)

	var payload CuePayload
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, CueFanfare, payload.Cue)
	assert.Len(t, payload.Tones, 4)
}

func TestAsyncPlayer(t *testing.T) {
	player := &mockPlayer{}
	played := make(chan Cue, 1)
	player.On("Play", "ABC123", CueAnswer).Run(func(args mock.Arguments) {
		played <- args.Get(1).(Cue)
	}).Once()

	async := NewAsyncPlayer(player, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go async.Run(ctx)

	async.Play("ABC123", CueAnswer)

	select {
	case cue := <-played:
		assert.Equal(t, CueAnswer, cue)
	case <-time.After(2 * time.Second):
		t.Fatal("cue was not played")
	}
}

func TestAsyncPlayer_DropsWhenFull(t *testing.T) {
	async := NewAsyncPlayer(LogPlayer{}, 1)

	async.Play("ABC123", CueTick)
	async.Play("ABC123", CueTick)
	assert.Len(t, async.queue, 1)
}
