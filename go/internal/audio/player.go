package audio

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/livesession/go/internal/session/events"
	"github.com/rs/zerolog/log"
)

// Player plays a cue for a room. Play never blocks and reports nothing.
type Player interface {
	Play(roomCode string, cue Cue)
}

// Broadcaster delivers an event to a room's clients.
type Broadcaster interface {
	BroadcastToRoom(roomCode string, event *events.Event)
}

// CuePayload is the data of an AudioCue event.
type CuePayload struct {
	Cue   Cue    `json:"cue"`
	Tones []Tone `json:"tones"`
}

// RoomPlayer sends cues to the room's clients as AudioCue events.
type RoomPlayer struct {
	broadcaster Broadcaster
}

func NewRoomPlayer(b Broadcaster) *RoomPlayer {
	return &RoomPlayer{broadcaster: b}
}

func (p *RoomPlayer) Play(roomCode string, cue Cue) {
	t, ok := Tones(cue)
	if !ok {
		log.Warn().Str("cue", string(cue)).Msg("unknown audio cue")
		return
	}
	data, err := json.Marshal(CuePayload{Cue: cue, Tones: t})
	if err != nil {
		log.Error().Err(err).Str("cue", string(cue)).Msg("failed to marshal audio cue")
		return
	}
	p.broadcaster.BroadcastToRoom(roomCode, &events.Event{
		ID:        uuid.New().String(),
		RoomCode:  roomCode,
		Type:      events.EventTypeAudioCue,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// LogPlayer only logs cues.
type LogPlayer struct{}

func (LogPlayer) Play(roomCode string, cue Cue) {
	log.Debug().Str("room_code", roomCode).Str("cue", string(cue)).Msg("audio cue")
}

type playRequest struct {
	roomCode string
	cue      Cue
}

// AsyncPlayer hands cues to another Player on its own goroutine, dropping
// cues when the queue is full.
type AsyncPlayer struct {
	next  Player
	queue chan playRequest
}

func NewAsyncPlayer(next Player, buffer int) *AsyncPlayer {
	if buffer <= 0 {
		buffer = 1
	}
	return &AsyncPlayer{next: next, queue: make(chan playRequest, buffer)}
}

func (p *AsyncPlayer) Play(roomCode string, cue Cue) {
	select {
	case p.queue <- playRequest{roomCode: roomCode, cue: cue}:
	default:
		log.Debug().Str("room_code", roomCode).Str("cue", string(cue)).Msg("audio queue full, dropping cue")
	}
}

// Run plays queued cues until ctx is done.
func (p *AsyncPlayer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.queue:
			p.next.Play(req.roomCode, req.cue)
		}
	}
}

// Subscriber turns room events into cues.
type Subscriber struct {
	player Player
}

func NewSubscriber(p Player) *Subscriber {
	return &Subscriber{player: p}
}

// HandleEvent is a bus handler.
func (s *Subscriber) HandleEvent(event *events.Event) {
	if cue, ok := CueFor(event); ok {
		s.player.Play(event.RoomCode, cue)
	}
}
