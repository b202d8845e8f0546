package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/livesession/go/internal/session/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// MsgPublisher is the part of jetstream.JetStream the Publisher uses.
type MsgPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher copies locally produced room events to JetStream. Events are
// queued by the bus handler and published from Run so the room lock is never
// held across a network call.
type Publisher struct {
	js     MsgPublisher
	config JetStreamConfig
	origin string
	queue  chan *events.Event
}

func NewPublisher(js MsgPublisher, cfg JetStreamConfig, origin string) *Publisher {
	size := cfg.PublishBuffer
	if size <= 0 {
		size = 1
	}
	return &Publisher{
		js:     js,
		config: cfg,
		origin: origin,
		queue:  make(chan *events.Event, size),
	}
}

// HandleEvent is a bus handler. Events from other origins and per-second
// ticks are not relayed.
func (p *Publisher) HandleEvent(event *events.Event) {
	if event.Origin != p.origin || event.Type == events.EventTypeTimerTick {
		return
	}
	select {
	case p.queue <- event:
	default:
		log.Warn().
			Str("room_code", event.RoomCode).
			Str("event_type", string(event.Type)).
			Msg("relay queue full, dropping event")
	}
}

// Run publishes queued events until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	log.Info().Str("stream", p.config.StreamName).Msg("event relay publisher started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event relay publisher shutting down")
			return
		case event := <-p.queue:
			if err := p.Publish(ctx, event); err != nil {
				log.Error().
					Err(err).
					Str("event_id", event.ID).
					Str("room_code", event.RoomCode).
					Msg("failed to relay event")
			}
		}
	}
}

// Publish sends one event to the stream, deduplicated by event id.
func (p *Publisher) Publish(ctx context.Context, event *events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	subject := p.config.Subject(event.RoomCode, string(event.Type))
	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(event.Type)},
			"Room-Code":  []string{event.RoomCode},
			"Event-ID":   []string{event.ID},
			"Origin":     []string{event.Origin},
		},
	},
		jetstream.WithMsgID(event.ID),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", event.ID).
		Uint64("sequence", ack.Sequence).
		Str("stream", ack.Stream).
		Msg("published to JetStream")

	return nil
}
