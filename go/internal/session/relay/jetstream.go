// Package relay publishes room events onto a NATS JetStream stream as an
// outbound feed for downstream consumers. Rooms stay owned by the instance
// that created them.
package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

type JetStreamConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration
	MaxMsgs         int64
	Replicas        int
	DuplicateWindow time.Duration
	PublishBuffer   int
	PublishTimeout  time.Duration
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "ROOM_EVENTS",
		SubjectPrefix:   "rooms.events",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		MaxAge:          24 * time.Hour,
		MaxMsgs:         -1,
		Replicas:        1,
		DuplicateWindow: 2 * time.Minute,
		PublishBuffer:   1024,
		PublishTimeout:  5 * time.Second,
	}
}

// Subject returns the subject an event of eventType in roomCode is published on.
func (c JetStreamConfig) Subject(roomCode, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", c.SubjectPrefix, roomCode, eventType)
}

// Conn is a NATS connection with its JetStream context and the room stream in place.
type Conn struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

// Connect dials NATS and ensures the room event stream exists.
func Connect(ctx context.Context, cfg JetStreamConfig) (*Conn, error) {
	opts := []nats.Option{
		nats.Name("livesession"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	c := &Conn{nc: nc, js: js, config: cfg}
	if err := c.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	return c, nil
}

func (c *Conn) ensureStream(ctx context.Context) error {
	sc := jetstream.StreamConfig{
		Name:        c.config.StreamName,
		Description: "Live session room events",
		Subjects:    []string{fmt.Sprintf("%s.>", c.config.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      c.config.MaxAge,
		MaxMsgs:     c.config.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    c.config.Replicas,
		Duplicates:  c.config.DuplicateWindow,
	}

	stream, err := c.js.Stream(ctx, c.config.StreamName)
	if err != nil {
		if _, err = c.js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().
			Str("stream", c.config.StreamName).
			Msg("created JetStream stream")
		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = c.js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().
			Str("stream", c.config.StreamName).
			Msg("updated JetStream stream")
	}
	return nil
}

// JetStream returns the JetStream context.
func (c *Conn) JetStream() jetstream.JetStream {
	return c.js
}

// IsConnected reports whether the underlying NATS connection is up.
func (c *Conn) IsConnected() bool {
	return c.nc != nil && c.nc.IsConnected()
}

// Close drains the connection.
func (c *Conn) Close() error {
	if c.nc == nil {
		return nil
	}
	return c.nc.Drain()
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.MaxMsgs == b.MaxMsgs &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates &&
		len(a.Subjects) == len(b.Subjects) &&
		(len(a.Subjects) == 0 || a.Subjects[0] == b.Subjects[0])
}
