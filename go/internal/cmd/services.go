package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livesession/go/internal/audio"
	"github.com/mcdev12/livesession/go/internal/config"
	"github.com/mcdev12/livesession/go/internal/i18n"
	"github.com/mcdev12/livesession/go/internal/session"
	"github.com/mcdev12/livesession/go/internal/session/events"
	"github.com/mcdev12/livesession/go/internal/session/gateway"
	"github.com/mcdev12/livesession/go/internal/session/relay"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Store       *session.Store
	Bus         *events.Bus
	App         *session.App
	Scheduler   *session.Scheduler
	Session     *session.Service
	Connections *gateway.ConnectionManager
	WebSocket   *gateway.WebSocketHandler
	I18n        *i18n.Handler
	Audio       *audio.AsyncPlayer

	natsConn  *relay.Conn
	publisher *relay.Publisher
}

func setupServices(ctx context.Context, cfg config.Config) (*Services, error) {
	// Store → App → Service, with the bus fanning events out to the
	// scheduler, gateway, audio cues and relay.
	translator, err := i18n.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	questions, err := loadQuestions(cfg)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	store := session.NewStore()
	bus := events.NewBus()
	app := session.NewApp(store, bus, clock, &localeDefaults{translator, cfg.DefaultLocale}, questions)

	connConfig := gateway.DefaultConnectionConfig()
	connConfig.CheckOrigin = gateway.OriginChecker(cfg.AllowedOrigins)
	connections := gateway.NewConnectionManager(app, connConfig)
	scheduler := session.NewScheduler(app, clock, cfg.TickInterval)

	s := &Services{
		Store:       store,
		Bus:         bus,
		App:         app,
		Scheduler:   scheduler,
		Session:     session.NewService(app),
		Connections: connections,
		WebSocket:   gateway.NewWebSocketHandler(connections),
		I18n:        i18n.NewHandler(translator),
	}

	bus.Subscribe("scheduler", scheduler.HandleEvent)
	bus.Subscribe("gateway", connections.HandleEvent)

	if cfg.AudioCues {
		s.Audio = audio.NewAsyncPlayer(audio.NewRoomPlayer(connections), 256)
		bus.Subscribe("audio", audio.NewSubscriber(s.Audio).HandleEvent)
	}

	if cfg.RelayEnabled() {
		jsConfig := relay.DefaultJetStreamConfig()
		jsConfig.URL = cfg.NATS.URL
		jsConfig.StreamName = cfg.NATS.Stream
		jsConfig.SubjectPrefix = cfg.NATS.SubjectPrefix

		conn, err := relay.Connect(ctx, jsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to set up event relay: %w", err)
		}
		s.natsConn = conn
		s.publisher = relay.NewPublisher(conn.JetStream(), jsConfig, app.Origin())
		bus.Subscribe("relay", s.publisher.HandleEvent)
	}

	return s, nil
}

// Start runs the background workers until ctx is done.
func (s *Services) Start(ctx context.Context) {
	go s.Connections.Start(ctx)
	s.Scheduler.Start(ctx)

	if s.Audio != nil {
		go s.Audio.Run(ctx)
	}
	if s.publisher != nil {
		go s.publisher.Run(ctx)
	}
}

// RelayConnected is true when the relay is disabled or its NATS
// connection is up.
func (s *Services) RelayConnected() bool {
	return s.natsConn == nil || s.natsConn.IsConnected()
}

// Close waits for room tickers and releases the NATS connection.
func (s *Services) Close() {
	s.Scheduler.Wait()
	if s.natsConn != nil {
		if err := s.natsConn.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close NATS connection")
		}
	}
}

// localeDefaults applies the configured default locale to sessions created
// without one.
type localeDefaults struct {
	*i18n.Translator
	fallback string
}

func (l *localeDefaults) Normalize(locale string) string {
	if locale == "" {
		locale = l.fallback
	}
	return l.Translator.Normalize(locale)
}
