package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/session/events"
	"github.com/rs/zerolog/log"
)

const maxCodeAttempts = 16

// Publisher defines what the App needs to fan out room events
type Publisher interface {
	Publish(event *events.Event)
}

// Translator defines what the App needs from the localization service
type Translator interface {
	Lookup(locale, key string) string
	Normalize(locale string) string
}

// Option configures an App.
type Option func(*App)

// WithCodeGenerator replaces the random room code generator.
func WithCodeGenerator(gen CodeGenerator) Option {
	return func(a *App) { a.newCode = gen }
}

// WithOrigin tags every published event with an instance id.
func WithOrigin(origin string) Option {
	return func(a *App) { a.origin = origin }
}

// App owns every session and is the only place sessions are mutated.
type App struct {
	store      *Store
	publisher  Publisher
	clock      clockwork.Clock
	translator Translator
	questions  []models.QuizQuestion
	newCode    CodeGenerator
	origin     string
}

// NewApp creates a new session App
func NewApp(store *Store, publisher Publisher, clock clockwork.Clock, translator Translator, questions []models.QuizQuestion, opts ...Option) *App {
	a := &App{
		store:      store,
		publisher:  publisher,
		clock:      clock,
		translator: translator,
		questions:  questions,
		newCode:    NewRoomCode,
		origin:     uuid.New().String()[:8],
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Origin returns the instance id stamped on published events.
func (a *App) Origin() string {
	return a.origin
}

// CreateSession allocates a room code and a host key for a new session.
func (a *App) CreateSession(ctx context.Context, locale string) (*CreateSessionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	locale = a.translator.Normalize(locale)
	hostKey := uuid.New().String()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := a.newCode()
		if err != nil {
			return nil, err
		}
		code = NormalizeRoomCode(code)

		s := newSession(code, hostKey, locale, a.questions, a.clock.Now())
		if err := a.store.insert(s); err != nil {
			if errors.Is(err, errRoomExists) {
				log.Debug().Str("room_code", code).Msg("room code collision, retrying")
				continue
			}
			return nil, err
		}

		r, err := a.store.get(code)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		defer r.mu.Unlock()

		a.publish(s, []pendingEvent{{typ: events.EventTypeSessionCreated, payload: map[string]string{
			"room_code": s.RoomCode,
			"locale":    s.Locale,
		}}})

		log.Info().
			Str("room_code", code).
			Str("locale", locale).
			Msg("session created")

		return &CreateSessionResult{
			RoomCode: code,
			HostKey:  hostKey,
			Session:  s.view(models.RoleHost),
		}, nil
	}

	return nil, fmt.Errorf("failed to allocate a unique room code after %d attempts", maxCodeAttempts)
}

// GetView returns the session as seen by the actor's role. Claiming the host
// role requires the host key.
func (a *App) GetView(ctx context.Context, code string, actor Actor) (*View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := a.store.get(code)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.session
	if actor.Role == models.RoleHost {
		if !s.isHost(actor) {
			return nil, fmt.Errorf("%w: invalid host key for room %s", models.ErrForbidden, s.RoomCode)
		}
		return s.view(models.RoleHost), nil
	}
	return s.view(models.RoleParticipant), nil
}

// Execute applies a command to a room. Commands on the same room are
// serialized; each applied command bumps the session version and publishes
// its events before the room is released.
func (a *App) Execute(ctx context.Context, code string, actor Actor, cmd Command) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, fmt.Errorf("%w: command is required", models.ErrValidation)
	}

	r, err := a.store.get(code)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.session
	if cmd.HostOnly() && !s.isHost(actor) {
		return nil, fmt.Errorf("%w: %s requires the host role", models.ErrForbidden, cmd.Name())
	}

	m := &mutation{
		session:   s,
		anonymous: a.translator.Lookup(s.Locale, "qna.anonymous"),
	}
	if err := cmd.apply(m); err != nil {
		log.Debug().
			Err(err).
			Str("room_code", s.RoomCode).
			Str("command", cmd.Name()).
			Msg("command rejected")
		return nil, fmt.Errorf("%s: %w", cmd.Name(), err)
	}

	if len(m.events) > 0 {
		s.Version++
		a.publish(s, m.events)
	}

	log.Debug().
		Str("room_code", s.RoomCode).
		Str("command", cmd.Name()).
		Uint64("version", s.Version).
		Msg("command applied")

	return &Result{
		RoomCode: s.RoomCode,
		Version:  s.Version,
		Data:     m.data,
	}, nil
}

// Tick advances the running timers of a room by one second and applies the
// transitions a finished timer implies. It reports whether a timer is still
// running afterwards.
func (a *App) Tick(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r, err := a.store.get(code)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.session
	var pending []pendingEvent

	out := s.Agenda.Tick()
	switch {
	case out.Finished:
		pending = append(pending, pendingEvent{typ: events.EventTypeTimerFinished, payload: events.TimerTickPayload{Source: "agenda"}})
		if out.Advanced {
			pending = append(pending, pendingEvent{typ: events.EventTypeAgendaAdvanced, payload: agendaPayload(s)})
		} else {
			pending = append(pending, pendingEvent{typ: events.EventTypeAgendaCompleted, payload: agendaPayload(s)})
			log.Info().Str("room_code", s.RoomCode).Msg("agenda completed")
		}
	case out.Ticked:
		pending = append(pending, pendingEvent{typ: events.EventTypeTimerTick, payload: events.TimerTickPayload{
			Source:           "agenda",
			TimeRemainingSec: s.Agenda.Timer.Remaining,
		}})
	}

	ticked, finished := s.Quiz.Tick()
	switch {
	case finished:
		pending = append(pending,
			pendingEvent{typ: events.EventTypeTimerFinished, payload: events.TimerTickPayload{Source: "quiz"}},
			pendingEvent{typ: events.EventTypeQuizResult, payload: quizPayload(s)},
		)
	case ticked:
		pending = append(pending, pendingEvent{typ: events.EventTypeTimerTick, payload: events.TimerTickPayload{
			Source:           "quiz",
			TimeRemainingSec: s.Quiz.Timer.Remaining,
		}})
	}

	if len(pending) > 0 {
		s.Version++
		a.publish(s, pending)
	}
	return s.HasActiveTimer(), nil
}

// ActiveRooms returns the codes of rooms with a running timer.
func (a *App) ActiveRooms(ctx context.Context) []string {
	var active []string
	for _, code := range a.store.Codes() {
		if ctx.Err() != nil {
			break
		}
		r, err := a.store.get(code)
		if err != nil {
			continue
		}
		r.mu.Lock()
		if r.session.HasActiveTimer() {
			active = append(active, code)
		}
		r.mu.Unlock()
	}
	return active
}

// publish must be called with the room locked so events leave in apply order.
func (a *App) publish(s *Session, pending []pendingEvent) {
	if a.publisher == nil {
		return
	}
	for _, p := range pending {
		data, err := json.Marshal(p.payload)
		if err != nil {
			log.Error().
				Err(err).
				Str("room_code", s.RoomCode).
				Str("event_type", string(p.typ)).
				Msg("failed to marshal event payload")
			continue
		}

		s.seq++
		a.publisher.Publish(&events.Event{
			ID:        uuid.New().String(),
			RoomCode:  s.RoomCode,
			Type:      p.typ,
			Seq:       s.seq,
			Origin:    a.origin,
			Timestamp: a.clock.Now(),
			Data:      data,
		})
	}
}
