package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/session/events"
	"github.com/rs/zerolog/log"
)

// TickSource is what the Scheduler drives once per interval.
type TickSource interface {
	Tick(ctx context.Context, code string) (bool, error)
	ActiveRooms(ctx context.Context) []string
}

type watch struct {
	// rearm is set when a timer restarts while the watch goroutine may be
	// deciding to exit.
	rearm bool
}

// Scheduler runs one ticker per room while that room has a running timer.
type Scheduler struct {
	source   TickSource
	clock    clockwork.Clock
	interval time.Duration

	mu      sync.Mutex
	ctx     context.Context
	watches map[string]*watch
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(source TickSource, clock clockwork.Clock, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		source:   source,
		clock:    clock,
		interval: interval,
		watches:  make(map[string]*watch),
	}
}

// Start enables watching and picks up rooms that already have a running timer.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	for _, code := range s.source.ActiveRooms(ctx) {
		s.Watch(code)
	}
	log.Info().Dur("interval", s.interval).Msg("timer scheduler started")
}

// HandleEvent is a bus handler that starts watching rooms whose timer started.
func (s *Scheduler) HandleEvent(event *events.Event) {
	if event.Type.StartsTimer() {
		s.Watch(event.RoomCode)
	}
}

// Watch ensures a ticker is running for the room.
func (s *Scheduler) Watch(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		log.Warn().Str("room_code", code).Msg("scheduler not started, ignoring watch")
		return
	}
	if w, exists := s.watches[code]; exists {
		w.rearm = true
		return
	}

	w := &watch{}
	s.watches[code] = w
	s.wg.Add(1)
	go s.run(s.ctx, code, w)

	log.Debug().Str("room_code", code).Msg("watching room timer")
}

// IsWatching reports whether a ticker is running for the room.
func (s *Scheduler) IsWatching(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watches[code]
	return ok
}

// Wait blocks until every watch goroutine has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, code string, w *watch) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.remove(code)
			return
		case <-ticker.Chan():
			active, err := s.source.Tick(ctx, code)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) || ctx.Err() != nil {
					s.remove(code)
					return
				}
				log.Error().Err(err).Str("room_code", code).Msg("timer tick failed")
				continue
			}

			s.mu.Lock()
			if active || w.rearm {
				w.rearm = false
				s.mu.Unlock()
				continue
			}
			delete(s.watches, code)
			s.mu.Unlock()

			log.Debug().Str("room_code", code).Msg("room timer idle, watch stopped")
			return
		}
	}
}

func (s *Scheduler) remove(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watches, code)
}
