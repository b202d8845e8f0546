package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/quiz"
	"github.com/mcdev12/livesession/go/internal/session/events"
	"github.com/stretchr/testify/require"
)

type stubTranslator struct{}

func (stubTranslator) Lookup(locale, key string) string {
	if key == "qna.anonymous" {
		if locale == "pt-BR" {
			return "Anônimo"
		}
		return "Anonymous"
	}
	return key
}

func (stubTranslator) Normalize(locale string) string {
	if locale == "pt-BR" {
		return locale
	}
	return "en"
}

type recorder struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recorder) Publish(e *events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// last returns the most recent event of type t.
func (r *recorder) last(t events.EventType) *events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i]
		}
	}
	return nil
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func testQuestions(t *testing.T) []models.QuizQuestion {
	t.Helper()
	qs, err := quiz.DefaultCatalog()
	require.NoError(t, err)
	return qs
}

func newTestApp(t *testing.T, opts ...Option) (*App, *recorder, *clockwork.FakeClock) {
	t.Helper()
	rec := &recorder{}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	app := NewApp(NewStore(), rec, clock, stubTranslator{}, testQuestions(t), opts...)
	return app, rec, clock
}

func createRoom(t *testing.T, app *App) *CreateSessionResult {
	t.Helper()
	res, err := app.CreateSession(context.Background(), "en")
	require.NoError(t, err)
	return res
}

func intPtr(i int) *int { return &i }
