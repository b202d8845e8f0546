// Package agenda holds the ordered list of timed items of a session and the
// rules that move the active item forward when its timer runs out.
package agenda

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/timer"
)

// MaxDurationMinutes caps a single agenda item at one day.
const MaxDurationMinutes = 24 * 60

// Agenda is the agenda component of a session.
// CurrentIndex is always in [0, len(Items)) or 0 when Items is empty.
type Agenda struct {
	Items        []models.AgendaItem `json:"items"`
	CurrentIndex int                 `json:"current_index"`
	Timer        timer.Timer         `json:"timer"`
	Complete     bool                `json:"complete"`
}

// TickOutcome describes what a single tick did to the agenda.
type TickOutcome struct {
	Ticked    bool
	Finished  bool
	Advanced  bool
	Completed bool
}

// New returns an empty agenda.
func New() *Agenda {
	return &Agenda{Items: []models.AgendaItem{}}
}

// IsTimerActive reports whether the current item's timer is counting down.
func (a *Agenda) IsTimerActive() bool {
	return a.Timer.Active
}

// Current returns the active item, if any.
func (a *Agenda) Current() (models.AgendaItem, bool) {
	if len(a.Items) == 0 {
		return models.AgendaItem{}, false
	}
	return a.Items[a.CurrentIndex], true
}

// TotalDuration returns the sum of all item durations in seconds.
func (a *Agenda) TotalDuration() int {
	total := 0
	for _, item := range a.Items {
		total += item.Duration
	}
	return total
}

// AddItem appends an item. The duration is given in minutes and stored in seconds.
func (a *Agenda) AddItem(title string, minutes int) (models.AgendaItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.AgendaItem{}, fmt.Errorf("%w: agenda item title is required", models.ErrValidation)
	}
	if minutes <= 0 {
		return models.AgendaItem{}, fmt.Errorf("%w: agenda item duration must be positive, got %d", models.ErrValidation, minutes)
	}
	if minutes > MaxDurationMinutes {
		return models.AgendaItem{}, fmt.Errorf("%w: agenda item duration cannot exceed %d minutes, got %d", models.ErrValidation, MaxDurationMinutes, minutes)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.AgendaItem{}, fmt.Errorf("failed to generate agenda item id: %w", err)
	}

	item := models.AgendaItem{
		ID:       id.String(),
		Title:    title,
		Duration: minutes * 60,
	}
	a.Items = append(a.Items, item)

	// The first item loads the timer.
	if len(a.Items) == 1 {
		a.CurrentIndex = 0
		a.Complete = false
		a.Timer.ResetTo(item.Duration)
	}
	return item, nil
}

// RemoveItem deletes an item by id and clamps the active index.
func (a *Agenda) RemoveItem(id string) error {
	idx := a.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: agenda item %s", models.ErrNotFound, id)
	}

	a.Items = append(a.Items[:idx], a.Items[idx+1:]...)

	switch {
	case len(a.Items) == 0:
		a.CurrentIndex = 0
		a.Complete = false
		a.Timer = timer.New(0)
	case idx < a.CurrentIndex:
		a.CurrentIndex--
	case idx == a.CurrentIndex:
		if a.CurrentIndex >= len(a.Items) {
			a.CurrentIndex = len(a.Items) - 1
		}
		a.Complete = false
		a.Timer.ResetTo(a.Items[a.CurrentIndex].Duration)
	}
	return nil
}

// Start resumes the current item's countdown.
func (a *Agenda) Start() error {
	if len(a.Items) == 0 {
		return fmt.Errorf("%w: agenda is empty", models.ErrInvalidTransition)
	}
	if a.Timer.Remaining == 0 {
		return fmt.Errorf("%w: current item has finished, reset the timer first", models.ErrInvalidTransition)
	}
	a.Timer.Start()
	return nil
}

// Pause halts the current item's countdown.
func (a *Agenda) Pause() {
	a.Timer.Pause()
}

// ResetCurrent reloads the current item's duration and halts the timer.
func (a *Agenda) ResetCurrent() {
	a.Complete = false
	current, ok := a.Current()
	if !ok {
		a.Timer = timer.New(0)
		return
	}
	a.Timer.ResetTo(current.Duration)
}

// NextItem skips to the following item, keeping the timer running if it was.
func (a *Agenda) NextItem() error {
	if a.CurrentIndex+1 >= len(a.Items) {
		return fmt.Errorf("%w: no agenda item after the current one", models.ErrInvalidTransition)
	}
	wasActive := a.Timer.Active
	a.advance()
	if wasActive {
		a.Timer.Start()
	}
	return nil
}

// Tick advances the countdown by one second. When the current item finishes
// the next item becomes active and keeps running; after the last item the
// timer stops and the agenda is marked complete.
func (a *Agenda) Tick() TickOutcome {
	if !a.Timer.Active {
		return TickOutcome{}
	}
	out := TickOutcome{Ticked: true}
	if !a.Timer.Tick() {
		return out
	}
	out.Finished = true

	if a.CurrentIndex+1 < len(a.Items) {
		a.advance()
		a.Timer.Start()
		out.Advanced = true
		return out
	}

	a.Complete = true
	out.Completed = true
	return out
}

func (a *Agenda) advance() {
	a.CurrentIndex++
	a.Complete = false
	a.Timer.ResetTo(a.Items[a.CurrentIndex].Duration)
}

func (a *Agenda) indexOf(id string) int {
	for i, item := range a.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
