// Package audio maps room events to named sound cues and delivers them
// fire-and-forget to the room's clients, which synthesize the tones.
package audio

import (
	"encoding/json"

	"github.com/mcdev12/livesession/go/internal/session/events"
)

// Cue names a sound effect.
type Cue string

const (
	CueTick          Cue = "tick"
	CueTimerEnd      Cue = "timer_end"
	CueQuestionStart Cue = "question_start"
	CueAnswer        Cue = "answer"
	CueFanfare       Cue = "fanfare"
)

// TickWindowSec is how many final seconds of a countdown tick audibly.
const TickWindowSec = 5

// Tone is one synthesized note of a cue.
type Tone struct {
	FrequencyHz float64 `json:"frequency_hz"`
	DurationMs  int     `json:"duration_ms"`
	Waveform    string  `json:"waveform"`
}

var tones = map[Cue][]Tone{
	CueTick: {
		{FrequencyHz: 880, DurationMs: 60, Waveform: "square"},
	},
	CueTimerEnd: {
		{FrequencyHz: 660, DurationMs: 200, Waveform: "sine"},
		{FrequencyHz: 440, DurationMs: 400, Waveform: "sine"},
	},
	CueQuestionStart: {
		{FrequencyHz: 523.25, DurationMs: 120, Waveform: "triangle"},
		{FrequencyHz: 783.99, DurationMs: 180, Waveform: "triangle"},
	},
	CueAnswer: {
		{FrequencyHz: 1046.5, DurationMs: 80, Waveform: "sine"},
	},
	CueFanfare: {
		{FrequencyHz: 523.25, DurationMs: 150, Waveform: "square"},
		{FrequencyHz: 659.25, DurationMs: 150, Waveform: "square"},
		{FrequencyHz: 783.99, DurationMs: 150, Waveform: "square"},
		{FrequencyHz: 1046.5, DurationMs: 450, Waveform: "square"},
	},
}

// Tones returns the notes of a cue.
func Tones(c Cue) ([]Tone, bool) {
	t, ok := tones[c]
	return t, ok
}

// CueFor returns the cue a room event should sound, if any.
func CueFor(event *events.Event) (Cue, bool) {
	switch event.Type {
	case events.EventTypeTimerFinished:
		return CueTimerEnd, true
	case events.EventTypeQuizStarted, events.EventTypeQuizQuestionStarted:
		return CueQuestionStart, true
	case events.EventTypeQuizAnswered:
		return CueAnswer, true
	case events.EventTypeQuizLeaderboard:
		return CueFanfare, true
	case events.EventTypeTimerTick:
		var tick events.TimerTickPayload
		if err := json.Unmarshal(event.Data, &tick); err != nil {
			return "", false
		}
		if tick.TimeRemainingSec > 0 && tick.TimeRemainingSec <= TickWindowSec {
			return CueTick, true
		}
	}
	return "", false
}
