// Package poll implements the single active poll of a session.
package poll

import (
	"fmt"
	"strings"

	"github.com/mcdev12/livesession/go/internal/models"
)

// Board holds the active poll, if any, and the host-published view.
type Board struct {
	Active *models.Poll    `json:"active"`
	View   models.PollView `json:"view"`
}

// OptionResult is a derived per-option tally for the results view.
type OptionResult struct {
	Text    string  `json:"text"`
	Votes   int     `json:"votes"`
	Percent float64 `json:"percent"`
}

// New returns a board with no active poll.
func New() *Board {
	return &Board{View: models.PollViewCreate}
}

// Start replaces any active poll with a new one and moves the board to the vote view.
// Blank multiple-choice options are dropped before creation.
func (b *Board) Start(question string, pollType models.PollType, options []string) (*models.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: poll question is required", models.ErrValidation)
	}
	if !pollType.Valid() {
		return nil, fmt.Errorf("%w: unknown poll type %q", models.ErrValidation, pollType)
	}

	p := &models.Poll{
		Question:        question,
		Type:            pollType,
		Options:         []models.PollOption{},
		OpenTextAnswers: []string{},
	}

	if pollType == models.PollTypeMultipleChoice {
		for _, opt := range options {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				continue
			}
			p.Options = append(p.Options, models.PollOption{Text: opt})
		}
		if len(p.Options) == 0 {
			return nil, fmt.Errorf("%w: multiple choice poll needs at least one option", models.ErrValidation)
		}
	}

	b.Active = p
	b.View = models.PollViewVote
	return p, nil
}

// Vote adds exactly one vote to the option at index. Repeat votes are
// counted; there is no voter identity to deduplicate on. Voting while no
// poll is open does nothing.
func (b *Board) Vote(index int) (bool, error) {
	if b.Active == nil {
		return false, nil
	}
	if b.Active.Type != models.PollTypeMultipleChoice {
		return false, fmt.Errorf("%w: poll does not take option votes", models.ErrValidation)
	}
	if index < 0 || index >= len(b.Active.Options) {
		return false, fmt.Errorf("%w: option index %d out of range", models.ErrValidation, index)
	}
	b.Active.Options[index].Votes++
	return true, nil
}

// Answer appends a trimmed open-text answer. Answering while no poll is open does nothing.
func (b *Board) Answer(text string) (bool, error) {
	if b.Active == nil {
		return false, nil
	}
	if b.Active.Type != models.PollTypeOpenText {
		return false, fmt.Errorf("%w: poll does not take text answers", models.ErrValidation)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false, fmt.Errorf("%w: answer is empty", models.ErrValidation)
	}
	b.Active.OpenTextAnswers = append(b.Active.OpenTextAnswers, text)
	return true, nil
}

// ShowResults publishes the results view to participants.
func (b *Board) ShowResults() error {
	if b.Active == nil {
		return fmt.Errorf("%w: no active poll", models.ErrInvalidTransition)
	}
	b.View = models.PollViewResults
	return nil
}

// ShowVote returns participants to the vote view.
func (b *Board) ShowVote() error {
	if b.Active == nil {
		return fmt.Errorf("%w: no active poll", models.ErrInvalidTransition)
	}
	b.View = models.PollViewVote
	return nil
}

// Close clears the active poll and returns the host to the create view.
func (b *Board) Close() {
	b.Active = nil
	b.View = models.PollViewCreate
}

// ParticipantView is what participants render: results only once published.
func (b *Board) ParticipantView() models.PollView {
	if b.View == models.PollViewResults {
		return models.PollViewResults
	}
	return models.PollViewVote
}

// TotalVotes sums votes across options of the active poll.
func (b *Board) TotalVotes() int {
	if b.Active == nil {
		return 0
	}
	total := 0
	for _, opt := range b.Active.Options {
		total += opt.Votes
	}
	return total
}

// Results derives per-option percentages for the active poll.
func (b *Board) Results() []OptionResult {
	if b.Active == nil {
		return nil
	}
	total := b.TotalVotes()
	results := make([]OptionResult, 0, len(b.Active.Options))
	for _, opt := range b.Active.Options {
		r := OptionResult{Text: opt.Text, Votes: opt.Votes}
		if total > 0 {
			r.Percent = float64(opt.Votes) * 100 / float64(total)
		}
		results = append(results, r)
	}
	return results
}
