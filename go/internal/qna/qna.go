// Package qna implements the audience question board.
package qna

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/livesession/go/internal/models"
)

// DefaultAuthor is used when a question is submitted without a name and no
// localized name is supplied.
const DefaultAuthor = "Anonymous"

// Board is the list of submitted questions in insertion order.
type Board struct {
	Questions     []models.Question `json:"questions"`
	SortByUpvotes bool              `json:"sort_by_upvotes"`
}

// New returns an empty board.
func New() *Board {
	return &Board{Questions: []models.Question{}}
}

// Submit adds a question. An empty author falls back to anonymous.
func (b *Board) Submit(text, author, anonymous string) (models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Question{}, fmt.Errorf("%w: question text is required", models.ErrValidation)
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = anonymous
	}
	if author == "" {
		author = DefaultAuthor
	}

	q := models.Question{
		ID:     uuid.New().String(),
		Text:   text,
		Author: author,
	}
	b.Questions = append(b.Questions, q)
	return q, nil
}

// Upvote adds one upvote. Repeat upvotes from the same participant are allowed.
func (b *Board) Upvote(id string) (models.Question, error) {
	q, err := b.find(id)
	if err != nil {
		return models.Question{}, err
	}
	q.Upvotes++
	return *q, nil
}

// ToggleAnswered flips the answered flag.
func (b *Board) ToggleAnswered(id string) (models.Question, error) {
	q, err := b.find(id)
	if err != nil {
		return models.Question{}, err
	}
	q.Answered = !q.Answered
	return *q, nil
}

// Remove deletes a question.
func (b *Board) Remove(id string) error {
	for i := range b.Questions {
		if b.Questions[i].ID == id {
			b.Questions = append(b.Questions[:i], b.Questions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: question %s", models.ErrNotFound, id)
}

// Sorted returns the display order: unanswered before answered, then by
// upvotes descending when SortByUpvotes is set, otherwise insertion order.
func (b *Board) Sorted() []models.Question {
	return Sort(b.Questions, b.SortByUpvotes)
}

// Sort returns a sorted copy of questions without touching the input.
func Sort(questions []models.Question, byUpvotes bool) []models.Question {
	sorted := make([]models.Question, len(questions))
	copy(sorted, questions)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Answered != sorted[j].Answered {
			return !sorted[i].Answered
		}
		if byUpvotes {
			return sorted[i].Upvotes > sorted[j].Upvotes
		}
		return false
	})
	return sorted
}

func (b *Board) find(id string) (*models.Question, error) {
	for i := range b.Questions {
		if b.Questions[i].ID == id {
			return &b.Questions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: question %s", models.ErrNotFound, id)
}
