// Package wordcloud keeps the raw words submitted to a session and derives
// frequency counts from them on every read.
package wordcloud

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mcdev12/livesession/go/internal/models"
)

const (
	// MaxEntries caps the number of entries returned by Entries.
	MaxEntries = 50
	// MaxWordLength is the longest accepted submission, in runes.
	MaxWordLength = 40
)

// Cloud stores submitted words, already trimmed and lower-cased.
type Cloud struct {
	Words []string `json:"words"`
}

// New returns an empty cloud.
func New() *Cloud {
	return &Cloud{Words: []string{}}
}

// Submit stores a trimmed, lower-cased word.
func (c *Cloud) Submit(text string) (string, error) {
	word := strings.ToLower(strings.TrimSpace(text))
	if word == "" {
		return "", fmt.Errorf("%w: word is empty", models.ErrValidation)
	}
	if utf8.RuneCountInString(word) > MaxWordLength {
		return "", fmt.Errorf("%w: word longer than %d characters", models.ErrValidation, MaxWordLength)
	}
	c.Words = append(c.Words, word)
	return word, nil
}

// Clear drops every submitted word.
func (c *Cloud) Clear() {
	c.Words = []string{}
}

// Entries derives the frequency table of the stored words.
func (c *Cloud) Entries() []models.WordCloudEntry {
	return Count(c.Words, MaxEntries)
}

// Count folds case, counts occurrences and returns at most limit entries by
// count descending. Ties keep the order in which each word first appeared.
func Count(words []string, limit int) []models.WordCloudEntry {
	index := make(map[string]int)
	entries := make([]models.WordCloudEntry, 0)
	for _, w := range words {
		w = strings.ToLower(w)
		if i, ok := index[w]; ok {
			entries[i].Count++
			continue
		}
		index[w] = len(entries)
		entries = append(entries, models.WordCloudEntry{Text: w, Count: 1})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
