package wordcloud

import (
	"fmt"
	"testing"

	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloud_CaseFolding(t *testing.T) {
	c := New()
	for _, w := range []string{"a", "A", "b"} {
		_, err := c.Submit(w)
		require.NoError(t, err)
	}

	assert.Equal(t, []models.WordCloudEntry{
		{Text: "a", Count: 2},
		{Text: "b", Count: 1},
	}, c.Entries())
}

func TestCloud_SubmitTrimsAndRejectsEmpty(t *testing.T) {
	c := New()
	word, err := c.Submit("  Go  ")
	require.NoError(t, err)
	assert.Equal(t, "go", word)

	_, err = c.Submit("   ")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = c.Submit("supercalifragilisticexpialidocious-and-then-some")
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.Equal(t, []string{"go"}, c.Words)
}

func TestCloud_TopFiftyCap(t *testing.T) {
	c := New()
	for i := 0; i < 60; i++ {
		_, err := c.Submit(fmt.Sprintf("word%d", i))
		require.NoError(t, err)
	}
	// word59 becomes the most frequent.
	_, err := c.Submit("word59")
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, models.WordCloudEntry{Text: "word59", Count: 2}, entries[0])
	assert.Equal(t, "word0", entries[1].Text)
	assert.Equal(t, "word48", entries[MaxEntries-1].Text)
}

func TestCount_TiesKeepFirstOccurrence(t *testing.T) {
	entries := Count([]string{"zeta", "alpha", "Zeta", "beta", "alpha", "gamma"}, MaxEntries)
	assert.Equal(t, []models.WordCloudEntry{
		{Text: "zeta", Count: 2},
		{Text: "alpha", Count: 2},
		{Text: "beta", Count: 1},
		{Text: "gamma", Count: 1},
	}, entries)
}

func TestCloud_Clear(t *testing.T) {
	c := New()
	_, _ = c.Submit("go")
	c.Clear()
	assert.Empty(t, c.Entries())
}
