package session

import (
	"testing"
	"time"

	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	store := NewStore()
	now := time.Now()

	require.NoError(t, store.insert(newSession("BBBBBB", "k1", "en", nil, now)))
	require.NoError(t, store.insert(newSession("AAAAAA", "k2", "en", nil, now)))
	assert.ErrorIs(t, store.insert(newSession("AAAAAA", "k3", "en", nil, now)), errRoomExists)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"AAAAAA", "BBBBBB"}, store.Codes())

	r, err := store.get(" bbbbbb")
	require.NoError(t, err)
	assert.Equal(t, "k1", r.session.HostKey)

	_, err = store.get("CCCCCC")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewRoomCode()
		require.NoError(t, err)
		assert.True(t, ValidRoomCode(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90)

	for _, bad := range []string{"", "ABC12", "ABC1234", "abc123", "ABC-12"} {
		assert.False(t, ValidRoomCode(bad), bad)
	}
	assert.Equal(t, "ABC123", NormalizeRoomCode(" abc123\n"))
}
