package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mcdev12/livesession/go/internal/models"
)

var errRoomExists = errors.New("room code already in use")

// room guards one session. Every read or write of the session holds mu.
type room struct {
	mu      sync.Mutex
	session *Session
}

// Store maps room codes to sessions for the lifetime of the process.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rooms: make(map[string]*room)}
}

func (s *Store) insert(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[session.RoomCode]; exists {
		return errRoomExists
	}
	s.rooms[session.RoomCode] = &room{session: session}
	return nil
}

func (s *Store) get(code string) (*room, error) {
	code = NormalizeRoomCode(code)

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: room %q", models.ErrNotFound, code)
	}
	return r, nil
}

// Codes returns all room codes in lexical order.
func (s *Store) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// NormalizeRoomCode upper-cases and trims a user-entered room code.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
