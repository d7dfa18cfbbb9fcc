package telegram

import (
	"sort"
	"sync"
	"time"

	"github.com/ametelkin/tripline/internal/models"
)

// State holds the small per-chat interaction state: which trip (if any) is
// waiting for a location from a chat, and which chats the bot has ever seen.
// It lives in process memory only and is safe for concurrent use.
type State struct {
	mu      sync.Mutex
	pending map[int64]int64
	users   map[int64]time.Time
}

func NewState() *State {
	return &State{
		pending: make(map[int64]int64),
		users:   make(map[int64]time.Time),
	}
}

// SetPendingLocation records that the next location from chatID belongs to
// tripID. A chat holds at most one pending request; a second /start simply
// overwrites the first.
func (s *State) SetPendingLocation(chatID, tripID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[chatID] = tripID
}

// TakePendingLocation removes and returns the pending trip for a chat in one
// step, so two near-simultaneous location reports cannot both consume it.
func (s *State) TakePendingLocation(chatID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tripID, ok := s.pending[chatID]
	if ok {
		delete(s.pending, chatID)
	}
	return tripID, ok
}

// ObserveUser registers a chat the first time it is seen. Later observations
// keep the original timestamp.
func (s *State) ObserveUser(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[chatID]; !ok {
		s.users[chatID] = time.Now().UTC()
	}
}

// Users returns a snapshot of all known chats sorted by first contact.
func (s *State) Users() []models.BotUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.BotUser, 0, len(s.users))
	for chatID, firstSeen := range s.users {
		users = append(users, models.BotUser{ChatID: chatID, FirstSeen: firstSeen})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].FirstSeen.Equal(users[j].FirstSeen) {
			return users[i].ChatID < users[j].ChatID
		}
		return users[i].FirstSeen.Before(users[j].FirstSeen)
	})
	return users
}
