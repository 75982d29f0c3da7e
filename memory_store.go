package auth

import (
	"context"
	"sync"
)

// MemoryUserStore is a UserStore held in process memory. It backs tests and
// small deployments seeded at startup.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryUserStore(users ...*User) *MemoryUserStore {
	s := &MemoryUserStore{users: make(map[string]User, len(users))}
	for _, u := range users {
		s.Add(u)
	}
	return s
}

// Add stores a copy of user, replacing any record with the same username
func (s *MemoryUserStore) Add(user *User) {
	if user == nil {
		return
	}
	user.PrepareDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = *user
}

// Remove deletes the record for username, if any
func (s *MemoryUserStore) Remove(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, username)
}

func (s *MemoryUserStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
