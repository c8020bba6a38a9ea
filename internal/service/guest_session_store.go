package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrGuestSessionNotFound = errors.New("guest session not found")

// GuestSessionStore mapea codigos de sesion invitada a ids de usuario, con
// expiracion. Redis cuando esta configurado; memoria como fallback.
type GuestSessionStore interface {
	Store(code, userID string, ttl time.Duration) error
	Lookup(code string) (string, error)
	Revoke(code string) error
}

type guestEntry struct {
	userID    string
	expiresAt time.Time
}

type memoryGuestSessionStore struct {
	mu    sync.Mutex
	items map[string]guestEntry
}

func NewMemoryGuestSessionStore() GuestSessionStore {
	return &memoryGuestSessionStore{items: make(map[string]guestEntry)}
}

func (s *memoryGuestSessionStore) Store(code, userID string, ttl time.Duration) error {
	code = normalizeGuestCode(code)
	if code == "" || userID == "" {
		return ErrGuestSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[code] = guestEntry{
		userID:    userID,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *memoryGuestSessionStore) Lookup(code string) (string, error) {
	code = normalizeGuestCode(code)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[code]
	if !ok {
		return "", ErrGuestSessionNotFound
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, code)
		return "", ErrGuestSessionNotFound
	}
	return entry.userID, nil
}

func (s *memoryGuestSessionStore) Revoke(code string) error {
	code = normalizeGuestCode(code)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, code)
	return nil
}

type redisGuestSessionStore struct {
	client *redis.Client
	prefix string
}

func NewRedisGuestSessionStore(client *redis.Client) GuestSessionStore {
	if client == nil {
		return nil
	}
	return &redisGuestSessionStore{
		client: client,
		prefix: "auth:guest:",
	}
}

func (s *redisGuestSessionStore) Store(code, userID string, ttl time.Duration) error {
	code = normalizeGuestCode(code)
	if code == "" || userID == "" {
		return ErrGuestSessionNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+code, userID, ttl).Err()
}

func (s *redisGuestSessionStore) Lookup(code string) (string, error) {
	code = normalizeGuestCode(code)
	if code == "" {
		return "", ErrGuestSessionNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	userID, err := s.client.Get(ctx, s.prefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrGuestSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *redisGuestSessionStore) Revoke(code string) error {
	code = normalizeGuestCode(code)
	if code == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+code).Err()
}

func normalizeGuestCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
