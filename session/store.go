package session

import (
	"sync"
	"tenantry/authority"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/patrickmn/go-cache"
)

// Store keeps signed-in sessions by token. Sessions handed out by Get are never
// mutated afterwards; updates replace the cached value.
type Store struct {
	mu         sync.Mutex
	expiration time.Duration
	tokens     *cache.Cache
}

func NewStore(expiration time.Duration) *Store {
	return &Store{expiration: expiration, tokens: cache.New(expiration, 1*time.Minute)}
}

// Expiration is the lifetime of a session saved with Save.
func (s *Store) Expiration() time.Duration {
	return s.expiration
}

func (s *Store) Save(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens.Set(sess.Token, sess, cache.DefaultExpiration)
}

func (s *Store) SaveWithTTL(sess *Session, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens.Set(sess.Token, sess, ttl)
}

func (s *Store) Get(token string) (*Session, bool) {
	value, found := s.tokens.Get(token)
	if !found {
		return nil, false
	}
	sess, ok := value.(*Session)
	return sess, ok
}

func (s *Store) Delete(token string) {
	s.tokens.Delete(token)
}

func (s *Store) Count() int {
	return s.tokens.ItemCount()
}

// EvictUser drops every session of the user and returns how many were dropped.
func (s *Store) EvictUser(userID types.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for token, item := range s.tokens.Items() {
		if sess, ok := item.Object.(*Session); ok && sess.Identity.ID == userID {
			s.tokens.Delete(token)
			evicted++
		}
	}
	return evicted
}

// ReplacePerms swaps the permissions of every live session of the user,
// keeping each session's expiry. It returns how many sessions were updated.
func (s *Store) ReplacePerms(userID types.ID, perms authority.Permissions) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	updated := 0
	for token, item := range s.tokens.Items() {
		sess, ok := item.Object.(*Session)
		if !ok || sess.Identity.ID != userID {
			continue
		}
		ttl := cache.NoExpiration
		if item.Expiration > 0 {
			ttl = time.Unix(0, item.Expiration).Sub(now)
			if ttl <= 0 {
				continue
			}
		}
		refreshed := sess.Clone()
		refreshed.Perms = append(authority.Permissions{}, perms...)
		s.tokens.Set(token, &refreshed, ttl)
		updated++
	}
	return updated
}
