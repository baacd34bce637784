package services

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/common"
)

type pendingLogin struct {
	accountID string
	expiresAt time.Time
}

// PendingLoginStore holds password-verified logins awaiting a TOTP code.
// Entries are in-memory only: a pending login not completed within the TTL
// (or lost to a restart) simply requires logging in again.
type PendingLoginStore struct {
	mu      sync.Mutex
	entries map[string]pendingLogin
	ttl     time.Duration
}

func NewPendingLoginStore(ttl time.Duration) *PendingLoginStore {
	return &PendingLoginStore{
		entries: make(map[string]pendingLogin),
		ttl:     ttl,
	}
}

// Put registers a pending login and returns its opaque reference.
func (s *PendingLoginStore) Put(accountID string) (string, error) {
	id, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.entries[id] = pendingLogin{accountID: accountID, expiresAt: time.Now().Add(s.ttl)}
	return id, nil
}

// Get returns the account behind a pending reference without consuming it,
// so a mistyped code does not force a fresh login.
func (s *PendingLoginStore) Get(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, id)
		return "", false
	}
	return e.accountID, true
}

// Delete removes a pending reference once the login completes.
func (s *PendingLoginStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// prune drops expired entries. Callers must hold mu.
func (s *PendingLoginStore) prune() {
	now := time.Now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
