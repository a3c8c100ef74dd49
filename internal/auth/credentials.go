package auth

import "sync"

// CredentialStore is the gateway-side analog of the browser's credential
// storage: the bearer token a device last authenticated with, keyed by
// device ID. Background workers (balance push, pollers) read from here so
// they can keep issuing authenticated upstream reads after the originating
// request has finished.
type CredentialStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{tokens: make(map[string]string)}
}

func (s *CredentialStore) Put(deviceID string, token string) {
	if deviceID == "" || token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[deviceID] = token
}

// Get returns the stored token, or empty when the device never logged in.
// Callers treat an empty token as "redirect to login".
func (s *CredentialStore) Get(deviceID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[deviceID]
}

func (s *CredentialStore) Delete(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, deviceID)
}
