// Package tokenstore persists the single session token between runs. It
// plays the role browser local storage plays for a web client: one string
// under a fixed key, read on start-up and on every outgoing request.
package tokenstore

import (
	"context"
	"fmt"
	"sync"
)

// Key is the fixed name the token is stored under.
const Key = "cinelume:token"

// Store holds at most one token. Get returns "" and a nil error when no
// token is stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Get(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) Set(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func profileKey(profile string) string {
	if profile == "" || profile == "default" {
		return Key
	}
	return fmt.Sprintf("%s:%s", Key, profile)
}
