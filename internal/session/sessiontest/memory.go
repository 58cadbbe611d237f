// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package sessiontest provides an in-memory session.Store for tests.
package sessiontest

import (
	"context"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/postline/postline/internal/session"
)

// MemoryStore is a concurrency-safe in-memory session.Store. TTLs are
// recorded but never enforced.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]session.Payload
	ttls    map[string]time.Duration
	sets    int
	deletes int
	fail    error
}

var _ session.Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]session.Payload),
		ttls:    make(map[string]time.Duration),
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Get implements session.Store.
func (m *MemoryStore) Get(_ context.Context, token string) (session.Payload, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return session.Payload{}, false, oops.Code("SESSION_STORE_UNAVAILABLE").Wrap(m.fail)
	}
	p, ok := m.entries[token]
	return p, ok, nil
}

// Set implements session.Store.
func (m *MemoryStore) Set(_ context.Context, token string, payload session.Payload, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return oops.Code("SESSION_STORE_UNAVAILABLE").Wrap(m.fail)
	}
	m.entries[token] = payload
	m.ttls[token] = ttl
	m.sets++
	return nil
}

// Delete implements session.Store.
func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return oops.Code("SESSION_STORE_UNAVAILABLE").Wrap(m.fail)
	}
	delete(m.entries, token)
	delete(m.ttls, token)
	m.deletes++
	return nil
}

// Put seeds an entry without counting it as a write.
func (m *MemoryStore) Put(token string, payload session.Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[token] = payload
}

// Lookup returns the stored payload for token.
func (m *MemoryStore) Lookup(token string) (session.Payload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[token]
	return p, ok
}

// TTL returns the ttl of the last Set for token.
func (m *MemoryStore) TTL(token string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[token]
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sets returns how many times Set succeeded.
func (m *MemoryStore) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// Deletes returns how many times Delete succeeded.
func (m *MemoryStore) Deletes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}
