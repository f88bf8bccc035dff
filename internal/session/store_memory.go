// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between processes.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	session Session
	purgeAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

// Get returns a copy of the stored session.
func (store *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	record, ok := store.records[id]
	if !ok || !time.Now().Before(record.purgeAt) {
		return nil, ErrNotFound
	}

	session := record.session
	session.Flashes = append(session.Flashes[:0:0], record.session.Flashes...)
	return &session, nil
}

// Save stores a copy of session until ttl elapses.
func (store *MemoryStore) Save(_ context.Context, session *Session, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	copied := *session
	copied.Flashes = append(session.Flashes[:0:0], session.Flashes...)
	store.records[session.ID] = memoryRecord{session: copied, purgeAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes id.
func (store *MemoryStore) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.records, id)
	return nil
}

// Purge removes records past their TTL.
func (store *MemoryStore) Purge(_ context.Context) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, record := range store.records {
		if !now.Before(record.purgeAt) {
			delete(store.records, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored records, purged or not.
func (store *MemoryStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.records)
}
