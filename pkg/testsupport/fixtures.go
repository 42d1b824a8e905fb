// Package testsupport provides shared fixtures for exercising the field
// cache: sample domain entities, engine-style wrappers, and a recording
// store with failure injection.
package testsupport

import (
	"context"
	"sync"
	"time"
)

// Author is a sample identity-bearing domain entity.
type Author struct {
	ID        string
	Name      string
	Email     string
	UpdatedAt time.Time
}

// Post is a sample entity referencing another entity.
type Post struct {
	ID     string
	Title  string
	Author *Author
}

// Wrapped mimics the engine's typed object wrapper around a domain object.
type Wrapped struct {
	object any
}

// Wrap builds a Wrapped around object.
func Wrap(object any) *Wrapped {
	return &Wrapped{object: object}
}

// Unwrap exposes the underlying domain object.
func (w *Wrapped) Unwrap() any {
	return w.object
}

// Connection mimics a paginated connection wrapper with materialized nodes.
type Connection struct {
	NodeList []any
	PageInfo map[string]any
}

// Nodes exposes the materialized node sequence.
func (c *Connection) Nodes() []any {
	return c.NodeList
}

// EdgeConnection mimics a connection wrapper that only exposes nodes
// through its edges.
type EdgeConnection struct {
	Edges []any
}

// EdgeNodes exposes the node of every edge.
func (c *EdgeConnection) EdgeNodes() []any {
	return c.Edges
}

// CyclicValue builds a self-referential structure: a mapping containing a
// list that contains the original mapping.
func CyclicValue() map[string]any {
	root := map[string]any{"label": "root"}
	root["items"] = []any{root}
	return root
}

// WriteCall records one store write.
type WriteCall struct {
	Key   string
	Value any
	TTL   time.Duration
}

// RecordingStore is an in-memory cache.Store that records every write and
// can inject read and write failures.
type RecordingStore struct {
	mu        sync.Mutex
	entries   map[string]any
	writes    []WriteCall
	readErr   error
	failLeft  int
	failWith  error
}

// NewRecordingStore creates an empty RecordingStore.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{entries: map[string]any{}}
}

// Read returns the stored value, honoring an injected read error.
func (s *RecordingStore) Read(ctx context.Context, key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readErr != nil {
		return nil, false, s.readErr
	}
	value, ok := s.entries[key]
	return value, ok, nil
}

// Write records the call and stores the value, honoring injected failures.
func (s *RecordingStore) Write(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes = append(s.writes, WriteCall{Key: key, Value: value, TTL: ttl})
	if s.failLeft > 0 {
		s.failLeft--
		return s.failWith
	}
	s.entries[key] = value
	return nil
}

// Delete removes the entry. Idempotent.
func (s *RecordingStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// FailNextWrites makes the next n writes fail with err. The calls are still
// recorded.
func (s *RecordingStore) FailNextWrites(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failLeft = n
	s.failWith = err
}

// FailReads makes every read fail with err until called with nil.
func (s *RecordingStore) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readErr = err
}

// Writes returns a copy of the recorded write calls.
func (s *RecordingStore) Writes() []WriteCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]WriteCall, len(s.writes))
	copy(out, s.writes)
	return out
}

// Entry reports the stored value for key.
func (s *RecordingStore) Entry(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.entries[key]
	return value, ok
}

// Len reports the number of stored entries.
func (s *RecordingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
