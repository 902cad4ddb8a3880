// Package store holds the scripts and textures the remote side has
// submitted.
//
// Entries never expire: the remote side owns their lifetime and removes
// them explicitly. Inserting under an existing key replaces the entry.
//
//	scripts := store.NewScripts()
//	scripts.Put(7, body)
//	body, ok := scripts.Get(7)
//
// # Thread Safety
//
// Both stores are safe for concurrent use. The driver mutates them from one
// goroutine; the lock only protects readers such as metrics.
package store

import (
	"sync"

	"github.com/zelixir/scenic-driver-gg/backend"
)

// table is a map guarded by a read-write mutex.
type table[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

func newTable[K comparable, V any]() table[K, V] {
	return table[K, V]{entries: make(map[K]V)}
}

func (t *table[K, V]) get(key K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[key]
	return v, ok
}

// put stores value and returns the entry it replaced, if any.
func (t *table[K, V]) put(key K, value V) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, ok := t.entries[key]
	t.entries[key] = value
	return prev, ok
}

// remove deletes key and returns the removed entry, if any.
func (t *table[K, V]) remove(key K) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[key]
	if ok {
		delete(t.entries, key)
	}
	return v, ok
}

func (t *table[K, V]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Scripts maps script ids to their bytecode.
type Scripts struct {
	t table[uint32, []byte]
}

// NewScripts returns an empty script store.
func NewScripts() *Scripts {
	return &Scripts{t: newTable[uint32, []byte]()}
}

// Put stores a copy of body under id, replacing any previous script.
func (s *Scripts) Put(id uint32, body []byte) {
	s.t.put(id, append([]byte(nil), body...))
}

// Get returns the script stored under id. Callers must not modify it.
func (s *Scripts) Get(id uint32) ([]byte, bool) {
	return s.t.get(id)
}

// Delete removes id and reports whether it was present.
func (s *Scripts) Delete(id uint32) bool {
	_, ok := s.t.remove(id)
	return ok
}

// Len returns the number of stored scripts.
func (s *Scripts) Len() int { return s.t.len() }

// Textures maps texture keys to backend image handles.
type Textures struct {
	t table[string, backend.Image]
}

// NewTextures returns an empty texture store.
func NewTextures() *Textures {
	return &Textures{t: newTable[string, backend.Image]()}
}

// Put stores img under key. When key was already present the previous
// handle is returned so the caller can release it.
func (s *Textures) Put(key string, img backend.Image) (prev backend.Image, replaced bool) {
	return s.t.put(key, img)
}

// Get returns the image stored under key.
func (s *Textures) Get(key string) (backend.Image, bool) {
	return s.t.get(key)
}

// Delete removes key. Deleting a missing key is a no-op that returns false.
func (s *Textures) Delete(key string) (backend.Image, bool) {
	return s.t.remove(key)
}

// Len returns the number of stored textures.
func (s *Textures) Len() int { return s.t.len() }
