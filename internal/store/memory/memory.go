// Package memory is an in-memory Store implementation. It backs the unit
// tests and the offline tooling; data is lost on process exit. It mirrors the
// hosted store's contract: writes push fresh snapshots to every active
// listener on the collection, and snapshot delivery per listener is
// latest-wins.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pocketledger/internal/store"
)

// Store holds collections of documents keyed by id. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	listeners   map[*subscription]struct{}
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		listeners:   make(map[*subscription]struct{}),
	}
}

// Set implements store.Store. An empty id allocates a new one.
func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("set: collection is required")
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collections[collection]
	if col == nil {
		col = make(map[string]map[string]any)
		s.collections[collection] = col
	}
	col[id] = cloneDoc(data)

	s.notifyLocked(collection)
	return id, nil
}

// Delete implements store.Store. Deleting an absent document is a no-op,
// matching the hosted store.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col := s.collections[collection]; col != nil {
		delete(col, id)
	}
	s.notifyLocked(collection)
	return nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collections[collection]
	data, ok := col[id]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return store.Document{ID: id, Data: cloneDoc(data)}, nil
}

// Listen implements store.Store. The subscription immediately receives a
// snapshot of the current result set.
func (s *Store) Listen(ctx context.Context, collection string, q store.Query) store.Subscription {
	sub := &subscription{
		store:      s,
		collection: collection,
		query:      q,
		ch:         make(chan store.Snapshot, 1),
		closed:     make(chan struct{}),
	}

	s.mu.Lock()
	s.listeners[sub] = struct{}{}
	sub.push(store.Snapshot{Docs: s.evaluateLocked(collection, q)})
	s.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Close()
			case <-sub.closed:
			}
		}()
	}
	return sub
}

// ListenerCount reports the number of active subscriptions. Test hook for
// the "no dangling listener" contract.
func (s *Store) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// notifyLocked pushes a fresh result set to every listener on collection.
// Caller holds s.mu.
func (s *Store) notifyLocked(collection string) {
	for sub := range s.listeners {
		if sub.collection != collection {
			continue
		}
		sub.push(store.Snapshot{Docs: s.evaluateLocked(collection, sub.query)})
	}
}

// evaluateLocked runs a query against the current contents of collection.
// Caller holds s.mu.
func (s *Store) evaluateLocked(collection string, q store.Query) []store.Document {
	var docs []store.Document
	for id, data := range s.collections[collection] {
		if matches(data, q.Conditions) {
			docs = append(docs, store.Document{ID: id, Data: cloneDoc(data)})
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			c := order(docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy])
			if q.Descending {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

func matches(data map[string]any, conds []store.Condition) bool {
	for _, c := range conds {
		v, ok := data[c.Field]
		if !ok {
			return false
		}
		cmp := order(v, c.Value)
		switch c.Op {
		case store.OpEqual:
			if cmp != 0 {
				return false
			}
		case store.OpGreaterOrEqual:
			if cmp < 0 {
				return false
			}
		case store.OpLessOrEqual:
			if cmp > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// order compares two stored values. Numbers compare numerically regardless of
// concrete type, strings lexically; anything else only supports equality.
func order(a, b any) int {
	if fa, aok := toFloat(a); aok {
		if fb, bok := toFloat(b); bok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	sa, aok := a.(string)
	sb, bok := b.(string)
	if aok && bok {
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	}
	if a == b {
		return 0
	}
	return -1
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func cloneDoc(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

type subscription struct {
	store      *Store
	collection string
	query      store.Query
	ch         chan store.Snapshot

	closeOnce sync.Once
	closed    chan struct{}
}

func (s *subscription) Snapshots() <-chan store.Snapshot {
	return s.ch
}

// Close deregisters the listener and closes the snapshot channel. The
// listener is removed before Close returns, so a replacement opened
// afterwards can never race a stale delivery.
func (s *subscription) Close() {
	s.closeOnce.Do(func() {
		s.store.mu.Lock()
		delete(s.store.listeners, s)
		close(s.ch)
		s.store.mu.Unlock()
		close(s.closed)
	})
}

// push delivers a snapshot, replacing an undelivered older one. Caller holds
// the store mutex, which serializes all senders; the consumer only receives.
func (s *subscription) push(snap store.Snapshot) {
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- snap
	}
}
