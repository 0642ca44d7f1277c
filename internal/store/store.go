// Package store defines the document store gateway: single-document
// reads/writes plus live query subscriptions over named collections. The
// subscription model is the cache invalidation: every successful write is
// pushed to all active listeners on the affected collection.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for an absent document.
var ErrNotFound = errors.New("document not found")

// Document is one stored record plus its store-assigned key. The data map
// never embeds the id.
type Document struct {
	ID   string
	Data map[string]any
}

// Snapshot is one full materialization of a live query's result set. A
// snapshot with a non-nil Err is terminal for its subscription: the channel
// closes after it and the consumer decides whether to re-establish.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Condition operators. The store supports equality and inclusive bounds.
const (
	OpEqual          = "=="
	OpGreaterOrEqual = ">="
	OpLessOrEqual    = "<="
)

// Condition is one native filter on a single field.
type Condition struct {
	Field string
	Op    string
	Value any
}

// Query describes what the store can evaluate natively: a single-field sort,
// equality/range conditions and an optional result cap. Anything beyond this
// (substring search) is a client-side concern.
type Query struct {
	OrderBy    string
	Descending bool
	Conditions []Condition
	Limit      int // 0 = unlimited
}

// Where appends a condition and returns the query for chaining.
func (q Query) Where(field, op string, value any) Query {
	q.Conditions = append(q.Conditions, Condition{Field: field, Op: op, Value: value})
	return q
}

// Subscription is a live query handle. Close deregisters the store-side
// listener before returning; a listener must never outlive its logical owner.
type Subscription interface {
	// Snapshots delivers result sets in store emission order. Intermediate
	// snapshots may be coalesced (latest wins) but never reordered. The
	// channel is closed after a terminal error snapshot or after Close.
	Snapshots() <-chan Snapshot
	Close()
}

// Store is the gateway to the backing document database.
type Store interface {
	// Set writes data under collection/id, overwriting the whole document.
	// An empty id allocates a new one; the assigned id is returned.
	Set(ctx context.Context, collection, id string, data map[string]any) (string, error)
	Delete(ctx context.Context, collection, id string) error
	// Get reads one document. Absent documents yield ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Listen opens a live subscription for the query. The subscription stays
	// open until Close is called, ctx is cancelled, or the stream fails.
	Listen(ctx context.Context, collection string, q Query) Subscription
}
