// Package firestore implements the store gateway on Cloud Firestore. Live
// queries map to Firestore snapshot listeners; the service pushes a fresh
// result set on every matching write.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"pocketledger/internal/store"
)

// Store is a Firestore-backed store.Store. It holds a shared client; create
// one per process and Close it when done.
type Store struct {
	client *firestore.Client
}

// New creates a Store for the given project. opts typically carries
// option.WithCredentialsFile when ADC is not configured.
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: creating client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Set implements store.Store. An empty id lets Firestore allocate one.
func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any) (string, error) {
	col := s.client.Collection(collection)
	ref := col.Doc(id)
	if id == "" {
		ref = col.NewDoc()
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return "", fmt.Errorf("set %s/%s: %w", collection, ref.ID, err)
	}
	return ref.ID, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return store.Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// Listen implements store.Store.
func (s *Store) Listen(ctx context.Context, collection string, q store.Query) store.Subscription {
	fq := s.client.Collection(collection).Query
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Descending {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	for _, c := range q.Conditions {
		fq = fq.Where(c.Field, c.Op, c.Value)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	lctx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		ch:     make(chan store.Snapshot, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	it := fq.Snapshots(lctx)
	go sub.pump(lctx, it)
	return sub
}

type subscription struct {
	ch     chan store.Snapshot
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Snapshots() <-chan store.Snapshot {
	return s.ch
}

// Close cancels the listener context and waits for the pump to stop the
// iterator, so the server-side listener is released before Close returns.
func (s *subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *subscription) pump(ctx context.Context, it *firestore.QuerySnapshotIterator) {
	defer close(s.done)
	defer close(s.ch)
	defer it.Stop()

	for {
		qsnap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil {
				return // closed by the owner, not a stream failure
			}
			s.send(ctx, store.Snapshot{Err: fmt.Errorf("listen: %w", err)})
			return
		}

		var docs []store.Document
		for {
			d, err := qsnap.Documents.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				s.send(ctx, store.Snapshot{Err: fmt.Errorf("listen: reading snapshot: %w", err)})
				return
			}
			docs = append(docs, store.Document{ID: d.Ref.ID, Data: d.Data()})
		}
		if !s.send(ctx, store.Snapshot{Docs: docs}) {
			return
		}
	}
}

func (s *subscription) send(ctx context.Context, snap store.Snapshot) bool {
	select {
	case s.ch <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}
