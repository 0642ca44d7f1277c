package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocketledger/internal/domain"
	"pocketledger/internal/store"
)

// brokenStore fails every call and hands out subscriptions whose listener
// has already broken, standing in for a backend that lost its stream.
type brokenStore struct {
	err error
}

func (s *brokenStore) Set(ctx context.Context, collection, id string, data map[string]any) (string, error) {
	return "", s.err
}

func (s *brokenStore) Delete(ctx context.Context, collection, id string) error {
	return s.err
}

func (s *brokenStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	return store.Document{}, s.err
}

func (s *brokenStore) Listen(ctx context.Context, collection string, q store.Query) store.Subscription {
	ch := make(chan store.Snapshot, 1)
	ch <- store.Snapshot{Err: s.err}
	close(ch)
	return &brokenSub{ch: ch}
}

type brokenSub struct {
	ch chan store.Snapshot
}

func (s *brokenSub) Snapshots() <-chan store.Snapshot { return s.ch }

func (s *brokenSub) Close() {}

func TestStreamTerminalError(t *testing.T) {
	boom := errors.New("listen: connection reset")
	repo := NewRepository(&brokenStore{err: boom})
	stream := repo.ObserveTransactions(context.Background(), "u1", domain.TxFilter{})
	defer stream.Close()

	select {
	case snap := <-stream.Updates():
		if !errors.Is(snap.Err, boom) {
			t.Fatalf("snapshot error = %v, want %v", snap.Err, boom)
		}
		if len(snap.Records) != 0 {
			t.Fatalf("error snapshot carries records: %+v", snap.Records)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after listener failure")
	}

	select {
	case snap, ok := <-stream.Updates():
		if ok {
			t.Fatalf("snapshot after terminal error: %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("updates channel not closed after terminal error")
	}
}

func TestStreamNextReturnsTerminalError(t *testing.T) {
	boom := errors.New("listen: permission denied")
	repo := NewRepository(&brokenStore{err: boom})
	stream := repo.ObserveCategories(context.Background(), "u1")
	defer stream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := stream.Next(ctx); !errors.Is(err, boom) {
		t.Fatalf("Next error = %v, want %v", err, boom)
	}
}
