package finance

import (
	"context"
	"sync"

	"pocketledger/internal/store"
)

// Snapshot is one decoded result set from a live query. Err set means the
// subscription failed; no further snapshots follow and the consumer decides
// whether to re-open.
type Snapshot[T any] struct {
	Records []T
	Err     error
}

// Stream adapts a raw store subscription into typed snapshots. decode runs
// per document; transform (optional) runs per decoded result set, which is
// where the client-side filter pass lives.
type Stream[T any] struct {
	ch  chan Snapshot[T]
	sub store.Subscription

	closeOnce sync.Once
}

func newStream[T any](sub store.Subscription, decode func(store.Document) T, transform func([]T) []T) *Stream[T] {
	s := &Stream[T]{
		ch:  make(chan Snapshot[T], 1),
		sub: sub,
	}
	go func() {
		defer close(s.ch)
		for raw := range sub.Snapshots() {
			if raw.Err != nil {
				s.push(Snapshot[T]{Err: raw.Err})
				return
			}
			records := make([]T, 0, len(raw.Docs))
			for _, d := range raw.Docs {
				records = append(records, decode(d))
			}
			if transform != nil {
				records = transform(records)
			}
			s.push(Snapshot[T]{Records: records})
		}
	}()
	return s
}

// Updates delivers snapshots latest-first-wins: an unread snapshot is
// replaced by a newer one. The channel closes after a terminal error or
// after Close.
func (s *Stream[T]) Updates() <-chan Snapshot[T] {
	return s.ch
}

// Next waits for the next snapshot. It unwraps terminal errors, and returns
// ctx.Err when the context wins.
func (s *Stream[T]) Next(ctx context.Context) ([]T, error) {
	select {
	case snap, ok := <-s.ch:
		if !ok {
			return nil, context.Canceled
		}
		if snap.Err != nil {
			return nil, snap.Err
		}
		return snap.Records, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close tears down the underlying store listener. Idempotent.
func (s *Stream[T]) Close() {
	s.closeOnce.Do(s.sub.Close)
}

// push replaces an undelivered snapshot with the newer one. Only the pump
// goroutine sends, so the drain-then-send pair cannot race another sender.
func (s *Stream[T]) push(snap Snapshot[T]) {
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
