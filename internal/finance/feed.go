package finance

import (
	"context"
	"sync"

	"pocketledger/internal/domain"
)

// Feed multiplexes one logical transaction view over changing filter
// specifications. SetFilter atomically replaces the active subscription:
// the old listener is torn down before the new one opens, and a generation
// guard drops any emission from a stale subscription that was already in
// flight. Consumers therefore never see results from two specifications
// interleaved.
type Feed struct {
	repo *Repository
	uid  string
	out  chan Snapshot[domain.Transaction]

	mu     sync.Mutex
	gen    int
	cur    *Stream[domain.Transaction]
	closed bool
}

// NewFeed creates a feed without an active subscription; call SetFilter to
// start one.
func NewFeed(repo *Repository, uid string) *Feed {
	return &Feed{
		repo: repo,
		uid:  uid,
		out:  make(chan Snapshot[domain.Transaction], 1),
	}
}

// Updates delivers snapshots for the most recently set filter, latest wins.
func (f *Feed) Updates() <-chan Snapshot[domain.Transaction] {
	return f.out
}

// SetFilter tears down the previous subscription and opens one for spec.
func (f *Feed) SetFilter(ctx context.Context, spec domain.TxFilter) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.gen++
	gen := f.gen
	if f.cur != nil {
		f.cur.Close()
	}
	stream := f.repo.ObserveTransactions(ctx, f.uid, spec)
	f.cur = stream
	f.mu.Unlock()

	go f.pump(gen, stream)
}

// Close tears down the active subscription and closes Updates.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.gen++
	if f.cur != nil {
		f.cur.Close()
		f.cur = nil
	}
	close(f.out)
}

func (f *Feed) pump(gen int, stream *Stream[domain.Transaction]) {
	for snap := range stream.Updates() {
		if !f.deliver(gen, snap) {
			return
		}
	}
}

// deliver forwards a snapshot only if its subscription is still current.
// The generation check and the channel write happen under the same lock, so
// a stale pump can never slip a snapshot in after a newer filter took over.
func (f *Feed) deliver(gen int, snap Snapshot[domain.Transaction]) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.gen {
		return false
	}
	select {
	case f.out <- snap:
	default:
		select {
		case <-f.out:
		default:
		}
		f.out <- snap
	}
	return true
}
