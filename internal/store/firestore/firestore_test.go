package firestore

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"pocketledger/internal/store"
)

// The real pump runs against a live snapshot iterator, so this drives the
// subscription with a stand-in goroutine that follows the same shutdown
// sequence: release the listener, close the channel, then signal done.
func TestSubscriptionCloseWaitsForListenerRelease(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{
		ch:     make(chan store.Snapshot, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	var released atomic.Bool
	go func() {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		released.Store(true)
		close(sub.ch)
		close(sub.done)
	}()

	sub.Close()
	if !released.Load() {
		t.Fatal("Close returned before the listener was released")
	}
	if _, ok := <-sub.Snapshots(); ok {
		t.Fatal("snapshot channel still open after Close")
	}
}
