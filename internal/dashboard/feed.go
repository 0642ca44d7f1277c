package dashboard

import (
	"context"
	"sync"

	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
)

// Update is one recomputed dashboard state, or the terminal error of
// whichever upstream subscription failed first.
type Update struct {
	Summary Summary
	Err     error
}

// Feed subscribes to a user's transactions (newest first, store-limited) and
// categories, and recomputes the summary whenever either side emits. The two
// streams are independent: there is no pairing of emissions, only "latest
// value of both".
type Feed struct {
	out chan Update

	txs  *finance.Stream[domain.Transaction]
	cats *finance.Stream[domain.Category]

	closeOnce sync.Once
}

// NewFeed opens both subscriptions and starts combining. Close releases
// them.
func NewFeed(ctx context.Context, repo *finance.Repository, uid string) *Feed {
	f := &Feed{
		out:  make(chan Update, 1),
		txs:  repo.ObserveTransactions(ctx, uid, domain.TxFilter{NewestFirst: true, Limit: QueryLimit}),
		cats: repo.ObserveCategories(ctx, uid),
	}
	go f.combine()
	return f
}

// Updates delivers recomputed summaries, latest wins. The channel closes
// after a terminal error or after Close.
func (f *Feed) Updates() <-chan Update {
	return f.out
}

// Next waits for the next recomputed summary.
func (f *Feed) Next(ctx context.Context) (Summary, error) {
	select {
	case u, ok := <-f.out:
		if !ok {
			return Summary{}, context.Canceled
		}
		if u.Err != nil {
			return Summary{}, u.Err
		}
		return u.Summary, nil
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
}

// Close tears down both upstream subscriptions.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.txs.Close()
		f.cats.Close()
	})
}

func (f *Feed) combine() {
	defer close(f.out)

	var (
		latestTxs  []domain.Transaction
		latestCats []domain.Category
	)
	txCh := f.txs.Updates()
	catCh := f.cats.Updates()

	for txCh != nil || catCh != nil {
		select {
		case snap, ok := <-txCh:
			if !ok {
				txCh = nil
				continue
			}
			if snap.Err != nil {
				f.push(Update{Err: snap.Err})
				f.Close()
				return
			}
			latestTxs = snap.Records
		case snap, ok := <-catCh:
			if !ok {
				catCh = nil
				continue
			}
			if snap.Err != nil {
				f.push(Update{Err: snap.Err})
				f.Close()
				return
			}
			latestCats = snap.Records
		}
		f.push(Update{Summary: Summarize(latestTxs, latestCats)})
	}
}

// push replaces an undelivered update with the newer one. Only the combine
// goroutine sends.
func (f *Feed) push(u Update) {
	select {
	case f.out <- u:
	default:
		select {
		case <-f.out:
		default:
		}
		f.out <- u
	}
}
