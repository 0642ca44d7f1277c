package view

import (
	"context"
	"sync"

	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
)

// TransactionsView owns the filter state of the transactions list. Every
// mutator adjusts the filter and re-issues the live query, so the feed
// always reflects the latest selection.
type TransactionsView struct {
	repo *finance.Repository
	feed *finance.Feed
	uid  string

	mu     sync.Mutex
	filter domain.TxFilter
}

func NewTransactionsView(ctx context.Context, repo *finance.Repository, uid string) *TransactionsView {
	v := &TransactionsView{
		repo:   repo,
		feed:   finance.NewFeed(repo, uid),
		uid:    uid,
		filter: domain.TxFilter{NewestFirst: true},
	}
	v.feed.SetFilter(ctx, v.filter)
	return v
}

func (v *TransactionsView) Updates() <-chan finance.Snapshot[domain.Transaction] {
	return v.feed.Updates()
}

func (v *TransactionsView) Filter() domain.TxFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *TransactionsView) SetSearch(ctx context.Context, term string) {
	v.mutate(ctx, func(f *domain.TxFilter) { f.SearchNote = term })
}

func (v *TransactionsView) SetType(ctx context.Context, t *domain.TxType) {
	v.mutate(ctx, func(f *domain.TxFilter) { f.Type = t })
}

func (v *TransactionsView) SetCategory(ctx context.Context, categoryID *string) {
	v.mutate(ctx, func(f *domain.TxFilter) { f.CategoryID = categoryID })
}

func (v *TransactionsView) SetNewestFirst(ctx context.Context, newestFirst bool) {
	v.mutate(ctx, func(f *domain.TxFilter) { f.NewestFirst = newestFirst })
}

// SetStartDate sets the inclusive lower bound. A start past the current
// end date clears the end date so the range never inverts.
func (v *TransactionsView) SetStartDate(ctx context.Context, epochMillis int64) {
	v.mutate(ctx, func(f *domain.TxFilter) {
		f.StartEpochMillis = &epochMillis
		if f.EndEpochMillis != nil && *f.EndEpochMillis < epochMillis {
			f.EndEpochMillis = nil
		}
	})
}

// SetEndDate sets the inclusive upper bound, clearing a start date that
// lies past it.
func (v *TransactionsView) SetEndDate(ctx context.Context, epochMillis int64) {
	v.mutate(ctx, func(f *domain.TxFilter) {
		f.EndEpochMillis = &epochMillis
		if f.StartEpochMillis != nil && *f.StartEpochMillis > epochMillis {
			f.StartEpochMillis = nil
		}
	})
}

func (v *TransactionsView) ClearDates(ctx context.Context) {
	v.mutate(ctx, func(f *domain.TxFilter) {
		f.StartEpochMillis = nil
		f.EndEpochMillis = nil
	})
}

func (v *TransactionsView) Delete(ctx context.Context, txID string) error {
	return v.repo.DeleteTransaction(ctx, v.uid, txID)
}

func (v *TransactionsView) Close() {
	v.feed.Close()
}

func (v *TransactionsView) mutate(ctx context.Context, apply func(*domain.TxFilter)) {
	v.mu.Lock()
	apply(&v.filter)
	next := v.filter
	v.mu.Unlock()
	v.feed.SetFilter(ctx, next)
}
