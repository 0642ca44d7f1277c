// Package finance is the live query engine over the document store: it
// translates filter specifications into native queries, decodes snapshots
// into the typed model, and applies the client-side filter pass.
package finance

import (
	"context"
	"errors"
	"fmt"

	"pocketledger/internal/domain"
	"pocketledger/internal/store"
)

// ErrCategoryNotFound and ErrTransactionNotFound mark lookups of absent
// documents so callers can distinguish them from transport failures.
var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

const fieldDate = "dateEpochMillis"

// Repository issues reads, writes and live queries against one user's
// categories and transactions.
type Repository struct {
	store store.Store
}

// NewRepository creates a Repository over the given store gateway.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// ObserveCategories opens a live query over all of uid's categories, newest
// first. Close the returned stream when the owning view goes away.
func (r *Repository) ObserveCategories(ctx context.Context, uid string) *Stream[domain.Category] {
	sub := r.store.Listen(ctx, categoriesPath(uid), store.Query{
		OrderBy:    "createdAt",
		Descending: true,
	})
	return newStream(sub, func(d store.Document) domain.Category {
		return domain.DecodeCategory(d.ID, d.Data)
	}, nil)
}

// ObserveTransactions opens a live query for the given filter. Sorting,
// equality and range conditions and the limit run on the store; the note
// search runs client-side on every snapshot.
func (r *Repository) ObserveTransactions(ctx context.Context, uid string, f domain.TxFilter) *Stream[domain.Transaction] {
	q := store.Query{
		OrderBy:    fieldDate,
		Descending: f.NewestFirst,
		Limit:      f.Limit,
	}
	if f.Type != nil {
		q = q.Where("type", store.OpEqual, string(*f.Type))
	}
	if f.CategoryID != nil {
		q = q.Where("categoryId", store.OpEqual, *f.CategoryID)
	}
	if f.StartEpochMillis != nil {
		q = q.Where(fieldDate, store.OpGreaterOrEqual, *f.StartEpochMillis)
	}
	if f.EndEpochMillis != nil {
		q = q.Where(fieldDate, store.OpLessOrEqual, *f.EndEpochMillis)
	}

	sub := r.store.Listen(ctx, transactionsPath(uid), q)
	return newStream(sub, func(d store.Document) domain.Transaction {
		return domain.DecodeTransaction(d.ID, d.Data)
	}, func(txs []domain.Transaction) []domain.Transaction {
		return FilterByNote(txs, f.SearchNote)
	})
}

// UpsertCategory writes the full category record, allocating an id when
// empty. The stored document never embeds the id.
func (r *Repository) UpsertCategory(ctx context.Context, uid string, c domain.Category) (string, error) {
	id, err := r.store.Set(ctx, categoriesPath(uid), c.ID, domain.EncodeCategory(c))
	if err != nil {
		return "", fmt.Errorf("save category: %w", err)
	}
	return id, nil
}

// DeleteCategory removes a category by id. No cascade: transactions keep
// their categoryId and resolve to "Unknown" downstream.
func (r *Repository) DeleteCategory(ctx context.Context, uid, categoryID string) error {
	if err := r.store.Delete(ctx, categoriesPath(uid), categoryID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// GetCategory reads one category by id.
func (r *Repository) GetCategory(ctx context.Context, uid, categoryID string) (domain.Category, error) {
	doc, err := r.store.Get(ctx, categoriesPath(uid), categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("load category: %w", err)
	}
	return domain.DecodeCategory(doc.ID, doc.Data), nil
}

// UpsertTransaction writes the full transaction record, allocating an id
// when empty.
func (r *Repository) UpsertTransaction(ctx context.Context, uid string, tx domain.Transaction) (string, error) {
	id, err := r.store.Set(ctx, transactionsPath(uid), tx.ID, domain.EncodeTransaction(tx))
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}
	return id, nil
}

// DeleteTransaction removes a transaction by id.
func (r *Repository) DeleteTransaction(ctx context.Context, uid, txID string) error {
	if err := r.store.Delete(ctx, transactionsPath(uid), txID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// GetTransaction reads one transaction by id.
func (r *Repository) GetTransaction(ctx context.Context, uid, txID string) (domain.Transaction, error) {
	doc, err := r.store.Get(ctx, transactionsPath(uid), txID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	return domain.DecodeTransaction(doc.ID, doc.Data), nil
}
