// Package dashboard derives the overview totals from live transaction and
// category snapshots. The two upstream streams arrive independently; every
// emission from either side triggers a full recomputation from the latest
// pair. No incremental state is kept.
package dashboard

import (
	"sort"

	"pocketledger/internal/domain"
)

const (
	// QueryLimit caps the dashboard's transaction subscription at the store.
	QueryLimit = 20
	// RecentCount is how many of the delivered records the summary surfaces.
	RecentCount = 10
)

// UnknownCategoryName labels expense groups whose category no longer exists.
const UnknownCategoryName = "Unknown"

// CategoryExpense is one entry of the per-category expense breakdown.
type CategoryExpense struct {
	CategoryID   string
	CategoryName string
	ColorHex     string
	Amount       float64
}

// Summary is the fully derived dashboard state. It has no identity of its
// own and is recomputed wholesale on every upstream snapshot.
type Summary struct {
	Income            float64
	Expense           float64
	Balance           float64
	Recent            []domain.Transaction
	ExpenseByCategory []CategoryExpense
}

// Summarize computes the dashboard state from the latest transaction and
// category snapshots. The transaction list is taken as delivered: the
// upstream query already sorted and limited it, so Recent is simply its
// head. Expense groups keep the insertion order of their first occurrence,
// then sort descending by amount; the stable sort makes equal amounts keep
// that insertion order.
func Summarize(txs []domain.Transaction, cats []domain.Category) Summary {
	var income, expense float64

	byID := make(map[string]domain.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	groupIdx := make(map[string]int)
	var groups []CategoryExpense

	for _, tx := range txs {
		switch tx.Type {
		case domain.Income:
			income += tx.Amount
		case domain.Expense:
			expense += tx.Amount

			i, ok := groupIdx[tx.CategoryID]
			if !ok {
				name, color := UnknownCategoryName, domain.DefaultColorHex
				if c, found := byID[tx.CategoryID]; found {
					name, color = c.Name, c.ColorHex
				}
				i = len(groups)
				groupIdx[tx.CategoryID] = i
				groups = append(groups, CategoryExpense{
					CategoryID:   tx.CategoryID,
					CategoryName: name,
					ColorHex:     color,
				})
			}
			groups[i].Amount += tx.Amount
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount > groups[j].Amount
	})

	recent := txs
	if len(recent) > RecentCount {
		recent = recent[:RecentCount]
	}

	return Summary{
		Income:            income,
		Expense:           expense,
		Balance:           income - expense,
		Recent:            recent,
		ExpenseByCategory: groups,
	}
}
