package dashboard

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"pocketledger/internal/domain"
)

// MonthTotals aggregates one calendar month of a user's ledger.
type MonthTotals struct {
	Year    int
	Month   time.Month
	Income  float64
	Expense float64
}

// Balance is the month's net result.
func (m MonthTotals) Balance() float64 {
	return m.Income - m.Expense
}

// MonthlyTotals buckets transactions by the calendar month of their logical
// date (UTC) and returns the buckets newest first.
func MonthlyTotals(txs []domain.Transaction) []MonthTotals {
	type key struct {
		year  int
		month time.Month
	}
	buckets := make(map[key]*MonthTotals)

	for _, tx := range txs {
		d := civil.DateOf(time.UnixMilli(tx.DateEpochMillis).UTC())
		k := key{year: d.Year, month: d.Month}
		b := buckets[k]
		if b == nil {
			b = &MonthTotals{Year: d.Year, Month: d.Month}
			buckets[k] = b
		}
		switch tx.Type {
		case domain.Income:
			b.Income += tx.Amount
		case domain.Expense:
			b.Expense += tx.Amount
		}
	}

	out := make([]MonthTotals, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out
}
