package finance

import (
	"strings"

	"pocketledger/internal/domain"
)

// FilterByNote applies the one predicate the store cannot express natively:
// case-insensitive substring containment of term in the note field. A blank
// or whitespace-only term passes every record through. Pure; re-applied to
// every snapshot.
func FilterByNote(txs []domain.Transaction, term string) []domain.Transaction {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return txs
	}
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.Note), t) {
			out = append(out, tx)
		}
	}
	return out
}
