package finance

import (
	"testing"

	"pocketledger/internal/domain"
)

func notes(txs []domain.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Note
	}
	return out
}

func TestFilterByNote(t *testing.T) {
	input := []domain.Transaction{
		{ID: "1", Note: "Groceries at Lidl"},
		{ID: "2", Note: "rent"},
		{ID: "3", Note: "GROCERIES again"},
		{ID: "4", Note: ""},
	}

	tests := []struct {
		name      string
		term      string
		wantNotes []string
	}{
		{"empty term is a no-op", "", []string{"Groceries at Lidl", "rent", "GROCERIES again", ""}},
		{"whitespace-only term is a no-op", "   \t", []string{"Groceries at Lidl", "rent", "GROCERIES again", ""}},
		{"case-insensitive match", "groceries", []string{"Groceries at Lidl", "GROCERIES again"}},
		{"uppercase term", "RENT", []string{"rent"}},
		{"substring in the middle", "at li", []string{"Groceries at Lidl"}},
		{"term is trimmed before matching", "  rent  ", []string{"rent"}},
		{"no match", "utilities", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := notes(FilterByNote(input, tt.term))
			if len(got) != len(tt.wantNotes) {
				t.Fatalf("got %v, want %v", got, tt.wantNotes)
			}
			for i := range got {
				if got[i] != tt.wantNotes[i] {
					t.Fatalf("got %v, want %v", got, tt.wantNotes)
				}
			}
		})
	}
}

func TestFilterByNoteDoesNotMutateInput(t *testing.T) {
	input := []domain.Transaction{{Note: "a"}, {Note: "b"}}
	FilterByNote(input, "a")
	if input[0].Note != "a" || input[1].Note != "b" {
		t.Error("input slice was mutated")
	}
}
