package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
	"pocketledger/internal/store/memory"
)

func newEditor(t *testing.T) (*TransactionEditor, *finance.Repository) {
	t.Helper()
	repo := finance.NewRepository(memory.New())
	ed := NewTransactionEditor(repo, "u1")
	return ed, repo
}

func TestEditorRejectsBadAmount(t *testing.T) {
	ed, _ := newEditor(t)
	ctx := context.Background()

	for _, amount := range []string{"", "abc", "0", "-5", "0.0"} {
		_, err := ed.Save(ctx, EditInput{AmountText: amount, CategoryID: "c1"})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %q: got %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestEditorRejectsMissingCategory(t *testing.T) {
	ed, _ := newEditor(t)

	_, err := ed.Save(context.Background(), EditInput{AmountText: "10", CategoryID: "  "})
	if !errors.Is(err, ErrMissingCategory) {
		t.Errorf("got %v, want ErrMissingCategory", err)
	}
}

func TestEditorCreateDefaults(t *testing.T) {
	ed, repo := newEditor(t)
	ed.now = func() int64 { return 5000 }
	ctx := context.Background()

	id, err := ed.Save(ctx, EditInput{AmountText: " 12.50 ", CategoryID: "c1", Note: "  lunch  "})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetTransaction(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount != 12.5 {
		t.Errorf("amount = %v", got.Amount)
	}
	if got.Type != domain.Expense {
		t.Errorf("type = %q, want default EXPENSE", got.Type)
	}
	if got.Note != "lunch" {
		t.Errorf("note = %q, want trimmed", got.Note)
	}
	if got.CreatedAt != 5000 || got.DateEpochMillis != 5000 {
		t.Errorf("createdAt=%d date=%d, want both defaulted to now", got.CreatedAt, got.DateEpochMillis)
	}
}

func TestEditorEditPreservesCreatedAt(t *testing.T) {
	ed, repo := newEditor(t)
	ed.now = func() int64 { return 1000 }
	ctx := context.Background()

	id, err := ed.Save(ctx, EditInput{AmountText: "10", CategoryID: "c1", DateEpochMillis: 800})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ed.now = func() int64 { return 9000 }
	if _, err := ed.Save(ctx, EditInput{TxID: id, AmountText: "25", CategoryID: "c2"}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	got, err := repo.GetTransaction(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.CreatedAt != 1000 {
		t.Errorf("createdAt = %d, want original 1000", got.CreatedAt)
	}
	if got.DateEpochMillis != 800 {
		t.Errorf("date = %d, want original 800 when input leaves it unset", got.DateEpochMillis)
	}
	if got.Amount != 25 || got.CategoryID != "c2" {
		t.Errorf("edited fields not applied: %+v", got)
	}
}

func TestEditorEditUnknownID(t *testing.T) {
	ed, _ := newEditor(t)

	_, err := ed.Save(context.Background(), EditInput{TxID: "missing", AmountText: "10", CategoryID: "c1"})
	if !errors.Is(err, finance.ErrTransactionNotFound) {
		t.Errorf("got %v, want wrapped ErrTransactionNotFound", err)
	}
}

func TestDateRangeCrossClearing(t *testing.T) {
	repo := finance.NewRepository(memory.New())
	ctx := context.Background()
	v := NewTransactionsView(ctx, repo, "u1")
	defer v.Close()

	v.SetStartDate(ctx, 1000)
	v.SetEndDate(ctx, 2000)
	f := v.Filter()
	if f.StartEpochMillis == nil || *f.StartEpochMillis != 1000 || f.EndEpochMillis == nil || *f.EndEpochMillis != 2000 {
		t.Fatalf("range not set: %+v", f)
	}

	// Start past the end clears the end.
	v.SetStartDate(ctx, 3000)
	f = v.Filter()
	if f.EndEpochMillis != nil {
		t.Errorf("end date survived a later start: %+v", f)
	}
	if f.StartEpochMillis == nil || *f.StartEpochMillis != 3000 {
		t.Errorf("start not applied: %+v", f)
	}

	// End before the start clears the start.
	v.SetEndDate(ctx, 500)
	f = v.Filter()
	if f.StartEpochMillis != nil {
		t.Errorf("start date survived an earlier end: %+v", f)
	}

	v.ClearDates(ctx)
	f = v.Filter()
	if f.StartEpochMillis != nil || f.EndEpochMillis != nil {
		t.Errorf("ClearDates left bounds: %+v", f)
	}
}

func TestMutatorsReissueQuery(t *testing.T) {
	repo := finance.NewRepository(memory.New())
	ctx := context.Background()

	if _, err := repo.UpsertTransaction(ctx, "u1", domain.Transaction{ID: "t1", Amount: 100, Type: domain.Income, Note: "salary", DateEpochMillis: 3000}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.UpsertTransaction(ctx, "u1", domain.Transaction{ID: "t2", Amount: 10, Type: domain.Expense, CategoryID: "c1", Note: "coffee", DateEpochMillis: 2000}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	v := NewTransactionsView(ctx, repo, "u1")
	defer v.Close()

	v.SetSearch(ctx, "coffee")

	deadline := time.After(time.Second)
	for {
		select {
		case snap := <-v.Updates():
			if snap.Err != nil {
				t.Fatalf("snapshot error: %v", snap.Err)
			}
			if len(snap.Records) == 1 && snap.Records[0].ID == "t2" {
				return
			}
		case <-deadline:
			t.Fatal("feed never converged on the search term")
		}
	}
}

func TestUiState(t *testing.T) {
	if s := LoadingState[[]domain.Transaction](); !s.Loading || s.Err != nil {
		t.Errorf("LoadingState = %+v", s)
	}
	boom := errors.New("boom")
	if s := ErrState[[]domain.Transaction](boom); s.Loading || s.Err != boom {
		t.Errorf("ErrState = %+v", s)
	}
	s := DataState([]domain.Transaction{{ID: "t1"}})
	if s.Loading || s.Err != nil || len(s.Data) != 1 {
		t.Errorf("DataState = %+v", s)
	}
}

func TestCategoriesSave(t *testing.T) {
	repo := finance.NewRepository(memory.New())
	v := NewCategoriesView(repo, "u1")
	v.now = func() int64 { return 4000 }
	ctx := context.Background()

	if _, err := v.Save(ctx, domain.Category{Name: "   "}); !errors.Is(err, ErrBlankCategoryName) {
		t.Errorf("blank name: got %v, want ErrBlankCategoryName", err)
	}

	id, err := v.Save(ctx, domain.Category{Name: "  Food "})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.GetCategory(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Name != "Food" {
		t.Errorf("name = %q, want trimmed", got.Name)
	}
	if got.ColorHex != domain.DefaultColorHex {
		t.Errorf("color = %q, want default", got.ColorHex)
	}
	if got.CreatedAt != 4000 {
		t.Errorf("createdAt = %d, want defaulted", got.CreatedAt)
	}

	if err := v.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetCategory(ctx, "u1", id); !errors.Is(err, finance.ErrCategoryNotFound) {
		t.Errorf("expected not-found after delete, got %v", err)
	}
}
