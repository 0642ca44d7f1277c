package export

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"pocketledger/internal/domain"
)

func TestBuildRows(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "t1", Amount: 100, Type: domain.Income, Note: "salary", DateEpochMillis: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC).UnixMilli(), CreatedAt: 1000},
		{ID: "t2", Amount: 40, Type: domain.Expense, CategoryID: "c1", DateEpochMillis: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{ID: "t3", Amount: 10, Type: domain.Expense, CategoryID: "gone", DateEpochMillis: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).UnixMilli()},
	}
	cats := []domain.Category{{ID: "c1", Name: "Food"}}
	exportedTS := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := buildRows("u1", txs, cats, exportedTS)
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}

	r := rows[0]
	if r.UserID != "u1" || r.TransactionID != "t1" {
		t.Errorf("identity fields: %+v", r)
	}
	if r.Date != civil.DateOf(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", r.Date)
	}
	if r.Type != "INCOME" || r.Amount != 100 {
		t.Errorf("amount/type: %+v", r)
	}
	if r.CategoryID.Valid {
		t.Error("uncategorized transaction got a category id")
	}
	if r.ExportedTS != exportedTS {
		t.Errorf("exportedTS = %v", r.ExportedTS)
	}

	if !rows[1].CategoryName.Valid || rows[1].CategoryName.StringVal != "Food" {
		t.Errorf("category name not resolved: %+v", rows[1].CategoryName)
	}

	// A dangling category id is kept but the name stays null.
	if !rows[2].CategoryID.Valid || rows[2].CategoryID.StringVal != "gone" {
		t.Errorf("dangling category id dropped: %+v", rows[2].CategoryID)
	}
	if rows[2].CategoryName.Valid {
		t.Errorf("dangling category resolved a name: %+v", rows[2].CategoryName)
	}
}

func TestBuildRowsEmpty(t *testing.T) {
	if rows := buildRows("u1", nil, nil, time.Now()); len(rows) != 0 {
		t.Errorf("got %d rows for empty input", len(rows))
	}
}
