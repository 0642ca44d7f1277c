package notionsync

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"

	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
	"pocketledger/internal/store/memory"
)

type fakeNotion struct {
	pages    []notionapi.Page
	created  []notionapi.Properties
	updated  map[string]notionapi.Properties
	archived []string
}

func newFakeNotion(pages ...notionapi.Page) *fakeNotion {
	return &fakeNotion{pages: pages, updated: make(map[string]notionapi.Properties)}
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, props notionapi.Properties) (*notionapi.Page, error) {
	f.created = append(f.created, props)
	return &notionapi.Page{ID: notionapi.ObjectID("new")}, nil
}

func (f *fakeNotion) UpdatePage(ctx context.Context, pageID string, props notionapi.Properties) (*notionapi.Page, error) {
	f.updated[pageID] = props
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: f.pages}, nil
}

func (f *fakeNotion) ArchivePage(ctx context.Context, pageID string) error {
	f.archived = append(f.archived, pageID)
	return nil
}

func existingPage(pageID, txID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Transaction ID": &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: txID}},
			},
		},
	}
}

func seededRepo(t *testing.T) *finance.Repository {
	t.Helper()
	repo := finance.NewRepository(memory.New())
	ctx := context.Background()
	if _, err := repo.UpsertCategory(ctx, "u1", domain.Category{ID: "c1", Name: "Food", CreatedAt: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.UpsertTransaction(ctx, "u1", domain.Transaction{ID: "t1", Amount: 40, Type: domain.Expense, CategoryID: "c1", Note: "groceries", DateEpochMillis: 2000}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.UpsertTransaction(ctx, "u1", domain.Transaction{ID: "t2", Amount: 100, Type: domain.Income, Note: "salary", DateEpochMillis: 3000}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func TestSyncCreatesUpdatesAndArchives(t *testing.T) {
	repo := seededRepo(t)
	// p1 mirrors t1, p2 mirrors a transaction that no longer exists.
	notion := newFakeNotion(existingPage("p1", "t1"), existingPage("p2", "gone"))

	stats, err := NewSyncer(repo, notion, "db", false).Run(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Created != 1 || stats.Updated != 1 || stats.Archived != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(notion.archived) != 1 || notion.archived[0] != "p2" {
		t.Errorf("archived = %v", notion.archived)
	}
	if _, ok := notion.updated["p1"]; !ok {
		t.Errorf("t1's page was not updated: %v", notion.updated)
	}
	if len(notion.created) != 1 {
		t.Fatalf("created = %d pages", len(notion.created))
	}
}

func TestSyncDryRunTouchesNothing(t *testing.T) {
	repo := seededRepo(t)
	notion := newFakeNotion(existingPage("p2", "gone"))

	stats, err := NewSyncer(repo, notion, "db", true).Run(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Created != 2 || stats.Archived != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(notion.created) != 0 || len(notion.archived) != 0 || len(notion.updated) != 0 {
		t.Error("dry run performed writes")
	}
}

func TestTransactionProperties(t *testing.T) {
	tx := domain.Transaction{ID: "t1", Amount: 40, Type: domain.Expense, CategoryID: "c1", Note: "groceries", DateEpochMillis: 2000}

	props := TransactionProperties(tx, map[string]string{"c1": "Food"})

	title := props["Description"].(notionapi.TitleProperty)
	if title.Title[0].Text.Content != "groceries" {
		t.Errorf("title = %q", title.Title[0].Text.Content)
	}
	if got := props["Amount"].(notionapi.NumberProperty).Number; got != 40 {
		t.Errorf("amount = %v", got)
	}
	if got := props["Category"].(notionapi.SelectProperty).Select.Name; got != "Food" {
		t.Errorf("category = %q", got)
	}

	// Blank note falls back to a synthesized title, dangling category to
	// the raw id.
	tx.Note = ""
	tx.CategoryID = "gone"
	props = TransactionProperties(tx, map[string]string{"c1": "Food"})
	title = props["Description"].(notionapi.TitleProperty)
	if title.Title[0].Text.Content != "EXPENSE 40.00" {
		t.Errorf("fallback title = %q", title.Title[0].Text.Content)
	}
	if got := props["Category"].(notionapi.SelectProperty).Select.Name; got != "gone" {
		t.Errorf("fallback category = %q", got)
	}

	// Uncategorized transactions omit the Category property.
	tx.CategoryID = ""
	props = TransactionProperties(tx, nil)
	if _, ok := props["Category"]; ok {
		t.Error("uncategorized transaction got a Category property")
	}
}
