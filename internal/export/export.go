// Package export copies a user's ledger into BigQuery for analytics.
// Rows are flattened: category names are resolved at export time so the
// dataset can be queried without a join.
package export

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/option"

	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
	"pocketledger/internal/logger"
)

// TransactionRow is the BigQuery shape of a transaction.
type TransactionRow struct {
	UserID        string `bigquery:"user_id"`
	TransactionID string `bigquery:"transaction_id"`

	Date   civil.Date `bigquery:"date"`
	Amount float64    `bigquery:"amount"`
	Type   string     `bigquery:"type"`

	CategoryID   bigquery.NullString `bigquery:"category_id"`
	CategoryName bigquery.NullString `bigquery:"category_name"`

	Note string `bigquery:"note"`

	CreatedTS  time.Time `bigquery:"created_ts"`
	ExportedTS time.Time `bigquery:"exported_ts"`
}

type Exporter struct {
	client  *bigquery.Client
	repo    *finance.Repository
	dataset string
	table   string
}

func NewExporter(ctx context.Context, projectID, dataset, table string, repo *finance.Repository, opts ...option.ClientOption) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("export: bigquery client: %w", err)
	}
	return &Exporter{client: client, repo: repo, dataset: dataset, table: table}, nil
}

func (e *Exporter) Close() error {
	return e.client.Close()
}

// Run exports the user's full transaction history and returns the
// number of rows written.
func (e *Exporter) Run(ctx context.Context, uid string) (int, error) {
	log := logger.FromContext(ctx)

	txStream := e.repo.ObserveTransactions(ctx, uid, domain.TxFilter{NewestFirst: true})
	defer txStream.Close()
	txs, err := txStream.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: read transactions: %w", err)
	}

	catStream := e.repo.ObserveCategories(ctx, uid)
	defer catStream.Close()
	cats, err := catStream.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: read categories: %w", err)
	}

	rows := buildRows(uid, txs, cats, time.Now().UTC())
	if len(rows) == 0 {
		log.Info().Str("uid", uid).Msg("nothing to export")
		return 0, nil
	}

	inserter := e.client.Dataset(e.dataset).Table(e.table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("export: insert rows: %w", err)
	}

	log.Info().Str("uid", uid).Int("rows", len(rows)).Msg("export complete")
	return len(rows), nil
}

func buildRows(uid string, txs []domain.Transaction, cats []domain.Category, exportedTS time.Time) []*TransactionRow {
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		row := &TransactionRow{
			UserID:        uid,
			TransactionID: tx.ID,
			Date:          civil.DateOf(time.UnixMilli(tx.DateEpochMillis).UTC()),
			Amount:        tx.Amount,
			Type:          string(tx.Type),
			Note:          tx.Note,
			CreatedTS:     time.UnixMilli(tx.CreatedAt).UTC(),
			ExportedTS:    exportedTS,
		}
		if tx.CategoryID != "" {
			row.CategoryID = bigquery.NullString{StringVal: tx.CategoryID, Valid: true}
			if name, ok := names[tx.CategoryID]; ok {
				row.CategoryName = bigquery.NullString{StringVal: name, Valid: true}
			}
		}
		rows = append(rows, row)
	}
	return rows
}
