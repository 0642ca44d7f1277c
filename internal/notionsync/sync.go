package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
	"pocketledger/internal/logger"
)

// Stats summarizes one sync run.
type Stats struct {
	Created  int
	Updated  int
	Archived int
}

type Syncer struct {
	repo       *finance.Repository
	notion     PageService
	databaseID string
	dryRun     bool
}

func NewSyncer(repo *finance.Repository, notion PageService, databaseID string, dryRun bool) *Syncer {
	return &Syncer{repo: repo, notion: notion, databaseID: databaseID, dryRun: dryRun}
}

// Run mirrors the user's transactions into the Notion database:
// stale pages are archived, known transactions updated in place, new
// ones created. Per-page failures are logged and skipped so one bad
// record cannot stall the run.
func (s *Syncer) Run(ctx context.Context, uid string) (Stats, error) {
	log := logger.Component(logger.FromContext(ctx), "notionsync")
	var stats Stats

	txs, cats, err := s.readLedger(ctx, uid)
	if err != nil {
		return stats, err
	}

	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	valid := make(map[string]bool, len(txs))
	for _, tx := range txs {
		valid[tx.ID] = true
	}

	pages, err := s.queryAllPages(ctx)
	if err != nil {
		return stats, err
	}
	log.Info().Int("transactions", len(txs)).Int("pages", len(pages)).Bool("dry_run", s.dryRun).Msg("sync starting")

	// Pages without a transaction id, or whose transaction no longer
	// exists, are stale.
	pageByTxID := make(map[string]string, len(pages))
	for _, page := range pages {
		txID := pageTransactionID(page)
		if txID != "" && valid[txID] {
			pageByTxID[txID] = string(page.ID)
			continue
		}
		if s.dryRun {
			log.Info().Str("page_id", string(page.ID)).Str("transaction_id", txID).Msg("would archive stale page")
			stats.Archived++
			continue
		}
		if err := s.notion.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("page_id", string(page.ID)).Msg("archive failed")
			continue
		}
		stats.Archived++
	}

	for _, tx := range txs {
		pageID, exists := pageByTxID[tx.ID]
		if s.dryRun {
			if exists {
				stats.Updated++
			} else {
				stats.Created++
			}
			continue
		}

		props := TransactionProperties(tx, names)
		if exists {
			if _, err := s.notion.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("update failed")
				continue
			}
			stats.Updated++
		} else {
			if _, err := s.notion.CreatePage(ctx, s.databaseID, props); err != nil {
				log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("create failed")
				continue
			}
			stats.Created++
		}
	}

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("archived", stats.Archived).
		Msg("sync complete")
	return stats, nil
}

func (s *Syncer) readLedger(ctx context.Context, uid string) ([]domain.Transaction, []domain.Category, error) {
	txStream := s.repo.ObserveTransactions(ctx, uid, domain.TxFilter{NewestFirst: true})
	defer txStream.Close()
	txs, err := txStream.Next(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("sync: read transactions: %w", err)
	}

	catStream := s.repo.ObserveCategories(ctx, uid)
	defer catStream.Close()
	cats, err := catStream.Next(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("sync: read categories: %w", err)
	}
	return txs, cats, nil
}

func (s *Syncer) queryAllPages(ctx context.Context) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: 100}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := s.notion.QueryDatabase(ctx, s.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("sync: query pages: %w", err)
		}
		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return all, nil
}
