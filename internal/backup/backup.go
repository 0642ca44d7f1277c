// Package backup writes point-in-time JSON snapshots of a user's ledger
// to a GCS bucket and restores from them. Restore replays the snapshot
// through the repository, so it works against any store backend.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
	"pocketledger/internal/logger"
)

// Snapshot is the on-disk backup format.
type Snapshot struct {
	UID          string               `json:"uid"`
	TakenAt      time.Time            `json:"takenAt"`
	Categories   []domain.Category    `json:"categories"`
	Transactions []domain.Transaction `json:"transactions"`
}

type Service struct {
	client *storage.Client
	repo   *finance.Repository
	bucket string
}

func New(ctx context.Context, bucket string, repo *finance.Repository, opts ...option.ClientOption) (*Service, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("backup: create storage client: %w", err)
	}
	return &Service{client: client, repo: repo, bucket: bucket}, nil
}

func (s *Service) Close() error {
	return s.client.Close()
}

// ObjectName returns the object path for a user's backup at the given
// time, e.g. "backups/u1/2024-05-01T10-30-00Z.json".
func ObjectName(uid string, at time.Time) string {
	return fmt.Sprintf("backups/%s/%s.json", uid, at.UTC().Format("2006-01-02T15-04-05Z"))
}

// Backup snapshots the user's collections and uploads them. It returns
// the object name written.
func (s *Service) Backup(ctx context.Context, uid string) (string, error) {
	snap, err := s.collect(ctx, uid)
	if err != nil {
		return "", err
	}

	name := ObjectName(uid, snap.TakenAt)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("backup: encode snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("backup: finalize upload: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("uid", uid).
		Str("object", name).
		Int("categories", len(snap.Categories)).
		Int("transactions", len(snap.Transactions)).
		Msg("backup written")
	return name, nil
}

// Restore reads a snapshot object and writes every record back through
// the repository. Existing records with matching ids are overwritten.
func (s *Service) Restore(ctx context.Context, objectName string) error {
	r, err := s.client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("backup: open object %s: %w", objectName, err)
	}
	defer r.Close()

	snap, err := Decode(r)
	if err != nil {
		return err
	}
	return s.replay(ctx, snap)
}

// Decode parses a snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("backup: decode snapshot: %w", err)
	}
	if snap.UID == "" {
		return nil, fmt.Errorf("backup: snapshot is missing a uid")
	}
	return &snap, nil
}

func (s *Service) collect(ctx context.Context, uid string) (*Snapshot, error) {
	catStream := s.repo.ObserveCategories(ctx, uid)
	defer catStream.Close()
	cats, err := catStream.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup: read categories: %w", err)
	}

	txStream := s.repo.ObserveTransactions(ctx, uid, domain.TxFilter{NewestFirst: true})
	defer txStream.Close()
	txs, err := txStream.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup: read transactions: %w", err)
	}

	return &Snapshot{
		UID:          uid,
		TakenAt:      time.Now().UTC(),
		Categories:   cats,
		Transactions: txs,
	}, nil
}

func (s *Service) replay(ctx context.Context, snap *Snapshot) error {
	for _, c := range snap.Categories {
		if _, err := s.repo.UpsertCategory(ctx, snap.UID, c); err != nil {
			return fmt.Errorf("backup: restore category %s: %w", c.ID, err)
		}
	}
	for _, tx := range snap.Transactions {
		if _, err := s.repo.UpsertTransaction(ctx, snap.UID, tx); err != nil {
			return fmt.Errorf("backup: restore transaction %s: %w", tx.ID, err)
		}
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("uid", snap.UID).
		Int("categories", len(snap.Categories)).
		Int("transactions", len(snap.Transactions)).
		Msg("restore complete")
	return nil
}
