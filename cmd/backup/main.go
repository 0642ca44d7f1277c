package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"google.golang.org/api/option"

	"pocketledger/internal/backup"
	"pocketledger/internal/config"
	"pocketledger/internal/finance"
	"pocketledger/internal/logger"
	"pocketledger/internal/store/firestore"
)

func main() {
	log := logger.New()

	uid := flag.String("uid", "", "User id to back up")
	restore := flag.String("restore", "", "Object name to restore instead of backing up")
	flag.Parse()

	if *uid == "" && *restore == "" {
		log.Fatal().Msg("Usage: backup -uid ID | backup -restore OBJECT")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Backend != "firestore" {
		log.Fatal().Msg("Backup requires LEDGER_BACKEND=firestore")
	}
	if cfg.BackupBucket == "" {
		log.Fatal().Msg("BACKUP_BUCKET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}

	st, err := firestore.New(ctx, cfg.GoogleProjectID, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open Firestore")
	}
	repo := finance.NewRepository(st)

	svc, err := backup.New(ctx, cfg.BackupBucket, repo, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create backup service")
	}
	defer svc.Close()

	if *restore != "" {
		if err := svc.Restore(ctx, *restore); err != nil {
			log.Fatal().Err(err).Msg("Restore failed")
		}
		fmt.Printf("Restored from gs://%s/%s\n", cfg.BackupBucket, *restore)
		return
	}

	object, err := svc.Backup(ctx, *uid)
	if err != nil {
		log.Fatal().Err(err).Msg("Backup failed")
	}
	fmt.Printf("Backed up to gs://%s/%s\n", cfg.BackupBucket, object)
}
