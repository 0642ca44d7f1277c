package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/api/option"

	"pocketledger/internal/config"
	"pocketledger/internal/finance"
	"pocketledger/internal/logger"
	"pocketledger/internal/notionsync"
	"pocketledger/internal/store/firestore"
)

func main() {
	log := logger.New()

	uid := flag.String("uid", "", "User id to mirror")
	once := flag.Bool("once", false, "Run a single sync instead of looping")
	dryRun := flag.Bool("dry-run", false, "Log planned changes without writing to Notion")
	flag.Parse()

	if *uid == "" {
		log.Fatal().Msg("Error: -uid is required")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Backend != "firestore" {
		log.Fatal().Msg("Notion sync requires LEDGER_BACKEND=firestore")
	}
	if cfg.NotionToken == "" || cfg.NotionDatabaseID == "" {
		log.Fatal().Msg("NOTION_TOKEN and NOTION_DATABASE_ID are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
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

	syncer := notionsync.NewSyncer(repo, notionsync.NewClient(cfg.NotionToken), cfg.NotionDatabaseID, *dryRun || cfg.SyncDryRun)

	if *once {
		stats, err := syncer.Run(ctx, *uid)
		if err != nil {
			log.Fatal().Err(err).Msg("Sync failed")
		}
		fmt.Printf("Sync complete: %d created, %d updated, %d archived\n", stats.Created, stats.Updated, stats.Archived)
		return
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", cfg.SyncInterval).Msg("Starting sync loop")
	for {
		if _, err := syncer.Run(ctx, *uid); err != nil {
			log.Error().Err(err).Msg("Sync run failed")
		}
		select {
		case <-ticker.C:
		case <-sig:
			log.Info().Msg("Shutting down")
			return
		case <-ctx.Done():
			return
		}
	}
}
