package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"pocketledger/internal/config"
	"pocketledger/internal/export"
	"pocketledger/internal/finance"
	"pocketledger/internal/logger"
	"pocketledger/internal/store/firestore"
)

func main() {
	log := logger.New()

	uids := flag.String("uids", "", "Comma-separated user ids to export")
	flag.Parse()

	if *uids == "" {
		log.Fatal().Msg("Error: -uids is required")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Backend != "firestore" {
		log.Fatal().Msg("Export requires LEDGER_BACKEND=firestore")
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

	exporter, err := export.NewExporter(ctx, cfg.GoogleProjectID, cfg.BigQueryDataset, cfg.BigQueryTable, repo, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exporter")
	}
	defer exporter.Close()

	g, ctx := errgroup.WithContext(ctx)
	for _, uid := range strings.Split(*uids, ",") {
		uid := strings.TrimSpace(uid)
		if uid == "" {
			continue
		}
		g.Go(func() error {
			rows, err := exporter.Run(ctx, uid)
			if err != nil {
				return fmt.Errorf("export %s: %w", uid, err)
			}
			log.Info().Str("uid", uid).Int("rows", rows).Msg("Exported")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	fmt.Println("Export completed successfully.")
}
