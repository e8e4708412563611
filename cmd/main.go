package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/guttosm/tickvault/config"
	"github.com/guttosm/tickvault/internal/app"
	"github.com/guttosm/tickvault/internal/ingestion"
	"github.com/guttosm/tickvault/internal/logger"
)

// main is the entry point of the tickvault loader.
//
// It scans a directory of tick archives and bulk-loads every file that is
// not yet recorded in the ingestion ledger into PostgreSQL.
//
// Flags:
//   - --dir:      Directory containing archive files. Default from INGEST_DIR.
//   - --chunk:    Max rows extracted per chunk. Default from INGEST_CHUNK_SIZE.
//   - --parallel: How many files to process concurrently (0=auto up to CPU, max 8).
//   - --force:    Reprocess files even if already recorded in the ledger.
//
// SIGINT/SIGTERM cancel the run cooperatively: in-flight table transactions
// roll back, committed tables and the ledger keep their state.
func main() {
	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	dir := flag.String("dir", config.AppConfig.Ingest.Dir, "Directory with tick archive files")
	chunk := flag.Int("chunk", config.AppConfig.Ingest.ChunkSize, "Max rows per extraction chunk")
	parallel := flag.Int("parallel", config.AppConfig.Ingest.Parallel, "How many files to process concurrently (0=auto up to CPU, max 8)")
	force := flag.Bool("force", false, "Reprocess files even if already recorded in the ledger")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Direct DB connection for ingestion
	db, err := app.InitPostgres(config.AppConfig)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("db connect error")
	}
	defer func() { _ = db.Close() }()

	logger.L().Info().Str("dir", *dir).Int("chunk", *chunk).Msg("running ingestion")

	opts := ingestion.Options{
		ChunkSize: *chunk,
		Parallel:  *parallel,
		Force:     *force,
	}
	if err := ingestion.ProcessDirectory(ctx, *dir, db, opts); err != nil {
		logger.L().Fatal().Err(err).Msg("ingestion failed")
	}
	logger.L().Info().Msg("ingestion completed successfully")
}
