package ingestion

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tickvault/internal/domain/models"
	"github.com/guttosm/tickvault/internal/extract"
	"github.com/guttosm/tickvault/internal/logger"
	"github.com/guttosm/tickvault/internal/product"
	"github.com/guttosm/tickvault/internal/schema"
	"github.com/guttosm/tickvault/internal/serialize"
	"github.com/guttosm/tickvault/internal/source"
	"github.com/guttosm/tickvault/internal/storage"
)

const maxParallelFiles = 8

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.Repository {
	return storage.NewRepository(db)
}

// Options tunes one ingestion run.
type Options struct {
	// ChunkSize bounds rows extracted per chunk (<=0 uses the default 1M).
	ChunkSize int
	// Parallel caps concurrent files (0 = auto up to CPU, max 8).
	Parallel int
	// Force deletes a prior ledger entry and reprocesses the file.
	Force bool
	// Exchange names the venue for product dimension rows.
	Exchange string
}

// ProcessDirectory ingests every readable archive in dir.
//
// Behavior:
//   - Scans dir for non-hidden files whose extension has a registered source
//     reader.
//   - Files already recorded complete in the ledger are skipped (unless Force).
//   - Files run concurrently under an errgroup; the first error cancels the
//     rest. Groups and tables within one file run sequentially, so each
//     table's COPY + commit stays one atomic unit.
//
// Returns:
//   - error: first error encountered (if any).
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, opts Options) error {
	log := logger.With("ingestion")
	repo := repoCtor(db)
	resolver := product.NewResolver(repo)
	if opts.Exchange == "" {
		opts.Exchange = product.DefaultExchange
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || len(name) == 0 || name[0] == '.' {
			continue
		}
		if !source.Supported(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	if len(files) == 0 {
		log.Warn().Str("dir", dir).Strs("extensions", source.Extensions()).Msg("no ingestible files found")
		return nil
	}

	log.Info().Int("files", len(files)).Str("dir", dir).Msg("ingestion start")

	// Concurrency: default to min(8, NumCPU), or use provided clamp(1..8)
	maxParallel := maxParallelFiles
	if opts.Parallel > 0 {
		if opts.Parallel > maxParallelFiles {
			opts.Parallel = maxParallelFiles
		}
		maxParallel = opts.Parallel
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	log.Info().Int("max_parallel", maxParallel).Msg("ingestion configured")

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, file := range files {
		idx := i
		f := file
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			log.Info().Int("idx", idx+1).Int("total", len(files)).Str("file", filepath.Base(f)).Msg("file start")
			return processFile(gctx, f, repo, resolver, opts)
		})
	}

	return g.Wait()
}

// processFile runs the per-file pipeline: ledger gate, ledger record, then
// every group and table, and finally the ledger status promotion.
func processFile(ctx context.Context, path string, repo storage.Repository, resolver *product.Resolver, opts Options) error {
	log := logger.With("ingestion")
	start := time.Now()
	base := filepath.Base(path)

	// Idempotency: the ledger is the only gate against double ingestion.
	prior, err := repo.FindIngestedFile(base)
	if err != nil {
		return fmt.Errorf("file %s: check ledger: %w", base, err)
	}
	if prior != nil {
		switch {
		case opts.Force:
			if err := repo.DeleteIngestedFile(base); err != nil {
				return fmt.Errorf("file %s: delete ledger entry: %w", base, err)
			}
			log.Info().Str("file", base).Time("prior_ingested_at", prior.IngestedAt).Msg("forced reprocess, ledger entry removed")
		case prior.Status == models.StatusComplete:
			log.Info().Str("file", base).Time("ingested_at", prior.IngestedAt).Bool("skipped", true).Msg("already ingested")
			return nil
		default:
			log.Warn().Str("file", base).Time("started_at", prior.IngestedAt).Str("status", prior.Status).
				Msg("previous ingestion did not complete; clean up and re-run with --force")
			return nil
		}
	}

	r, err := source.Open(path)
	if err != nil {
		return fmt.Errorf("file %s: open: %w", base, err)
	}
	defer func() { _ = r.Close() }()

	// The ledger row is written before any table data so a concurrent run
	// cannot pick the same file up; status stays in_progress until the
	// whole file commits.
	ledgerID, err := repo.RecordIngestedFile(path, time.Now())
	if err != nil {
		return fmt.Errorf("file %s: record ledger entry: %w", base, err)
	}

	groups, err := r.Groups()
	if err != nil {
		return fmt.Errorf("file %s: list groups: %w", base, err)
	}

	for _, group := range groups {
		// The group name is the event kind; an unknown kind means the
		// archive layout drifted and must not be skipped silently.
		sch, err := schema.Lookup(group)
		if err != nil {
			return fmt.Errorf("file %s: group %s: %w", base, group, err)
		}

		tables, err := r.Tables(group)
		if err != nil {
			return fmt.Errorf("file %s: list tables in %s: %w", base, group, err)
		}

		for _, table := range tables {
			if err := processTable(ctx, r, repo, resolver, sch, group, table, opts); err != nil {
				return fmt.Errorf("file %s: table %s/%s: %w", base, group, table, err)
			}
		}
	}

	if err := repo.MarkFileComplete(ledgerID); err != nil {
		return fmt.Errorf("file %s: mark complete: %w", base, err)
	}

	log.Info().Str("file", base).Dur("elapsed", time.Since(start)).Msg("file done")
	return nil
}

// processTable loads one event table: resolve the product key, then extract,
// transform, serialize and COPY each chunk inside a single transaction.
// A failure rolls back this table only; prior tables stay committed.
func processTable(ctx context.Context, r source.Reader, repo storage.Repository, resolver *product.Resolver, sch schema.Schema, group, table string, opts Options) error {
	log := logger.With("ingestion")
	start := time.Now()

	ds, err := r.Dataset(group, table)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}

	rows, err := ds.NumRows()
	if err != nil {
		return fmt.Errorf("row count: %w", err)
	}
	if rows == 0 {
		log.Debug().Str("kind", sch.Kind).Str("table", table).Msg("empty table, skipped")
		return nil
	}

	symbol, currency, err := product.ParsePair(table)
	if err != nil {
		return err
	}

	productID, err := resolver.Resolve(symbol, currency, opts.Exchange)
	if err != nil {
		return err
	}
	if productID == 0 && sch.HasProductRef() {
		// A fact row with an invalid product reference is a data-integrity
		// violation; skipping the table is the only safe outcome.
		log.Error().Str("kind", sch.Kind).Str("table", table).Msg("product id unresolved, table skipped")
		return nil
	}

	loader, err := repo.BeginTable(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	columns := sch.ColumnNames()
	for rng := range extract.Ranges(rows, opts.ChunkSize) {
		// Cooperative cancellation between chunks.
		if err = ctx.Err(); err != nil {
			break
		}

		var cols [][]string
		if cols, err = extract.Columns(ds, sch, productID, rng); err != nil {
			break
		}

		var buf *bytes.Buffer
		if buf, err = serialize.Chunk(cols); err != nil {
			break
		}

		if err = loader.CopyChunk(ctx, sch.Table, columns, buf); err != nil {
			break
		}
	}
	if err != nil {
		_ = loader.Rollback()
		return err
	}

	if err := loader.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Info().
		Str("kind", sch.Kind).
		Str("group", group).
		Str("table", table).
		Int("rows", rows).
		Dur("elapsed", time.Since(start)).
		Msg("table loaded")
	return nil
}
