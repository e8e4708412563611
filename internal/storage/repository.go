package storage

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/tickvault/internal/domain/models"
	"github.com/guttosm/tickvault/internal/serialize"
	pq "github.com/lib/pq"
)

// Repository defines the contract for DB operations used by the pipeline:
// the file ledger, the product dimension, and the COPY fast path.
type Repository interface {
	FindIngestedFile(name string) (*models.IngestedFile, error)
	RecordIngestedFile(name string, at time.Time) (int64, error)
	MarkFileComplete(id int64) error
	DeleteIngestedFile(name string) error

	UpsertProduct(p models.Product) error
	GetProductID(symbol, currency, exchange string) (int64, error)

	BeginTable(ctx context.Context) (TableLoader, error)
}

// TableLoader is one table's transaction: chunks are COPYed in one by one,
// then the whole table commits (or rolls back) as a single unit.
type TableLoader interface {
	CopyChunk(ctx context.Context, table string, columns []string, buf *bytes.Buffer) error
	Commit() error
	Rollback() error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// FindIngestedFile looks up a prior ledger entry for the given filename.
// Matching is by trailing substring, so a file that moved to another
// directory (or is referenced by basename) is still recognized.
// Returns nil when the file has never been recorded.
func (r *repository) FindIngestedFile(name string) (*models.IngestedFile, error) {
	var f models.IngestedFile
	err := r.db.QueryRow(`
		SELECT unique_id, filename, time, status
		FROM file_log
		WHERE filename LIKE '%' || $1
		ORDER BY unique_id
		LIMIT 1
	`, name).Scan(&f.UniqueID, &f.Filename, &f.IngestedAt, &f.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// RecordIngestedFile writes the ledger row that gates re-processing. It is
// called before any table data is loaded, with status in_progress.
func (r *repository) RecordIngestedFile(name string, at time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO file_log (filename, time, status)
		VALUES ($1, $2, $3)
		RETURNING unique_id
	`, name, at, models.StatusInProgress).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// MarkFileComplete promotes a ledger row to complete once every table in the
// file has committed.
func (r *repository) MarkFileComplete(id int64) error {
	_, err := r.db.Exec(`UPDATE file_log SET status = $1 WHERE unique_id = $2`, models.StatusComplete, id)
	return err
}

// DeleteIngestedFile removes the ledger entry for a filename so the file can
// be reprocessed (the --force/repair path).
func (r *repository) DeleteIngestedFile(name string) error {
	_, err := r.db.Exec(`DELETE FROM file_log WHERE filename LIKE '%' || $1`, name)
	return err
}

// UpsertProduct inserts a product dimension row if the (symbol, currency,
// exchange) key is absent. Concurrent or repeated inserts of the same key
// neither duplicate nor error; the uniqueness constraint serializes them.
func (r *repository) UpsertProduct(p models.Product) error {
	_, err := r.db.Exec(`
		INSERT INTO product (symbol, currency, name, exchange)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, currency, exchange) DO NOTHING
	`, p.Symbol, p.Currency, p.Name, p.Exchange)
	return err
}

// GetProductID returns the surrogate key for a product, or 0 when no row
// matches. Callers must treat 0 as "do not emit fact rows".
func (r *repository) GetProductID(symbol, currency, exchange string) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		SELECT unique_id FROM product
		WHERE symbol = $1 AND currency = $2 AND exchange = $3
	`, symbol, currency, exchange).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// BeginTable opens the per-table transaction. SET LOCAL scopes the relaxed
// durability to this transaction only.
func (r *repository) BeginTable(ctx context.Context) (TableLoader, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &tableLoader{tx: tx}, nil
}

type tableLoader struct {
	tx *sql.Tx
}

func (l *tableLoader) Commit() error   { return l.tx.Commit() }
func (l *tableLoader) Rollback() error { return l.tx.Rollback() }

// CopyChunk streams one serialized chunk into the target table through the
// COPY protocol, inside the table's transaction. The buffer is the
// delimited text produced by serialize.Chunk; each line must carry exactly
// one field per target column.
func (l *tableLoader) CopyChunk(ctx context.Context, table string, columns []string, buf *bytes.Buffer) error {
	stmt, err := l.tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("prepare copy into %s: %w", table, err)
	}

	scanner := bufio.NewScanner(buf)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	args := make([]interface{}, len(columns))

	for scanner.Scan() {
		line++
		fields := strings.Split(scanner.Text(), serialize.Delimiter)
		if len(fields) != len(columns) {
			_ = stmt.Close()
			return fmt.Errorf("copy into %s: row %d has %d fields, expected %d", table, line, len(fields), len(columns))
		}
		for i, f := range fields {
			args[i] = f
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy into %s: row %d: %w", table, line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("copy into %s: scan buffer: %w", table, err)
	}

	// Final empty Exec flushes the COPY stream.
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("copy into %s: flush: %w", table, err)
	}
	return stmt.Close()
}
