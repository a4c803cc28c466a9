package launch

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteDatabase implements Database on top of a SQLite connection pool.
type SQLiteDatabase struct {
	db       *sql.DB
	opts     Options
	launches *SQLiteLaunchStore
	keys     *SQLiteRemoteKeyStore
}

// NewSQLiteDatabase creates the SQLite-backed cache. It ensures the schema
// exists in the provided database.
func NewSQLiteDatabase(db *sql.DB, opts ...Option) (*SQLiteDatabase, error) {
	if db == nil {
		return nil, fmt.Errorf("launch: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	o := NewOptions(opts...)
	return &SQLiteDatabase{
		db:       db,
		opts:     o,
		launches: &SQLiteLaunchStore{q: db, opts: o},
		keys:     &SQLiteRemoteKeyStore{q: db},
	}, nil
}

// Launches returns the non-transactional launch store.
func (d *SQLiteDatabase) Launches() LaunchStore { return d.launches }

// RemoteKeys returns the non-transactional remote key store.
func (d *SQLiteDatabase) RemoteKeys() RemoteKeyStore { return d.keys }

// DB exposes the underlying handle.
func (d *SQLiteDatabase) DB() *sql.DB { return d.db }

// InTx runs fn inside one SQLite transaction. A cancelled ctx aborts the
// transaction before commit.
func (d *SQLiteDatabase) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("launch: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqliteTx{
		launches: &SQLiteLaunchStore{q: tx, opts: d.opts},
		keys:     &SQLiteRemoteKeyStore{q: tx},
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("launch: commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (d *SQLiteDatabase) Close() error { return d.db.Close() }

type sqliteTx struct {
	launches *SQLiteLaunchStore
	keys     *SQLiteRemoteKeyStore
}

func (t *sqliteTx) Launches() LaunchStore      { return t.launches }
func (t *sqliteTx) RemoteKeys() RemoteKeyStore { return t.keys }

// inBatch runs fn in its own transaction when q is the bare pool so a batch
// never lands half-written; inside an existing transaction it runs directly.
func inBatch(ctx context.Context, q querier, fn func(q querier) error) error {
	db, ok := q.(*sql.DB)
	if !ok {
		return fn(q)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// SQLiteLaunchStore implements LaunchStore over the launches table.
type SQLiteLaunchStore struct {
	q    querier
	opts Options
}

// Count returns the number of cached rows in the partition.
func (s *SQLiteLaunchStore) Count(ctx context.Context, p Partition) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM launches WHERE partition = ?`, string(p)).Scan(&n); err != nil {
		return 0, fmt.Errorf("launch: count %s: %w", p, err)
	}
	return n, nil
}

// GetOrdered returns a page of the partition in its configured order.
func (s *SQLiteLaunchStore) GetOrdered(ctx context.Context, p Partition, limit, offset int) ([]Launch, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	if offset < 0 {
		offset = 0
	}
	dir := "ASC"
	if s.opts.OrderOf(p) == Descending {
		dir = "DESC"
	}
	query := `SELECT partition, id, name, net, payload, last_updated FROM launches
WHERE partition = ? ORDER BY net ` + dir + `, id ` + dir + ` LIMIT ? OFFSET ?`
	rows, err := s.q.QueryContext(ctx, query, string(p), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("launch: query %s: %w", p, err)
	}
	return scanLaunches(rows)
}

// InsertBatch upserts launches keyed by (partition, id).
func (s *SQLiteLaunchStore) InsertBatch(ctx context.Context, p Partition, launches []Launch) error {
	if len(launches) == 0 {
		return nil
	}
	return inBatch(ctx, s.q, func(q querier) error {
		stmt, err := q.PrepareContext(ctx, `INSERT INTO launches(partition, id, name, net, payload, last_updated)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(partition, id) DO UPDATE SET
  name = excluded.name,
  net = excluded.net,
  payload = excluded.payload,
  last_updated = excluded.last_updated`)
		if err != nil {
			return fmt.Errorf("launch: prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, l := range launches {
			if l.ID == "" {
				return fmt.Errorf("launch: insert into %s: empty id", p)
			}
			l = s.opts.Stamp(p, l)
			payload, err := EncodeDetails(l.Details)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, string(p), l.ID, l.Name, toMillis(l.Net), payload, toMillis(l.LastUpdated)); err != nil {
				return fmt.Errorf("launch: insert %s/%s: %w", p, l.ID, err)
			}
		}
		return nil
	})
}

// DeleteAll removes every row of the partition.
func (s *SQLiteLaunchStore) DeleteAll(ctx context.Context, p Partition) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM launches WHERE partition = ?`, string(p)); err != nil {
		return fmt.Errorf("launch: delete %s: %w", p, err)
	}
	return nil
}

// GetStale returns rows last updated strictly before threshold.
func (s *SQLiteLaunchStore) GetStale(ctx context.Context, threshold time.Time) ([]Launch, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT partition, id, name, net, payload, last_updated FROM launches
WHERE last_updated < ? ORDER BY partition, last_updated, id`, ceilMillis(threshold))
	if err != nil {
		return nil, fmt.Errorf("launch: query stale: %w", err)
	}
	return scanLaunches(rows)
}

func scanLaunches(rows *sql.Rows) ([]Launch, error) {
	defer rows.Close()
	var out []Launch
	for rows.Next() {
		var (
			l                Launch
			partition        string
			payload          string
			net, lastUpdated int64
		)
		if err := rows.Scan(&partition, &l.ID, &l.Name, &net, &payload, &lastUpdated); err != nil {
			return nil, err
		}
		details, err := DecodeDetails(payload)
		if err != nil {
			return nil, err
		}
		l.Partition = Partition(partition)
		l.Net = fromMillis(net)
		l.LastUpdated = fromMillis(lastUpdated)
		l.Details = details
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Ensure SQLiteDatabase satisfies the Database interface.
var _ Database = (*SQLiteDatabase)(nil)
