package launch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteRemoteKeyStore implements RemoteKeyStore over the remote_keys table.
type SQLiteRemoteKeyStore struct {
	q querier
}

// UpsertBatch replaces or inserts each key.
func (s *SQLiteRemoteKeyStore) UpsertBatch(ctx context.Context, keys []RemoteKey) error {
	if len(keys) == 0 {
		return nil
	}
	return inBatch(ctx, s.q, func(q querier) error {
		stmt, err := q.PrepareContext(ctx, `INSERT OR REPLACE INTO remote_keys(partition, item_id, prev_offset, next_offset)
VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("launch: prepare key upsert: %w", err)
		}
		defer stmt.Close()

		for _, k := range keys {
			if k.ItemID == "" {
				return fmt.Errorf("launch: upsert key in %s: empty item id", k.Partition)
			}
			if _, err := stmt.ExecContext(ctx, string(k.Partition), k.ItemID, nullableOffset(k.PrevOffset), nullableOffset(k.NextOffset)); err != nil {
				return fmt.Errorf("launch: upsert key %s/%s: %w", k.Partition, k.ItemID, err)
			}
		}
		return nil
	})
}

// Lookup returns the key of itemID in p, or nil when the item has none.
func (s *SQLiteRemoteKeyStore) Lookup(ctx context.Context, itemID string, p Partition) (*RemoteKey, error) {
	var prev, next sql.NullInt64
	err := s.q.QueryRowContext(ctx, `SELECT prev_offset, next_offset FROM remote_keys WHERE partition = ? AND item_id = ?`,
		string(p), itemID).Scan(&prev, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("launch: lookup key %s/%s: %w", p, itemID, err)
	}
	key := &RemoteKey{ItemID: itemID, Partition: p}
	if prev.Valid {
		key.PrevOffset = Offset(int(prev.Int64))
	}
	if next.Valid {
		key.NextOffset = Offset(int(next.Int64))
	}
	return key, nil
}

// List returns every key of p ordered by item id.
func (s *SQLiteRemoteKeyStore) List(ctx context.Context, p Partition) ([]RemoteKey, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT item_id, prev_offset, next_offset FROM remote_keys WHERE partition = ? ORDER BY item_id`, string(p))
	if err != nil {
		return nil, fmt.Errorf("launch: list keys %s: %w", p, err)
	}
	defer rows.Close()
	var out []RemoteKey
	for rows.Next() {
		var prev, next sql.NullInt64
		key := RemoteKey{Partition: p}
		if err := rows.Scan(&key.ItemID, &prev, &next); err != nil {
			return nil, fmt.Errorf("launch: scan key %s: %w", p, err)
		}
		if prev.Valid {
			key.PrevOffset = Offset(int(prev.Int64))
		}
		if next.Valid {
			key.NextOffset = Offset(int(next.Int64))
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("launch: list keys %s: %w", p, err)
	}
	return out, nil
}

// ClearPartition deletes every key of p.
func (s *SQLiteRemoteKeyStore) ClearPartition(ctx context.Context, p Partition) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM remote_keys WHERE partition = ?`, string(p)); err != nil {
		return fmt.Errorf("launch: clear keys %s: %w", p, err)
	}
	return nil
}

// ClearAll deletes every key.
func (s *SQLiteRemoteKeyStore) ClearAll(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM remote_keys`); err != nil {
		return fmt.Errorf("launch: clear keys: %w", err)
	}
	return nil
}
