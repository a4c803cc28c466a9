package launch

import (
	"context"
	"time"
)

// Launch is a cached launch event. Net is the ordering key of its
// partition; LastUpdated is stamped when the row is written.
type Launch struct {
	ID          string
	Partition   Partition
	Name        string
	Net         time.Time
	Details     Details
	LastUpdated time.Time
}

// Details carries the display fields of a launch. The store treats it as an
// opaque payload.
type Details struct {
	Status             string `json:"status,omitempty"`
	StatusDescription  string `json:"status_description,omitempty"`
	Provider           string `json:"provider,omitempty"`
	Rocket             string `json:"rocket,omitempty"`
	Pad                string `json:"pad,omitempty"`
	Location           string `json:"location,omitempty"`
	ImageURL           string `json:"image_url,omitempty"`
	Mission            string `json:"mission,omitempty"`
	MissionDescription string `json:"mission_description,omitempty"`
	WebcastLive        bool   `json:"webcast_live,omitzero"`
}

// RemoteKey is the page bookmark stored for every cached launch. A nil
// PrevOffset marks the first page, a nil NextOffset the last known page.
type RemoteKey struct {
	ItemID     string
	Partition  Partition
	PrevOffset *int
	NextOffset *int
}

// Offset returns a pointer to v; handy when building RemoteKey values.
func Offset(v int) *int { return &v }

// LaunchStore persists cached launches partitioned by timeline.
type LaunchStore interface {
	// Count returns the number of rows cached for the partition.
	Count(ctx context.Context, p Partition) (int, error)

	// GetOrdered returns up to limit rows starting at offset, ordered by the
	// partition's configured order. A non-positive limit returns every row
	// from offset.
	GetOrdered(ctx context.Context, p Partition, limit, offset int) ([]Launch, error)

	// InsertBatch upserts launches into the partition keyed by id.
	InsertBatch(ctx context.Context, p Partition, launches []Launch) error

	// DeleteAll removes every row of the partition.
	DeleteAll(ctx context.Context, p Partition) error

	// GetStale returns rows of every partition last updated before threshold.
	GetStale(ctx context.Context, threshold time.Time) ([]Launch, error)
}

// RemoteKeyStore persists one RemoteKey per cached launch.
type RemoteKeyStore interface {
	// UpsertBatch replaces or inserts each key.
	UpsertBatch(ctx context.Context, keys []RemoteKey) error

	// Lookup returns the key of an item, or nil when it has none.
	Lookup(ctx context.Context, itemID string, p Partition) (*RemoteKey, error)

	// List returns every key of the partition ordered by item id, including
	// keys whose launch row is gone.
	List(ctx context.Context, p Partition) ([]RemoteKey, error)

	// ClearPartition deletes every key of the partition.
	ClearPartition(ctx context.Context, p Partition) error

	// ClearAll deletes every key.
	ClearAll(ctx context.Context) error
}

// Tx exposes both stores bound to one unit of work.
type Tx interface {
	Launches() LaunchStore
	RemoteKeys() RemoteKeyStore
}

// Database is the store handle owned by the application root. Its own
// Launches and RemoteKeys operate outside any transaction; InTx runs fn in a
// single transaction that commits only when fn returns nil.
type Database interface {
	Tx
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
