package launchsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/viant/launchsync/internal/logger"
	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/remote"
)

const tracerName = "github.com/viant/launchsync/launchsync"

// Coordinator drives synchronization steps for every partition of a launch
// cache. Loads of the same partition are serialized; partitions proceed
// independently.
type Coordinator struct {
	db      launch.Database
	source  remote.Source
	cfg     Config
	metrics *Metrics
	tracer  trace.Tracer

	mu         sync.Mutex
	partitions map[launch.Partition]*partitionState
}

type partitionState struct {
	mu           sync.Mutex
	initialized  bool
	forceRefresh bool
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithMetrics records load and sweep metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithTracerProvider traces loads with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates a Coordinator over db and source.
func New(db launch.Database, source remote.Source, cfg Config, opts ...Option) (*Coordinator, error) {
	if db == nil {
		return nil, fmt.Errorf("launchsync: nil database")
	}
	if source == nil {
		return nil, fmt.Errorf("launchsync: nil remote source")
	}
	cfg.applyDefaults()
	c := &Coordinator{
		db:         db,
		source:     source,
		cfg:        cfg,
		tracer:     otel.Tracer(tracerName),
		partitions: make(map[launch.Partition]*partitionState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Coordinator) Config() Config { return c.cfg }

func (c *Coordinator) state(p launch.Partition) *partitionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps, ok := c.partitions[p]
	if !ok {
		ps = &partitionState{}
		c.partitions[p] = ps
	}
	return ps
}

// Initialize runs the initialization policy of p once and returns its
// decision. Later calls return the pending decision without touching the
// store.
func (c *Coordinator) Initialize(ctx context.Context, p launch.Partition) (InitializeAction, error) {
	if !p.Valid() {
		return LaunchInitialRefresh, fmt.Errorf("%w: %q", launch.ErrUnknownPartition, string(p))
	}
	ps := c.state(p)
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return c.initializeLocked(ctx, p, ps)
}

func (c *Coordinator) initializeLocked(ctx context.Context, p launch.Partition, ps *partitionState) (InitializeAction, error) {
	if ps.initialized {
		if ps.forceRefresh {
			return LaunchInitialRefresh, nil
		}
		return SkipInitialRefresh, nil
	}
	n, err := c.db.Launches().Count(ctx, p)
	if err != nil {
		return LaunchInitialRefresh, fmt.Errorf("%w: count %s: %w", ErrStoreRead, p, err)
	}
	ps.initialized = true
	ps.forceRefresh = n == 0
	action := SkipInitialRefresh
	if ps.forceRefresh {
		action = LaunchInitialRefresh
	}
	logger.DebugCtx(ctx, "partition initialized", logger.KeyPartition, p.String(), logger.KeyItems, n, logger.KeyInitAction, action.String())
	return action, nil
}

// Load runs one synchronization step using the configured page size.
func (c *Coordinator) Load(ctx context.Context, p launch.Partition, d Direction, window Window) Result {
	return c.LoadWithSize(ctx, p, d, window, c.cfg.PageSize)
}

// LoadWithSize runs one synchronization step requesting pageSize launches.
// The returned Result is either Success or Error; a failed step leaves the
// store as it was before the call.
func (c *Coordinator) LoadWithSize(ctx context.Context, p launch.Partition, d Direction, window Window, pageSize int) Result {
	if !p.Valid() {
		return Error{Cause: fmt.Errorf("%w: %q", launch.ErrUnknownPartition, string(p))}
	}
	if d < Refresh || d > Append {
		return Error{Cause: fmt.Errorf("launchsync: unknown direction %d", int(d))}
	}
	if pageSize <= 0 {
		return Error{Cause: fmt.Errorf("launchsync: invalid page size %d", pageSize)}
	}

	ps := c.state(p)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ctx = logger.With(ctx, logger.KeyLoadID, uuid.NewString(), logger.KeyPartition, p.String())
	ctx, span := c.tracer.Start(ctx, "launchsync.Load", trace.WithAttributes(
		attribute.String("launchsync.partition", p.String()),
		attribute.String("launchsync.direction", d.String()),
		attribute.Int("launchsync.page_size", pageSize),
	))
	defer span.End()
	started := time.Now()

	effective := d
	if _, err := c.initializeLocked(ctx, p, ps); err != nil {
		return c.finish(ctx, span, p, effective, Error{Cause: err}, OutcomeStore, 0, started)
	}
	if ps.forceRefresh {
		effective = Refresh
	}
	if effective != d {
		span.SetAttributes(attribute.String("launchsync.effective_direction", effective.String()))
	}

	res, outcome, rows := c.load(ctx, p, effective, window, pageSize)
	if _, ok := res.(Success); ok && effective == Refresh {
		ps.forceRefresh = false
	}
	return c.finish(ctx, span, p, effective, res, outcome, rows, started)
}

func (c *Coordinator) finish(ctx context.Context, span trace.Span, p launch.Partition, d Direction, res Result, outcome string, rows int, started time.Time) Result {
	elapsed := time.Since(started)
	c.metrics.ObserveLoad(p, d, outcome, rows, elapsed)
	span.SetAttributes(attribute.String("launchsync.outcome", outcome))
	switch r := res.(type) {
	case Success:
		span.SetAttributes(attribute.Bool("launchsync.end_reached", r.EndOfPaginationReached))
		logger.DebugCtx(ctx, "load finished", logger.KeyDirection, d.String(), logger.KeyItems, rows,
			logger.KeyEndReached, r.EndOfPaginationReached, logger.KeyDuration, elapsed)
	case Error:
		span.RecordError(r.Cause)
		span.SetStatus(codes.Error, r.Cause.Error())
		logger.WarnCtx(ctx, "load failed", logger.KeyDirection, d.String(), logger.KeyError, logger.Err(r.Cause),
			logger.KeyDuration, elapsed)
	}
	return res
}

func (c *Coordinator) load(ctx context.Context, p launch.Partition, d Direction, window Window, pageSize int) (Result, string, int) {
	offset, end, ok, err := c.resolveOffset(ctx, p, d, window)
	if err != nil {
		return Error{Cause: err}, OutcomeStore, 0
	}
	if !ok {
		return Success{EndOfPaginationReached: end}, OutcomeNoop, 0
	}

	page, err := c.fetch(ctx, p, pageSize, offset)
	if err != nil {
		if errors.Is(err, remote.ErrMapping) {
			return Error{Cause: err}, OutcomeMapping, 0
		}
		return Error{Cause: fmt.Errorf("%w: %w", ErrTransientFetch, err)}, OutcomeTransient, 0
	}

	if err := c.apply(ctx, p, d, offset, pageSize, page); err != nil {
		return Error{Cause: fmt.Errorf("%w: %w", ErrStoreTransaction, err)}, OutcomeStore, 0
	}
	return Success{EndOfPaginationReached: !page.HasMore}, OutcomeSuccess, len(page.Launches)
}

// resolveOffset returns the offset to fetch. When ok is false the load is a
// no-op and end carries its end-of-pagination flag.
func (c *Coordinator) resolveOffset(ctx context.Context, p launch.Partition, d Direction, window Window) (offset int, end bool, ok bool, err error) {
	var (
		item  launch.Launch
		found bool
	)
	switch d {
	case Refresh:
		return 0, false, true, nil
	case Prepend:
		item, found = window.First()
	case Append:
		item, found = window.Last()
	}
	if !found {
		return 0, false, false, nil
	}
	key, err := c.db.RemoteKeys().Lookup(ctx, item.ID, p)
	if err != nil {
		return 0, false, false, fmt.Errorf("%w: remote key %s/%s: %w", ErrStoreRead, p, item.ID, err)
	}
	var target *int
	if key != nil {
		target = key.NextOffset
		if d == Prepend {
			target = key.PrevOffset
		}
	}
	if target == nil {
		return 0, true, false, nil
	}
	return *target, false, true, nil
}

func (c *Coordinator) fetch(ctx context.Context, p launch.Partition, limit, offset int) (remote.Page, error) {
	if c.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
	}
	logger.DebugCtx(ctx, "fetching page", logger.KeyOffset, offset, logger.KeyPageSize, limit)
	return c.source.Fetch(ctx, p, limit, offset)
}

func (c *Coordinator) apply(ctx context.Context, p launch.Partition, d Direction, offset, pageSize int, page remote.Page) error {
	now := c.cfg.Now()
	prev, next := PageOffsets(offset, pageSize, page.HasMore)
	records := make([]launch.Launch, len(page.Launches))
	keys := make([]launch.RemoteKey, len(page.Launches))
	for i, l := range page.Launches {
		l.Partition = p
		l.LastUpdated = now
		records[i] = l
		keys[i] = launch.RemoteKey{ItemID: l.ID, Partition: p, PrevOffset: prev, NextOffset: next}
	}

	return c.db.InTx(ctx, func(tx launch.Tx) error {
		if d == Refresh {
			if err := tx.RemoteKeys().ClearPartition(ctx, p); err != nil {
				return err
			}
			if err := tx.Launches().DeleteAll(ctx, p); err != nil {
				return err
			}
		}
		if err := tx.Launches().InsertBatch(ctx, p, records); err != nil {
			return err
		}
		if err := tx.RemoteKeys().UpsertBatch(ctx, keys); err != nil {
			return err
		}
		return ctx.Err()
	})
}
