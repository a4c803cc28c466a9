package launchsync

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/viant/launchsync/launch"
)

var (
	// ErrTransientFetch wraps remote or timeout failures. The store is left
	// untouched and the caller may retry.
	ErrTransientFetch = errors.New("launchsync: transient fetch failure")

	// ErrStoreTransaction wraps a failed apply transaction. The store is
	// rolled back to its state before the load.
	ErrStoreTransaction = errors.New("launchsync: store transaction failed")

	// ErrStoreRead wraps a failed read issued before the fetch (count or
	// remote key lookup). Nothing was written.
	ErrStoreRead = errors.New("launchsync: store read failed")
)

// Direction selects which edge of the loaded window a load extends, or
// whether the whole partition is reloaded.
type Direction int

const (
	Refresh Direction = iota
	Prepend
	Append
)

func (d Direction) String() string {
	switch d {
	case Refresh:
		return "refresh"
	case Prepend:
		return "prepend"
	case Append:
		return "append"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection converts a name into a Direction.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "refresh":
		return Refresh, nil
	case "prepend":
		return Prepend, nil
	case "append":
		return Append, nil
	}
	return Refresh, fmt.Errorf("launchsync: unknown direction %q", name)
}

// Result is the outcome of a load: either Success or Error.
type Result interface {
	isResult()
}

// Success reports a completed load.
type Success struct {
	EndOfPaginationReached bool
}

// Error reports a failed load. Cause wraps ErrTransientFetch,
// ErrStoreTransaction, ErrStoreRead or a remote mapping error.
type Error struct {
	Cause error
}

func (Success) isResult() {}
func (Error) isResult()   {}

func (e Error) Error() string { return e.Cause.Error() }

func (e Error) Unwrap() error { return e.Cause }

// Retryable reports whether the failure is transient.
func (e Error) Retryable() bool { return errors.Is(e.Cause, ErrTransientFetch) }

// Window is the caller's currently loaded items of one partition, in
// display order.
type Window []launch.Launch

// First returns the first loaded item.
func (w Window) First() (launch.Launch, bool) {
	if len(w) == 0 {
		return launch.Launch{}, false
	}
	return w[0], true
}

// Last returns the last loaded item.
func (w Window) Last() (launch.Launch, bool) {
	if len(w) == 0 {
		return launch.Launch{}, false
	}
	return w[len(w)-1], true
}

// InitializeAction is the decision taken before the first load of a
// partition.
type InitializeAction int

const (
	// LaunchInitialRefresh forces the next load to run as Refresh.
	LaunchInitialRefresh InitializeAction = iota
	// SkipInitialRefresh serves cached rows and honours the requested
	// direction.
	SkipInitialRefresh
)

func (a InitializeAction) String() string {
	if a == SkipInitialRefresh {
		return "skip_initial_refresh"
	}
	return "launch_initial_refresh"
}

const (
	// DefaultPageSize is the window size used when Config.PageSize is zero.
	DefaultPageSize = 20
	// DefaultFetchTimeout bounds one remote fetch.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultStaleAfter is the age past which cached rows are swept.
	DefaultStaleAfter = 24 * time.Hour
)

// Config captures the settings of a Coordinator.
type Config struct {
	// PageSize is the number of launches requested per load.
	PageSize int

	// FetchTimeout bounds each remote fetch; a negative value disables it.
	FetchTimeout time.Duration

	// StaleAfter is the staleness threshold used by Sweep.
	StaleAfter time.Duration

	// Now stamps LastUpdated on written rows.
	Now func() time.Time
}

func (c *Config) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// PageOffsets computes the bookmark shared by every item of a page fetched
// at offset: prev is nil on the first page, next is nil once the remote has
// no further page.
func PageOffsets(offset, pageSize int, hasMore bool) (prev, next *int) {
	if offset != 0 {
		prev = launch.Offset(max(0, offset-pageSize))
	}
	if hasMore {
		next = launch.Offset(offset + pageSize)
	}
	return prev, next
}
