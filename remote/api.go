package remote

import (
	"context"
	"errors"

	"github.com/viant/launchsync/launch"
)

// ErrMapping marks a remote record that could not be mapped into a
// launch.Launch. It signals a contract violation of the upstream payload,
// not a transient failure.
var ErrMapping = errors.New("remote: invalid launch record")

// Page is one window of the remote list.
type Page struct {
	Launches []launch.Launch
	// HasMore reports that the remote advertises a further page.
	HasMore bool
}

// Source fetches one page of a partition starting at offset.
type Source interface {
	Fetch(ctx context.Context, p launch.Partition, limit, offset int) (Page, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, p launch.Partition, limit, offset int) (Page, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, p launch.Partition, limit, offset int) (Page, error) {
	return f(ctx, p, limit, offset)
}
