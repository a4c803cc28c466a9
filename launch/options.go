package launch

import "time"

// Options configures a store backend.
type Options struct {
	// Orders maps each partition to the order GetOrdered returns rows in.
	Orders map[Partition]Order
	// Now stamps rows that are inserted without LastUpdated.
	Now func() time.Time
}

// Option mutates Options.
type Option func(*Options)

// WithOrder overrides the order rows of partition p are returned in.
func WithOrder(p Partition, o Order) Option {
	return func(opts *Options) { opts.Orders[p] = o }
}

// WithClock sets the clock used to stamp rows written without LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		if now != nil {
			opts.Now = now
		}
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{Orders: DefaultOrders(), Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// OrderOf returns the configured order of p.
func (o Options) OrderOf(p Partition) Order {
	if order, ok := o.Orders[p]; ok {
		return order
	}
	return Ascending
}

// Stamp returns l with LastUpdated set when it is zero and the partition
// forced to p.
func (o Options) Stamp(p Partition, l Launch) Launch {
	l.Partition = p
	if l.LastUpdated.IsZero() {
		l.LastUpdated = o.Now()
	}
	// Both backends keep millisecond precision.
	l.Net = l.Net.UTC().Truncate(time.Millisecond)
	l.LastUpdated = l.LastUpdated.UTC().Truncate(time.Millisecond)
	return l
}
