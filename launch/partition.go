package launch

import (
	"errors"
	"fmt"
	"strings"
)

// Partition names one of the independent launch timelines.
type Partition string

const (
	// Upcoming holds launches scheduled in the future.
	Upcoming Partition = "upcoming"
	// Past holds launches that already happened.
	Past Partition = "past"
)

// ErrUnknownPartition is returned when a partition name is not recognised.
var ErrUnknownPartition = errors.New("launch: unknown partition")

// Partitions returns every partition in a stable order.
func Partitions() []Partition { return []Partition{Upcoming, Past} }

// Valid reports whether p is a known partition.
func (p Partition) Valid() bool { return p == Upcoming || p == Past }

func (p Partition) String() string { return string(p) }

// ParsePartition converts a user supplied name into a Partition.
func ParsePartition(name string) (Partition, error) {
	p := Partition(strings.ToLower(strings.TrimSpace(name)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPartition, name)
	}
	return p, nil
}

// Order is the direction rows of a partition are returned in.
type Order int

const (
	// Ascending returns the earliest launch first.
	Ascending Order = iota
	// Descending returns the most recent launch first.
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ParseOrder accepts "asc"/"ascending" and "desc"/"descending".
func ParseOrder(value string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("launch: unknown order %q", value)
}

// DefaultOrders lists upcoming launches soonest first and past launches
// most recent first.
func DefaultOrders() map[Partition]Order {
	return map[Partition]Order{Upcoming: Ascending, Past: Descending}
}
