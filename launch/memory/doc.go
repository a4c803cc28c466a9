// Package memory provides an in-memory launch.Database. Each partition is
// kept in a google/btree ordered by (net, id); transactions work on a
// copy-on-write clone that replaces the committed state on success.
package memory
