// Package launchsync keeps the local launch cache synchronized with an
// offset-paginated remote source. A Coordinator runs one synchronization
// step at a time per partition: it resolves the offset to request from the
// remote keys of the caller's current window, fetches the page and applies
// it to the launch and remote key stores in a single transaction.
//
// Every item of a fetched page is bookmarked with the same previous/next
// page offsets; the bookmarks are page-granular, not per-item cursors.
package launchsync
