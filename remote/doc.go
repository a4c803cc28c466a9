// Package remote defines the paginated launch source consumed by the sync
// engine and ships an HTTP client for the Launch Library 2 API.
package remote
