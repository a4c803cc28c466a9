// Package launch defines the cached launch model and the storage contracts
// used by the synchronization engine. It includes:
//   - Launch (cached row), Details payload and RemoteKey bookmark types
//   - LaunchStore, RemoteKeyStore and the transactional Database contract
//   - SQLiteDatabase: durable implementation of both stores
//   - Schema management through embedded migrations
package launch
