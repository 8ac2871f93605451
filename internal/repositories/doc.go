// Package repositories implements SQLite persistence for accounts and watchlists.
//
// Key Implementations:
//   - [UserRepository] : credential store; registers usernames and verifies password digests
//   - [WatchlistRepository] : per-user saved titles keyed by (username, title)
//
// Each method is a single SQL statement executed on the pooled [database/sql.DB], so every
// call is its own atomic transaction. Duplicate detection is left to the primary-key
// constraints declared in the embedded migrations; constraint violations are mapped to
// results rather than surfaced as errors.
package repositories
