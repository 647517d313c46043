// Package store provides SQLite-backed durable storage for the contest
// search service.
//
// The store persists five entities:
//   - Contests: contest metadata, parent of problems (cascade delete)
//   - Problems: task statements with a denormalized difficulty snapshot
//   - Difficulties: per-problem IRT model parameters (1:1 with problems)
//   - Users: participant profiles, keyed by NFC-normalized user name
//   - Submissions: append-only judged-submission log, never updated
//
// # Change detection
//
// Contests, problems, users and difficulties carry created_at/updated_at.
// created_at is written once at first insert and never changes. updated_at
// is resolved by the touch pipeline inside the same transaction as every
// UPDATE, so it moves only on semantically meaningful writes. The
// *UpdatedSince readers expose updated_at as the incremental-indexing
// cursor.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce the contests→problems cascade
//   - single writer connection to avoid SQLITE_BUSY
//
// All timestamps are stored in UTC so that range comparisons over the
// driver's text encoding order chronologically.
//
// # Migrations
//
// Schema changes ship as paired forward/reverse SQL scripts embedded in the
// binary and tracked with PRAGMA user_version. Forward scripts are
// idempotent; reverse scripts undo their pair in reverse dependency order.
package store
