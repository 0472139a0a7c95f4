// Package store provides the SQLite statement journal.
//
// The journal is the dry-run executor of rendered statements: instead of
// sending a statement to a backend it appends it to a local log with the
// dialect it was rendered for, a content fingerprint and a logical sequence
// number.
//
// # Ordering
//
// All reads order by seq ASC, id ASC COLLATE BINARY. seq comes from a
// logical clock seeded from the highest stored value when the journal is
// opened; wall-clock time is never recorded, so a journal written from the
// same inputs with deterministic ids is byte-for-byte reproducible.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Fingerprints are the xxh3 64-bit hash of the statement text in hex.
package store
