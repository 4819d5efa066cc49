// Package store persists the canonical record set in SQLite.
//
// The anime table carries one column per record field and is the snapshot
// the change detector diffs against. Every applied change appends a
// change_log row that the KV sync consumes and marks processed. The store
// also keeps the per-platform unlinked lists and a row per pipeline run.
//
// Writes for one run happen in a single transaction; SQLITE_BUSY is retried
// with a short backoff.
package store
