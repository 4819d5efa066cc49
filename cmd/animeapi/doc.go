// Package main hosts the animeapi CLI.
//
// The Cobra command tree loads configuration once, builds the slog logger,
// and opens the store for the commands that need it. Reconciliation runs
// through internal/pipeline; the remaining commands inspect what a run
// persisted.
package main
