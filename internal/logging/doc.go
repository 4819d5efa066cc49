// Package logging assembles structured slog loggers and formatting helpers used
// across the reconciliation pipeline and CLI.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and folds run IDs, stage names, and platforms carried on the
// context into every record logged with a *Context method. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
