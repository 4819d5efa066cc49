// Package services defines shared utilities consumed by the pipeline stages
// and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and platforms for
//     logging.
//   - Structured error markers plus the Wrap helper that record which stage
//     failed and translate failures into CLI exit codes.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services
