// Package anime defines the canonical cross-reference record and the
// enumerated field and platform tables every other package uses to read and
// write record identifiers.
package anime
