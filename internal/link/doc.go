// Package link attaches title-keyed platform datasets to canonical records.
//
// Each dataset goes through an exact pass against an index snapshot taken
// before the stage, then a fuzzy pass that scores leftover titles against
// every canonical title in parallel. Workers only read; matches are applied
// in input order after every worker has returned.
package link
