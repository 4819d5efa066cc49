// Package sources reads the upstream datasets the reconciliation pipeline
// consumes and converts the AOD base dataset into canonical records.
//
// Every file is checked against an embedded JSON schema before decoding so a
// changed upstream format fails the run instead of silently producing empty
// joins. Individual entries missing their key fields are dropped and counted.
package sources
