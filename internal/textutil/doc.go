// Package textutil provides the title normalization and similarity scoring
// used by the linkers.
//
// The primary use cases are:
//   - Folding titles to ASCII slugs for slug-keyed platforms
//   - Scoring title similarity on a 0-100 Indel ratio
//   - Rewriting "Season N" titles into the ordinal form
//
// Ratio scoring uses a bit-parallel LCS so a linker can scan tens of thousands
// of candidate titles per auxiliary entry.
package textutil
