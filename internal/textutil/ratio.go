package textutil

import "math/bits"

// Matcher scores candidate strings against a fixed pattern. It precomputes
// the bit masks of the pattern once so scanning a large candidate list only
// pays for the candidates.
type Matcher struct {
	pattern []rune
	masks   map[rune][]uint64
	words   int
}

// NewMatcher prepares pattern for repeated Ratio calls.
func NewMatcher(pattern string) *Matcher {
	runesOf := []rune(pattern)
	words := (len(runesOf) + 63) / 64
	masks := make(map[rune][]uint64)
	for i, r := range runesOf {
		mask, ok := masks[r]
		if !ok {
			mask = make([]uint64, words)
			masks[r] = mask
		}
		mask[i/64] |= 1 << uint(i%64)
	}
	return &Matcher{pattern: runesOf, masks: masks, words: words}
}

// Ratio returns the Indel similarity of the pattern and candidate on a 0-100
// scale: 200*LCS/(len(a)+len(b)) rounded half to even, lengths in runes.
// Empty inputs score 0.
func (m *Matcher) Ratio(candidate string) int {
	other := []rune(candidate)
	total := len(m.pattern) + len(other)
	if len(m.pattern) == 0 || len(other) == 0 {
		return 0
	}
	return roundHalfEven(200*m.lcs(other), total)
}

// UpperBound is the best ratio any candidate of the given rune length could
// reach. Scanners use it to skip candidates that cannot beat the current best.
func (m *Matcher) UpperBound(candidateLen int) int {
	if len(m.pattern) == 0 || candidateLen == 0 {
		return 0
	}
	shorter := min(len(m.pattern), candidateLen)
	return roundHalfEven(200*shorter, len(m.pattern)+candidateLen)
}

// lcs computes the longest common subsequence length with the bit-parallel
// recurrence S' = (S + U) | (S - U), U = S & M. U is a subset of S, so the
// subtraction never borrows and only the addition carries across words.
func (m *Matcher) lcs(other []rune) int {
	state := make([]uint64, m.words)
	for i := range state {
		state[i] = ^uint64(0)
	}
	for _, r := range other {
		mask, ok := m.masks[r]
		if !ok {
			continue
		}
		var carry uint64
		for w := range state {
			u := state[w] & mask[w]
			var sum uint64
			sum, carry = bits.Add64(state[w], u, carry)
			state[w] = sum | (state[w] &^ u)
		}
	}
	length := 0
	for w, s := range state {
		zeros := ^s
		if w == m.words-1 {
			if tail := len(m.pattern) % 64; tail != 0 {
				zeros &= (1 << uint(tail)) - 1
			}
		}
		length += bits.OnesCount64(zeros)
	}
	return length
}

// Ratio is a one-shot convenience around NewMatcher.
func Ratio(a, b string) int {
	return NewMatcher(a).Ratio(b)
}

func roundHalfEven(num, den int) int {
	q, r := num/den, num%den
	switch {
	case 2*r > den:
		q++
	case 2*r == den && q%2 == 1:
		q++
	}
	return q
}
