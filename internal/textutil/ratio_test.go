package textutil

import (
	"math/rand"
	"strings"
	"testing"
)

func naiveLCS(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func TestRatioKnownValues(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Show A", "Show A", 100},
		{"abc", "xyz", 0},
		{"kitten", "sitting", 62},
		{"Show B Season 2", "Show B 2nd Season", 81},
		{"", "anything", 0},
		{"ab", "abc", 80},
		{"Ｆａｔｅ", "Fate", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			if got := Ratio(tt.a, tt.b); got != tt.want {
				t.Errorf("Ratio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioRoundsHalfToEven(t *testing.T) {
	// 12.5 rounds down to the even 12, 37.5 rounds up to the even 38
	if got := roundHalfEven(200, 16); got != 12 {
		t.Fatalf("roundHalfEven(200,16) = %d, want 12", got)
	}
	if got := roundHalfEven(600, 16); got != 38 {
		t.Fatalf("roundHalfEven(600,16) = %d, want 38", got)
	}
}

func TestBitParallelLCSMatchesDynamicProgramming(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abcdeアニメ ")
	randomString := func(n int) string {
		out := make([]rune, n)
		for i := range out {
			out[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(out)
	}
	for i := 0; i < 300; i++ {
		a := randomString(rng.Intn(150) + 1)
		b := randomString(rng.Intn(150) + 1)
		m := NewMatcher(a)
		got := m.lcs([]rune(b))
		want := naiveLCS([]rune(a), []rune(b))
		if got != want {
			t.Fatalf("lcs(%q, %q) = %d, want %d", a, b, got, want)
		}
	}
}

func TestUpperBoundNeverBelowRatio(t *testing.T) {
	m := NewMatcher("Shingeki no Kyojin")
	for _, candidate := range []string{"Shingeki no Kyojin Season 2", "Kyojin", "Attack on Titan", strings.Repeat("x", 90)} {
		if bound, ratio := m.UpperBound(len([]rune(candidate))), m.Ratio(candidate); bound < ratio {
			t.Fatalf("bound %d below ratio %d for %q", bound, ratio, candidate)
		}
	}
}
