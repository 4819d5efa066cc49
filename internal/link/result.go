package link

import "fmt"

// Outcome tags a fuzzy search result.
type Outcome int

const (
	NoMatch Outcome = iota
	Match
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Match:
		return "match"
	case Failure:
		return "failure"
	default:
		return "no_match"
	}
}

// Result is what a worker reports for one dataset item. Candidate indexes the
// title snapshot the worker scanned and is only meaningful for Match.
type Result struct {
	Item      int
	Outcome   Outcome
	Candidate int
	Score     int
	Reason    string
}

func matched(item, candidate, score int) Result {
	return Result{Item: item, Outcome: Match, Candidate: candidate, Score: score}
}

func unmatched(item int) Result {
	return Result{Item: item, Outcome: NoMatch, Candidate: -1}
}

func failed(item int, reason any) Result {
	return Result{Item: item, Outcome: Failure, Candidate: -1, Reason: fmt.Sprint(reason)}
}
