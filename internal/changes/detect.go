// Package changes diffs a finalized record set against the persisted
// snapshot of the previous run.
package changes

import (
	"time"

	"animeapi/internal/anime"
)

// Type is the kind of a persisted change.
type Type string

const (
	Insert Type = "insert"
	Update Type = "update"
	Delete Type = "delete"
)

// Snapshot is the identifying part of a persisted record.
type Snapshot struct {
	ID          int64
	Title       string
	MyAnimeList *int
	DataHash    string
}

// Replacement pairs a persisted row with the record that replaces it.
type Replacement struct {
	ID     int64
	Record *anime.Record
}

// Changeset is the difference between two runs.
type Changeset struct {
	Inserts []*anime.Record
	Updates []Replacement
	Deletes []int64
}

// Empty reports whether applying the changeset would be a no-op.
func (c Changeset) Empty() bool {
	return len(c.Inserts) == 0 && len(c.Updates) == 0 && len(c.Deletes) == 0
}

// Len is the number of changes.
func (c Changeset) Len() int {
	return len(c.Inserts) + len(c.Updates) + len(c.Deletes)
}

// Detect matches every record to at most one prior row, by MyAnimeList ID
// first and exact title second. A prior row is claimed at most once, so
// duplicate keys pair up in order instead of collapsing. Prior rows that no
// record claims are deleted, so a record whose MAL ID and title both changed
// shows up as a delete plus an insert. Records must be finalized.
func Detect(prior []Snapshot, records []*anime.Record) Changeset {
	byMAL := make(map[int][]int, len(prior))
	byTitle := make(map[string][]int, len(prior))
	for i, row := range prior {
		if row.MyAnimeList != nil {
			byMAL[*row.MyAnimeList] = append(byMAL[*row.MyAnimeList], i)
		}
		byTitle[row.Title] = append(byTitle[row.Title], i)
	}
	claimed := make([]bool, len(prior))
	claim := func(candidates []int) (int, bool) {
		for _, i := range candidates {
			if !claimed[i] {
				claimed[i] = true
				return i, true
			}
		}
		return 0, false
	}

	// ID claims go first; a title fallback must not take a row another
	// record owns by MAL ID.
	matches := make([]int, len(records))
	for i, record := range records {
		matches[i] = -1
		if record.MyAnimeList != nil {
			if row, ok := claim(byMAL[*record.MyAnimeList]); ok {
				matches[i] = row
			}
		}
	}
	for i, record := range records {
		if matches[i] >= 0 {
			continue
		}
		if row, ok := claim(byTitle[record.Title]); ok {
			matches[i] = row
		}
	}

	var cs Changeset
	for i, record := range records {
		switch row := matches[i]; {
		case row < 0:
			cs.Inserts = append(cs.Inserts, record)
		case prior[row].DataHash != record.DataHash:
			cs.Updates = append(cs.Updates, Replacement{ID: prior[row].ID, Record: record})
		}
	}
	for i, row := range prior {
		if !claimed[i] {
			cs.Deletes = append(cs.Deletes, row.ID)
		}
	}
	return cs
}

// Entry is one change-log row. The KV sync reads pending entries and marks
// them processed once their keys are written.
type Entry struct {
	ID        int64
	AnimeID   int64
	Title     string
	Type      Type
	RunID     string
	CreatedAt time.Time
}
