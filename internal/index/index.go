// Package index builds the per-run lookup tables the combiners and linkers
// join against. Indexes are never persisted.
package index

import (
	"animeapi/internal/anime"
	"animeapi/internal/textutil"
)

// Index maps keys onto canonical records. Every table keeps the first record
// seen for a key; later duplicates are unreachable through that table but
// stay in the record set.
type Index struct {
	ByMyAnimeList map[int]*anime.Record
	ByAniList     map[int]*anime.Record
	ByAniDB       map[int]*anime.Record
	ByTitle       map[string]*anime.Record
	BySlug        map[string]*anime.Record

	// Collisions counts keys that were already taken, per table.
	Collisions map[string]int
}

// Build indexes records in order.
func Build(records []*anime.Record) *Index {
	idx := &Index{
		ByMyAnimeList: make(map[int]*anime.Record, len(records)),
		ByAniList:     make(map[int]*anime.Record, len(records)),
		ByAniDB:       make(map[int]*anime.Record, len(records)),
		ByTitle:       make(map[string]*anime.Record, len(records)),
		BySlug:        make(map[string]*anime.Record, len(records)),
		Collisions:    map[string]int{},
	}
	for _, record := range records {
		idx.addInt("myanimelist", idx.ByMyAnimeList, record.MyAnimeList, record)
		idx.addInt("anilist", idx.ByAniList, record.AniList, record)
		idx.addInt("anidb", idx.ByAniDB, record.AniDB, record)
		idx.addString("title", idx.ByTitle, record.Title, record)
		idx.addString("slug", idx.BySlug, textutil.CompactSlug(record.Title), record)
	}
	return idx
}

func (idx *Index) addInt(table string, m map[int]*anime.Record, key *int, record *anime.Record) {
	if key == nil {
		return
	}
	if _, taken := m[*key]; taken {
		idx.Collisions[table]++
		return
	}
	m[*key] = record
}

func (idx *Index) addString(table string, m map[string]*anime.Record, key string, record *anime.Record) {
	if key == "" {
		return
	}
	if _, taken := m[key]; taken {
		idx.Collisions[table]++
		return
	}
	m[key] = record
}

// MyAnimeList looks up a record by MAL ID.
func (idx *Index) MyAnimeList(id int) (*anime.Record, bool) {
	r, ok := idx.ByMyAnimeList[id]
	return r, ok
}

// AniList looks up a record by AniList ID.
func (idx *Index) AniList(id int) (*anime.Record, bool) {
	r, ok := idx.ByAniList[id]
	return r, ok
}

// AniDB looks up a record by AniDB ID.
func (idx *Index) AniDB(id int) (*anime.Record, bool) {
	r, ok := idx.ByAniDB[id]
	return r, ok
}

// Title looks up a record by exact title.
func (idx *Index) Title(title string) (*anime.Record, bool) {
	r, ok := idx.ByTitle[title]
	return r, ok
}

// Slug looks up a record by the compact slug of its title. The key is
// normalized here so callers may pass raw slugs or titles.
func (idx *Index) Slug(value string) (*anime.Record, bool) {
	key := textutil.CompactSlug(value)
	if key == "" {
		return nil, false
	}
	r, ok := idx.BySlug[key]
	return r, ok
}
