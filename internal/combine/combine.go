// Package combine merges datasets that share an exact numeric key with the
// canonical record set. Each combiner is a hash join against a fresh index;
// the pipeline runs them one after another because later joins read IDs the
// earlier ones back-fill.
package combine

import (
	"strings"

	"animeapi/internal/anime"
	"animeapi/internal/index"
	"animeapi/internal/sources"
)

// Stats summarizes one combiner pass.
type Stats struct {
	Source  string
	Matched int
	Missed  int
	Skipped int
}

// ARM fills Shoboi and Annict, joining on MyAnimeList and falling back to
// AniList. A matched entry also back-fills whichever of the two keys the
// record was missing.
func ARM(records []*anime.Record, entries []sources.ARMEntry) Stats {
	idx := index.Build(records)
	stats := Stats{Source: "arm"}
	for _, entry := range entries {
		var (
			record *anime.Record
			ok     bool
		)
		if entry.MyAnimeList.Valid {
			record, ok = idx.MyAnimeList(entry.MyAnimeList.Value)
		}
		if !ok && entry.AniList.Valid {
			record, ok = idx.AniList(entry.AniList.Value)
		}
		if !ok {
			stats.Missed++
			continue
		}
		if entry.Shoboi.Valid {
			record.Shoboi = entry.Shoboi.Ptr()
		}
		if entry.Annict.Valid {
			record.Annict = entry.Annict.Ptr()
		}
		if record.MyAnimeList == nil && entry.MyAnimeList.Valid {
			record.SetMyAnimeList(entry.MyAnimeList.Ptr())
		}
		if record.AniList == nil && entry.AniList.Valid {
			record.AniList = entry.AniList.Ptr()
		}
		stats.Matched++
	}
	return stats
}

// AniTrakt fills the Trakt ID, type, and season, joining on MyAnimeList.
// Entries with an unrecognized type are skipped.
func AniTrakt(records []*anime.Record, entries []sources.AniTraktEntry) Stats {
	idx := index.Build(records)
	stats := Stats{Source: "anitrakt"}
	for _, entry := range entries {
		kind, known := anime.ParseTraktType(entry.Type)
		if !known {
			stats.Skipped++
			continue
		}
		record, ok := idx.MyAnimeList(entry.MyAnimeList.Value)
		if !ok {
			stats.Missed++
			continue
		}
		record.SetTrakt(entry.Trakt.Value, kind, entry.Season.Ptr())
		stats.Matched++
	}
	return stats
}

// Fribb fills IMDb and TheMovieDB, joining on AniDB. Comma-joined TMDB lists
// were already cut to their first entry while decoding.
func Fribb(records []*anime.Record, entries []sources.FribbEntry) Stats {
	idx := index.Build(records)
	stats := Stats{Source: "fribb"}
	for _, entry := range entries {
		record, ok := idx.AniDB(entry.AniDB.Value)
		if !ok {
			stats.Missed++
			continue
		}
		if imdb := strings.TrimSpace(entry.IMDb); imdb != "" {
			record.IMDb = anime.Str(imdb)
		}
		if entry.TheMovieDB.Valid {
			record.TheMovieDB = entry.TheMovieDB.Ptr()
		}
		stats.Matched++
	}
	return stats
}
