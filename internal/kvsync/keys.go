package kvsync

import (
	"strconv"

	"animeapi/internal/anime"
)

// PlatformKeys returns every lookup key that should resolve to record. The
// layout matches what the lookup API reads: "<platform>/<id>" for plain
// platforms, companion "kaize_id/<id>" and "nautiljon_id/<id>" keys,
// "trakt/<type>s/<id>" with a "/seasons/<n>" variant for show seasons, and
// "themoviedb/movie/<id>".
func PlatformKeys(record *anime.Record) []string {
	var keys []string
	for _, p := range anime.Platforms {
		switch p.Name {
		case "trakt", "themoviedb":
			continue
		}
		if value, ok := p.Field.String(record); ok {
			keys = append(keys, p.Name+"/"+value)
		}
	}
	if record.KaizeID != nil {
		keys = append(keys, "kaize_id/"+strconv.Itoa(*record.KaizeID))
	}
	if record.NautiljonID != nil {
		keys = append(keys, "nautiljon_id/"+strconv.Itoa(*record.NautiljonID))
	}
	if record.Trakt != nil && record.TraktType != nil {
		base := "trakt/" + string(*record.TraktType) + "s/" + strconv.Itoa(*record.Trakt)
		keys = append(keys, base)
		if *record.TraktType == anime.TraktShow && record.TraktSeason != nil {
			keys = append(keys, base+"/seasons/"+strconv.Itoa(*record.TraktSeason))
		}
	}
	if record.TheMovieDB != nil {
		keys = append(keys, "themoviedb/movie/"+strconv.Itoa(*record.TheMovieDB))
	}
	return keys
}
