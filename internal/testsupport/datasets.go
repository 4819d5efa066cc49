package testsupport

import (
	"path/filepath"
	"testing"

	"animeapi/internal/config"
)

// WriteSampleDatasets writes a small consistent set of input files under the
// data directory. "Show A" (MAL 100) picks up ids from every exact-key
// source and links to Kaize by slug; "Show B 2nd Season" (MAL 101) has a
// SilverYasha candidate (id 9) that stays below the default threshold.
func WriteSampleDatasets(t testing.TB, cfg *config.Config) {
	t.Helper()
	data := cfg.Paths.DataDir
	WriteJSON(t, filepath.Join(data, "aod.json"), map[string]any{
		"data": []map[string]any{
			{"title": "Show A", "sources": []string{
				"https://myanimelist.net/anime/100",
				"https://anilist.co/anime/200",
				"https://anidb.net/anime/300",
			}},
			{"title": "Show B 2nd Season", "sources": []string{"https://myanimelist.net/anime/101"}},
		},
	})
	WriteJSON(t, filepath.Join(data, "arm.json"), []map[string]any{
		{"mal_id": 100, "syobocal_tid": 55, "annict_id": 77},
	})
	WriteJSON(t, filepath.Join(data, "anitrakt_tv.json"), []map[string]any{
		{"title": "Show A", "mal_id": 100, "trakt_id": 900, "type": "shows", "season": 1},
	})
	WriteJSON(t, filepath.Join(data, "anitrakt_movies.json"), []map[string]any{})
	WriteJSON(t, filepath.Join(data, "fribb.json"), []map[string]any{
		{"anidb_id": 300, "imdb_id": "tt0000123", "themoviedb_id": 400},
	})
	WriteJSON(t, filepath.Join(data, "kaize.json"), []map[string]any{
		{"title": "Show A", "slug": "show-a", "kaize": 0},
	})
	WriteJSON(t, filepath.Join(data, "nautiljon.json"), []map[string]any{})
	WriteJSON(t, filepath.Join(data, "otakotaku.json"), []map[string]any{})
	WriteJSON(t, filepath.Join(data, "silveryasha.json"), []map[string]any{
		{"title": "Show B Season 2", "silveryasha": 9},
	})
}
