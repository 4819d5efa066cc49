package sources_test

import (
	"testing"

	"animeapi/internal/sources"
)

func TestLoadBaseExtractsIdentifiers(t *testing.T) {
	entries := []sources.BaseEntry{{
		Title: "Show A",
		Sources: []string{
			"https://myanimelist.net/anime/100",
			"https://anidb.net/anime/200",
			"https://anilist.co/anime/300",
			"https://anime-planet.com/anime/show-a",
			"https://anisearch.com/anime/400",
			"https://kitsu.app/anime/500",
			"https://livechart.me/anime/600",
			"https://notify.moe/anime/Ab3dEf",
			"https://simkl.com/anime/700",
			"https://www.animenewsnetwork.com/encyclopedia/anime.php?id=800",
		},
	}}

	records := sources.LoadBase(entries)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	checks := map[string]*int{
		"myanimelist":      r.MyAnimeList,
		"shikimori":        r.Shikimori,
		"anidb":            r.AniDB,
		"anilist":          r.AniList,
		"anisearch":        r.AniSearch,
		"kitsu":            r.Kitsu,
		"livechart":        r.LiveChart,
		"simkl":            r.SIMKL,
		"animenewsnetwork": r.AnimeNewsNetwork,
	}
	want := map[string]int{
		"myanimelist": 100, "shikimori": 100, "anidb": 200, "anilist": 300, "anisearch": 400,
		"kitsu": 500, "livechart": 600, "simkl": 700, "animenewsnetwork": 800,
	}
	for name, got := range checks {
		if got == nil || *got != want[name] {
			t.Fatalf("%s = %v, want %d", name, got, want[name])
		}
	}
	if r.AnimePlanet == nil || *r.AnimePlanet != "show-a" {
		t.Fatalf("unexpected animeplanet %v", r.AnimePlanet)
	}
	if r.Notify == nil || *r.Notify != "Ab3dEf" {
		t.Fatalf("unexpected notify %v", r.Notify)
	}
}

func TestLoadBaseShikimoriMirrorsMyAnimeList(t *testing.T) {
	records := sources.LoadBase([]sources.BaseEntry{
		{Title: "Show A", Sources: []string{"https://myanimelist.net/anime/100"}},
		{Title: "Show B", Sources: []string{"https://anilist.co/anime/5"}},
	})
	if records[0].Shikimori == nil || *records[0].Shikimori != *records[0].MyAnimeList {
		t.Fatalf("expected shikimori to equal myanimelist, got %v", records[0].Shikimori)
	}
	if records[1].Shikimori != nil {
		t.Fatal("expected no shikimori without myanimelist")
	}
}

func TestLoadBaseSkipsJunk(t *testing.T) {
	records := sources.LoadBase([]sources.BaseEntry{
		{Title: "   ", Sources: []string{"https://myanimelist.net/anime/1"}},
		{Title: "Show C", Sources: []string{
			"https://myanimelist.net/anime/not-a-number",
			"https://kitsu.io/anime/",
			"https://animenewsnetwork.com/encyclopedia/anime.php",
			"https://example.com/anime/9",
			"",
		}},
	})
	if len(records) != 1 {
		t.Fatalf("expected untitled entry dropped, got %d records", len(records))
	}
	r := records[0]
	if r.MyAnimeList != nil || r.Kitsu != nil || r.AnimeNewsNetwork != nil {
		t.Fatalf("expected malformed sources to stay absent: %+v", r)
	}
}
