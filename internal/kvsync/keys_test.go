package kvsync_test

import (
	"slices"
	"testing"

	"animeapi/internal/anime"
	"animeapi/internal/kvsync"
)

func TestPlatformKeys(t *testing.T) {
	show := anime.TraktShow
	record := &anime.Record{
		Title:       "Show",
		MyAnimeList: anime.Int(1),
		Shikimori:   anime.Int(1),
		AnimePlanet: anime.Str("show"),
		Kaize:       anime.Str("show-kz"),
		KaizeID:     anime.Int(7),
		NautiljonID: anime.Int(8),
		Trakt:       anime.Int(30),
		TraktType:   &show,
		TraktSeason: anime.Int(2),
		TheMovieDB:  anime.Int(40),
	}
	got := kvsync.PlatformKeys(record)
	want := []string{
		"animeplanet/show",
		"kaize/show-kz",
		"myanimelist/1",
		"shikimori/1",
		"kaize_id/7",
		"nautiljon_id/8",
		"trakt/shows/30",
		"trakt/shows/30/seasons/2",
		"themoviedb/movie/40",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("keys = %v\nwant %v", got, want)
	}
}

func TestPlatformKeysMovieHasNoSeason(t *testing.T) {
	movie := anime.TraktMovie
	got := kvsync.PlatformKeys(&anime.Record{Title: "Movie", Trakt: anime.Int(3), TraktType: &movie, TraktSeason: anime.Int(1)})
	if !slices.Equal(got, []string{"trakt/movies/3"}) {
		t.Fatalf("keys = %v", got)
	}
}

func TestNewRedisClientParsesURL(t *testing.T) {
	client, err := kvsync.NewRedisClient("redis://localhost:6390/2", 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()
	if client.Addr() != "localhost:6390" {
		t.Fatalf("addr = %q", client.Addr())
	}
	if _, err := kvsync.NewRedisClient("http://localhost", 0); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
