package anime_test

import (
	"encoding/json"
	"strings"
	"testing"

	"animeapi/internal/anime"
)

func sampleRecord() *anime.Record {
	r := &anime.Record{Title: "Show A"}
	r.SetMyAnimeList(anime.Int(100))
	r.AniList = anime.Int(200)
	r.Kaize = anime.Str("show-a")
	r.SetTrakt(300, anime.TraktShow, anime.Int(2))
	return r
}

func TestHashIsStable(t *testing.T) {
	r := sampleRecord()
	first := r.Hash()
	second := r.Hash()
	if first != second {
		t.Fatalf("hash changed without mutation: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected hex sha256, got %q", first)
	}

	clone := r.Clone()
	if clone.Hash() != first {
		t.Fatal("expected clone to hash identically")
	}

	clone.AniList = anime.Int(201)
	if clone.Hash() == first {
		t.Fatal("expected hash to change after mutation")
	}
	if r.AniList == nil || *r.AniList != 200 {
		t.Fatal("clone mutation leaked into original")
	}
}

func TestHashMatchesLegacyLayout(t *testing.T) {
	r := &anime.Record{Title: "X"}
	r.SetMyAnimeList(anime.Int(1))
	// title, then 24 fields with myanimelist and shikimori populated
	parts := []string{"X", "1"}
	for i := 0; i < 11; i++ {
		parts = append(parts, "None")
	}
	parts = append(parts, "1")
	for i := 0; i < 11; i++ {
		parts = append(parts, "None")
	}
	if len(parts) != 1+len(anime.Fields) {
		t.Fatalf("test layout has %d parts, want %d", len(parts), 1+len(anime.Fields))
	}
	want := sha256Hex(strings.Join(parts, "|"))
	if got := r.Hash(); got != want {
		t.Fatalf("hash = %s, want %s", got, want)
	}
}

func TestFinalizeNormalizesZeroIDs(t *testing.T) {
	zero := 0
	r := &anime.Record{Title: "Show A", KaizeID: &zero, NautiljonID: &zero}
	blank := "  "
	r.Kaize = &blank
	r.Finalize()
	if r.KaizeID != nil {
		t.Fatalf("expected kaize_id absent, got %v", *r.KaizeID)
	}
	if r.NautiljonID != nil {
		t.Fatal("expected nautiljon_id absent")
	}
	if r.Kaize != nil {
		t.Fatal("expected blank kaize slug absent")
	}
	if r.DataHash == "" || r.DataHash != r.Hash() {
		t.Fatal("expected finalize to store the hash")
	}
}

func TestSetMyAnimeListMirrorsShikimori(t *testing.T) {
	r := &anime.Record{Title: "Show"}
	r.SetMyAnimeList(anime.Int(42))
	if r.Shikimori == nil || *r.Shikimori != 42 {
		t.Fatalf("expected shikimori 42, got %v", r.Shikimori)
	}
}

func TestValidate(t *testing.T) {
	if err := (&anime.Record{}).Validate(); err != anime.ErrMissingTitle {
		t.Fatalf("expected ErrMissingTitle, got %v", err)
	}
	r := &anime.Record{Title: "Show", TraktSeason: anime.Int(2)}
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for season without trakt id")
	}
	if err := sampleRecord().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONOmitsAbsentFields(t *testing.T) {
	data, err := json.Marshal(sampleRecord())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"myanimelist":100`, `"shikimori":100`, `"trakt_type":"show"`, `"trakt_season":2`} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %s in %s", want, text)
		}
	}
	for _, absent := range []string{"kaize_id", "imdb", "data_hash"} {
		if strings.Contains(text, absent) {
			t.Fatalf("did not expect %s in %s", absent, text)
		}
	}
}

func TestFieldSetAndValue(t *testing.T) {
	r := &anime.Record{Title: "Show"}
	field, ok := anime.FieldByName("anidb")
	if !ok {
		t.Fatal("expected anidb field")
	}
	if err := field.Set(r, "123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := field.Value(r); got != int64(123) {
		t.Fatalf("Value = %#v", got)
	}
	if err := field.Set(r, "abc"); err == nil {
		t.Fatal("expected parse error")
	}
	if err := field.Set(r, ""); err != nil || r.AniDB != nil {
		t.Fatalf("expected blank to clear, err=%v", err)
	}

	traktType, _ := anime.FieldByName("trakt_type")
	if err := traktType.Set(r, "movies"); err != nil {
		t.Fatalf("Set trakt_type: %v", err)
	}
	if r.TraktType == nil || *r.TraktType != anime.TraktMovie {
		t.Fatalf("unexpected trakt type %v", r.TraktType)
	}
}

func TestLookupPlatformAliases(t *testing.T) {
	for alias, want := range map[string]string{"mal": "myanimelist", "TMDB": "themoviedb", "kitsu.io": "kitsu", "shikimori": "shikimori"} {
		p, ok := anime.LookupPlatform(alias)
		if !ok || p.Name != want {
			t.Fatalf("LookupPlatform(%q) = %q %v, want %q", alias, p.Name, ok, want)
		}
	}
	if _, ok := anime.LookupPlatform("kaize_id"); ok {
		t.Fatal("companion fields are not platforms")
	}
	if names := anime.PlatformNames(); len(names) != len(anime.Platforms) || names[0] != "anidb" {
		t.Fatalf("unexpected platform names %v", names)
	}
}
