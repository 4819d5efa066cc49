package overrides_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"animeapi/internal/anime"
	"animeapi/internal/link"
	"animeapi/internal/overrides"
)

func TestParseKeepsFileOrderAndForms(t *testing.T) {
	data := []byte("\xEF\xBB\xBF" + `{
		"Zeta": {"kaize": "zeta-slug", "kaize_id": 0},
		"Alpha": "alpha-slug",
		"Beta": [{"kaize": "beta-slug", "kaize_id": 12}]
	}`)
	entries, err := overrides.Parse(data, "kaize")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Title != "Zeta" || entries[1].Title != "Alpha" || entries[2].Title != "Beta" {
		t.Fatalf("file order lost: %+v", entries)
	}
	if entries[0].Force || entries[1].Force || !entries[2].Force {
		t.Fatalf("unexpected force flags: %+v", entries)
	}
	if entries[1].Key != "alpha-slug" || len(entries[1].Payload) != 1 {
		t.Fatalf("bare slug not mapped to kaize: %+v", entries[1])
	}
	if entries[0].Key != "zeta-slug" || len(entries[0].Payload) != 2 {
		t.Fatalf("object payload not decoded: %+v", entries[0])
	}
}

func TestParseRejectsForeignFields(t *testing.T) {
	if _, err := overrides.Parse([]byte(`{"A": {"kaize": "a", "anilist": 3}}`), "kaize"); err == nil {
		t.Fatal("expected error for foreign field")
	}
	if _, err := overrides.Parse([]byte(`{"A": "not-a-number"}`), "otakotaku"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
	if _, err := overrides.Parse([]byte(`{"A": []}`), "otakotaku"); err == nil {
		t.Fatal("expected schema error for empty list")
	}
	if _, err := overrides.Parse([]byte(`{"A": 1`), "otakotaku"); err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	catalog, err := overrides.Load(filepath.Join(t.TempDir(), "kaize_manual.json"), "kaize")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(catalog.Entries) != 0 {
		t.Fatalf("expected empty catalog, got %+v", catalog.Entries)
	}
	if _, err := overrides.Load("unused", "anilist"); err == nil {
		t.Fatal("expected error for platform without overrides")
	}
}

func TestApplyPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silveryasha_manual.json")
	doc := `{
		"Linked Show": 10,
		"Forced Show": [20],
		"Pending Show": 30,
		"Ghost Show": 40
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	catalog, err := overrides.Load(path, "silveryasha")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	linked := &anime.Record{Title: "Linked Show", SilverYasha: anime.Int(1)}
	forced := &anime.Record{Title: "Forced Show", SilverYasha: anime.Int(2)}
	pending := &anime.Record{Title: "Pending Show"}
	unlinked := []link.Unlinked{
		{Platform: "silveryasha", Title: "Pending", Key: "30"},
		{Platform: "silveryasha", Title: "Other", Key: "99"},
	}

	result := catalog.Apply(context.Background(), []*anime.Record{linked, forced, pending}, unlinked, nil)

	if *linked.SilverYasha != 1 {
		t.Fatalf("non-forced override clobbered a linked record: %d", *linked.SilverYasha)
	}
	if *forced.SilverYasha != 20 {
		t.Fatalf("forced override not applied: %d", *forced.SilverYasha)
	}
	if pending.SilverYasha == nil || *pending.SilverYasha != 30 {
		t.Fatalf("pending override not applied: %v", pending.SilverYasha)
	}
	if result.Applied != 2 || result.Guarded != 1 || result.Missing != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Unlinked) != 1 || result.Unlinked[0].Key != "99" {
		t.Fatalf("applied key not removed from unlinked: %+v", result.Unlinked)
	}
}

func TestApplyLaterEntryWins(t *testing.T) {
	entries, err := overrides.Parse([]byte(`{"Show": ["first"], "Show": [{"nautiljon": "second", "nautiljon_id": 7}]}`), "nautiljon")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	record := &anime.Record{Title: "Show"}
	catalog := &overrides.Catalog{Platform: "nautiljon", Entries: entries}
	catalog.Apply(context.Background(), []*anime.Record{record}, nil, nil)
	if *record.Nautiljon != "second" || *record.NautiljonID != 7 {
		t.Fatalf("expected later entry to win, got %s/%v", *record.Nautiljon, record.NautiljonID)
	}
}
