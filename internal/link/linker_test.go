package link_test

import (
	"context"
	"errors"
	"testing"

	"animeapi/internal/anime"
	"animeapi/internal/index"
	"animeapi/internal/link"
	"animeapi/internal/sources"
)

func titles(values ...string) []*anime.Record {
	records := make([]*anime.Record, len(values))
	for i, v := range values {
		records[i] = &anime.Record{Title: v}
	}
	return records
}

func TestKaizeExactSlugNormalizesZeroID(t *testing.T) {
	records := titles("Show A")
	report, err := link.Linker{Threshold: 85, Workers: 2}.Link(context.Background(), records,
		link.Kaize([]sources.KaizeEntry{{Title: "Show A", Slug: "show-a", Kaize: sources.ID(0)}}))
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if report.Exact != 1 || len(report.Unlinked) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if records[0].Kaize == nil || *records[0].Kaize != "show-a" {
		t.Fatalf("kaize = %v", records[0].Kaize)
	}
	if records[0].KaizeID != nil {
		t.Fatalf("expected kaize_id absent, got %d", *records[0].KaizeID)
	}
}

func TestKaizeExactFallsBackToTitle(t *testing.T) {
	records := titles("Completely Different")
	_, err := link.Linker{Threshold: 85}.Link(context.Background(), records,
		link.Kaize([]sources.KaizeEntry{{Title: "Completely Different", Slug: "cd-2009", Kaize: sources.ID(12)}}))
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if records[0].KaizeID == nil || *records[0].KaizeID != 12 {
		t.Fatalf("kaize_id = %v", records[0].KaizeID)
	}
}

func TestSilverYashaBelowThresholdIsUnlinked(t *testing.T) {
	records := titles("Show B 2nd Season")
	report, err := link.Linker{Threshold: 95}.Link(context.Background(), records,
		link.SilverYasha([]sources.SilverYashaEntry{{Title: "Show B Season 2", SilverYasha: sources.ID(9)}}))
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if records[0].SilverYasha != nil {
		t.Fatalf("expected silveryasha absent, got %d", *records[0].SilverYasha)
	}
	if len(report.Unlinked) != 1 {
		t.Fatalf("expected one unlinked entry, got %+v", report.Unlinked)
	}
	got := report.Unlinked[0]
	if got.Platform != "silveryasha" || got.Key != "9" || got.Title != "Show B Season 2" {
		t.Fatalf("unexpected unlinked entry %+v", got)
	}
}

func TestSilverYashaPrefersMyAnimeList(t *testing.T) {
	records := []*anime.Record{
		{Title: "Same Title"},
		{Title: "Other", MyAnimeList: anime.Int(5)},
	}
	_, err := link.Linker{Threshold: 95}.Link(context.Background(), records,
		link.SilverYasha([]sources.SilverYashaEntry{{Title: "Same Title", LegacyID: sources.ID(3), MyAnimeList: sources.ID(5)}}))
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if records[0].SilverYasha != nil {
		t.Fatal("title match should not win over mal_id")
	}
	if records[1].SilverYasha == nil || *records[1].SilverYasha != 3 {
		t.Fatalf("silveryasha = %v", records[1].SilverYasha)
	}
}

func TestThresholdBoundary(t *testing.T) {
	// "kitten" and "sitting" score 62.
	cases := []struct {
		threshold int
		linked    bool
	}{
		{threshold: 62, linked: true},
		{threshold: 63, linked: false},
	}
	for _, tc := range cases {
		records := titles("sitting")
		report, err := link.Linker{Threshold: tc.threshold}.Link(context.Background(), records,
			link.Nautiljon([]sources.NautiljonEntry{{Title: "kitten", Slug: "kitten", EntryID: sources.ID(4)}}))
		if err != nil {
			t.Fatalf("link: %v", err)
		}
		if got := records[0].Nautiljon != nil; got != tc.linked {
			t.Fatalf("threshold %d: linked=%v, want %v", tc.threshold, got, tc.linked)
		}
		if tc.linked && report.Fuzzy != 1 {
			t.Fatalf("threshold %d: expected fuzzy match, got %+v", tc.threshold, report)
		}
	}
}

func TestPreprocessedEqualityIgnoresThreshold(t *testing.T) {
	records := titles("Show C 2nd Season")
	report, err := link.Linker{Threshold: 100}.Link(context.Background(), records,
		link.OtakOtaku([]sources.OtakOtakuEntry{{Title: "Show C Season 2", OtakOtaku: sources.ID(44)}}))
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if report.Fuzzy != 1 || records[0].OtakOtaku == nil || *records[0].OtakOtaku != 44 {
		t.Fatalf("expected equality short-circuit, report %+v", report)
	}
}

func TestEarlyExitKeepsFirstGoodCandidate(t *testing.T) {
	records := titles("abcdefghijklmnopqrsX", "abcdefghijklmnopqrst!")
	_, err := link.Linker{Threshold: 90, EarlyExit: 95}.Link(context.Background(), records,
		link.OtakOtaku([]sources.OtakOtakuEntry{{Title: "abcdefghijklmnopqrst", OtakOtaku: sources.ID(1)}}))
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if records[0].OtakOtaku == nil || records[1].OtakOtaku != nil {
		t.Fatalf("expected first candidate to win, got %v / %v", records[0].OtakOtaku, records[1].OtakOtaku)
	}
}

func TestResultsApplyInInputOrder(t *testing.T) {
	records := titles("Show Alpha")
	_, err := link.Linker{Threshold: 90, Workers: 4}.Link(context.Background(), records,
		link.Nautiljon([]sources.NautiljonEntry{
			{Title: "Show Alpha!", Slug: "first", EntryID: sources.ID(1)},
			{Title: "Show Alpha?", Slug: "second", EntryID: sources.ID(2)},
		}))
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if *records[0].Nautiljon != "second" || *records[0].NautiljonID != 2 {
		t.Fatalf("expected later item to win, got %s/%d", *records[0].Nautiljon, *records[0].NautiljonID)
	}
}

type panicSource struct{}

func (panicSource) Platform() string { return "kaize" }
func (panicSource) Len() int         { return 1 }
func (panicSource) Title(int) string { panic("bad title") }
func (panicSource) Exact(int, *index.Index) (*anime.Record, bool) {
	return nil, false
}
func (panicSource) Apply(int, *anime.Record) {}
func (panicSource) Unlinked(int) link.Unlinked {
	return link.Unlinked{Platform: "kaize", Title: "broken", Key: "broken"}
}

func TestWorkerPanicBecomesFailure(t *testing.T) {
	report, err := link.Linker{Threshold: 85}.Link(context.Background(), titles("Anything"), panicSource{})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if report.Failed != 1 || len(report.Unlinked) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Unlinked[0].Reason != "bad title" {
		t.Fatalf("reason = %q", report.Unlinked[0].Reason)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := link.Linker{Threshold: 85}.Link(ctx, titles("Show"),
		link.Nautiljon([]sources.NautiljonEntry{{Title: "Shop", Slug: "shop"}}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWithoutRemovesKeys(t *testing.T) {
	entries := []link.Unlinked{{Key: "a"}, {Key: "b"}, {Key: "c"}}
	got := link.Without(entries, map[string]struct{}{"b": {}})
	if len(got) != 2 || got[0].Key != "a" || got[1].Key != "c" {
		t.Fatalf("unexpected entries %+v", got)
	}
	if _, ok := link.Keys(entries)["c"]; !ok {
		t.Fatal("expected key c")
	}
}
