package link

import (
	"strconv"
	"strings"

	"animeapi/internal/anime"
	"animeapi/internal/index"
	"animeapi/internal/sources"
	"animeapi/internal/textutil"
)

// Source adapts one platform dataset to the linker.
type Source interface {
	Platform() string
	Len() int
	// Title is the string scored during the fuzzy pass, after preprocessing.
	Title(i int) string
	// Exact resolves item i without scoring, using the pre-stage index.
	Exact(i int, idx *index.Index) (*anime.Record, bool)
	// Apply copies the platform fields of item i onto record.
	Apply(i int, record *anime.Record)
	// Unlinked describes item i for the curation list.
	Unlinked(i int) Unlinked
}

type adapter[T any] struct {
	platform   string
	items      []T
	title      func(T) string
	preprocess func(string) string
	exact      func(T, *index.Index) (*anime.Record, bool)
	apply      func(T, *anime.Record)
	key        func(T) string
}

func (a *adapter[T]) Platform() string { return a.platform }

func (a *adapter[T]) Len() int { return len(a.items) }

func (a *adapter[T]) Title(i int) string {
	title := a.title(a.items[i])
	if a.preprocess != nil {
		title = a.preprocess(title)
	}
	return title
}

func (a *adapter[T]) Exact(i int, idx *index.Index) (*anime.Record, bool) {
	return a.exact(a.items[i], idx)
}

func (a *adapter[T]) Apply(i int, record *anime.Record) {
	a.apply(a.items[i], record)
}

func (a *adapter[T]) Unlinked(i int) Unlinked {
	return Unlinked{
		Platform: a.platform,
		Title:    a.title(a.items[i]),
		Key:      a.key(a.items[i]),
	}
}

func byTitle(title string, idx *index.Index) (*anime.Record, bool) {
	return idx.Title(title)
}

// Kaize links Kaize entries by slug. The exact pass compares the compact
// slug of the entry slug with the compact slug of canonical titles, then
// falls back to the exact title.
func Kaize(items []sources.KaizeEntry) Source {
	return &adapter[sources.KaizeEntry]{
		platform: "kaize",
		items:    items,
		title:    func(e sources.KaizeEntry) string { return e.Title },
		exact: func(e sources.KaizeEntry, idx *index.Index) (*anime.Record, bool) {
			if record, ok := idx.Slug(e.Slug); ok {
				return record, true
			}
			return byTitle(e.Title, idx)
		},
		apply: func(e sources.KaizeEntry, r *anime.Record) {
			r.Kaize = anime.Str(e.Slug)
			r.KaizeID = e.Kaize.Ptr()
		},
		key: func(e sources.KaizeEntry) string { return strings.TrimSpace(e.Slug) },
	}
}

// Nautiljon links Nautiljon entries by title.
func Nautiljon(items []sources.NautiljonEntry) Source {
	return &adapter[sources.NautiljonEntry]{
		platform: "nautiljon",
		items:    items,
		title:    func(e sources.NautiljonEntry) string { return e.Title },
		exact: func(e sources.NautiljonEntry, idx *index.Index) (*anime.Record, bool) {
			return byTitle(e.Title, idx)
		},
		apply: func(e sources.NautiljonEntry, r *anime.Record) {
			r.Nautiljon = anime.Str(e.Slug)
			r.NautiljonID = e.EntryID.Ptr()
		},
		key: func(e sources.NautiljonEntry) string { return strings.TrimSpace(e.Slug) },
	}
}

// OtakOtaku links Otak Otaku entries by title. Fuzzy titles are rewritten
// from "Season N" to the ordinal form canonical titles use.
func OtakOtaku(items []sources.OtakOtakuEntry) Source {
	return &adapter[sources.OtakOtakuEntry]{
		platform:   "otakotaku",
		items:      items,
		title:      func(e sources.OtakOtakuEntry) string { return e.Title },
		preprocess: textutil.SeasonOrdinal,
		exact: func(e sources.OtakOtakuEntry, idx *index.Index) (*anime.Record, bool) {
			return byTitle(e.Title, idx)
		},
		apply: func(e sources.OtakOtakuEntry, r *anime.Record) {
			r.OtakOtaku = e.OtakOtaku.Ptr()
		},
		key: func(e sources.OtakOtakuEntry) string { return strconv.Itoa(e.OtakOtaku.Value) },
	}
}

// SilverYasha links SilverYasha entries by MyAnimeList ID when the entry has
// one, and by title otherwise.
func SilverYasha(items []sources.SilverYashaEntry) Source {
	return &adapter[sources.SilverYashaEntry]{
		platform: "silveryasha",
		items:    items,
		title:    func(e sources.SilverYashaEntry) string { return e.Title },
		exact: func(e sources.SilverYashaEntry, idx *index.Index) (*anime.Record, bool) {
			if e.MyAnimeList.Valid {
				if record, ok := idx.MyAnimeList(e.MyAnimeList.Value); ok {
					return record, true
				}
			}
			return byTitle(e.Title, idx)
		},
		apply: func(e sources.SilverYashaEntry, r *anime.Record) {
			r.SilverYasha = anime.Int(e.ID())
		},
		key: func(e sources.SilverYashaEntry) string { return strconv.Itoa(e.ID()) },
	}
}
