package sources

import (
	"strings"
)

// ARMEntry links MyAnimeList and AniList IDs to Shoboi and Annict.
type ARMEntry struct {
	MyAnimeList FlexibleID `json:"mal_id"`
	AniList     FlexibleID `json:"anilist_id"`
	Shoboi      FlexibleID `json:"syobocal_tid"`
	Annict      FlexibleID `json:"annict_id"`
}

// AniTraktEntry maps a MyAnimeList ID to a Trakt page.
type AniTraktEntry struct {
	Title       string     `json:"title"`
	MyAnimeList FlexibleID `json:"mal_id"`
	Trakt       FlexibleID `json:"trakt_id"`
	Type        string     `json:"type"`
	Season      FlexibleID `json:"season"`
}

// FribbEntry maps an AniDB ID to IMDb and TheMovieDB.
type FribbEntry struct {
	AniDB      FlexibleID `json:"anidb_id"`
	IMDb       string     `json:"imdb_id"`
	TheMovieDB FlexibleID `json:"themoviedb_id"`
}

// KaizeEntry is one scraped Kaize title. Kaize holds the numeric ID, zero
// when the scraper could not find it.
type KaizeEntry struct {
	Title string     `json:"title"`
	Slug  string     `json:"slug"`
	Kaize FlexibleID `json:"kaize"`
}

// NautiljonEntry is one scraped Nautiljon title.
type NautiljonEntry struct {
	Title   string     `json:"title"`
	Slug    string     `json:"slug"`
	EntryID FlexibleID `json:"entry_id"`
}

// OtakOtakuEntry is one scraped Otak Otaku title.
type OtakOtakuEntry struct {
	Title     string     `json:"title"`
	OtakOtaku FlexibleID `json:"otakotaku"`
}

// SilverYashaEntry is one SilverYasha title. Older dumps carry the ID under
// "id", newer ones under "silveryasha".
type SilverYashaEntry struct {
	Title       string     `json:"title"`
	SilverYasha FlexibleID `json:"silveryasha"`
	LegacyID    FlexibleID `json:"id"`
	MyAnimeList FlexibleID `json:"mal_id"`
}

// ID returns the SilverYasha identifier regardless of which key carried it.
func (e SilverYashaEntry) ID() int {
	if e.SilverYasha.Valid {
		return e.SilverYasha.Value
	}
	return e.LegacyID.Value
}

// Batch is a decoded dataset plus the number of entries dropped for missing
// key fields.
type Batch[T any] struct {
	Items   []T
	Skipped int
}

func keep[T any](items []T, valid func(T) bool) Batch[T] {
	out := Batch[T]{Items: items[:0]}
	for _, item := range items {
		if valid(item) {
			out.Items = append(out.Items, item)
			continue
		}
		out.Skipped++
	}
	return out
}

func validARM(e ARMEntry) bool {
	return e.MyAnimeList.Valid || e.AniList.Valid
}

func validAniTrakt(e AniTraktEntry) bool {
	return e.MyAnimeList.Valid && e.Trakt.Valid && strings.TrimSpace(e.Type) != ""
}

func validFribb(e FribbEntry) bool {
	return e.AniDB.Valid && (strings.TrimSpace(e.IMDb) != "" || e.TheMovieDB.Valid)
}

func validKaize(e KaizeEntry) bool {
	return strings.TrimSpace(e.Title) != "" && strings.TrimSpace(e.Slug) != ""
}

func validNautiljon(e NautiljonEntry) bool {
	return strings.TrimSpace(e.Title) != "" && strings.TrimSpace(e.Slug) != ""
}

func validOtakOtaku(e OtakOtakuEntry) bool {
	return strings.TrimSpace(e.Title) != "" && e.OtakOtaku.Valid
}

func validSilverYasha(e SilverYashaEntry) bool {
	return strings.TrimSpace(e.Title) != "" && e.ID() > 0
}
