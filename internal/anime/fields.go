package anime

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind describes the value shape of a record field.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindTraktType
)

// Field is one entry of the enumerated record field table. The table replaces
// name-based attribute lookups: store columns, content hashing, KV keys, and
// counts all walk Fields instead of inspecting the struct.
type Field struct {
	Name string
	Kind Kind

	ints  func(*Record) **int
	strs  func(*Record) **string
	trakt func(*Record) **TraktType
}

func intField(name string, ptr func(*Record) **int) Field {
	return Field{Name: name, Kind: KindInt, ints: ptr}
}

func strField(name string, ptr func(*Record) **string) Field {
	return Field{Name: name, Kind: KindString, strs: ptr}
}

// Fields lists every field except the title, in content-hash order.
var Fields = []Field{
	intField("myanimelist", func(r *Record) **int { return &r.MyAnimeList }),
	intField("anilist", func(r *Record) **int { return &r.AniList }),
	intField("anidb", func(r *Record) **int { return &r.AniDB }),
	intField("kitsu", func(r *Record) **int { return &r.Kitsu }),
	intField("animenewsnetwork", func(r *Record) **int { return &r.AnimeNewsNetwork }),
	strField("animeplanet", func(r *Record) **string { return &r.AnimePlanet }),
	intField("anisearch", func(r *Record) **int { return &r.AniSearch }),
	intField("annict", func(r *Record) **int { return &r.Annict }),
	strField("imdb", func(r *Record) **string { return &r.IMDb }),
	intField("livechart", func(r *Record) **int { return &r.LiveChart }),
	strField("notify", func(r *Record) **string { return &r.Notify }),
	intField("otakotaku", func(r *Record) **int { return &r.OtakOtaku }),
	intField("shikimori", func(r *Record) **int { return &r.Shikimori }),
	intField("shoboi", func(r *Record) **int { return &r.Shoboi }),
	intField("silveryasha", func(r *Record) **int { return &r.SilverYasha }),
	intField("simkl", func(r *Record) **int { return &r.SIMKL }),
	intField("themoviedb", func(r *Record) **int { return &r.TheMovieDB }),
	strField("kaize", func(r *Record) **string { return &r.Kaize }),
	intField("kaize_id", func(r *Record) **int { return &r.KaizeID }),
	strField("nautiljon", func(r *Record) **string { return &r.Nautiljon }),
	intField("nautiljon_id", func(r *Record) **int { return &r.NautiljonID }),
	intField("trakt", func(r *Record) **int { return &r.Trakt }),
	{Name: "trakt_type", Kind: KindTraktType, trakt: func(r *Record) **TraktType { return &r.TraktType }},
	intField("trakt_season", func(r *Record) **int { return &r.TraktSeason }),
}

var fieldsByName = func() map[string]Field {
	out := make(map[string]Field, len(Fields))
	for _, field := range Fields {
		out[field.Name] = field
	}
	return out
}()

// FieldByName returns the table entry for a field name.
func FieldByName(name string) (Field, bool) {
	field, ok := fieldsByName[name]
	return field, ok
}

// Present reports whether the field has a value on r.
func (f Field) Present(r *Record) bool {
	_, ok := f.String(r)
	return ok
}

// String renders the field value. The boolean is false when absent.
func (f Field) String(r *Record) (string, bool) {
	switch f.Kind {
	case KindInt:
		if v := *f.ints(r); v != nil {
			return strconv.Itoa(*v), true
		}
	case KindString:
		if v := *f.strs(r); v != nil {
			return *v, true
		}
	case KindTraktType:
		if v := *f.trakt(r); v != nil {
			return string(*v), true
		}
	}
	return "", false
}

// Value returns the field as a database/sql argument: nil, int64, or string.
func (f Field) Value(r *Record) any {
	switch f.Kind {
	case KindInt:
		if v := *f.ints(r); v != nil {
			return int64(*v)
		}
	case KindString:
		if v := *f.strs(r); v != nil {
			return *v
		}
	case KindTraktType:
		if v := *f.trakt(r); v != nil {
			return string(*v)
		}
	}
	return nil
}

// Set parses raw into the field. A blank raw value clears it.
func (f Field) Set(r *Record, raw string) error {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindInt:
		if raw == "" {
			*f.ints(r) = nil
			return nil
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %q is not numeric", f.Name, raw)
		}
		*f.ints(r) = Int(id)
	case KindString:
		*f.strs(r) = Str(raw)
	case KindTraktType:
		if raw == "" {
			*f.trakt(r) = nil
			return nil
		}
		kind, ok := ParseTraktType(raw)
		if !ok {
			return fmt.Errorf("%s: unknown type %q", f.Name, raw)
		}
		*f.trakt(r) = &kind
	}
	return nil
}

func (f Field) normalize(r *Record) {
	switch f.Kind {
	case KindInt:
		if v := *f.ints(r); v != nil && *v <= 0 {
			*f.ints(r) = nil
		}
	case KindString:
		if v := *f.strs(r); v != nil {
			*f.strs(r) = Str(*v)
		}
	}
}

func (f Field) copy(dst, src *Record) {
	switch f.Kind {
	case KindInt:
		*f.ints(dst) = clonePtr(*f.ints(src))
	case KindString:
		*f.strs(dst) = clonePtr(*f.strs(src))
	case KindTraktType:
		*f.trakt(dst) = clonePtr(*f.trakt(src))
	}
}
