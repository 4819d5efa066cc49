package anime

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// TraktType distinguishes Trakt show pages from movie pages.
type TraktType string

const (
	TraktShow  TraktType = "show"
	TraktMovie TraktType = "movie"
)

// ParseTraktType accepts the spellings upstream datasets use.
func ParseTraktType(value string) (TraktType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "show", "shows", "tv":
		return TraktShow, true
	case "movie", "movies":
		return TraktMovie, true
	default:
		return "", false
	}
}

// ErrMissingTitle is returned for records without a title.
var ErrMissingTitle = errors.New("record has no title")

// Record is the canonical cross-reference entry for one anime title. Nil
// identifier fields mean the platform has no data for the title.
type Record struct {
	Title            string     `json:"title"`
	MyAnimeList      *int       `json:"myanimelist,omitempty"`
	AniList          *int       `json:"anilist,omitempty"`
	AniDB            *int       `json:"anidb,omitempty"`
	Kitsu            *int       `json:"kitsu,omitempty"`
	AnimeNewsNetwork *int       `json:"animenewsnetwork,omitempty"`
	AnimePlanet      *string    `json:"animeplanet,omitempty"`
	AniSearch        *int       `json:"anisearch,omitempty"`
	Annict           *int       `json:"annict,omitempty"`
	IMDb             *string    `json:"imdb,omitempty"`
	LiveChart        *int       `json:"livechart,omitempty"`
	Notify           *string    `json:"notify,omitempty"`
	OtakOtaku        *int       `json:"otakotaku,omitempty"`
	Shikimori        *int       `json:"shikimori,omitempty"`
	Shoboi           *int       `json:"shoboi,omitempty"`
	SilverYasha      *int       `json:"silveryasha,omitempty"`
	SIMKL            *int       `json:"simkl,omitempty"`
	TheMovieDB       *int       `json:"themoviedb,omitempty"`
	Kaize            *string    `json:"kaize,omitempty"`
	KaizeID          *int       `json:"kaize_id,omitempty"`
	Nautiljon        *string    `json:"nautiljon,omitempty"`
	NautiljonID      *int       `json:"nautiljon_id,omitempty"`
	Trakt            *int       `json:"trakt,omitempty"`
	TraktType        *TraktType `json:"trakt_type,omitempty"`
	TraktSeason      *int       `json:"trakt_season,omitempty"`

	DataHash string `json:"-"`
}

// Int returns an identifier pointer, treating zero and negatives as absent.
func Int(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

// Str returns a trimmed string pointer, treating blank values as absent.
func Str(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// SetMyAnimeList assigns the MAL ID and mirrors it into Shikimori, which
// shares MAL's numbering.
func (r *Record) SetMyAnimeList(id *int) {
	r.MyAnimeList = clonePtr(id)
	if id != nil {
		r.Shikimori = clonePtr(id)
	}
}

// SetTrakt assigns the Trakt triple. A nil season means the base page.
func (r *Record) SetTrakt(id int, kind TraktType, season *int) {
	r.Trakt = Int(id)
	r.TraktType = &kind
	r.TraktSeason = clonePtr(season)
}

// Validate reports records that cannot exist or carry inconsistent Trakt data.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrMissingTitle
	}
	if r.TraktSeason != nil && (r.Trakt == nil || r.TraktType == nil) {
		return fmt.Errorf("record %q: trakt_season without trakt id and type", r.Title)
	}
	return nil
}

// Hash computes the content hash over every field in the fixed field order.
// Absent values render as None so hashes match stores written by earlier
// generator releases.
func (r *Record) Hash() string {
	var b strings.Builder
	b.WriteString(r.Title)
	for _, field := range Fields {
		b.WriteByte('|')
		if value, ok := field.String(r); ok {
			b.WriteString(value)
		} else {
			b.WriteString("None")
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Finalize normalizes zero identifiers and stores the content hash. Call it
// after the last mutation and before any hash comparison.
func (r *Record) Finalize() {
	for _, field := range Fields {
		field.normalize(r)
	}
	r.DataHash = r.Hash()
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	out := &Record{Title: r.Title, DataHash: r.DataHash}
	for _, field := range Fields {
		field.copy(out, r)
	}
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
