package sources

import (
	"net/url"
	"strconv"
	"strings"

	"animeapi/internal/anime"
)

// BaseEntry is one row of the AOD cross-reference dataset.
type BaseEntry struct {
	Title   string   `json:"title"`
	Sources []string `json:"sources"`
}

type idShape int

const (
	numericSegment idShape = iota
	tokenSegment
	queryID
)

type sourcePrefix struct {
	prefix string
	field  string
	shape  idShape
}

// sourcePrefixes maps AOD source URLs onto record fields. Schemes and a
// leading www. are stripped before matching.
var sourcePrefixes = []sourcePrefix{
	{"anidb.net/anime/", "anidb", numericSegment},
	{"anilist.co/anime/", "anilist", numericSegment},
	{"anime-planet.com/anime/", "animeplanet", tokenSegment},
	{"anisearch.com/anime/", "anisearch", numericSegment},
	{"kitsu.io/anime/", "kitsu", numericSegment},
	{"kitsu.app/anime/", "kitsu", numericSegment},
	{"livechart.me/anime/", "livechart", numericSegment},
	{"myanimelist.net/anime/", "myanimelist", numericSegment},
	{"notify.moe/anime/", "notify", tokenSegment},
	{"simkl.com/anime/", "simkl", numericSegment},
	{"animenewsnetwork.com/", "animenewsnetwork", queryID},
}

// LoadBase converts AOD entries into canonical records. Entries without a
// title are dropped and unrecognized or malformed sources are ignored.
func LoadBase(entries []BaseEntry) []*anime.Record {
	records := make([]*anime.Record, 0, len(entries))
	for _, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		record := &anime.Record{Title: title}
		for _, source := range entry.Sources {
			applySource(record, source)
		}
		if record.MyAnimeList != nil {
			record.SetMyAnimeList(record.MyAnimeList)
		}
		records = append(records, record)
	}
	return records
}

func applySource(record *anime.Record, source string) {
	trimmed := strings.TrimSpace(source)
	bare := strings.TrimPrefix(strings.TrimPrefix(trimmed, "https://"), "http://")
	bare = strings.TrimPrefix(bare, "www.")
	for _, candidate := range sourcePrefixes {
		if !strings.HasPrefix(bare, candidate.prefix) {
			continue
		}
		value, ok := extractID(bare, candidate)
		if !ok {
			return
		}
		field, _ := anime.FieldByName(candidate.field)
		// malformed values leave the field absent
		_ = field.Set(record, value)
		return
	}
}

func extractID(bare string, candidate sourcePrefix) (string, bool) {
	switch candidate.shape {
	case queryID:
		_, query, found := strings.Cut(bare, "?")
		if !found {
			return "", false
		}
		values, err := url.ParseQuery(query)
		if err != nil {
			return "", false
		}
		id := values.Get("id")
		if _, err := strconv.Atoi(id); err != nil {
			return "", false
		}
		return id, true
	default:
		rest := strings.TrimPrefix(bare, candidate.prefix)
		if cut, _, found := strings.Cut(rest, "?"); found {
			rest = cut
		}
		segment := lastSegment(rest)
		if segment == "" {
			return "", false
		}
		if candidate.shape == numericSegment {
			if _, err := strconv.Atoi(segment); err != nil {
				return "", false
			}
		}
		return segment, true
	}
}

func lastSegment(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return strings.TrimSpace(parts[len(parts)-1])
}
