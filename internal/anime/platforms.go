package anime

import (
	"sort"
	"strings"
)

// Platform is a catalog site whose identifiers the cross-reference tracks.
type Platform struct {
	Name    string
	Field   Field
	Aliases []string
}

// Platforms lists the lookup platforms, sorted by name. Companion fields
// (kaize_id, nautiljon_id, trakt_type, trakt_season) are not platforms.
var Platforms = []Platform{
	platform("anidb", "ad", "adb", "anidb.net"),
	platform("anilist", "al", "anilist.co"),
	platform("animenewsnetwork", "an", "ann", "animenewsnetwork.com"),
	platform("animeplanet", "ap", "anime-planet", "anime-planet.com", "animeplanet.com"),
	platform("anisearch", "as", "anisearch.com", "anisearch.de"),
	platform("annict", "ac", "act", "anc", "annict.com", "annict.jp"),
	platform("imdb", "im", "imdb.com"),
	platform("kaize", "kz", "kaize.io"),
	platform("kitsu", "kt", "kts", "kitsu.app", "kitsu.io"),
	platform("livechart", "lc", "livechart.me"),
	platform("myanimelist", "ma", "mal", "myanimelist.net"),
	platform("nautiljon", "nj", "ntj", "nautiljon.com"),
	platform("notify", "nf", "ntf", "ntm", "notifymoe", "notify.moe"),
	platform("otakotaku", "oo", "otakotaku.com"),
	platform("shikimori", "sh", "shk", "shiki", "shikimori.one"),
	platform("shoboi", "sb", "shb", "syb", "syoboi", "syobocal", "cal.syoboi.jp"),
	platform("silveryasha", "sy", "dbti", "db.silveryasha.id"),
	platform("simkl", "sm", "smk", "simkl.com"),
	platform("themoviedb", "tm", "tmdb", "tmdb.org"),
	platform("trakt", "tr", "trk", "trakt.tv"),
}

func platform(name string, aliases ...string) Platform {
	field, ok := FieldByName(name)
	if !ok {
		panic("anime: platform without record field: " + name)
	}
	return Platform{Name: name, Field: field, Aliases: aliases}
}

var platformLookup = func() map[string]Platform {
	out := make(map[string]Platform)
	for _, p := range Platforms {
		out[p.Name] = p
		for _, alias := range p.Aliases {
			out[alias] = p
		}
	}
	return out
}()

// LookupPlatform resolves a platform name or one of its aliases.
func LookupPlatform(name string) (Platform, bool) {
	p, ok := platformLookup[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// PlatformNames returns the canonical platform names in sorted order.
func PlatformNames() []string {
	names := make([]string, 0, len(Platforms))
	for _, p := range Platforms {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
