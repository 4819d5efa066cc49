package textutil

import (
	"regexp"
	"strconv"
)

var seasonPattern = regexp.MustCompile(`\bSeason (\d+)\b`)

// SeasonOrdinal rewrites "Season N" as "Nth Season" for seasons 2 through 20,
// the form most canonical titles use. Other numbers are left alone.
func SeasonOrdinal(title string) string {
	return seasonPattern.ReplaceAllStringFunc(title, func(match string) string {
		n, err := strconv.Atoi(seasonPattern.FindStringSubmatch(match)[1])
		if err != nil || n < 2 || n > 20 {
			return match
		}
		return Ordinal(n) + " Season"
	})
}

// Ordinal renders n with its English ordinal suffix.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
