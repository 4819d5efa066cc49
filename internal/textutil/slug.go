package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters NFKD does not decompose into ASCII
var foldReplacer = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"þ", "th", "Þ", "TH",
)

// FoldASCII strips diacritics and compatibility forms (full-width letters,
// ligatures) so Latin titles compare by their base letters.
func FoldASCII(value string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, foldReplacer.Replace(value))
	if err != nil {
		return value
	}
	return folded
}

// Slugify lowercases value, folds it to ASCII, and joins alphanumeric runs
// with single dashes. Apostrophes are dropped rather than split on.
func Slugify(value string) string {
	folded := strings.NewReplacer("'", "", "’", "").Replace(FoldASCII(value))
	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// CompactSlug is Slugify with the dashes removed. Kaize slugs and canonical
// titles are joined on this form.
func CompactSlug(value string) string {
	return strings.ReplaceAll(Slugify(value), "-", "")
}
