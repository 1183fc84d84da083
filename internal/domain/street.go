package domain

import (
	"regexp"
	"strings"
)

// TextNormalizer rewrites a candidate field before it is compared and applied.
type TextNormalizer func(string) string

// streetType pairs a full street-type word with its standard abbreviation.
type streetType struct {
	re     *regexp.Regexp
	abbrev string
}

// streetTypes is evaluated in order and stops at the first hit. Overlapping
// inputs depend on this order, so do not sort it.
var streetTypes = []streetType{
	newStreetType("бульвар", "б-р"),
	newStreetType("вулиця", "вул."),
	newStreetType("мікрорайон", "мкрн."),
	newStreetType("набережна", "наб."),
	newStreetType("провулок", "пров."),
	newStreetType("проїзд", "пр."),
	newStreetType("проспект", "просп."),
	newStreetType("станція", "ст."),
}

// newStreetType compiles a pattern matching word as a whole, whitespace-delimited
// token anywhere in the text, capturing the text before and after it.
func newStreetType(word, abbrev string) streetType {
	return streetType{
		re:     regexp.MustCompile(`(?i)^(?:(.*?)\s+)?` + regexp.QuoteMeta(word) + `(?:\s+(.*))?$`),
		abbrev: abbrev,
	}
}

// NormalizeStreet rewrites the first matching full street-type word into its
// abbreviation, moved to the front: "Хрещатик вулиця" -> "вул. Хрещатик".
// Text already starting with an abbreviation, or containing no street-type
// word, is returned cleaned but otherwise unchanged.
func NormalizeStreet(street string) string {
	street = CleanText(street)
	if street == "" || hasStreetAbbrev(street) {
		return street
	}

	for _, st := range streetTypes {
		m := st.re.FindStringSubmatch(street)
		if m == nil {
			continue
		}
		rest := make([]string, 0, 2)
		for _, part := range m[1:] {
			if part = strings.TrimSpace(part); part != "" {
				rest = append(rest, part)
			}
		}
		if len(rest) == 0 {
			return st.abbrev
		}
		return st.abbrev + " " + strings.Join(rest, " ")
	}
	return street
}

func hasStreetAbbrev(street string) bool {
	lower := strings.ToLower(street)
	for _, st := range streetTypes {
		if lower == st.abbrev || strings.HasPrefix(lower, st.abbrev+" ") {
			return true
		}
	}
	return false
}

// NormalizeHouseNumber is the default house-number step. Providers return
// ranges ("10-12") and letter suffixes ("5а") inconsistently; they are kept
// verbatim for now.
func NormalizeHouseNumber(number string) string {
	return CleanText(number)
}
