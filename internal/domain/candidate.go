package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Candidate is one normalized address guess returned by a single provider.
// Empty strings mean the field is absent.
type Candidate struct {
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
	City        string  `json:"city,omitempty"`
	Street      string  `json:"street,omitempty"`
	HouseNumber string  `json:"house_number,omitempty"`
	Name        string  `json:"name,omitempty"`
}

// NewCandidate builds a Candidate with every text field cleaned by CleanText.
// The coordinate is the provider's own match location, not the queried point.
func NewCandidate(lon, lat float64, city, street, houseNumber, name string) Candidate {
	return Candidate{
		Lon:         lon,
		Lat:         lat,
		City:        CleanText(city),
		Street:      CleanText(street),
		HouseNumber: CleanText(houseNumber),
		Name:        CleanText(name),
	}
}

// Coordinate returns the candidate's own location.
func (c Candidate) Coordinate() Coordinate {
	return Coordinate{Lon: c.Lon, Lat: c.Lat}
}

// Label joins the non-empty street, house number and name with ", ".
func (c Candidate) Label() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{c.Street, c.HouseNumber, c.Name} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// LowConfidence reports whether the candidate lacks a structured street or
// house number match.
func (c Candidate) LowConfidence() bool {
	return c.Street == "" || c.HouseNumber == ""
}

// CleanText composes the text to NFC, turns Unicode space separators such as
// U+00A0 into plain spaces and trims surrounding whitespace. Providers mix
// composed and decomposed Cyrillic (e.g. "ї") and non-breaking spaces, which
// would otherwise defeat both equality checks and the street pattern table.
func CleanText(s string) string {
	return strings.TrimSpace(strings.Map(foldSpace, norm.NFC.String(s)))
}

func foldSpace(r rune) rune {
	if unicode.Is(unicode.Zs, r) {
		return ' '
	}
	return r
}
