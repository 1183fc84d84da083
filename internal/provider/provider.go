// Package provider defines the contract every reverse-geocoding backend
// implements and the search boundary that wraps it with caching and failure
// containment.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
)

// RawResult is one element of a backend response, before normalization. Only
// the backend that produced it knows its concrete type.
type RawResult any

// ErrUnexpectedRaw is returned by Normalize when handed a RawResult produced
// by a different backend.
var ErrUnexpectedRaw = errors.New("unexpected raw result type")

// Provider is an adapter to one reverse-geocoding backend.
type Provider interface {
	// ID is a short human-readable tag, used for cache keys and group labels.
	ID() string

	// Request issues exactly one outbound call for the coordinate. It returns
	// an empty slice when the backend reports no match, and the backend's
	// filtered raw elements otherwise.
	Request(ctx context.Context, coord domain.Coordinate) ([]RawResult, error)

	// Normalize maps one raw element into a renderable Item.
	Normalize(raw RawResult) (Item, error)
}

// Item is one clickable candidate in a provider group.
type Item struct {
	Candidate     domain.Candidate `json:"candidate"`
	Label         string           `json:"label"`
	Title         string           `json:"title,omitempty"`
	LowConfidence bool             `json:"low_confidence"`
	Distance      float64          `json:"distance_m"`
}

// NewItem builds an Item for c. extra is appended to the label when non-empty.
func NewItem(c domain.Candidate, title string, extra ...string) Item {
	label := c.Label()
	for _, e := range extra {
		if e = domain.CleanText(e); e == "" {
			continue
		}
		if label == "" {
			label = e
		} else {
			label += ", " + e
		}
	}
	return Item{
		Candidate:     c,
		Label:         label,
		Title:         domain.CleanText(title),
		LowConfidence: c.LowConfidence(),
	}
}

// CacheKey namespaces the input coordinate by provider. Equal inputs always
// yield equal keys.
func CacheKey(providerID string, coord domain.Coordinate) string {
	return providerID + ":" + coord.String()
}

// Unexpected wraps ErrUnexpectedRaw with the offending type.
func Unexpected(raw RawResult) error {
	return fmt.Errorf("%w: %T", ErrUnexpectedRaw, raw)
}
