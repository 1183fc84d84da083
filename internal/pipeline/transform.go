package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/poi-address-fetch/internal/aggregator"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
)

// Lookup fans a coordinate out to all providers.
type Lookup interface {
	Collect(ctx context.Context, coord domain.Coordinate) []aggregator.Section
}

// CandidateMessage is published once per selection event.
type CandidateMessage struct {
	TargetID    string               `json:"target_id"`
	Coordinate  domain.Coordinate    `json:"coordinate"`
	Sections    []aggregator.Section `json:"sections"`
	ProcessedAt time.Time            `json:"processed_at"`
}

// LookupTransformer implements Transformer by running a provider lookup for
// the selected place.
type LookupTransformer struct {
	lookup Lookup
	logger *slog.Logger
}

// NewTransformer creates a LookupTransformer.
func NewTransformer(lookup Lookup, logger *slog.Logger) *LookupTransformer {
	return &LookupTransformer{lookup: lookup, logger: logger}
}

// Transform rejects only malformed selections. Provider failures are carried
// inside the message as failed sections.
func (t *LookupTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	sel, coord, err := domain.ParseSelection(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	sections := t.lookup.Collect(ctx, coord)
	msg := CandidateMessage{
		TargetID:    sel.TargetID,
		Coordinate:  coord,
		Sections:    sections,
		ProcessedAt: domain.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize candidate message: %w", err)
	}

	t.logger.Debug("selection answered", "target_id", sel.TargetID, "coordinate", coord.String(),
		"candidates", len(aggregator.Candidates(sections)))

	return domain.OutputEvent{
		Key:   []byte(sel.TargetID),
		Value: data,
		Headers: map[string]string{
			"providers":    strconv.Itoa(len(sections)),
			"processed_at": msg.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
