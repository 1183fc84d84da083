package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the selection topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the candidate topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SelectionEvent is published by the host editor when a place is selected.
// Lon/Lat are interpreted in Frame (WGS84 when empty).
type SelectionEvent struct {
	TargetID string  `json:"target_id"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Frame    string  `json:"frame,omitempty"`
}

// ParseSelection deserializes a RawEvent's value into a SelectionEvent and
// returns the WGS-84 coordinate to search.
func ParseSelection(raw RawEvent) (SelectionEvent, Coordinate, error) {
	var sel SelectionEvent
	if err := json.Unmarshal(raw.Value, &sel); err != nil {
		return SelectionEvent{}, Coordinate{}, fmt.Errorf("parse selection event: %w", err)
	}
	frame, err := ParseFrame(sel.Frame)
	if err != nil {
		return SelectionEvent{}, Coordinate{}, fmt.Errorf("parse selection event: %w", err)
	}
	coord := InFrame(frame, sel.Lon, sel.Lat)
	if !coord.Valid() {
		return SelectionEvent{}, Coordinate{}, fmt.Errorf("parse selection event: coordinate %s out of range", coord)
	}
	if sel.TargetID == "" {
		sel.TargetID = string(raw.Key)
	}
	return sel, coord, nil
}
