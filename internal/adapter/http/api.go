package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/poi-address-fetch/internal/aggregator"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/merge"
)

// maxBodyBytes caps merge request bodies.
const maxBodyBytes = 1 << 20

// Lookup is the aggregator surface the API needs.
type Lookup interface {
	Providers() []string
	Collect(ctx context.Context, coord domain.Coordinate) []aggregator.Section
}

// API serves candidate lookups and merges.
type API struct {
	lookup Lookup
	engine *merge.Engine
	logger *slog.Logger
}

// NewAPI creates the /v1 handlers.
func NewAPI(lookup Lookup, engine *merge.Engine, logger *slog.Logger) *API {
	return &API{lookup: lookup, engine: engine, logger: logger}
}

// Register mounts the API routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/providers", a.handleProviders)
	mux.HandleFunc("GET /v1/candidates", a.handleCandidates)
	mux.HandleFunc("POST /v1/merge", a.handleMerge)
}

// CandidatesResponse is the body of GET /v1/candidates.
type CandidatesResponse struct {
	Coordinate domain.Coordinate    `json:"coordinate"`
	Sections   []aggregator.Section `json:"sections"`
}

// MergeRequest is the body of POST /v1/merge. Confirm holds the pre-made
// answer for each field that may conflict; unlisted fields are kept.
type MergeRequest struct {
	Target    domain.Target         `json:"target"`
	Candidate domain.Candidate      `json:"candidate"`
	Confirm   map[domain.Field]bool `json:"confirm,omitempty"`
}

func (a *API) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"providers": a.lookup.Providers()})
}

func (a *API) handleCandidates(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sections := a.lookup.Collect(r.Context(), coord)
	writeJSON(w, http.StatusOK, CandidatesResponse{Coordinate: coord, Sections: sections})
}

func (a *API) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode merge request: %w", err))
		return
	}
	if req.Target.ID == "" {
		writeError(w, http.StatusBadRequest, errors.New("target.id is required"))
		return
	}

	report := a.engine.WithConfirmer(merge.Answers(req.Confirm)).Merge(r.Context(), req.Target, req.Candidate)
	writeJSON(w, http.StatusOK, report)
}

func parseCoordinate(r *http.Request) (domain.Coordinate, error) {
	q := r.URL.Query()
	a, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("invalid lon %q", q.Get("lon"))
	}
	b, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("invalid lat %q", q.Get("lat"))
	}
	frame, err := domain.ParseFrame(q.Get("frame"))
	if err != nil {
		return domain.Coordinate{}, err
	}
	coord := domain.InFrame(frame, a, b)
	if !coord.Valid() {
		return domain.Coordinate{}, fmt.Errorf("coordinate %s out of range", coord)
	}
	return coord, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
