// Package merge reconciles a chosen candidate against a target place,
// deciding per field how a fetched value may replace the current one.
package merge

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/observability"
)

// Submitter queues one mutation with the host's edit system. Submission is
// fire-and-forget: a returned error is logged, never retried.
type Submitter interface {
	Submit(ctx context.Context, m domain.Mutation) error
}

// Refresher re-selects the target after a change so the host reflects it.
type Refresher interface {
	Refresh(ctx context.Context, target domain.Target)
}

// Report is the outcome of one merge pass.
type Report struct {
	TargetID  string               `json:"target_id"`
	Candidate domain.Candidate     `json:"candidate"` // after normalization
	Updates   []domain.FieldUpdate `json:"updates"`
	Mutations []domain.Mutation    `json:"mutations"`
	Target    domain.Target        `json:"target"` // with applied values
	Refreshed bool                 `json:"refreshed"`
}

// Prompts counts the fields that required confirmation.
func (r Report) Prompts() int {
	n := 0
	for _, u := range r.Updates {
		if u.Decision == domain.DecisionConfirmed || u.Decision == domain.DecisionDeclined {
			n++
		}
	}
	return n
}

// Applied returns the fields whose value changed.
func (r Report) Applied() []domain.Field {
	var fields []domain.Field
	for _, u := range r.Updates {
		if u.Decision.Applied() {
			fields = append(fields, u.Field)
		}
	}
	return fields
}

// Engine runs merges. It holds no per-merge state and is safe to share.
type Engine struct {
	confirmer Confirmer
	submitter Submitter
	refresher Refresher
	street    domain.TextNormalizer
	house     domain.TextNormalizer
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithStreetNormalizer replaces the street normalization step.
func WithStreetNormalizer(fn domain.TextNormalizer) Option {
	return func(e *Engine) { e.street = fn }
}

// WithHouseNumberNormalizer replaces the house-number normalization step.
func WithHouseNumberNormalizer(fn domain.TextNormalizer) Option {
	return func(e *Engine) { e.house = fn }
}

// WithRefresher sets the collaborator notified after any applied change.
func WithRefresher(r Refresher) Option {
	return func(e *Engine) { e.refresher = r }
}

// NewEngine creates a merge engine.
func NewEngine(confirmer Confirmer, submitter Submitter, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Engine {
	e := &Engine{
		confirmer: confirmer,
		submitter: submitter,
		street:    domain.NormalizeStreet,
		house:     domain.NormalizeHouseNumber,
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.confirmer == nil {
		e.confirmer = DeclineAll
	}
	return e
}

// Merge runs the four-field decision procedure once, in the order name,
// house number, street, city, and submits the resulting mutations.
func (e *Engine) Merge(ctx context.Context, target domain.Target, cand domain.Candidate) Report {
	cand = domain.NewCandidate(cand.Lon, cand.Lat, cand.City, e.street(cand.Street), e.house(cand.HouseNumber), cand.Name)

	// Bare address points are better labeled by their number than left unnamed.
	proposedName := cand.Name
	if proposedName == "" {
		proposedName = cand.HouseNumber
	}

	cur := target.Address
	updates := []domain.FieldUpdate{
		e.decide(ctx, domain.FieldName, target.Name, proposedName),
		e.decide(ctx, domain.FieldHouseNumber, cur.HouseNumber, cand.HouseNumber),
		e.decide(ctx, domain.FieldStreet, cur.Street, cand.Street),
		e.decide(ctx, domain.FieldCity, cur.City, cand.City),
	}

	updated := target
	for _, u := range updates {
		if !u.Decision.Applied() {
			continue
		}
		switch u.Field {
		case domain.FieldName:
			updated.Name = u.New
		case domain.FieldHouseNumber:
			updated.Address.HouseNumber = u.New
		case domain.FieldStreet:
			updated.Address.Street = u.New
		case domain.FieldCity:
			updated.Address.City = u.New
		}
	}

	report := Report{
		TargetID:  target.ID,
		Candidate: cand,
		Updates:   updates,
		Mutations: e.mutations(target, updated, updates),
		Target:    updated,
	}
	for _, m := range report.Mutations {
		e.submit(ctx, m)
	}

	if len(report.Mutations) > 0 {
		report.Refreshed = true
		if e.refresher != nil {
			e.refresher.Refresh(ctx, updated)
		}
	}

	e.logger.Info("merge complete",
		"target_id", target.ID,
		"applied", len(report.Applied()),
		"prompts", report.Prompts(),
		"mutations", len(report.Mutations),
	)
	return report
}

// decide applies the per-field policy: absent or equal candidate value is a
// no-op, an empty current value is filled silently, and a differing current
// value is replaced only if the user confirms.
func (e *Engine) decide(ctx context.Context, field domain.Field, current, proposed string) domain.FieldUpdate {
	u := domain.FieldUpdate{Field: field, Old: current, New: proposed}
	current = domain.CleanText(current)

	switch {
	case proposed == "" || proposed == current:
		u.Decision = domain.DecisionNoop
	case current == "":
		u.Decision = domain.DecisionApply
	case e.confirmer.Confirm(ctx, Question{Field: field, Old: current, New: proposed}):
		u.Decision = domain.DecisionConfirmed
	default:
		u.Decision = domain.DecisionDeclined
	}

	e.metrics.MergeDecisions.WithLabelValues(string(field), string(u.Decision)).Inc()
	e.logger.Debug("merge decision", "field", field, "old", u.Old, "new", u.New, "decision", u.Decision)
	return u
}

// mutations groups applied updates the way the host addresses them: the name
// as an attribute patch, house number and street together as one address
// patch, and the city as its own address patch.
func (e *Engine) mutations(before, after domain.Target, updates []domain.FieldUpdate) []domain.Mutation {
	now := domain.Now()
	applied := make(map[domain.Field]bool, len(updates))
	for _, u := range updates {
		applied[u.Field] = u.Decision.Applied()
	}

	var out []domain.Mutation
	if applied[domain.FieldName] {
		out = append(out, domain.Mutation{
			TargetID:   before.ID,
			Kind:       domain.MutationAttributes,
			Fields:     []domain.Field{domain.FieldName},
			Attributes: map[string]string{"name": after.Name},
			CreatedAt:  now,
		})
	}

	var addrFields []domain.Field
	for _, f := range []domain.Field{domain.FieldHouseNumber, domain.FieldStreet} {
		if applied[f] {
			addrFields = append(addrFields, f)
		}
	}
	if len(addrFields) > 0 {
		out = append(out, addressMutation(before, after.Address.HouseNumber, after.Address.Street, before.Address.City, addrFields, now))
	}

	if applied[domain.FieldCity] {
		out = append(out, addressMutation(before, after.Address.HouseNumber, after.Address.Street, after.Address.City, []domain.Field{domain.FieldCity}, now))
	}
	return out
}

func addressMutation(t domain.Target, house, street, city string, fields []domain.Field, now time.Time) domain.Mutation {
	return domain.Mutation{
		TargetID: t.ID,
		Kind:     domain.MutationAddress,
		Fields:   fields,
		Address: &domain.AddressPatch{
			CountryID:   t.Address.CountryID,
			StateID:     t.Address.StateID,
			City:        city,
			Street:      street,
			HouseNumber: house,
		},
		CreatedAt: now,
	}
}

func (e *Engine) submit(ctx context.Context, m domain.Mutation) {
	if e.submitter == nil {
		return
	}
	if err := e.submitter.Submit(ctx, m); err != nil {
		e.metrics.MergeSubmitErr.Inc()
		e.logger.Warn("mutation submit failed", "target_id", m.TargetID, "kind", m.Kind, "error", err)
	}
}

// WithConfirmer returns a copy of the engine that asks c instead.
func (e *Engine) WithConfirmer(c Confirmer) *Engine {
	cp := *e
	if c == nil {
		c = DeclineAll
	}
	cp.confirmer = c
	return &cp
}
