package merge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/observability"
)

// recorder is a Confirmer, Submitter and Refresher that remembers every call.
type recorder struct {
	mu        sync.Mutex
	answer    bool
	submitErr error
	questions []Question
	mutations []domain.Mutation
	refreshed []domain.Target
}

func (r *recorder) Confirm(_ context.Context, q Question) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, q)
	return r.answer
}

func (r *recorder) Submit(_ context.Context, m domain.Mutation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, m)
	return r.submitErr
}

func (r *recorder) Refresh(_ context.Context, t domain.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshed = append(r.refreshed, t)
}

func newTestEngine(rec *recorder, opts ...Option) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithRefresher(rec)}, opts...)
	return NewEngine(rec, rec, logger, observability.NewMetricsForTesting(), opts...)
}

func updateFor(t *testing.T, r Report, f domain.Field) domain.FieldUpdate {
	t.Helper()
	for _, u := range r.Updates {
		if u.Field == f {
			return u
		}
	}
	t.Fatalf("no update for field %s", f)
	return domain.FieldUpdate{}
}

type fieldCase struct {
	field      domain.Field
	setCurrent func(*domain.Target, string)
	setCand    func(*domain.Candidate, string)
}

var fieldCases = []fieldCase{
	{
		field:      domain.FieldName,
		setCurrent: func(t *domain.Target, v string) { t.Name = v },
		setCand:    func(c *domain.Candidate, v string) { c.Name = v },
	},
	{
		field:      domain.FieldHouseNumber,
		setCurrent: func(t *domain.Target, v string) { t.Address.HouseNumber = v },
		setCand:    func(c *domain.Candidate, v string) { c.HouseNumber = v },
	},
	{
		field:      domain.FieldStreet,
		setCurrent: func(t *domain.Target, v string) { t.Address.Street = v },
		setCand:    func(c *domain.Candidate, v string) { c.Street = v },
	},
	{
		field:      domain.FieldCity,
		setCurrent: func(t *domain.Target, v string) { t.Address.City = v },
		setCand:    func(c *domain.Candidate, v string) { c.City = v },
	},
}

func TestMerge_FieldPolicyTable(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		candidate string
		answer    bool
		want      domain.Decision
		prompts   int
	}{
		{"absent current is applied silently", "", "X1", false, domain.DecisionApply, 0},
		{"equal values are a no-op", "X1", "X1", true, domain.DecisionNoop, 0},
		{"absent candidate is a no-op", "X1", "", true, domain.DecisionNoop, 0},
		{"conflict confirmed", "X1", "Y2", true, domain.DecisionConfirmed, 1},
		{"conflict declined", "X1", "Y2", false, domain.DecisionDeclined, 1},
		{"whitespace-only difference is a no-op", " X1 ", "X1", true, domain.DecisionNoop, 0},
	}

	for _, fc := range fieldCases {
		for _, tt := range tests {
			t.Run(string(fc.field)+"/"+tt.name, func(t *testing.T) {
				rec := &recorder{answer: tt.answer}
				target := domain.Target{ID: "venue-1"}
				var cand domain.Candidate
				if fc.field != domain.FieldName {
					// Keep the name decision out of the way.
					target.Name, cand.Name = "Пошта", "Пошта"
				}
				fc.setCurrent(&target, tt.current)
				fc.setCand(&cand, tt.candidate)

				report := newTestEngine(rec).Merge(context.Background(), target, cand)

				u := updateFor(t, report, fc.field)
				assert.Equal(t, tt.want, u.Decision)
				assert.Len(t, rec.questions, tt.prompts)
				if tt.prompts > 0 {
					assert.Equal(t, fc.field, rec.questions[0].Field)
					assert.Equal(t, "X1", rec.questions[0].Old)
					assert.Equal(t, "Y2", rec.questions[0].New)
				}
				assert.Equal(t, tt.want.Applied(), len(rec.mutations) > 0)
			})
		}
	}
}

func TestMerge_NameFallsBackToHouseNumber(t *testing.T) {
	rec := &recorder{}
	report := newTestEngine(rec).Merge(context.Background(),
		domain.Target{ID: "venue-1"},
		domain.Candidate{HouseNumber: "12"})

	u := updateFor(t, report, domain.FieldName)
	assert.Equal(t, domain.DecisionApply, u.Decision)
	assert.Equal(t, "12", u.New)
	assert.Equal(t, "12", report.Target.Name)
}

func TestMerge_ExplicitNamePreferredOverHouseNumber(t *testing.T) {
	rec := &recorder{}
	report := newTestEngine(rec).Merge(context.Background(),
		domain.Target{ID: "venue-1"},
		domain.Candidate{Name: "Cafe X", HouseNumber: "12"})

	assert.Equal(t, "Cafe X", updateFor(t, report, domain.FieldName).New)
}

func TestMerge_PromptOrder(t *testing.T) {
	rec := &recorder{answer: true}
	target := domain.Target{ID: "venue-1", Name: "Old", Address: domain.Address{
		City: "Львів", Street: "Городоцька", HouseNumber: "1",
	}}
	cand := domain.Candidate{Name: "New", City: "Київ", Street: "Хрещатик", HouseNumber: "22"}

	newTestEngine(rec).Merge(context.Background(), target, cand)

	var order []domain.Field
	for _, q := range rec.questions {
		order = append(order, q.Field)
	}
	assert.Equal(t, []domain.Field{
		domain.FieldName, domain.FieldHouseNumber, domain.FieldStreet, domain.FieldCity,
	}, order)
}

func TestMerge_MutationGrouping(t *testing.T) {
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	rec := &recorder{}
	target := domain.Target{ID: "venue-7", Address: domain.Address{CountryID: 232, StateID: 1}}
	cand := domain.Candidate{Name: "Пошта", City: "Київ", Street: "вулиця Хрещатик", HouseNumber: "22"}

	report := newTestEngine(rec).Merge(context.Background(), target, cand)

	want := []domain.Mutation{
		{
			TargetID:   "venue-7",
			Kind:       domain.MutationAttributes,
			Fields:     []domain.Field{domain.FieldName},
			Attributes: map[string]string{"name": "Пошта"},
			CreatedAt:  fixed,
		},
		{
			TargetID: "venue-7",
			Kind:     domain.MutationAddress,
			Fields:   []domain.Field{domain.FieldHouseNumber, domain.FieldStreet},
			Address: &domain.AddressPatch{
				CountryID: 232, StateID: 1, Street: "вул. Хрещатик", HouseNumber: "22",
			},
			CreatedAt: fixed,
		},
		{
			TargetID: "venue-7",
			Kind:     domain.MutationAddress,
			Fields:   []domain.Field{domain.FieldCity},
			Address: &domain.AddressPatch{
				CountryID: 232, StateID: 1, City: "Київ", Street: "вул. Хрещатик", HouseNumber: "22",
			},
			CreatedAt: fixed,
		},
	}
	if diff := cmp.Diff(want, rec.mutations); diff != "" {
		t.Errorf("submitted mutations mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, rec.mutations, report.Mutations)
	assert.True(t, report.Refreshed)
	require.Len(t, rec.refreshed, 1)
	assert.Equal(t, report.Target, rec.refreshed[0])
}

func TestMerge_CityOnlyKeepsCurrentStreet(t *testing.T) {
	rec := &recorder{}
	target := domain.Target{ID: "venue-1", Name: "22", Address: domain.Address{
		Street: "вул. Хрещатик", HouseNumber: "22",
	}}

	newTestEngine(rec).Merge(context.Background(), target, domain.Candidate{
		City: "Київ", Street: "вулиця Хрещатик", HouseNumber: "22",
	})

	require.Len(t, rec.mutations, 1)
	m := rec.mutations[0]
	assert.Equal(t, []domain.Field{domain.FieldCity}, m.Fields)
	assert.Equal(t, "вул. Хрещатик", m.Address.Street)
	assert.Equal(t, "Київ", m.Address.City)
}

func TestMerge_NothingAppliedSkipsRefresh(t *testing.T) {
	rec := &recorder{answer: false}
	target := domain.Target{ID: "venue-1", Name: "Old", Address: domain.Address{Street: "Городоцька"}}

	report := newTestEngine(rec).Merge(context.Background(), target, domain.Candidate{Name: "New", Street: "Хрещатик"})

	assert.Empty(t, report.Mutations)
	assert.Empty(t, report.Applied())
	assert.Equal(t, 2, report.Prompts())
	assert.False(t, report.Refreshed)
	assert.Empty(t, rec.refreshed)
	assert.Equal(t, target, report.Target)
}

func TestMerge_SubmitErrorDoesNotStopMerge(t *testing.T) {
	rec := &recorder{submitErr: errors.New("queue closed")}
	report := newTestEngine(rec).Merge(context.Background(),
		domain.Target{ID: "venue-1"},
		domain.Candidate{Name: "Кафе", City: "Київ"})

	assert.Len(t, rec.mutations, 2, "every mutation is still attempted")
	assert.Len(t, report.Mutations, 2)
}

func TestMerge_PluggableHouseNumberNormalizer(t *testing.T) {
	rec := &recorder{}
	stripSuffix := func(s string) string { return strings.TrimRight(s, "абвгд") }
	report := newTestEngine(rec, WithHouseNumberNormalizer(stripSuffix)).Merge(context.Background(),
		domain.Target{ID: "venue-1", Name: "5", Address: domain.Address{HouseNumber: "5"}},
		domain.Candidate{HouseNumber: "5а"})

	assert.Equal(t, domain.DecisionNoop, updateFor(t, report, domain.FieldHouseNumber).Decision)
	assert.Empty(t, rec.questions)
}

func TestMerge_PluggableStreetNormalizer(t *testing.T) {
	rec := &recorder{}
	report := newTestEngine(rec, WithStreetNormalizer(strings.ToUpper)).Merge(context.Background(),
		domain.Target{ID: "venue-1", Name: "x"},
		domain.Candidate{Street: "вулиця Хрещатик"})

	assert.Equal(t, "ВУЛИЦЯ ХРЕЩАТИК", report.Target.Address.Street)
}

func TestMerge_NilConfirmerDeclines(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEngine(nil, nil, logger, observability.NewMetricsForTesting())

	report := e.Merge(context.Background(),
		domain.Target{ID: "venue-1", Name: "Old"},
		domain.Candidate{Name: "New"})

	assert.Equal(t, domain.DecisionDeclined, updateFor(t, report, domain.FieldName).Decision)
}

func TestEngine_WithConfirmerLeavesOriginalUntouched(t *testing.T) {
	rec := &recorder{answer: false}
	base := newTestEngine(rec)
	yes := base.WithConfirmer(Answers{domain.FieldName: true})

	target := domain.Target{ID: "venue-1", Name: "Old"}
	cand := domain.Candidate{Name: "New"}

	assert.Equal(t, domain.DecisionConfirmed, updateFor(t, yes.Merge(context.Background(), target, cand), domain.FieldName).Decision)
	assert.Equal(t, domain.DecisionDeclined, updateFor(t, base.Merge(context.Background(), target, cand), domain.FieldName).Decision)
}
