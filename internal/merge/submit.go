package merge

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
)

// SubmitFunc adapts a function to Submitter.
type SubmitFunc func(ctx context.Context, m domain.Mutation) error

func (f SubmitFunc) Submit(ctx context.Context, m domain.Mutation) error { return f(ctx, m) }

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context, target domain.Target)

func (f RefreshFunc) Refresh(ctx context.Context, target domain.Target) { f(ctx, target) }

// LogSubmitter records mutations in the log instead of a host edit system.
// Used when no mutation sink is configured.
type LogSubmitter struct {
	Logger *slog.Logger
}

func (s LogSubmitter) Submit(_ context.Context, m domain.Mutation) error {
	attrs := []any{"target_id", m.TargetID, "kind", m.Kind, "fields", m.Fields}
	if m.Address != nil {
		attrs = append(attrs,
			"city", m.Address.City,
			"street", m.Address.Street,
			"house_number", m.Address.HouseNumber,
		)
	}
	for k, v := range m.Attributes {
		attrs = append(attrs, k, v)
	}
	s.Logger.Info("mutation queued", attrs...)
	return nil
}
