// Package store persists the three artifacts of a continuous-series run:
// the stitched series, the daily main-contract mapping, and the switch log.
package store

import (
	"context"

	"mainline/internal/domain"
)

// ResultWriter persists one run's outputs. Implementations must produce the
// switch artifact even when no switches occurred (empty, not omitted), and
// must be idempotent: writing the same result twice yields identical
// storage state.
type ResultWriter interface {
	// WriteSeries persists the continuous series, ordered by trade date.
	WriteSeries(ctx context.Context, product string, series []domain.ContinuousRecord) error

	// WriteMapping persists the per-day main-contract mapping.
	WriteMapping(ctx context.Context, product string, mapping []domain.MainContractRecord) error

	// WriteSwitches persists the roll log.
	WriteSwitches(ctx context.Context, product string, switches []domain.SwitchEvent) error
}

// WriteResult pushes all three artifacts of a run through w.
func WriteResult(ctx context.Context, w ResultWriter, product string, mapping []domain.MainContractRecord, switches []domain.SwitchEvent, series []domain.ContinuousRecord) error {
	if err := w.WriteSeries(ctx, product, series); err != nil {
		return err
	}
	if err := w.WriteMapping(ctx, product, mapping); err != nil {
		return err
	}
	return w.WriteSwitches(ctx, product, switches)
}
