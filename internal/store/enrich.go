package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/neocare/neocare/internal/engine"
	"github.com/neocare/neocare/internal/platform/fanout"
)

// LatestVitals reads the newest reading of each patient with at most limit
// reads in flight. Readings line up with patients by index. A failed read
// leaves nil for that patient and the first failure is returned with the
// otherwise complete result.
func LatestVitals(ctx context.Context, r VitalReader, patients []uuid.UUID, limit int) ([]*engine.VitalReading, error) {
	var (
		mu       sync.Mutex
		firstErr error
	)
	// The callback never fails, so Each cannot either.
	readings, _ := fanout.Each(ctx, patients, limit, func(ctx context.Context, id uuid.UUID) (*engine.VitalReading, error) {
		v, err := r.LatestVital(ctx, id)
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return nil, nil
		}
		return v, nil
	})
	return readings, firstErr
}
