package performance

import "github.com/neocare/neocare/internal/store"

// Store is what performance reporting reads from upstream.
type Store interface {
	store.MetricReader
}
