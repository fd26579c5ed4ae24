package alerts

import "github.com/neocare/neocare/internal/store"

// Store is what the alert feeds read from upstream.
type Store interface {
	store.AlertReader
}
