package laboratory

import "github.com/neocare/neocare/internal/store"

// Store is what laboratory reporting reads from upstream.
type Store interface {
	store.LabReader
}
