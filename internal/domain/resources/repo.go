package resources

import "github.com/neocare/neocare/internal/store"

// Store is what resource reporting reads from upstream.
type Store interface {
	store.BedReader
	store.ResourceReader
}
