package overview

import "github.com/neocare/neocare/internal/store"

// Store is what the overview reads from upstream.
type Store interface {
	store.AdmissionReader
	store.BedReader
	store.AlertReader
	store.LabReader
	store.PatientReader
}
