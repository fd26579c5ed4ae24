package patients

import "github.com/neocare/neocare/internal/store"

// Store is what patient monitoring reads from upstream.
type Store interface {
	store.AdmissionReader
	store.VitalReader
	store.AlertReader
	store.PatientReader
}
