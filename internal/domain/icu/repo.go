package icu

import "github.com/neocare/neocare/internal/store"

// Store is what the ICU command center reads from upstream.
type Store interface {
	store.AdmissionReader
	store.VitalReader
	store.AlertReader
	store.BedReader
	store.EquipmentReader
}
