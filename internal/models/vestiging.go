package models

import "time"

// VestigingsNummers is the list of establishment numbers registered under a
// single KVK number, as reported by the basisprofiel vestigingen endpoint.
type VestigingsNummers struct {
	KVKNummer         string
	Vestigingsnummers []string
}

// Vestiging is one mirrored company/establishment link.
type Vestiging struct {
	KVKNummer        string
	Vestigingsnummer string
	LastUpdated      time.Time
}
