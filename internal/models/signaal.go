package models

import "time"

// Signaal is one mutation signal from the Mutatieservice feed. A signal with
// an empty Vestigingsnummer concerns the company profile itself; otherwise it
// concerns a single establishment.
type Signaal struct {
	ID                  string
	KVKNummer           string
	Vestigingsnummer    string
	SignaalType         string
	RegistratieTijdstip time.Time
}
