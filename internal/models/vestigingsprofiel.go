package models

import "time"

// VestigingsProfiel is the mirrored per-establishment profile, keyed by
// establishment number.
type VestigingsProfiel struct {
	Vestigingsnummer       string
	KVKNummer              string
	EersteHandelsnaam      string
	IsHoofdvestiging       bool
	TotaalWerkzamePersonen int
	Websites               string
	AdresType              string
	Postbusnummer          string
	AdresStraatnaam        string
	AdresToevoeging        string
	AdresPostcode          string
	AdresPlaats            string
	GPSLatitude            string
	GPSLongitude           string
	LastUpdated            time.Time
}
