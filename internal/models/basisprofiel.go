// Package models holds the domain records the mirror stores. These are the
// flattened shapes written to Postgres, not the raw API payloads.
package models

import "time"

// BasisProfiel is the mirrored basic company profile, keyed by KVK number.
type BasisProfiel struct {
	KVKNummer                   string
	Naam                        string
	Rechtsvorm                  string
	RechtsvormUitgebreid        string
	Hoofdactiviteit             string
	HoofdactiviteitOmschrijving string
	ActiviteitOverig            string
	EersteHandelsnaam           string
	Vestigingsnummer            string
	TotaalWerkzamePersonen      int
	Websites                    string // ";"-joined
	RegistratieDatumAanvang     *time.Time
	RegistratieDatumEinde       *time.Time
	AdresType                   string
	Postbusnummer               string
	AdresStraatnaam             string
	AdresToevoeging             string
	AdresPostcode               string
	AdresPlaats                 string
	GPSLatitude                 string // comma-decimal, 5 digits
	GPSLongitude                string
	LastUpdated                 time.Time
}
