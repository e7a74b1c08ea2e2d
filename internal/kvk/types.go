// Package kvk is the typed client for the KVK (Dutch Chamber of Commerce)
// registry API: basisprofielen, vestigingen, vestigingsprofielen and the
// Mutatieservice change feed.
package kvk

// Basisprofiel is the registry's company profile payload.
type Basisprofiel struct {
	KVKNummer               string                `json:"kvkNummer"`
	Naam                    string                `json:"naam"`
	IndNonMailing           string                `json:"indNonMailing,omitempty"`
	FormeleRegistratiedatum string                `json:"formeleRegistratiedatum,omitempty"`
	MaterieleRegistratie    *MaterieleRegistratie `json:"materieleRegistratie,omitempty"`
	TotaalWerkzamePersonen  int                   `json:"totaalWerkzamePersonen,omitempty"`
	Handelsnamen            []Handelsnaam         `json:"handelsnamen,omitempty"`
	SBIActiviteiten         []SBIActiviteit       `json:"sbiActiviteiten,omitempty"`
	Websites                []string              `json:"websites,omitempty"`
	Embedded                *BasisprofielEmbedded `json:"_embedded,omitempty"`
}

// BasisprofielEmbedded carries the _embedded sub-resources of a basisprofiel.
type BasisprofielEmbedded struct {
	Hoofdvestiging *Vestigingsprofiel `json:"hoofdvestiging,omitempty"`
	Eigenaar       *Eigenaar          `json:"eigenaar,omitempty"`
}

// Eigenaar holds the legal-form fields of the profile owner.
type Eigenaar struct {
	Rechtsvorm            string `json:"rechtsvorm,omitempty"`
	UitgebreideRechtsvorm string `json:"uitgebreideRechtsvorm,omitempty"`
}

// Handelsnaam is one trade name with its registry ordering.
type Handelsnaam struct {
	Naam     string `json:"naam"`
	Volgorde int    `json:"volgorde"`
}

// SBIActiviteit is one SBI activity code. IndHoofdactiviteit is the
// registry's "Ja"/"Nee" marker for the main activity.
type SBIActiviteit struct {
	SBICode            string `json:"sbiCode"`
	SBIOmschrijving    string `json:"sbiOmschrijving"`
	IndHoofdactiviteit string `json:"indHoofdactiviteit,omitempty"`
}

// MaterieleRegistratie carries the registry start/end dates, formatted
// either DD-MM-YYYY or YYYYMMDD with 00 allowed for unknown day/month.
type MaterieleRegistratie struct {
	DatumAanvang string `json:"datumAanvang,omitempty"`
	DatumEinde   string `json:"datumEinde,omitempty"`
}

// Adres is one registry address, visiting (bezoekadres) or postal
// (postadres). GeoData is present only when requested.
type Adres struct {
	Type                 string   `json:"type"`
	VolledigAdres        string   `json:"volledigAdres,omitempty"`
	Straatnaam           string   `json:"straatnaam,omitempty"`
	Huisnummer           int      `json:"huisnummer,omitempty"`
	HuisnummerToevoeging string   `json:"huisnummerToevoeging,omitempty"`
	ToevoegingAdres      string   `json:"toevoegingAdres,omitempty"`
	Postcode             string   `json:"postcode,omitempty"`
	Postbusnummer        int      `json:"postbusnummer,omitempty"`
	Plaats               string   `json:"plaats,omitempty"`
	GeoData              *GeoData `json:"geoData,omitempty"`
}

// GeoData holds the coordinates of an address.
type GeoData struct {
	AddresseerbaarObjectID string  `json:"addresseerbaarObjectId,omitempty"`
	GPSLatitude            float64 `json:"gpsLatitude,omitempty"`
	GPSLongitude           float64 `json:"gpsLongitude,omitempty"`
	RijksdriehoekX         float64 `json:"rijksdriehoekX,omitempty"`
	RijksdriehoekY         float64 `json:"rijksdriehoekY,omitempty"`
}

// Vestigingsprofiel is a single establishment profile. The same shape is
// embedded as hoofdvestiging inside a basisprofiel.
type Vestigingsprofiel struct {
	Vestigingsnummer        string                `json:"vestigingsnummer"`
	KVKNummer               string                `json:"kvkNummer,omitempty"`
	EersteHandelsnaam       string                `json:"eersteHandelsnaam,omitempty"`
	IndHoofdvestiging       string                `json:"indHoofdvestiging,omitempty"`
	IndCommercieleVestiging string                `json:"indCommercieleVestiging,omitempty"`
	TotaalWerkzamePersonen  int                   `json:"totaalWerkzamePersonen,omitempty"`
	MaterieleRegistratie    *MaterieleRegistratie `json:"materieleRegistratie,omitempty"`
	Adressen                []Adres               `json:"adressen,omitempty"`
	Websites                []string              `json:"websites,omitempty"`
	SBIActiviteiten         []SBIActiviteit       `json:"sbiActiviteiten,omitempty"`
}

// VestigingList is the establishment list of one company.
type VestigingList struct {
	KVKNummer                    string             `json:"kvkNummer"`
	AantalCommercieleVestigingen int                `json:"aantalCommercieleVestigingen,omitempty"`
	TotaalAantalVestigingen      int                `json:"totaalAantalVestigingen,omitempty"`
	Vestigingen                  []VestigingSummary `json:"vestigingen"`
}

// VestigingSummary is one entry of a company's establishment list.
type VestigingSummary struct {
	Vestigingsnummer  string `json:"vestigingsnummer"`
	KVKNummer         string `json:"kvkNummer,omitempty"`
	EersteHandelsnaam string `json:"eersteHandelsnaam,omitempty"`
	IndHoofdvestiging string `json:"indHoofdvestiging,omitempty"`
}

// MutatiePage is one page of the Mutatieservice feed. The first page
// reports the total page count the caller iterates over.
type MutatiePage struct {
	Pagina        int              `json:"pagina"`
	Aantal        int              `json:"aantal,omitempty"`
	Totaal        int              `json:"totaal"`
	TotaalPaginas int              `json:"totaalPaginas"`
	Signalen      []MutatieSignaal `json:"signalen"`
}

// MutatieSignaal is one change signal. An empty vestigingsnummer means the
// signal concerns the company profile rather than one establishment.
type MutatieSignaal struct {
	SignaalID           string `json:"signaalId"`
	KVKNummer           string `json:"kvknummer"`
	Vestigingsnummer    string `json:"vestigingsnummer,omitempty"`
	SignaalType         string `json:"signaalType,omitempty"`
	RegistratieTijdstip string `json:"registratietijdstip"`
}
