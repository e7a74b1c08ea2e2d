package mappers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvk-connect/internal/kvk"
)

func fullBasisprofiel() *kvk.Basisprofiel {
	return &kvk.Basisprofiel{
		KVKNummer:              "12345678",
		Naam:                   "Blooming Tandartsen",
		TotaalWerkzamePersonen: 10,
		Websites:               []string{"https://blooming.nl", "https://tandartsen.nl"},
		Handelsnamen: []kvk.Handelsnaam{
			{Naam: "Tweede Naam", Volgorde: 1},
			{Naam: "Blooming Tandartsen", Volgorde: 0},
		},
		SBIActiviteiten: []kvk.SBIActiviteit{
			{SBICode: "4773", SBIOmschrijving: "Apotheken", IndHoofdactiviteit: "Nee"},
			{SBICode: "86231", SBIOmschrijving: "Praktijken van tandartsen", IndHoofdactiviteit: "Ja"},
		},
		MaterieleRegistratie: &kvk.MaterieleRegistratie{
			DatumAanvang: "20200115",
		},
		Embedded: &kvk.BasisprofielEmbedded{
			Eigenaar: &kvk.Eigenaar{
				Rechtsvorm:            "Besloten Vennootschap",
				UitgebreideRechtsvorm: "Besloten Vennootschap",
			},
			Hoofdvestiging: &kvk.Vestigingsprofiel{
				Vestigingsnummer: "000038976579",
				Adressen: []kvk.Adres{
					{Type: "postadres", Postbusnummer: 99, Postcode: "1234AB", Plaats: "Utrecht"},
					{
						Type:       "bezoekadres",
						Straatnaam: "Hoofdstraat",
						Huisnummer: 12, HuisnummerToevoeging: "a",
						Postcode: "1234AB",
						Plaats:   "Utrecht",
						GeoData:  &kvk.GeoData{GPSLatitude: 52.0907374, GPSLongitude: 5.1214201},
					},
				},
			},
		},
	}
}

func TestMapBasisprofiel(t *testing.T) {
	record := MapBasisprofiel(fullBasisprofiel())

	assert.Equal(t, "12345678", record.KVKNummer)
	assert.Equal(t, "Blooming Tandartsen", record.Naam)
	assert.Equal(t, "Besloten Vennootschap", record.Rechtsvorm)
	assert.Equal(t, "Blooming Tandartsen", record.EersteHandelsnaam)
	assert.Equal(t, "86231", record.Hoofdactiviteit)
	assert.Equal(t, "Praktijken van tandartsen", record.HoofdactiviteitOmschrijving)
	assert.Equal(t, "Apotheken", record.ActiviteitOverig)
	assert.Equal(t, "000038976579", record.Vestigingsnummer)
	assert.Equal(t, "https://blooming.nl;https://tandartsen.nl", record.Websites)

	require.NotNil(t, record.RegistratieDatumAanvang)
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), *record.RegistratieDatumAanvang)
	assert.Nil(t, record.RegistratieDatumEinde)

	// Visiting address wins over the postal one.
	assert.Equal(t, "bezoekadres", record.AdresType)
	assert.Equal(t, "Hoofdstraat 12a", record.AdresStraatnaam)
	assert.Equal(t, "Utrecht", record.AdresPlaats)
	assert.Equal(t, "52,09073", record.GPSLatitude)
	assert.Equal(t, "5,12142", record.GPSLongitude)
	assert.False(t, record.LastUpdated.IsZero())
}

func TestMapBasisprofielMinimalPayload(t *testing.T) {
	record := MapBasisprofiel(&kvk.Basisprofiel{KVKNummer: "12345678"})

	assert.Equal(t, "12345678", record.KVKNummer)
	assert.Empty(t, record.Naam)
	assert.Empty(t, record.Websites)
	assert.Empty(t, record.EersteHandelsnaam)
	assert.Nil(t, record.RegistratieDatumAanvang)
}

func TestMapBasisprofielFallsBackToHoofdvestigingWebsites(t *testing.T) {
	api := &kvk.Basisprofiel{
		KVKNummer: "12345678",
		Embedded: &kvk.BasisprofielEmbedded{
			Hoofdvestiging: &kvk.Vestigingsprofiel{
				Vestigingsnummer: "000038976579",
				Websites:         []string{"https://vestiging.nl"},
			},
		},
	}

	record := MapBasisprofiel(api)

	assert.Equal(t, "https://vestiging.nl", record.Websites)
}

func TestMapVestigingen(t *testing.T) {
	api := &kvk.VestigingList{
		KVKNummer: "12345678",
		Vestigingen: []kvk.VestigingSummary{
			{Vestigingsnummer: "000038976579"},
			{Vestigingsnummer: "000038976580"},
			{}, // no number, dropped
		},
	}

	nummers := MapVestigingen(api)

	assert.Equal(t, "12345678", nummers.KVKNummer)
	assert.Equal(t, []string{"000038976579", "000038976580"}, nummers.Vestigingsnummers)
}

func TestMapVestigingsprofiel(t *testing.T) {
	api := &kvk.Vestigingsprofiel{
		Vestigingsnummer:       "000038976579",
		KVKNummer:              "12345678",
		EersteHandelsnaam:      "Blooming Tandartsen",
		IndHoofdvestiging:      "Ja",
		TotaalWerkzamePersonen: 4,
		Adressen: []kvk.Adres{
			{
				Type:       "bezoekadres",
				Straatnaam: "Hoofdstraat",
				Huisnummer: 12,
				Postcode:   "1234AB",
				Plaats:     "Utrecht",
				GeoData:    &kvk.GeoData{GPSLatitude: 52.0907374, GPSLongitude: 5.1214201},
			},
		},
	}

	record := MapVestigingsprofiel(api)

	assert.Equal(t, "000038976579", record.Vestigingsnummer)
	assert.True(t, record.IsHoofdvestiging)
	assert.Equal(t, "Hoofdstraat 12", record.AdresStraatnaam)
	assert.Equal(t, "52,09073", record.GPSLatitude)
}

func TestMapVestigingsprofielNietHoofdvestiging(t *testing.T) {
	record := MapVestigingsprofiel(&kvk.Vestigingsprofiel{
		Vestigingsnummer:  "000038976580",
		IndHoofdvestiging: "Nee",
	})

	assert.False(t, record.IsHoofdvestiging)
}

func TestMapSignaal(t *testing.T) {
	signaal, ok := MapSignaal(kvk.MutatieSignaal{
		SignaalID:           "s-1",
		KVKNummer:           "1234567", // short, padded to 8
		Vestigingsnummer:    "38976579",
		SignaalType:         "wijziging",
		RegistratieTijdstip: "2024-01-02T10:00:00",
	})

	require.True(t, ok)
	assert.Equal(t, "s-1", signaal.ID)
	assert.Equal(t, "01234567", signaal.KVKNummer)
	assert.Equal(t, "000038976579", signaal.Vestigingsnummer)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), signaal.RegistratieTijdstip)
}

func TestMapSignaalCompanyLevel(t *testing.T) {
	signaal, ok := MapSignaal(kvk.MutatieSignaal{
		SignaalID:           "s-2",
		KVKNummer:           "12345678",
		RegistratieTijdstip: "2024-01-02T10:00:00Z",
	})

	require.True(t, ok)
	assert.Empty(t, signaal.Vestigingsnummer)
}

func TestMapSignaalRejectsBadInput(t *testing.T) {
	_, ok := MapSignaal(kvk.MutatieSignaal{
		KVKNummer:           "geen nummer",
		RegistratieTijdstip: "2024-01-02T10:00:00",
	})
	assert.False(t, ok)

	_, ok = MapSignaal(kvk.MutatieSignaal{
		KVKNummer:           "12345678",
		RegistratieTijdstip: "not a timestamp",
	})
	assert.False(t, ok)
}
