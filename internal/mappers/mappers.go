// Package mappers flattens registry API payloads into the domain records the
// mirror stores.
package mappers

import (
	"strconv"
	"strings"
	"time"

	"kvk-connect/internal/kvk"
	"kvk-connect/internal/kvkutil"
	"kvk-connect/internal/models"
)

// signaalTimeLayouts are the timestamp shapes observed in the Mutatieservice
// feed.
var signaalTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// MapBasisprofiel flattens a company profile payload into a mirror record.
func MapBasisprofiel(api *kvk.Basisprofiel) *models.BasisProfiel {
	record := &models.BasisProfiel{
		KVKNummer:              api.KVKNummer,
		Naam:                   api.Naam,
		EersteHandelsnaam:      eersteHandelsnaam(api.Handelsnamen),
		TotaalWerkzamePersonen: api.TotaalWerkzamePersonen,
		Websites:               strings.Join(api.Websites, ";"),
		LastUpdated:            time.Now().UTC(),
	}

	record.Hoofdactiviteit, record.HoofdactiviteitOmschrijving, record.ActiviteitOverig = splitActiviteiten(api.SBIActiviteiten)

	if api.MaterieleRegistratie != nil {
		record.RegistratieDatumAanvang = parseDatum(api.MaterieleRegistratie.DatumAanvang)
		record.RegistratieDatumEinde = parseDatum(api.MaterieleRegistratie.DatumEinde)
	}

	if api.Embedded != nil {
		if e := api.Embedded.Eigenaar; e != nil {
			record.Rechtsvorm = e.Rechtsvorm
			record.RechtsvormUitgebreid = e.UitgebreideRechtsvorm
		}
		if hv := api.Embedded.Hoofdvestiging; hv != nil {
			record.Vestigingsnummer = hv.Vestigingsnummer
			if record.Websites == "" {
				record.Websites = strings.Join(hv.Websites, ";")
			}
			applyAdres(pickAdres(hv.Adressen), &adresFields{
				Type:          &record.AdresType,
				Postbusnummer: &record.Postbusnummer,
				Straatnaam:    &record.AdresStraatnaam,
				Toevoeging:    &record.AdresToevoeging,
				Postcode:      &record.AdresPostcode,
				Plaats:        &record.AdresPlaats,
				GPSLatitude:   &record.GPSLatitude,
				GPSLongitude:  &record.GPSLongitude,
			})
		}
	}

	return record
}

// MapVestigingen reduces an establishment list payload to the number list
// the mirror keeps.
func MapVestigingen(api *kvk.VestigingList) *models.VestigingsNummers {
	nummers := make([]string, 0, len(api.Vestigingen))
	for _, v := range api.Vestigingen {
		if v.Vestigingsnummer != "" {
			nummers = append(nummers, v.Vestigingsnummer)
		}
	}
	return &models.VestigingsNummers{
		KVKNummer:         api.KVKNummer,
		Vestigingsnummers: nummers,
	}
}

// MapVestigingsprofiel flattens an establishment profile payload.
func MapVestigingsprofiel(api *kvk.Vestigingsprofiel) *models.VestigingsProfiel {
	record := &models.VestigingsProfiel{
		Vestigingsnummer:       api.Vestigingsnummer,
		KVKNummer:              api.KVKNummer,
		EersteHandelsnaam:      api.EersteHandelsnaam,
		IsHoofdvestiging:       api.IndHoofdvestiging == "Ja",
		TotaalWerkzamePersonen: api.TotaalWerkzamePersonen,
		Websites:               strings.Join(api.Websites, ";"),
		LastUpdated:            time.Now().UTC(),
	}

	applyAdres(pickAdres(api.Adressen), &adresFields{
		Type:          &record.AdresType,
		Postbusnummer: &record.Postbusnummer,
		Straatnaam:    &record.AdresStraatnaam,
		Toevoeging:    &record.AdresToevoeging,
		Postcode:      &record.AdresPostcode,
		Plaats:        &record.AdresPlaats,
		GPSLatitude:   &record.GPSLatitude,
		GPSLongitude:  &record.GPSLongitude,
	})

	return record
}

// MapSignaal converts one feed signal to a mirror record. The KVK number is
// normalized; an unparseable timestamp yields ok=false so the caller can
// skip the signal.
func MapSignaal(api kvk.MutatieSignaal) (models.Signaal, bool) {
	kvkNummer, err := kvkutil.CleanKVKNummer(api.KVKNummer)
	if err != nil {
		return models.Signaal{}, false
	}

	ts, ok := parseSignaalTijdstip(api.RegistratieTijdstip)
	if !ok {
		return models.Signaal{}, false
	}

	vestigingsnummer := ""
	if api.Vestigingsnummer != "" {
		if vn, err := kvkutil.CleanVestigingsnummer(api.Vestigingsnummer); err == nil {
			vestigingsnummer = vn
		}
	}

	return models.Signaal{
		ID:                  api.SignaalID,
		KVKNummer:           kvkNummer,
		Vestigingsnummer:    vestigingsnummer,
		SignaalType:         api.SignaalType,
		RegistratieTijdstip: ts,
	}, true
}

func parseSignaalTijdstip(raw string) (time.Time, bool) {
	for _, layout := range signaalTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseDatum(raw string) *time.Time {
	if t, ok := kvkutil.ParseKVKDatum(raw); ok {
		return &t
	}
	return nil
}

// eersteHandelsnaam picks the trade name with the lowest registry ordering.
func eersteHandelsnaam(namen []kvk.Handelsnaam) string {
	if len(namen) == 0 {
		return ""
	}
	eerste := namen[0]
	for _, n := range namen[1:] {
		if n.Volgorde < eerste.Volgorde {
			eerste = n
		}
	}
	return eerste.Naam
}

// splitActiviteiten separates the main SBI activity from the rest.
func splitActiviteiten(activiteiten []kvk.SBIActiviteit) (code, omschrijving, overig string) {
	var rest []string
	for _, a := range activiteiten {
		if a.IndHoofdactiviteit == "Ja" && code == "" {
			code = a.SBICode
			omschrijving = a.SBIOmschrijving
			continue
		}
		rest = append(rest, a.SBIOmschrijving)
	}
	return code, omschrijving, strings.Join(rest, ";")
}

// pickAdres prefers the visiting address over the postal one.
func pickAdres(adressen []kvk.Adres) *kvk.Adres {
	var postadres *kvk.Adres
	for i := range adressen {
		switch adressen[i].Type {
		case "bezoekadres":
			return &adressen[i]
		case "postadres":
			if postadres == nil {
				postadres = &adressen[i]
			}
		}
	}
	return postadres
}

type adresFields struct {
	Type          *string
	Postbusnummer *string
	Straatnaam    *string
	Toevoeging    *string
	Postcode      *string
	Plaats        *string
	GPSLatitude   *string
	GPSLongitude  *string
}

func applyAdres(adres *kvk.Adres, out *adresFields) {
	if adres == nil {
		return
	}

	*out.Type = adres.Type
	if adres.Postbusnummer > 0 {
		*out.Postbusnummer = strconv.Itoa(adres.Postbusnummer)
	}
	*out.Straatnaam = strings.TrimSpace(adres.Straatnaam + " " + huisnummer(adres))
	*out.Toevoeging = adres.ToevoegingAdres
	*out.Postcode = adres.Postcode
	*out.Plaats = adres.Plaats
	if adres.GeoData != nil {
		*out.GPSLatitude = kvkutil.TruncateFloat(adres.GeoData.GPSLatitude)
		*out.GPSLongitude = kvkutil.TruncateFloat(adres.GeoData.GPSLongitude)
	}
}

func huisnummer(adres *kvk.Adres) string {
	if adres.Huisnummer == 0 {
		return ""
	}
	return strconv.Itoa(adres.Huisnummer) + adres.HuisnummerToevoeging
}
