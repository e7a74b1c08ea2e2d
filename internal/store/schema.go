// Package store holds the Postgres readers/writers of the mirror and the
// optional Elasticsearch indexer. Demand (which numbers to fetch) is derived
// from the signalen table; writes go through batched upsert writers.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS basisprofielen (
		kvk_nummer                    VARCHAR(8) PRIMARY KEY,
		naam                          TEXT,
		rechtsvorm                    TEXT,
		rechtsvorm_uitgebreid         TEXT,
		hoofdactiviteit               TEXT,
		hoofdactiviteit_omschrijving  TEXT,
		activiteit_overig             TEXT,
		eerste_handelsnaam            TEXT,
		vestigingsnummer              VARCHAR(12),
		totaal_werkzame_personen      INTEGER,
		websites                      TEXT,
		registratie_datum_aanvang     DATE,
		registratie_datum_einde       DATE,
		adres_type                    TEXT,
		postbusnummer                 TEXT,
		adres_straatnaam              TEXT,
		adres_toevoeging              TEXT,
		adres_postcode                TEXT,
		adres_plaats                  TEXT,
		gps_latitude                  TEXT,
		gps_longitude                 TEXT,
		last_updated                  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vestigingen (
		kvk_nummer       VARCHAR(8) NOT NULL REFERENCES basisprofielen (kvk_nummer) ON DELETE CASCADE,
		vestigingsnummer VARCHAR(12) NOT NULL,
		last_updated     TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (kvk_nummer, vestigingsnummer)
	)`,
	`CREATE TABLE IF NOT EXISTS vestigingsprofielen (
		vestigingsnummer          VARCHAR(12) PRIMARY KEY,
		kvk_nummer                VARCHAR(8),
		eerste_handelsnaam        TEXT,
		is_hoofdvestiging         BOOLEAN,
		totaal_werkzame_personen  INTEGER,
		websites                  TEXT,
		adres_type                TEXT,
		postbusnummer             TEXT,
		adres_straatnaam          TEXT,
		adres_toevoeging          TEXT,
		adres_postcode            TEXT,
		adres_plaats              TEXT,
		gps_latitude              TEXT,
		gps_longitude             TEXT,
		last_updated              TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS signalen (
		signaal_id           TEXT PRIMARY KEY,
		kvknummer            VARCHAR(8) NOT NULL,
		vestigingsnummer     VARCHAR(12),
		signaal_type         TEXT,
		registratie_tijdstip TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signalen_kvknummer ON signalen (kvknummer)`,
	`CREATE INDEX IF NOT EXISTS idx_signalen_tijdstip ON signalen (registratie_tijdstip)`,
}

// EnsureSchema creates the mirror tables when they do not exist yet. Every
// binary calls this at startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
