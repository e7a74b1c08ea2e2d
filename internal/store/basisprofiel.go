package store

import (
	"context"
	"database/sql"
	"sync"

	apierrors "kvk-connect/internal/common/errors"
	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/common/metrics"
	"kvk-connect/internal/models"
)

const basisprofielUpsert = `
	INSERT INTO basisprofielen (
		kvk_nummer, naam, rechtsvorm, rechtsvorm_uitgebreid,
		hoofdactiviteit, hoofdactiviteit_omschrijving, activiteit_overig,
		eerste_handelsnaam, vestigingsnummer, totaal_werkzame_personen,
		websites, registratie_datum_aanvang, registratie_datum_einde,
		adres_type, postbusnummer, adres_straatnaam, adres_toevoeging,
		adres_postcode, adres_plaats, gps_latitude, gps_longitude,
		last_updated
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20, $21, $22)
	ON CONFLICT (kvk_nummer) DO UPDATE SET
		naam = EXCLUDED.naam,
		rechtsvorm = EXCLUDED.rechtsvorm,
		rechtsvorm_uitgebreid = EXCLUDED.rechtsvorm_uitgebreid,
		hoofdactiviteit = EXCLUDED.hoofdactiviteit,
		hoofdactiviteit_omschrijving = EXCLUDED.hoofdactiviteit_omschrijving,
		activiteit_overig = EXCLUDED.activiteit_overig,
		eerste_handelsnaam = EXCLUDED.eerste_handelsnaam,
		vestigingsnummer = EXCLUDED.vestigingsnummer,
		totaal_werkzame_personen = EXCLUDED.totaal_werkzame_personen,
		websites = EXCLUDED.websites,
		registratie_datum_aanvang = EXCLUDED.registratie_datum_aanvang,
		registratie_datum_einde = EXCLUDED.registratie_datum_einde,
		adres_type = EXCLUDED.adres_type,
		postbusnummer = EXCLUDED.postbusnummer,
		adres_straatnaam = EXCLUDED.adres_straatnaam,
		adres_toevoeging = EXCLUDED.adres_toevoeging,
		adres_postcode = EXCLUDED.adres_postcode,
		adres_plaats = EXCLUDED.adres_plaats,
		gps_latitude = EXCLUDED.gps_latitude,
		gps_longitude = EXCLUDED.gps_longitude,
		last_updated = EXCLUDED.last_updated`

// BasisProfielStore reads demand for and writes company profiles. Writes are
// batched: Add buffers until the batch size is reached, Flush drains the
// rest.
type BasisProfielStore struct {
	db        *sql.DB
	logger    logger.Logger
	batchSize int

	mu      sync.Mutex
	pending []*models.BasisProfiel
}

// NewBasisProfielStore builds a store. A batchSize below 1 is clamped to 1,
// the conservative default that minimizes lock contention on the mirror.
func NewBasisProfielStore(db *sql.DB, batchSize int, log logger.Logger) *BasisProfielStore {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BasisProfielStore{db: db, logger: log, batchSize: batchSize}
}

// MissingKVKNummers returns a random sample of KVK numbers that appear in
// signalen but have no mirrored profile yet. The limit keeps a single cycle
// bounded so the backlog is worked off gradually.
func (s *BasisProfielStore) MissingKVKNummers(ctx context.Context, limit int) ([]string, error) {
	const q = `
		SELECT DISTINCT s.kvknummer
		FROM signalen s
		LEFT JOIN basisprofielen b ON s.kvknummer = b.kvk_nummer
		WHERE b.kvk_nummer IS NULL
		ORDER BY random()
		LIMIT $1`

	return queryNummerColumn(ctx, s.db, q, limit)
}

// MissingCount returns the total backlog of unmirrored KVK numbers.
func (s *BasisProfielStore) MissingCount(ctx context.Context) (int, error) {
	const q = `
		SELECT COUNT(DISTINCT s.kvknummer)
		FROM signalen s
		LEFT JOIN basisprofielen b ON s.kvknummer = b.kvk_nummer
		WHERE b.kvk_nummer IS NULL`

	var count int
	if err := s.db.QueryRowContext(ctx, q).Scan(&count); err != nil {
		return 0, apierrors.NewDatabaseQueryFailedError("missing count", err)
	}
	return count, nil
}

// OutdatedKVKNummers returns mirrored KVK numbers whose company-level signal
// is newer than the stored profile. Establishment-level signals are left to
// the vestigingsprofiel app.
func (s *BasisProfielStore) OutdatedKVKNummers(ctx context.Context, limit int) ([]string, error) {
	const q = `
		SELECT DISTINCT s.kvknummer
		FROM signalen s
		JOIN basisprofielen b ON s.kvknummer = b.kvk_nummer
		WHERE s.registratie_tijdstip > b.last_updated
		  AND s.vestigingsnummer IS NULL
		LIMIT $1`

	return queryNummerColumn(ctx, s.db, q, limit)
}

// Exists reports whether a KVK number is already mirrored.
func (s *BasisProfielStore) Exists(ctx context.Context, kvkNummer string) (bool, error) {
	const q = `SELECT 1 FROM basisprofielen WHERE kvk_nummer = $1 LIMIT 1`

	var one int
	err := s.db.QueryRowContext(ctx, q, kvkNummer).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apierrors.NewDatabaseQueryFailedError("exists", err)
	}
	return true, nil
}

// Add buffers one record, flushing when the batch is full.
func (s *BasisProfielStore) Add(ctx context.Context, record *models.BasisProfiel) error {
	s.mu.Lock()
	s.pending = append(s.pending, record)
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush upserts all buffered records in one transaction.
func (s *BasisProfielStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.NewDatabaseWriteFailedError("basisprofielen", err)
	}

	for _, r := range batch {
		_, err := tx.ExecContext(ctx, basisprofielUpsert,
			r.KVKNummer, r.Naam, r.Rechtsvorm, r.RechtsvormUitgebreid,
			r.Hoofdactiviteit, r.HoofdactiviteitOmschrijving, r.ActiviteitOverig,
			r.EersteHandelsnaam, r.Vestigingsnummer, r.TotaalWerkzamePersonen,
			r.Websites, r.RegistratieDatumAanvang, r.RegistratieDatumEinde,
			r.AdresType, r.Postbusnummer, r.AdresStraatnaam, r.AdresToevoeging,
			r.AdresPostcode, r.AdresPlaats, r.GPSLatitude, r.GPSLongitude,
			r.LastUpdated,
		)
		if err != nil {
			tx.Rollback()
			return apierrors.NewDatabaseWriteFailedError("basisprofielen", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierrors.NewDatabaseWriteFailedError("basisprofielen", err)
	}

	metrics.RecordsUpserted.WithLabelValues("basisprofiel").Add(float64(len(batch)))
	s.logger.Debug("flushed basisprofielen batch", map[string]interface{}{
		"count": len(batch),
	})
	return nil
}

// Close flushes whatever is still buffered.
func (s *BasisProfielStore) Close(ctx context.Context) error {
	return s.Flush(ctx)
}
