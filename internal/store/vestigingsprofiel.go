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

const vestigingsprofielUpsert = `
	INSERT INTO vestigingsprofielen (
		vestigingsnummer, kvk_nummer, eerste_handelsnaam, is_hoofdvestiging,
		totaal_werkzame_personen, websites, adres_type, postbusnummer,
		adres_straatnaam, adres_toevoeging, adres_postcode, adres_plaats,
		gps_latitude, gps_longitude, last_updated
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (vestigingsnummer) DO UPDATE SET
		kvk_nummer = EXCLUDED.kvk_nummer,
		eerste_handelsnaam = EXCLUDED.eerste_handelsnaam,
		is_hoofdvestiging = EXCLUDED.is_hoofdvestiging,
		totaal_werkzame_personen = EXCLUDED.totaal_werkzame_personen,
		websites = EXCLUDED.websites,
		adres_type = EXCLUDED.adres_type,
		postbusnummer = EXCLUDED.postbusnummer,
		adres_straatnaam = EXCLUDED.adres_straatnaam,
		adres_toevoeging = EXCLUDED.adres_toevoeging,
		adres_postcode = EXCLUDED.adres_postcode,
		adres_plaats = EXCLUDED.adres_plaats,
		gps_latitude = EXCLUDED.gps_latitude,
		gps_longitude = EXCLUDED.gps_longitude,
		last_updated = EXCLUDED.last_updated`

// VestigingsProfielStore reads demand for and writes establishment profiles.
type VestigingsProfielStore struct {
	db        *sql.DB
	logger    logger.Logger
	batchSize int

	mu      sync.Mutex
	pending []*models.VestigingsProfiel
}

// NewVestigingsProfielStore builds a store with the given write batch size.
func NewVestigingsProfielStore(db *sql.DB, batchSize int, log logger.Logger) *VestigingsProfielStore {
	if batchSize < 1 {
		batchSize = 1
	}
	return &VestigingsProfielStore{db: db, logger: log, batchSize: batchSize}
}

// MissingVestigingsnummers returns establishment numbers that are linked in
// vestigingen but have no mirrored profile yet.
func (s *VestigingsProfielStore) MissingVestigingsnummers(ctx context.Context, limit int) ([]string, error) {
	const q = `
		SELECT DISTINCT v.vestigingsnummer
		FROM vestigingen v
		LEFT JOIN vestigingsprofielen p ON v.vestigingsnummer = p.vestigingsnummer
		WHERE p.vestigingsnummer IS NULL
		ORDER BY random()
		LIMIT $1`

	return queryNummerColumn(ctx, s.db, q, limit)
}

// OutdatedVestigingsnummers returns profiles that are older than their
// vestigingen link or than a newer establishment-level signal.
func (s *VestigingsProfielStore) OutdatedVestigingsnummers(ctx context.Context, limit int) ([]string, error) {
	const fromLinks = `
		SELECT DISTINCT v.vestigingsnummer
		FROM vestigingen v
		JOIN vestigingsprofielen p ON v.vestigingsnummer = p.vestigingsnummer
		WHERE v.last_updated > p.last_updated
		LIMIT $1`
	const fromSignalen = `
		SELECT DISTINCT s.vestigingsnummer
		FROM signalen s
		JOIN vestigingsprofielen p ON s.vestigingsnummer = p.vestigingsnummer
		WHERE s.registratie_tijdstip > p.last_updated
		LIMIT $1`

	links, err := queryNummerColumn(ctx, s.db, fromLinks, limit)
	if err != nil {
		return nil, err
	}
	signalen, err := queryNummerColumn(ctx, s.db, fromSignalen, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(links))
	merged := links
	for _, nr := range links {
		seen[nr] = struct{}{}
	}
	for _, nr := range signalen {
		if _, ok := seen[nr]; !ok {
			merged = append(merged, nr)
		}
	}
	return merged, nil
}

// Exists reports whether an establishment profile is already mirrored.
func (s *VestigingsProfielStore) Exists(ctx context.Context, vestigingsnummer string) (bool, error) {
	const q = `SELECT 1 FROM vestigingsprofielen WHERE vestigingsnummer = $1 LIMIT 1`

	var one int
	err := s.db.QueryRowContext(ctx, q, vestigingsnummer).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apierrors.NewDatabaseQueryFailedError("exists", err)
	}
	return true, nil
}

// Add buffers one record, flushing when the batch is full.
func (s *VestigingsProfielStore) Add(ctx context.Context, record *models.VestigingsProfiel) error {
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
func (s *VestigingsProfielStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.NewDatabaseWriteFailedError("vestigingsprofielen", err)
	}

	for _, r := range batch {
		_, err := tx.ExecContext(ctx, vestigingsprofielUpsert,
			r.Vestigingsnummer, r.KVKNummer, r.EersteHandelsnaam, r.IsHoofdvestiging,
			r.TotaalWerkzamePersonen, r.Websites, r.AdresType, r.Postbusnummer,
			r.AdresStraatnaam, r.AdresToevoeging, r.AdresPostcode, r.AdresPlaats,
			r.GPSLatitude, r.GPSLongitude, r.LastUpdated,
		)
		if err != nil {
			tx.Rollback()
			return apierrors.NewDatabaseWriteFailedError("vestigingsprofielen", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierrors.NewDatabaseWriteFailedError("vestigingsprofielen", err)
	}

	metrics.RecordsUpserted.WithLabelValues("vestigingsprofiel").Add(float64(len(batch)))
	s.logger.Debug("flushed vestigingsprofielen batch", map[string]interface{}{
		"count": len(batch),
	})
	return nil
}

// Close flushes whatever is still buffered.
func (s *VestigingsProfielStore) Close(ctx context.Context) error {
	return s.Flush(ctx)
}
