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

const vestigingUpsert = `
	INSERT INTO vestigingen (kvk_nummer, vestigingsnummer, last_updated)
	VALUES ($1, $2, $3)
	ON CONFLICT (kvk_nummer, vestigingsnummer) DO UPDATE SET
		last_updated = EXCLUDED.last_updated`

// VestigingenStore reads demand for and writes the company/establishment
// links. One Add call writes the full establishment list of one company.
type VestigingenStore struct {
	db        *sql.DB
	logger    logger.Logger
	batchSize int

	mu      sync.Mutex
	pending []*models.VestigingsNummers
}

// NewVestigingenStore builds a store with the given write batch size.
func NewVestigingenStore(db *sql.DB, batchSize int, log logger.Logger) *VestigingenStore {
	if batchSize < 1 {
		batchSize = 1
	}
	return &VestigingenStore{db: db, logger: log, batchSize: batchSize}
}

// MissingKVKNummers returns mirrored companies that have no establishment
// links yet.
func (s *VestigingenStore) MissingKVKNummers(ctx context.Context, limit int) ([]string, error) {
	const q = `
		SELECT DISTINCT b.kvk_nummer
		FROM basisprofielen b
		LEFT JOIN vestigingen v ON b.kvk_nummer = v.kvk_nummer
		WHERE v.kvk_nummer IS NULL
		ORDER BY random()
		LIMIT $1`

	return queryNummerColumn(ctx, s.db, q, limit)
}

// OutdatedKVKNummers returns companies whose establishment list is older
// than a newer company-level signal.
func (s *VestigingenStore) OutdatedKVKNummers(ctx context.Context, limit int) ([]string, error) {
	const q = `
		SELECT DISTINCT s.kvknummer
		FROM signalen s
		JOIN vestigingen v ON s.kvknummer = v.kvk_nummer
		WHERE s.registratie_tijdstip > v.last_updated
		  AND s.vestigingsnummer IS NULL
		LIMIT $1`

	return queryNummerColumn(ctx, s.db, q, limit)
}

// Exists reports whether any establishment link is mirrored for the number.
func (s *VestigingenStore) Exists(ctx context.Context, kvkNummer string) (bool, error) {
	const q = `SELECT 1 FROM vestigingen WHERE kvk_nummer = $1 LIMIT 1`

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

// Add buffers one company's establishment list, flushing when the batch is
// full.
func (s *VestigingenStore) Add(ctx context.Context, record *models.VestigingsNummers) error {
	s.mu.Lock()
	s.pending = append(s.pending, record)
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush upserts all buffered lists in one transaction.
func (s *VestigingenStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.NewDatabaseWriteFailedError("vestigingen", err)
	}

	now := nowUTC()
	rows := 0
	for _, list := range batch {
		for _, vn := range list.Vestigingsnummers {
			if _, err := tx.ExecContext(ctx, vestigingUpsert, list.KVKNummer, vn, now); err != nil {
				tx.Rollback()
				return apierrors.NewDatabaseWriteFailedError("vestigingen", err)
			}
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return apierrors.NewDatabaseWriteFailedError("vestigingen", err)
	}

	metrics.RecordsUpserted.WithLabelValues("vestiging").Add(float64(rows))
	s.logger.Debug("flushed vestigingen batch", map[string]interface{}{
		"companies": len(batch),
		"rows":      rows,
	})
	return nil
}

// Close flushes whatever is still buffered.
func (s *VestigingenStore) Close(ctx context.Context) error {
	return s.Flush(ctx)
}
