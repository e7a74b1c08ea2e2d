package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	apierrors "kvk-connect/internal/common/errors"
	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/common/metrics"
	"kvk-connect/internal/models"
)

const signaalUpsert = `
	INSERT INTO signalen (
		signaal_id, kvknummer, vestigingsnummer, signaal_type, registratie_tijdstip
	) VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (signaal_id) DO UPDATE SET
		kvknummer = EXCLUDED.kvknummer,
		vestigingsnummer = EXCLUDED.vestigingsnummer,
		signaal_type = EXCLUDED.signaal_type,
		registratie_tijdstip = EXCLUDED.registratie_tijdstip`

// SignaalStore writes change signals and answers where the feed left off.
type SignaalStore struct {
	db        *sql.DB
	logger    logger.Logger
	batchSize int

	mu      sync.Mutex
	pending []models.Signaal
}

// NewSignaalStore builds a store with the given write batch size.
func NewSignaalStore(db *sql.DB, batchSize int, log logger.Logger) *SignaalStore {
	if batchSize < 1 {
		batchSize = 1
	}
	return &SignaalStore{db: db, logger: log, batchSize: batchSize}
}

// LastTimestamp returns the newest stored signal timestamp, or ok=false when
// the table is empty. Auto mode resumes from this point.
func (s *SignaalStore) LastTimestamp(ctx context.Context) (time.Time, bool, error) {
	const q = `SELECT MAX(registratie_tijdstip) FROM signalen`

	var ts sql.NullTime
	if err := s.db.QueryRowContext(ctx, q).Scan(&ts); err != nil {
		return time.Time{}, false, apierrors.NewDatabaseQueryFailedError("last timestamp", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time.UTC(), true, nil
}

// Add buffers one signal, flushing when the batch is full.
func (s *SignaalStore) Add(ctx context.Context, signaal models.Signaal) error {
	s.mu.Lock()
	s.pending = append(s.pending, signaal)
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush upserts all buffered signals in one transaction.
func (s *SignaalStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.NewDatabaseWriteFailedError("signalen", err)
	}

	for _, sig := range batch {
		vestigingsnummer := sql.NullString{String: sig.Vestigingsnummer, Valid: sig.Vestigingsnummer != ""}
		_, err := tx.ExecContext(ctx, signaalUpsert,
			sig.ID, sig.KVKNummer, vestigingsnummer, sig.SignaalType, sig.RegistratieTijdstip,
		)
		if err != nil {
			tx.Rollback()
			return apierrors.NewDatabaseWriteFailedError("signalen", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierrors.NewDatabaseWriteFailedError("signalen", err)
	}

	metrics.RecordsUpserted.WithLabelValues("signaal").Add(float64(len(batch)))
	s.logger.Debug("flushed signalen batch", map[string]interface{}{
		"count": len(batch),
	})
	return nil
}

// Close flushes whatever is still buffered.
func (s *SignaalStore) Close(ctx context.Context) error {
	return s.Flush(ctx)
}
