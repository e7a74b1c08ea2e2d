package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/models"
)

func TestMissingKVKNummers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT s\.kvknummer\s+FROM signalen s\s+LEFT JOIN basisprofielen b`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"kvknummer"}).
			AddRow("12345678").
			AddRow("87654321"))

	s := NewBasisProfielStore(db, 1, logger.NewNoOpLogger())
	nummers, err := s.MissingKVKNummers(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, []string{"12345678", "87654321"}, nummers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT s\.kvknummer\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	s := NewBasisProfielStore(db, 1, logger.NewNoOpLogger())
	count, err := s.MissingCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestOutdatedKVKNummersSkipsVestigingSignalen(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Only company-level signals (vestigingsnummer IS NULL) count.
	mock.ExpectQuery(`s\.vestigingsnummer IS NULL`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"kvknummer"}).AddRow("12345678"))

	s := NewBasisProfielStore(db, 1, logger.NewNoOpLogger())
	nummers, err := s.OutdatedKVKNummers(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, []string{"12345678"}, nummers)
}

func TestExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	q := regexp.QuoteMeta(`SELECT 1 FROM basisprofielen WHERE kvk_nummer = $1 LIMIT 1`)
	mock.ExpectQuery(q).WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(q).WithArgs("99999999").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	s := NewBasisProfielStore(db, 1, logger.NewNoOpLogger())

	exists, err := s.Exists(context.Background(), "12345678")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Exists(context.Background(), "99999999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAddFlushesWhenBatchFull(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO basisprofielen`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO basisprofielen`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewBasisProfielStore(db, 2, logger.NewNoOpLogger())
	ctx := context.Background()

	// First Add buffers, second Add fills the batch and flushes.
	require.NoError(t, s.Add(ctx, testProfiel("11111111")))
	require.NoError(t, s.Add(ctx, testProfiel("22222222")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseFlushesRemainder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO basisprofielen`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewBasisProfielStore(db, 10, logger.NewNoOpLogger())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testProfiel("11111111")))
	require.NoError(t, s.Close(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlushEmptyIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewBasisProfielStore(db, 1, logger.NewNoOpLogger())
	require.NoError(t, s.Flush(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func testProfiel(kvkNummer string) *models.BasisProfiel {
	return &models.BasisProfiel{
		KVKNummer:   kvkNummer,
		Naam:        "Testbedrijf",
		LastUpdated: time.Now().UTC(),
	}
}
