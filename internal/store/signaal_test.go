package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/models"
)

func TestLastTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	last := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT MAX\(registratie_tijdstip\) FROM signalen`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(last))

	s := NewSignaalStore(db, 100, logger.NewNoOpLogger())
	ts, ok, err := s.LastTimestamp(context.Background())

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, last, ts)
}

func TestLastTimestampEmptyTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT MAX\(registratie_tijdstip\) FROM signalen`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	s := NewSignaalStore(db, 100, logger.NewNoOpLogger())
	_, ok, err := s.LastTimestamp(context.Background())

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignaalFlushNullsEmptyVestigingsnummer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO signalen`).
		WithArgs("s-1", "12345678", sql.NullString{}, "wijziging", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO signalen`).
		WithArgs("s-2", "87654321", sql.NullString{String: "000038976579", Valid: true}, "wijziging", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewSignaalStore(db, 100, logger.NewNoOpLogger())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, models.Signaal{
		ID: "s-1", KVKNummer: "12345678", SignaalType: "wijziging", RegistratieTijdstip: ts,
	}))
	require.NoError(t, s.Add(ctx, models.Signaal{
		ID: "s-2", KVKNummer: "87654321", Vestigingsnummer: "000038976579",
		SignaalType: "wijziging", RegistratieTijdstip: ts,
	}))
	require.NoError(t, s.Flush(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignaalAddFlushesAtBatchSize(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO signalen`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewSignaalStore(db, 1, logger.NewNoOpLogger())
	require.NoError(t, s.Add(context.Background(), models.Signaal{
		ID: "s-1", KVKNummer: "12345678", RegistratieTijdstip: ts,
	}))

	assert.NoError(t, mock.ExpectationsWereMet())
}
