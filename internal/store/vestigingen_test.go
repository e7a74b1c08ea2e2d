package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/models"
)

func TestVestigingenFlushWritesRowPerNummer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO vestigingen`).
		WithArgs("12345678", "000038976579", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO vestigingen`).
		WithArgs("12345678", "000038976580", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewVestigingenStore(db, 1, logger.NewNoOpLogger())
	err = s.Add(context.Background(), &models.VestigingsNummers{
		KVKNummer:         "12345678",
		Vestigingsnummers: []string{"000038976579", "000038976580"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVestigingenMissingKVKNummers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM basisprofielen b\s+LEFT JOIN vestigingen v`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"kvk_nummer"}).AddRow("12345678"))

	s := NewVestigingenStore(db, 1, logger.NewNoOpLogger())
	nummers, err := s.MissingKVKNummers(context.Background(), 50)

	require.NoError(t, err)
	assert.Equal(t, []string{"12345678"}, nummers)
}

func TestVestigingsProfielOutdatedMergesSources(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM vestigingen v\s+JOIN vestigingsprofielen p`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"vestigingsnummer"}).
			AddRow("000000000001").
			AddRow("000000000002"))
	mock.ExpectQuery(`FROM signalen s\s+JOIN vestigingsprofielen p`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"vestigingsnummer"}).
			AddRow("000000000002").
			AddRow("000000000003"))

	s := NewVestigingsProfielStore(db, 1, logger.NewNoOpLogger())
	nummers, err := s.OutdatedVestigingsnummers(context.Background(), 50)

	require.NoError(t, err)
	assert.Equal(t, []string{"000000000001", "000000000002", "000000000003"}, nummers)
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schemaStatements {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
