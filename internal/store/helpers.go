package store

import (
	"context"
	"database/sql"
	"time"

	apierrors "kvk-connect/internal/common/errors"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// queryNummerColumn runs a single-column identifier query with a limit.
func queryNummerColumn(ctx context.Context, db *sql.DB, query string, limit int) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apierrors.NewDatabaseQueryFailedError("nummers", err)
	}
	defer rows.Close()

	var nummers []string
	for rows.Next() {
		var nr string
		if err := rows.Scan(&nr); err != nil {
			return nil, apierrors.NewDatabaseQueryFailedError("nummers", err)
		}
		nummers = append(nummers, nr)
	}
	if err := rows.Err(); err != nil {
		return nil, apierrors.NewDatabaseQueryFailedError("nummers", err)
	}
	return nummers, nil
}
