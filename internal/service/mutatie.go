package service

import (
	"context"
	"time"

	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/common/metrics"
	"kvk-connect/internal/kvk"
	"kvk-connect/internal/kvkutil"
	"kvk-connect/internal/mappers"
	"kvk-connect/internal/store"
)

// mutatieFeedClient is the slice of the KVK client MutatieSync uses.
type mutatieFeedClient interface {
	GetMutaties(ctx context.Context, from, to time.Time, page, size int) (*kvk.MutatiePage, error)
}

// MutatieSync pulls the Mutatieservice feed into the signalen table. Windows
// larger than seven days are chunked because the feed caps a single query
// range.
type MutatieSync struct {
	client   mutatieFeedClient
	store    *store.SignaalStore
	pageSize int
	logger   logger.Logger

	// now is swapped in tests.
	now func() time.Time
}

// NewMutatieSync builds a feed reader with the given API page size.
func NewMutatieSync(client mutatieFeedClient, st *store.SignaalStore, pageSize int, log logger.Logger) *MutatieSync {
	if pageSize < 1 {
		pageSize = 500
	}
	return &MutatieSync{
		client:   client,
		store:    st,
		pageSize: pageSize,
		logger:   log,
		now:      time.Now,
	}
}

// ResolveAutoWindow picks the query window for auto mode: from the newest
// stored signal (or 24h back on an empty table) until one minute ago. The
// minute of slack avoids racing signals the feed has not settled yet.
func (m *MutatieSync) ResolveAutoWindow(ctx context.Context) (time.Time, time.Time, error) {
	to := m.now().UTC().Add(-1 * time.Minute)

	from, ok, err := m.store.LastTimestamp(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !ok {
		from = to.Add(-24 * time.Hour)
	}
	return from, to, nil
}

// Run fetches all signals in [from, to) and upserts them. Returns the number
// of signals stored.
func (m *MutatieSync) Run(ctx context.Context, from, to time.Time) (int, error) {
	windows := kvkutil.TimeWindows(from, to)
	if len(windows) == 0 {
		m.logger.Info("no new data to fetch", nil)
		return 0, nil
	}

	count := 0
	for _, window := range windows {
		m.logger.Info("fetching mutaties", map[string]interface{}{
			"from": window.From.Format(time.RFC3339),
			"to":   window.To.Format(time.RFC3339),
		})

		n, err := m.fetchWindow(ctx, window.From, window.To)
		count += n
		if err != nil {
			return count, err
		}
	}

	if err := m.store.Flush(ctx); err != nil {
		return count, err
	}
	return count, nil
}

// fetchWindow walks all pages of one window. The first page reports the
// total page count.
func (m *MutatieSync) fetchWindow(ctx context.Context, from, to time.Time) (int, error) {
	first, err := m.client.GetMutaties(ctx, from, to, 1, m.pageSize)
	if err != nil {
		return 0, err
	}

	m.logger.Info("mutaties page", map[string]interface{}{
		"page":        first.Pagina,
		"count":       len(first.Signalen),
		"total":       first.Totaal,
		"total_pages": first.TotaalPaginas,
	})

	count, err := m.storeSignalen(ctx, first.Signalen)
	if err != nil {
		return count, err
	}

	for page := 2; page <= first.TotaalPaginas; page++ {
		m.logger.Info("fetching page", map[string]interface{}{
			"page":        page,
			"total_pages": first.TotaalPaginas,
		})

		next, err := m.client.GetMutaties(ctx, from, to, page, m.pageSize)
		if err != nil {
			return count, err
		}

		n, err := m.storeSignalen(ctx, next.Signalen)
		count += n
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

func (m *MutatieSync) storeSignalen(ctx context.Context, signalen []kvk.MutatieSignaal) (int, error) {
	count := 0
	for _, api := range signalen {
		signaal, ok := mappers.MapSignaal(api)
		if !ok {
			metrics.RecordsSkipped.WithLabelValues("signaal", "unparseable").Inc()
			m.logger.Warn("skipping unparseable signaal", map[string]interface{}{
				"signaal_id": api.SignaalID,
				"kvknummer":  api.KVKNummer,
			})
			continue
		}
		if err := m.store.Add(ctx, signaal); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
