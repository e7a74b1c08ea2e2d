package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/common/metrics"
	"kvk-connect/internal/common/observability"
)

// Sync drives one record type's one-shot modes: a single identifier, a CSV
// of identifiers, the missing backlog and the outdated refresh.
type Sync struct {
	target     Target
	obs        *observability.Observability
	logger     logger.Logger
	fetchLimit int
}

// NewSync builds a sync runner. fetchLimit bounds one missing/outdated pass.
func NewSync(target Target, obs *observability.Observability, fetchLimit int, log logger.Logger) *Sync {
	if fetchLimit < 1 {
		fetchLimit = 100
	}
	return &Sync{target: target, obs: obs, logger: log, fetchLimit: fetchLimit}
}

// ProcessSingle fetches and stores exactly one record. No demand queries run.
func (s *Sync) ProcessSingle(ctx context.Context, raw string) (int, error) {
	nummer, err := s.target.Normalize(raw)
	if err != nil {
		return 0, err
	}
	return s.processNummers(ctx, []string{nummer}, fmt.Sprintf("single %s nummer=%s", s.target.Name(), nummer))
}

// ProcessCSV walks a CSV of identifiers, skipping ones already mirrored.
// Built for very large files: one existence check per value, progress
// logging every 1000 rows.
func (s *Sync) ProcessCSV(ctx context.Context, path string) (int, error) {
	s.logger.Info("reading csv", map[string]interface{}{"file": path})

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var processed, skipped, total int
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return processed, fmt.Errorf("read csv: %w", err)
		}

		for _, value := range row {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			total++

			nummer, err := s.target.Normalize(value)
			if err != nil {
				s.logger.Warn("skipping unparseable identifier", map[string]interface{}{
					"value": value,
					"error": err.Error(),
				})
				continue
			}

			exists, err := s.target.Exists(ctx, nummer)
			if err != nil {
				return processed, err
			}
			if exists {
				skipped++
			} else {
				ok, err := s.fetchOne(ctx, nummer)
				if err != nil {
					return processed, err
				}
				if ok {
					processed++
				}
			}

			if total%1000 == 0 {
				s.logger.Info("csv progress", map[string]interface{}{
					"total":     total,
					"processed": processed,
					"skipped":   skipped,
				})
			}
		}
	}

	s.logger.Info("csv processing complete", map[string]interface{}{
		"total":     total,
		"processed": processed,
		"skipped":   skipped,
	})
	return processed, nil
}

// ProcessMissing backfills records with demand but no mirrored copy.
func (s *Sync) ProcessMissing(ctx context.Context) (int, error) {
	s.logger.Info("finding missing nummers", map[string]interface{}{"target": s.target.Name()})

	if counter, ok := s.target.(backlogCounter); ok {
		if backlog, err := counter.MissingCount(ctx); err == nil {
			s.logger.Info("missing backlog", map[string]interface{}{
				"target": s.target.Name(),
				"total":  backlog,
			})
		}
	}

	nummers, err := s.target.Missing(ctx, s.fetchLimit)
	if err != nil {
		return 0, err
	}

	count, err := s.processNummers(ctx, nummers,
		fmt.Sprintf("%d missing %s nummer(s) (limit: %d)", len(nummers), s.target.Name(), s.fetchLimit))
	metrics.SyncCycleRecords.WithLabelValues(s.target.Name(), "missing").Add(float64(count))
	return count, err
}

// ProcessOutdated refreshes mirrored records with a newer signal.
func (s *Sync) ProcessOutdated(ctx context.Context) (int, error) {
	s.logger.Info("finding outdated nummers", map[string]interface{}{"target": s.target.Name()})

	nummers, err := s.target.Outdated(ctx, s.fetchLimit)
	if err != nil {
		return 0, err
	}

	count, err := s.processNummers(ctx, nummers,
		fmt.Sprintf("%d outdated %s nummer(s)", len(nummers), s.target.Name()))
	metrics.SyncCycleRecords.WithLabelValues(s.target.Name(), "outdated").Add(float64(count))
	return count, err
}

// Flush drains the target's buffered writes.
func (s *Sync) Flush(ctx context.Context) error {
	return s.target.Flush(ctx)
}

func (s *Sync) processNummers(ctx context.Context, nummers []string, description string) (int, error) {
	s.logger.Info("processing "+description, nil)

	count := 0
	for _, nummer := range nummers {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		ok, err := s.fetchOne(ctx, nummer)
		if err != nil {
			return count, err
		}
		if ok {
			count++
			if count%10 == 0 {
				s.logger.Info("progress", map[string]interface{}{
					"processed": count,
					"total":     len(nummers),
				})
			}
		}
	}
	return count, nil
}

func (s *Sync) fetchOne(ctx context.Context, nummer string) (bool, error) {
	start := time.Now()
	ok, err := s.target.FetchStore(ctx, nummer)

	if s.obs != nil {
		s.obs.RecordFetchDuration(ctx, time.Since(start), s.target.Name())
		status := "ok"
		switch {
		case err != nil:
			status = "error"
		case !ok:
			status = "skipped"
		}
		s.obs.RecordFetch(ctx, s.target.Name(), status)
	}
	return ok, err
}
