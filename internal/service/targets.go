package service

import (
	"context"

	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/common/metrics"
	"kvk-connect/internal/kvk"
	"kvk-connect/internal/kvkutil"
	"kvk-connect/internal/mappers"
	"kvk-connect/internal/store"
)

// Target is one record type's fetch-map-store pipeline, consumed by Sync.
type Target interface {
	// Name labels logs and metrics.
	Name() string
	// Normalize brings a raw identifier to its canonical form.
	Normalize(raw string) (string, error)
	// Exists reports whether the identifier is already mirrored.
	Exists(ctx context.Context, nummer string) (bool, error)
	// Missing returns identifiers with demand but no mirrored record.
	Missing(ctx context.Context, limit int) ([]string, error)
	// Outdated returns mirrored identifiers with a newer signal.
	Outdated(ctx context.Context, limit int) ([]string, error)
	// FetchStore fetches one record and buffers it for writing. Returns
	// false when the record was skipped (absent upstream or recently
	// fetched).
	FetchStore(ctx context.Context, nummer string) (bool, error)
	// Flush drains buffered writes.
	Flush(ctx context.Context) error
}

// backlogCounter is implemented by targets that can report total demand.
type backlogCounter interface {
	MissingCount(ctx context.Context) (int, error)
}

// registryClient is the slice of the KVK client the targets use.
type registryClient interface {
	GetBasisprofiel(ctx context.Context, kvkNummer string) (*kvk.Basisprofiel, error)
	GetVestigingen(ctx context.Context, kvkNummer string) (*kvk.VestigingList, error)
	GetVestigingsprofiel(ctx context.Context, vestigingsnummer string, geoData bool) (*kvk.Vestigingsprofiel, error)
}

// BasisprofielTarget syncs company profiles. The optional indexer mirrors
// stored profiles into Elasticsearch; the optional guard suppresses repeat
// fetches.
type BasisprofielTarget struct {
	client  registryClient
	store   *store.BasisProfielStore
	indexer *store.ProfileIndexer
	guard   *FetchGuard
	logger  logger.Logger
}

func NewBasisprofielTarget(client registryClient, st *store.BasisProfielStore, indexer *store.ProfileIndexer, guard *FetchGuard, log logger.Logger) *BasisprofielTarget {
	return &BasisprofielTarget{client: client, store: st, indexer: indexer, guard: guard, logger: log}
}

func (t *BasisprofielTarget) Name() string { return "basisprofiel" }

func (t *BasisprofielTarget) Normalize(raw string) (string, error) {
	return kvkutil.CleanKVKNummer(raw)
}

func (t *BasisprofielTarget) Exists(ctx context.Context, nummer string) (bool, error) {
	return t.store.Exists(ctx, nummer)
}

func (t *BasisprofielTarget) Missing(ctx context.Context, limit int) ([]string, error) {
	return t.store.MissingKVKNummers(ctx, limit)
}

func (t *BasisprofielTarget) MissingCount(ctx context.Context) (int, error) {
	return t.store.MissingCount(ctx)
}

func (t *BasisprofielTarget) Outdated(ctx context.Context, limit int) ([]string, error) {
	return t.store.OutdatedKVKNummers(ctx, limit)
}

func (t *BasisprofielTarget) FetchStore(ctx context.Context, nummer string) (bool, error) {
	if t.guard.RecentlyFetched(ctx, "basisprofiel:"+nummer) {
		metrics.RecordsSkipped.WithLabelValues("basisprofiel", "recently_fetched").Inc()
		return false, nil
	}

	api, err := t.client.GetBasisprofiel(ctx, nummer)
	if err != nil {
		return false, err
	}
	if api == nil {
		metrics.RecordsSkipped.WithLabelValues("basisprofiel", "not_found").Inc()
		t.logger.Debug("basisprofiel not present in registry", map[string]interface{}{
			"kvk_nummer": nummer,
		})
		// A number the registry no longer knows must not linger in search.
		if t.indexer != nil {
			t.indexer.Delete(ctx, nummer)
		}
		return false, nil
	}

	record := mappers.MapBasisprofiel(api)
	if err := t.store.Add(ctx, record); err != nil {
		return false, err
	}
	if t.indexer != nil {
		t.indexer.Index(ctx, record)
	}
	t.guard.MarkFetched(ctx, "basisprofiel:"+nummer)
	return true, nil
}

func (t *BasisprofielTarget) Flush(ctx context.Context) error {
	return t.store.Flush(ctx)
}

// VestigingenTarget syncs the establishment-number lists.
type VestigingenTarget struct {
	client registryClient
	store  *store.VestigingenStore
	guard  *FetchGuard
	logger logger.Logger
}

func NewVestigingenTarget(client registryClient, st *store.VestigingenStore, guard *FetchGuard, log logger.Logger) *VestigingenTarget {
	return &VestigingenTarget{client: client, store: st, guard: guard, logger: log}
}

func (t *VestigingenTarget) Name() string { return "vestigingen" }

func (t *VestigingenTarget) Normalize(raw string) (string, error) {
	return kvkutil.CleanKVKNummer(raw)
}

func (t *VestigingenTarget) Exists(ctx context.Context, nummer string) (bool, error) {
	return t.store.Exists(ctx, nummer)
}

func (t *VestigingenTarget) Missing(ctx context.Context, limit int) ([]string, error) {
	return t.store.MissingKVKNummers(ctx, limit)
}

func (t *VestigingenTarget) Outdated(ctx context.Context, limit int) ([]string, error) {
	return t.store.OutdatedKVKNummers(ctx, limit)
}

func (t *VestigingenTarget) FetchStore(ctx context.Context, nummer string) (bool, error) {
	if t.guard.RecentlyFetched(ctx, "vestigingen:"+nummer) {
		metrics.RecordsSkipped.WithLabelValues("vestiging", "recently_fetched").Inc()
		return false, nil
	}

	api, err := t.client.GetVestigingen(ctx, nummer)
	if err != nil {
		return false, err
	}
	if api == nil {
		metrics.RecordsSkipped.WithLabelValues("vestiging", "not_found").Inc()
		return false, nil
	}

	list := mappers.MapVestigingen(api)
	t.logger.Debug("company establishment list fetched", map[string]interface{}{
		"kvk_nummer": nummer,
		"count":      len(list.Vestigingsnummers),
	})
	if err := t.store.Add(ctx, list); err != nil {
		return false, err
	}
	t.guard.MarkFetched(ctx, "vestigingen:"+nummer)
	return true, nil
}

func (t *VestigingenTarget) Flush(ctx context.Context) error {
	return t.store.Flush(ctx)
}

// VestigingsProfielTarget syncs per-establishment profiles, geo data
// included.
type VestigingsProfielTarget struct {
	client registryClient
	store  *store.VestigingsProfielStore
	guard  *FetchGuard
	logger logger.Logger
}

func NewVestigingsProfielTarget(client registryClient, st *store.VestigingsProfielStore, guard *FetchGuard, log logger.Logger) *VestigingsProfielTarget {
	return &VestigingsProfielTarget{client: client, store: st, guard: guard, logger: log}
}

func (t *VestigingsProfielTarget) Name() string { return "vestigingsprofiel" }

func (t *VestigingsProfielTarget) Normalize(raw string) (string, error) {
	return kvkutil.CleanVestigingsnummer(raw)
}

func (t *VestigingsProfielTarget) Exists(ctx context.Context, nummer string) (bool, error) {
	return t.store.Exists(ctx, nummer)
}

func (t *VestigingsProfielTarget) Missing(ctx context.Context, limit int) ([]string, error) {
	return t.store.MissingVestigingsnummers(ctx, limit)
}

func (t *VestigingsProfielTarget) Outdated(ctx context.Context, limit int) ([]string, error) {
	return t.store.OutdatedVestigingsnummers(ctx, limit)
}

func (t *VestigingsProfielTarget) FetchStore(ctx context.Context, nummer string) (bool, error) {
	if t.guard.RecentlyFetched(ctx, "vestigingsprofiel:"+nummer) {
		metrics.RecordsSkipped.WithLabelValues("vestigingsprofiel", "recently_fetched").Inc()
		return false, nil
	}

	api, err := t.client.GetVestigingsprofiel(ctx, nummer, true)
	if err != nil {
		return false, err
	}
	if api == nil {
		metrics.RecordsSkipped.WithLabelValues("vestigingsprofiel", "not_found").Inc()
		return false, nil
	}

	if err := t.store.Add(ctx, mappers.MapVestigingsprofiel(api)); err != nil {
		return false, err
	}
	t.guard.MarkFetched(ctx, "vestigingsprofiel:"+nummer)
	return true, nil
}

func (t *VestigingsProfielTarget) Flush(ctx context.Context) error {
	return t.store.Flush(ctx)
}
