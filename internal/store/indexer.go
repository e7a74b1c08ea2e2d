package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/models"
)

// ProfileIndexer mirrors upserted company profiles into an Elasticsearch
// index for name/activity search. The Postgres mirror stays authoritative:
// indexing failures are logged and never fail a sync.
type ProfileIndexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewProfileIndexer builds an indexer writing to the given index.
func NewProfileIndexer(client *elasticsearch.Client, index string, log logger.Logger) *ProfileIndexer {
	return &ProfileIndexer{client: client, index: index, logger: log}
}

type profileDocument struct {
	KVKNummer                   string `json:"kvk_nummer"`
	Naam                        string `json:"naam"`
	EersteHandelsnaam           string `json:"eerste_handelsnaam,omitempty"`
	Rechtsvorm                  string `json:"rechtsvorm,omitempty"`
	Hoofdactiviteit             string `json:"hoofdactiviteit,omitempty"`
	HoofdactiviteitOmschrijving string `json:"hoofdactiviteit_omschrijving,omitempty"`
	Plaats                      string `json:"plaats,omitempty"`
	Postcode                    string `json:"postcode,omitempty"`
	Websites                    string `json:"websites,omitempty"`
	LastUpdated                 string `json:"last_updated"`
}

// Index writes one profile document, keyed by KVK number.
func (i *ProfileIndexer) Index(ctx context.Context, record *models.BasisProfiel) {
	doc := profileDocument{
		KVKNummer:                   record.KVKNummer,
		Naam:                        record.Naam,
		EersteHandelsnaam:           record.EersteHandelsnaam,
		Rechtsvorm:                  record.Rechtsvorm,
		Hoofdactiviteit:             record.Hoofdactiviteit,
		HoofdactiviteitOmschrijving: record.HoofdactiviteitOmschrijving,
		Plaats:                      record.AdresPlaats,
		Postcode:                    record.AdresPostcode,
		Websites:                    record.Websites,
		LastUpdated:                 record.LastUpdated.Format("2006-01-02T15:04:05Z07:00"),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		i.logger.Warn("failed to marshal profile document", map[string]interface{}{
			"kvk_nummer": record.KVKNummer,
			"error":      err.Error(),
		})
		return
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: record.KVKNummer,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		i.logger.Warn("profile index request failed", map[string]interface{}{
			"kvk_nummer": record.KVKNummer,
			"error":      err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		i.logger.Warn("profile index rejected", map[string]interface{}{
			"kvk_nummer": record.KVKNummer,
			"status":     res.Status(),
		})
	}
}

// Delete removes one profile document. Missing documents are not an error.
func (i *ProfileIndexer) Delete(ctx context.Context, kvkNummer string) {
	req := esapi.DeleteRequest{
		Index:      i.index,
		DocumentID: kvkNummer,
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		i.logger.Warn("profile delete request failed", map[string]interface{}{
			"kvk_nummer": kvkNummer,
			"error":      err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		i.logger.Warn("profile delete rejected", map[string]interface{}{
			"kvk_nummer": kvkNummer,
			"status":     fmt.Sprintf("%d", res.StatusCode),
		})
	}
}
