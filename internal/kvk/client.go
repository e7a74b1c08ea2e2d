package kvk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kvk-connect/internal/common/config"
	apierrors "kvk-connect/internal/common/errors"
	"kvk-connect/internal/common/httpx"
	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/common/metrics"
)

// mutatieTimeLayout is the timestamp format of the Mutatieservice query
// parameters.
const mutatieTimeLayout = "2006-01-02T15:04:05"

// Client talks to the registry API. All calls go through the shared
// rate-gated httpx client, so the RATE_LIMIT_CALLS cap and the 429 backoff
// apply uniformly.
type Client struct {
	http         *httpx.Client
	baseURL      string
	apiKey       string
	abonnementID string
	logger       logger.Logger
}

// NewClient builds a registry client from the KVK section of the config.
func NewClient(cfg config.KVKConfig, log logger.Logger) *Client {
	hc := httpx.NewClient(
		config.GetDuration(cfg.Timeout),
		cfg.RateLimitCalls,
		cfg.MaxRetries,
		log,
	)
	return &Client{
		http:         hc,
		baseURL:      cfg.BaseURL(),
		apiKey:       cfg.APIKey,
		abonnementID: cfg.AbonnementID,
		logger:       log,
	}
}

// GetBasisprofiel fetches one company profile. Returns (nil, nil) when the
// registry does not know the number.
func (c *Client) GetBasisprofiel(ctx context.Context, kvkNummer string) (*Basisprofiel, error) {
	body, err := c.get(ctx, "basisprofielen", "/v1/basisprofielen/"+kvkNummer, nil)
	if err != nil || body == nil {
		return nil, err
	}

	if err := validatePayload("basisprofielen", basisprofielSchema, body); err != nil {
		return nil, err
	}

	var profiel Basisprofiel
	if err := json.Unmarshal(body, &profiel); err != nil {
		return nil, apierrors.NewInvalidPayloadError("basisprofielen", err.Error())
	}
	return &profiel, nil
}

// GetVestigingen fetches the establishment list of one company. Returns
// (nil, nil) when the registry does not know the number.
func (c *Client) GetVestigingen(ctx context.Context, kvkNummer string) (*VestigingList, error) {
	body, err := c.get(ctx, "vestigingen", "/v1/basisprofielen/"+kvkNummer+"/vestigingen", nil)
	if err != nil || body == nil {
		return nil, err
	}

	if err := validatePayload("vestigingen", vestigingListSchema, body); err != nil {
		return nil, err
	}

	var list VestigingList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, apierrors.NewInvalidPayloadError("vestigingen", err.Error())
	}
	return &list, nil
}

// GetVestigingsprofiel fetches one establishment profile, with coordinates
// when geoData is set. Returns (nil, nil) when the registry does not know
// the number.
func (c *Client) GetVestigingsprofiel(ctx context.Context, vestigingsnummer string, geoData bool) (*Vestigingsprofiel, error) {
	var query url.Values
	if geoData {
		query = url.Values{"geoData": {"true"}}
	}

	body, err := c.get(ctx, "vestigingsprofielen", "/v1/vestigingsprofielen/"+vestigingsnummer, query)
	if err != nil || body == nil {
		return nil, err
	}

	if err := validatePayload("vestigingsprofielen", vestigingsprofielSchema, body); err != nil {
		return nil, err
	}

	var profiel Vestigingsprofiel
	if err := json.Unmarshal(body, &profiel); err != nil {
		return nil, apierrors.NewInvalidPayloadError("vestigingsprofielen", err.Error())
	}
	return &profiel, nil
}

// GetMutaties fetches one page of the Mutatieservice feed for the
// configured subscription. Pages start at 1; the first page reports the
// total page count.
func (c *Client) GetMutaties(ctx context.Context, from, to time.Time, page, size int) (*MutatiePage, error) {
	if c.abonnementID == "" {
		return nil, apierrors.NewSubscriptionMissingError()
	}

	query := url.Values{
		"vanaf":  {from.UTC().Format(mutatieTimeLayout)},
		"tot":    {to.UTC().Format(mutatieTimeLayout)},
		"pagina": {strconv.Itoa(page)},
		"aantal": {strconv.Itoa(size)},
	}

	body, err := c.get(ctx, "mutaties", "/v1/abonnementen/"+c.abonnementID+"/mutaties", query)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, apierrors.NewProfileNotFoundError(c.abonnementID)
	}

	if err := validatePayload("mutaties", mutatiePageSchema, body); err != nil {
		return nil, err
	}

	var mutaties MutatiePage
	if err := json.Unmarshal(body, &mutaties); err != nil {
		return nil, apierrors.NewInvalidPayloadError("mutaties", err.Error())
	}
	return &mutaties, nil
}

// GetMutatieSignaalRaw fetches one signal by ID and returns the raw JSON,
// for printing to stdout. Returns (nil, nil) when the signal is unknown.
func (c *Client) GetMutatieSignaalRaw(ctx context.Context, signaalID string) (json.RawMessage, error) {
	if c.abonnementID == "" {
		return nil, apierrors.NewSubscriptionMissingError()
	}

	body, err := c.get(ctx, "mutatie_signaal", "/v1/abonnementen/"+c.abonnementID+"/mutaties/"+signaalID, nil)
	if err != nil || body == nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// get performs one authenticated GET. The endpoint name labels the request
// metric; the path carries the identifiers. A 404 returns (nil, nil).
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := c.http.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	metrics.APIRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		return body, nil
	case http.StatusNotFound:
		c.logger.Debug("record not present in registry", map[string]interface{}{
			"endpoint": endpoint,
			"path":     path,
		})
		return nil, nil
	default:
		return nil, apierrors.NewUnexpectedStatusError(endpoint, resp.StatusCode)
	}
}
