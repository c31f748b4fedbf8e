// Package census looks up area demographics from the US Census Bureau's
// American Community Survey.
package census

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"homebuyer-lead-engine/internal/metrics"
	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/utils"
)

// DefaultBaseURL is the ACS 5-year detailed tables endpoint.
const DefaultBaseURL = "https://api.census.gov/data/2022/acs/acs5"

const source = "US Census Bureau ACS 5-year estimates"

var (
	ErrNoLocation  = errors.New("no location to look up")
	ErrInvalidZip  = errors.New("zip code must be 5 digits")
	ErrZipRequired = errors.New("area lookup requires a zip code")
	ErrNotFound    = errors.New("no census data for location")
)

// ACS variables.
const (
	varPopulation      = "B01003_001E"
	varMedianIncome    = "B19013_001E"
	varMedianHomeValue = "B25077_001E"
	varMedianAge       = "B01002_001E"
	varOccupiedUnits   = "B25003_001E"
	varOwnerOccupied   = "B25003_002E"
	zctaGeography      = "zip code tabulation area"
)

var variables = []string{
	"NAME", varPopulation, varMedianIncome, varMedianHomeValue,
	varMedianAge, varOccupiedUnits, varOwnerOccupied,
}

// Client fetches insights, reading the cache before the API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      Cache
	now        func() time.Time
}

// NewClient creates a client. cache may be nil to disable caching.
func NewClient(baseURL, apiKey string, cache Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: cache,
		now:   time.Now,
	}
}

// Lookup returns insights for loc. Errors are meant to be logged and
// ignored by callers; insights are optional everywhere.
func (c *Client) Lookup(ctx context.Context, loc models.Location) (*models.CensusAreaInsights, error) {
	key := loc.CacheKey()
	if key == "" {
		return nil, ErrNoLocation
	}

	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			utils.GetLogger().Warn("Census cache read failed", utils.String("key", key), utils.Error(err))
		} else if ok {
			metrics.CensusLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
	}

	zip := strings.TrimSpace(loc.Zip)
	if zip == "" {
		metrics.CensusLookups.WithLabelValues("unsupported").Inc()
		return nil, ErrZipRequired
	}
	if len(zip) > 5 {
		zip = zip[:5]
	}
	if !isZip(zip) {
		metrics.CensusLookups.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidZip
	}

	insights, err := c.fetchZCTA(ctx, zip)
	if err != nil {
		metrics.CensusLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	insights.City = loc.City
	metrics.CensusLookups.WithLabelValues("miss").Inc()

	if c.cache != nil {
		c.store(ctx, key, insights)
		// Later lookups for the same city without a zip reuse this area.
		if cityKey := loc.CityKey(); cityKey != "" {
			c.store(ctx, cityKey, insights)
		}
	}
	return insights, nil
}

func (c *Client) store(ctx context.Context, key string, insights *models.CensusAreaInsights) {
	if err := c.cache.Set(ctx, key, insights); err != nil {
		utils.GetLogger().Warn("Census cache write failed", utils.String("key", key), utils.Error(err))
	}
}

func (c *Client) fetchZCTA(ctx context.Context, zip string) (*models.CensusAreaInsights, error) {
	q := url.Values{}
	q.Set("get", strings.Join(variables, ","))
	q.Set("for", zctaGeography+":"+zip)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("census request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("census API returned status %d", resp.StatusCode)
	}

	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode census response: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrNotFound
	}

	return parseRow(rows[0], rows[1], zip, c.now().UTC())
}

func parseRow(header, row []string, zip string, fetchedAt time.Time) (*models.CensusAreaInsights, error) {
	if len(header) != len(row) {
		return nil, fmt.Errorf("census response has %d columns, header has %d", len(row), len(header))
	}
	values := make(map[string]string, len(header))
	for i, name := range header {
		values[name] = row[i]
	}

	insights := &models.CensusAreaInsights{
		Zip:                   zip,
		Population:            int64(estimate(values[varPopulation])),
		MedianHouseholdIncome: estimate(values[varMedianIncome]),
		MedianHomeValue:       estimate(values[varMedianHomeValue]),
		MedianAge:             estimate(values[varMedianAge]),
		Source:                source,
		FetchedAt:             fetchedAt,
	}
	if occupied := estimate(values[varOccupiedUnits]); occupied > 0 {
		insights.OwnerOccupiedPct = estimate(values[varOwnerOccupied]) / occupied * 100
	}
	return insights, nil
}

// estimate parses an ACS value. The API encodes unavailable medians as large
// negative sentinels such as -666666666; those read as zero.
func estimate(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func isZip(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
