// Package upstream pulls the three raw collections from the water
// monitoring API and normalizes them into the unified object model.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hydroatlas/hydroatlas/internal/domain"
	"github.com/hydroatlas/hydroatlas/internal/engine"
	"github.com/hydroatlas/hydroatlas/internal/observability"
)

const (
	qualityPath    = "/api/water_class"
	riverLevelPath = "/api/river_level"
	resourcePath   = "/api/object/all"
)

// Client implements engine.Fetcher against the upstream monitoring API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an upstream API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchAll pulls quality points, river level posts, and passported
// resources in one cycle. Any endpoint failure fails the whole pull, so a
// partial outage never shrinks the dataset. Individual malformed records
// are skipped and counted instead.
func (c *Client) FetchAll(ctx context.Context) (engine.FetchResult, error) {
	var result engine.FetchResult

	quality, err := fetchCollection[domain.RawQualityPoint](ctx, c, qualityPath)
	if err != nil {
		return engine.FetchResult{}, err
	}
	riverLevels, err := fetchCollection[domain.RawRiverLevelPoint](ctx, c, riverLevelPath)
	if err != nil {
		return engine.FetchResult{}, err
	}
	resources, err := fetchCollection[domain.RawResourceObject](ctx, c, resourcePath)
	if err != nil {
		return engine.FetchResult{}, err
	}

	for _, raw := range quality {
		c.collect(&result, domain.NormalizeQualityPoint(raw))
	}
	for _, raw := range riverLevels {
		c.collect(&result, domain.NormalizeRiverLevel(raw))
	}
	for _, raw := range resources {
		c.collect(&result, domain.NormalizeResource(raw))
	}

	return result, nil
}

func (c *Client) collect(result *engine.FetchResult, obj domain.WaterObject, err error) {
	if err != nil {
		result.Skipped++
		var malformed *domain.MalformedRecordError
		kind := "unknown"
		if errors.As(err, &malformed) {
			kind = string(malformed.Kind)
		}
		c.metrics.RecordsMalformed.WithLabelValues(kind).Inc()
		c.logger.Warn("skipping malformed record", "kind", kind, "error", err)
		return
	}
	result.Objects = append(result.Objects, obj)
	c.metrics.RecordsNormalized.WithLabelValues(string(obj.SourceKind)).Inc()
}

func fetchCollection[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upstream API error: %s: status %d: %s", path, resp.StatusCode, body)
	}

	var records []T
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}
