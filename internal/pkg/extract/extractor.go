// Package extract fetches raw JSON records from the upstream game-data API.
// Fetch failures degrade to an empty record list for that endpoint rather
// than aborting the run; the extractor therefore never returns errors to its
// caller, only logs them.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"github.com/valsync/valsync/entity"
	"github.com/valsync/valsync/pkg/notify"
)

const defaultInitialFetchRetryBackoff = time.Second

type Config struct {

	// Base URL of the upstream API, without trailing slash
	BaseURL string

	// Value for the language query parameter on each request
	Language string

	// Delay between requests to subsequent endpoints. This is purely to be a
	// polite API client, not a performance mechanism.
	RequestDelay time.Duration

	// Per-request HTTP timeout
	Timeout time.Duration

	// Max number of fetch attempts per endpoint for transient errors
	MaxAttempts int

	// Backoff before the first retry, doubled on each subsequent one.
	// Defaults to one second if not set.
	InitialRetryBackoff time.Duration
}

type Extractor struct {
	cfg      Config
	client   *http.Client
	notifier *notify.Notifier
}

func NewExtractor(cfg Config, notifier *notify.Notifier) *Extractor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialRetryBackoff <= 0 {
		cfg.InitialRetryBackoff = defaultInitialFetchRetryBackoff
	}
	return &Extractor{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		notifier: notifier,
	}
}

// ExtractAll fetches all provided endpoints sequentially, one at a time with
// the configured inter-request delay. The returned map always contains one
// key per requested endpoint; an endpoint whose fetch failed or returned no
// data maps to an empty record list.
func (e *Extractor) ExtractAll(ctx context.Context, endpoints []string) map[string][]entity.Record {
	raw := make(map[string][]entity.Record, len(endpoints))
	for i, endpoint := range endpoints {
		raw[endpoint] = e.FetchEndpoint(ctx, endpoint)
		if i < len(endpoints)-1 {
			sleepCtx(ctx, e.cfg.RequestDelay)
		}
	}
	return raw
}

// FetchEndpoint fetches a single endpoint, retrying transient failures with
// exponential backoff. On exhausted retries or an application-level API error
// it returns an empty record list.
func (e *Extractor) FetchEndpoint(ctx context.Context, endpoint string) []entity.Record {
	records, err := e.fetchWithRetry(ctx, endpoint)
	if err != nil {
		e.notifier.Notify(entity.NotifyLevelWarn, "Endpoint %s degraded to empty result: %v", endpoint, err)
		return []entity.Record{}
	}
	return records
}

func (e *Extractor) fetchWithRetry(ctx context.Context, endpoint string) ([]entity.Record, error) {

	var lastErr error
	backoff := e.cfg.InitialRetryBackoff

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {

		e.notifier.Notify(entity.NotifyLevelInfo, "Fetching %s (attempt %d/%d)", endpoint, attempt, e.cfg.MaxAttempts)
		records, err, retryable := e.fetch(ctx, endpoint)
		if err == nil {
			e.notifier.Notify(entity.NotifyLevelInfo, "Retrieved %d records from %s", len(records), endpoint)
			return records, nil
		}
		if !retryable {
			return nil, err
		}

		lastErr = err
		if attempt < e.cfg.MaxAttempts {
			e.notifier.Notify(entity.NotifyLevelWarn, "Fetch of %s failed: %v, retrying in %v", endpoint, err, backoff)
			if !sleepCtx(ctx, backoff) {
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", e.cfg.MaxAttempts, lastErr)
}

// fetch makes one request against the endpoint and parses the response
// envelope ({"status": int, "data": [...]}). The returned bool indicates
// whether a failure is worth retrying.
func (e *Extractor) fetch(ctx context.Context, endpoint string) ([]entity.Record, error, bool) {

	reqURL := fmt.Sprintf("%s/%s?language=%s", e.cfg.BaseURL, endpoint, url.QueryEscape(e.cfg.Language))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err, false
	}

	resp, err := e.client.Do(req)
	if err != nil {
		// Timeouts and network errors are transient
		return nil, err, true
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("server error: %s", resp.Status), true
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response: %s", resp.Status), false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err, true
	}

	if status := gjson.GetBytes(body, "status").Int(); status != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", status), false
	}

	var records []entity.Record
	for _, item := range gjson.GetBytes(body, "data").Array() {
		records = append(records, entity.Record(item.Raw))
	}
	return records, nil, false
}

// A context aware sleep func returning true if proper timeout after sleep and
// false if ctx canceled
func sleepCtx(ctx context.Context, delay time.Duration) bool {
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}
