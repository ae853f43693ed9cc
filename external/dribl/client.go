// Package dribl reads club fixtures from the Dribl match centre API.
package dribl

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/platform/logging"
	"github.com/riskibarqy/ground-setup/internal/platform/resilience"
	"github.com/riskibarqy/ground-setup/internal/usecase"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://mc-api.dribl.com/api"
	maxResponseBytes = 6 << 20
)

var errDriblTransient = crerr.New("dribl transient failure")

var providerDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

type ClientConfig struct {
	HTTPClient  *http.Client
	BaseURL     string
	Season      string
	Competition string
	Club        string
	Tenant      string
	Timeout     time.Duration
	// RateLimit caps page requests per second; zero disables pacing.
	RateLimit      float64
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches fixture pages. It never retries: a failed page fails the
// whole fetch and the next scheduled sync tries again.
type Client struct {
	httpClient *http.Client
	baseURL    string
	filters    url.Values
	limiter    *rate.Limiter
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	filters := url.Values{}
	filters.Set("date_range", "default")
	filters.Set("season", strings.TrimSpace(cfg.Season))
	filters.Set("competition", strings.TrimSpace(cfg.Competition))
	filters.Set("club", strings.TrimSpace(cfg.Club))
	filters.Set("tenant", strings.TrimSpace(cfg.Tenant))

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		filters:    filters,
		limiter:    limiter,
		logger:     logger.WithComponent("dribl"),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

// FetchFixturePage fetches one page of fixtures; an empty cursor asks for
// the first page.
func (c *Client) FetchFixturePage(ctx context.Context, cursor string) (usecase.FixturePage, error) {
	query := url.Values{}
	for key, values := range c.filters {
		query[key] = values
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	fullURL := c.baseURL + "/fixtures?" + query.Encode()

	raw, err := c.doRequest(ctx, fullURL)
	if err != nil {
		return usecase.FixturePage{}, err
	}

	var envelope fixturesEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return usecase.FixturePage{}, crerr.Wrapf(err, "decode fixture page cursor=%q body=%s", cursor, abbreviateBody(raw))
	}

	page := usecase.FixturePage{Fixtures: make([]fixture.Record, 0, len(envelope.Data))}
	for _, item := range envelope.Data {
		page.Fixtures = append(page.Fixtures, c.toRecord(ctx, item))
	}
	if envelope.Meta.NextCursor != nil {
		page.NextCursor = strings.TrimSpace(*envelope.Meta.NextCursor)
	}
	return page, nil
}

func (c *Client) toRecord(ctx context.Context, item fixtureItem) fixture.Record {
	attrs := item.Attributes
	record := fixture.Record{
		FixtureID: item.HashID.String(),
		MatchID:   attrs.MatchHashID.String(),
		League:    attrs.LeagueName.String(),
		Round:     attrs.Round.String(),
		Status:    attrs.Status.String(),
		Name:      attrs.Name.String(),
		HomeTeam:  attrs.HomeTeamName.String(),
		AwayTeam:  attrs.AwayTeamName.String(),
		Ground:    attrs.GroundName.String(),
		Field:     attrs.FieldName.String(),
	}
	if date, ok := parseProviderDate(attrs.Date.String()); ok {
		record.Date = date
	} else {
		c.logger.WarnContext(ctx, "fixture date not parseable", "fixture_id", record.FixtureID, "date", attrs.Date.String())
	}
	return record
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for request slot: %w", err)
		}
	}

	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		var body []byte
		err := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isDriblCircuitFailure)
		return body, err
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "dribl circuit breaker rejected request", "state", c.breaker.State())
		return nil, fmt.Errorf("%w: fixture source is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "dribl request failed", "url", redactURL(fullURL), "error", err)
		return nil, fmt.Errorf("%w: send request: %v", errDriblTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errDriblTransient, err)
	}

	c.logger.DebugContext(ctx, "dribl page received",
		"url", redactURL(fullURL),
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed", time.Since(started).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isTransientStatus(resp.StatusCode) {
			return nil, fmt.Errorf("%w: provider status=%d body=%s", errDriblTransient, resp.StatusCode, abbreviateBody(raw))
		}
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
	return raw, nil
}

func parseProviderDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range providerDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func isDriblCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errDriblTransient)
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// redactURL drops the cursor, which is long and opaque, from logged URLs.
func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Get("cursor") != "" {
		query.Set("cursor", "...")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
