// Package jobqueue publishes delayed sync jobs through Upstash QStash.
package jobqueue

import (
	"bytes"
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
	"github.com/riskibarqy/ground-setup/internal/platform/logging"
	"github.com/riskibarqy/ground-setup/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
	HTTPClient       *http.Client
}

// QStashPublisher asks QStash to call back one of our internal job routes.
// Deliveries are never retried by QStash: the next scheduled job is the retry.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &QStashPublisher{
		client:           client,
		baseURL:          strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    strings.TrimRight(strings.TrimSpace(cfg.TargetBaseURL), "/"),
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger.WithComponent("qstash"),
		breaker:          resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}

	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(p.targetBaseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	msg := publishRequest{
		publishURL:      baseURL + "/v2/publish/" + targetBaseURL + path,
		path:            path,
		delay:           formatDelay(delay),
		deduplicationID: strings.TrimSpace(deduplicationID),
		body:            body,
	}
	preview := p.curlPreview(msg)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.publish_url", msg.publishURL),
			attribute.String("qstash.path", path),
			attribute.String("qstash.delay", msg.delay),
			attribute.String("qstash.request_curl_preview", preview),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request", "path", path, "curl_preview", preview)

	err = p.breaker.Execute(func() error { return p.send(ctx, msg) }, isQStashCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State())
		return fmt.Errorf("qstash is temporarily unavailable: %w", err)
	}
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published", "path", path, "delay", msg.delay, "deduplication_id", msg.deduplicationID)
	return nil
}

type publishRequest struct {
	publishURL      string
	path            string
	delay           string
	deduplicationID string
	body            []byte
}

func (p *QStashPublisher) send(ctx context.Context, msg publishRequest) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, msg.publishURL, bytes.NewReader(msg.body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	for _, header := range p.headers(msg, false) {
		req.Header.Set(header[0], header[1])
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish path=%s: %v", errQStashTransient, msg.path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if isQStashRetryableStatus(resp.StatusCode) {
		return fmt.Errorf("%w: publish path=%s status=%d body=%s", errQStashTransient, msg.path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return fmt.Errorf("publish path=%s status=%d body=%s", msg.path, resp.StatusCode, strings.TrimSpace(string(raw)))
}

// headers returns the QStash headers in a stable order. masked hides secrets
// for log previews.
func (p *QStashPublisher) headers(msg publishRequest, masked bool) [][2]string {
	token := p.token
	forward := p.internalJobToken
	if masked {
		token = "***"
		forward = "***"
	}

	headers := [][2]string{
		{"Authorization", "Bearer " + token},
		{"Content-Type", "application/json"},
		{"Upstash-Method", http.MethodPost},
		{"Upstash-Retries", "0"},
	}
	if msg.delay != "0s" {
		headers = append(headers, [2]string{"Upstash-Delay", msg.delay})
	}
	if msg.deduplicationID != "" {
		headers = append(headers, [2]string{"Upstash-Deduplication-Id", msg.deduplicationID})
	}
	if p.internalJobToken != "" {
		headers = append(headers, [2]string{"Upstash-Forward-X-Internal-Job-Token", forward})
	}
	return headers
}

func (p *QStashPublisher) curlPreview(msg publishRequest) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(msg.publishURL))
	for _, header := range p.headers(msg, true) {
		_, _ = buf.WriteString(" -H ")
		_, _ = buf.WriteString(shellQuote(header[0] + ": " + header[1]))
	}
	_, _ = buf.WriteString(" -d ")
	_, _ = buf.WriteString(shellQuote(truncateForLog(string(msg.body), 4096)))
	return buf.String()
}

func formatDelay(delay time.Duration) string {
	seconds := int(delay.Round(time.Second).Seconds())
	if seconds <= 0 {
		return "0s"
	}
	return fmt.Sprintf("%ds", seconds)
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func truncateForLog(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func isQStashCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errQStashTransient)
}

func isQStashRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
