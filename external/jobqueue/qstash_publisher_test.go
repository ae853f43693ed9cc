package jobqueue

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/ground-setup/internal/platform/logging"
	"github.com/riskibarqy/ground-setup/internal/platform/resilience"
)

func TestQStashPublisher_Enqueue(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotHeader http.Header
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          server.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://ground-setup.example.com/",
		InternalJobToken: "job-secret",
	}, logging.NewNop())

	err := publisher.Enqueue(context.Background(), "v1/internal/jobs/sync", map[string]string{"trigger": "queue"}, 90*time.Second, "sync-20240501")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if want := "/v2/publish/https://ground-setup.example.com/v1/internal/jobs/sync"; gotPath != want {
		t.Fatalf("unexpected publish path: got=%q want=%q", gotPath, want)
	}
	checks := map[string]string{
		"Authorization":                        "Bearer qstash-token",
		"Upstash-Retries":                      "0",
		"Upstash-Delay":                        "90s",
		"Upstash-Deduplication-Id":             "sync-20240501",
		"Upstash-Forward-X-Internal-Job-Token": "job-secret",
	}
	for key, want := range checks {
		if got := gotHeader.Get(key); got != want {
			t.Fatalf("unexpected header %s: got=%q want=%q", key, got, want)
		}
	}
	if gotBody != `{"trigger":"queue"}` {
		t.Fatalf("unexpected body: %s", gotBody)
	}
}

func TestQStashPublisher_RejectsInvalidTarget(t *testing.T) {
	t.Parallel()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       "https://qstash.example.com",
		TargetBaseURL: "ftp://nope",
	}, logging.NewNop())

	err := publisher.Enqueue(context.Background(), "/v1/internal/jobs/sync", nil, 0, "")
	if err == nil || !strings.Contains(err.Error(), "QSTASH_TARGET_BASE_URL") {
		t.Fatalf("expected target url error, got %v", err)
	}
}

func TestQStashPublisher_CircuitOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:        server.URL,
		TargetBaseURL:  "https://ground-setup.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute},
	}, logging.NewNop())

	if err := publisher.Enqueue(context.Background(), "/v1/internal/jobs/sync", nil, 0, ""); err == nil {
		t.Fatalf("expected first publish to fail")
	}
	err := publisher.Enqueue(context.Background(), "/v1/internal/jobs/sync", nil, 0, "")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestCurlPreviewMasksSecrets(t *testing.T) {
	t.Parallel()

	publisher := NewQStashPublisher(QStashPublisherConfig{Token: "qstash-token", InternalJobToken: "job-secret"}, logging.NewNop())
	preview := publisher.curlPreview(publishRequest{publishURL: "https://q/v2/publish/x", path: "/x", delay: "0s", body: []byte(`{}`)})

	if strings.Contains(preview, "qstash-token") || strings.Contains(preview, "job-secret") {
		t.Fatalf("preview leaks secrets: %s", preview)
	}
	if strings.Contains(preview, "Upstash-Delay") {
		t.Fatalf("preview should omit zero delay: %s", preview)
	}
}
