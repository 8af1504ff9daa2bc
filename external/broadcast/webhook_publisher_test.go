package broadcast

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kickpool/prediction-league/internal/platform/resilience"
	"github.com/kickpool/prediction-league/internal/usecase"
)

func testEvent() usecase.ScoringCompletedEvent {
	return usecase.ScoringCompletedEvent{
		MatchID:           "match-1",
		PredictionsScored: 7,
		GroupsReranked:    2,
		CompletedAt:       time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}
}

func newPublisher(t *testing.T, urls []string, maxRetries int, breaker resilience.CircuitBreakerConfig) *WebhookPublisher {
	t.Helper()
	return NewWebhookPublisher(WebhookPublisherConfig{
		SubscriberURLs: urls,
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		CircuitBreaker: breaker,
	}, nil)
}

func TestPublishScoringCompleted_DeliversToAllSubscribers(t *testing.T) {
	var first, second atomic.Int32
	receive := func(counter *atomic.Int32) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var event usecase.ScoringCompletedEvent
			if err := json.Unmarshal(body, &event); err != nil {
				t.Errorf("unmarshal delivered body: %v", err)
			}
			if event.MatchID != "match-1" {
				t.Errorf("match_id = %q, want match-1", event.MatchID)
			}
			counter.Add(1)
		}
	}

	serverA := httptest.NewServer(receive(&first))
	defer serverA.Close()
	serverB := httptest.NewServer(receive(&second))
	defer serverB.Close()

	publisher := newPublisher(t, []string{serverA.URL, serverB.URL}, 0, resilience.CircuitBreakerConfig{})

	if err := publisher.PublishScoringCompleted(context.Background(), testEvent()); err != nil {
		t.Fatalf("PublishScoringCompleted: %v", err)
	}
	if first.Load() != 1 || second.Load() != 1 {
		t.Fatalf("deliveries = %d/%d, want 1/1", first.Load(), second.Load())
	}
}

func TestPublishScoringCompleted_NoSubscribersIsNoop(t *testing.T) {
	publisher := newPublisher(t, nil, 0, resilience.CircuitBreakerConfig{})

	if err := publisher.PublishScoringCompleted(context.Background(), testEvent()); err != nil {
		t.Fatalf("PublishScoringCompleted: %v", err)
	}
}

func TestPublishScoringCompleted_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	publisher := newPublisher(t, []string{server.URL}, 2, resilience.CircuitBreakerConfig{})

	if err := publisher.PublishScoringCompleted(context.Background(), testEvent()); err != nil {
		t.Fatalf("PublishScoringCompleted: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestPublishScoringCompleted_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	publisher := newPublisher(t, []string{server.URL}, 3, resilience.CircuitBreakerConfig{})

	if err := publisher.PublishScoringCompleted(context.Background(), testEvent()); err == nil {
		t.Fatal("expected delivery error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 (4xx is terminal)", calls.Load())
	}
}

func TestPublishScoringCompleted_CircuitStopsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	publisher := newPublisher(t, []string{server.URL}, 5, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if err := publisher.PublishScoringCompleted(context.Background(), testEvent()); err == nil {
		t.Fatal("expected delivery error")
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2 (breaker opened)", calls.Load())
	}
}

func TestTruncateForLog(t *testing.T) {
	if got := truncateForLog("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	got := truncateForLog("0123456789abcdef", 10)
	if got != "0123456789... (truncated)" {
		t.Fatalf("got %q", got)
	}
	// A limit landing inside a multi-byte rune backs up to the rune start.
	got = truncateForLog("ab£cd", 3)
	if got != "ab... (truncated)" {
		t.Fatalf("got %q", got)
	}
}
