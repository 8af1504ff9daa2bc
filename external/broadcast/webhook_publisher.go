package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/kickpool/prediction-league/internal/platform/resilience"
	"github.com/kickpool/prediction-league/internal/usecase"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookPublisherConfig struct {
	SubscriberURLs []string
	Timeout        time.Duration
	MaxRetries     int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher pushes scoring completion events to every configured
// subscriber URL. Subscribers are independent: one slow or failing endpoint
// never blocks delivery to the others.
type WebhookPublisher struct {
	client         *fasthttp.Client
	subscribers    []string
	timeout        time.Duration
	maxRetries     int
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *slog.Logger) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	subscribers := make([]string, 0, len(cfg.SubscriberURLs))
	for _, raw := range cfg.SubscriberURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		subscribers = append(subscribers, raw)
	}

	return &WebhookPublisher{
		client: &fasthttp.Client{
			MaxConnsPerHost:     64,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		subscribers:    subscribers,
		timeout:        timeout,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// PublishScoringCompleted fans the event out to all subscribers concurrently
// and returns the joined delivery errors, if any. The event body is encoded
// once and shared across deliveries.
func (p *WebhookPublisher) PublishScoringCompleted(ctx context.Context, event usecase.ScoringCompletedEvent) error {
	if len(p.subscribers) == 0 {
		return nil
	}

	body, err := sonic.Marshal(event)
	if err != nil {
		return crerr.Wrap(err, "marshal scoring completed event")
	}

	p.logger.InfoContext(ctx, "broadcasting scoring completed",
		"match_id", event.MatchID,
		"subscribers", len(p.subscribers),
		"body_preview", truncateForLog(string(body), 2048),
	)

	deliveries := pool.New().WithErrors().WithMaxGoroutines(len(p.subscribers))
	for _, subscriber := range p.subscribers {
		subscriber := subscriber
		deliveries.Go(func() error {
			if err := p.deliver(ctx, subscriber, body); err != nil {
				p.logger.WarnContext(ctx, "webhook delivery failed",
					"subscriber_url", subscriber,
					"match_id", event.MatchID,
					"error", err,
				)
				return err
			}
			return nil
		})
	}

	return deliveries.Wait()
}

func (p *WebhookPublisher) deliver(ctx context.Context, subscriberURL string, body []byte) error {
	if _, err := validateHTTPURL(subscriberURL); err != nil {
		return crerr.Wrap(err, "invalid subscriber url")
	}

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.circuitEnabled {
			if err := p.breaker.Allow(); err != nil {
				return fmt.Errorf("webhook subscriber is temporarily unavailable: %w", err)
			}
		}

		lastErr = p.post(subscriberURL, body)
		p.recordCircuitResult(lastErr)
		if lastErr == nil {
			return nil
		}
		if !crerr.Is(lastErr, errWebhookTransient) {
			return lastErr
		}
	}

	return lastErr
}

func (p *WebhookPublisher) post(subscriberURL string, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(subscriberURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBodyRaw(body)

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "post webhook url=%s", subscriberURL), errWebhookTransient)
	}

	status := resp.StatusCode()
	if status/100 == 2 {
		return nil
	}

	raw := truncateForLog(string(resp.Body()), 1024)
	if status >= 500 || status == fasthttp.StatusTooManyRequests {
		return crerr.Mark(crerr.Newf("post webhook status=%d url=%s body=%s", status, subscriberURL, raw), errWebhookTransient)
	}
	return crerr.Newf("post webhook status=%d url=%s body=%s", status, subscriberURL, raw)
}

func (p *WebhookPublisher) recordCircuitResult(err error) {
	if !p.circuitEnabled {
		return
	}
	if err != nil && crerr.Is(err, errWebhookTransient) {
		p.breaker.RecordFailure()
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
	}
}

func validateHTTPURL(raw string) (string, error) {
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
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func truncateForLog(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}

	// Back up to a rune boundary so the preview never ends in a split rune.
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(text[:cut])
	_, _ = buf.WriteString("... (truncated)")
	return buf.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
