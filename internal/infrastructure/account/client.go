package account

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kickpool/prediction-league/internal/domain/user"
	"github.com/kickpool/prediction-league/internal/platform/resilience"
	"github.com/kickpool/prediction-league/internal/usecase"
)

// errTransient marks failures that count against the circuit breaker:
// network errors and unexpected statuses. A clean 401/403 means the
// account service is healthy, it just rejected the token.
var errTransient = errors.New("account service transient failure")

// Client verifies bearer tokens against the external account service's
// introspection endpoint.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	breaker       *resilience.CircuitBreaker
	logger        *slog.Logger
}

func NewClient(httpClient *http.Client, baseURL, introspectPath string, breaker *resilience.CircuitBreaker, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(baseURL, introspectPath),
		breaker:       breaker,
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, errors.Wrap(usecase.ErrUnauthorized, "token is required")
	}

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return user.Principal{}, errors.Wrap(usecase.ErrDependencyUnavailable, "account introspection circuit open")
		}
	}

	principal, err := c.introspect(ctx, token)
	if c.breaker != nil {
		if errors.Is(err, errTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return user.Principal{}, err
	}

	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := json.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, errors.Wrap(err, "marshal introspect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, errors.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, errors.Mark(errors.Wrap(err, "request introspection"), errTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, errors.Wrap(usecase.ErrUnauthorized, "introspection denied")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, errors.Mark(errors.Wrap(err, "read introspect response"), errTransient)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "account introspection non-200",
			"status_code", resp.StatusCode,
			"token_sha256", hashToken(token),
		)
		return user.Principal{}, errors.Mark(errors.Newf("introspection failed with status %d", resp.StatusCode), errTransient)
	}

	var decoded introspectResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, errors.Wrap(err, "unmarshal introspect response")
	}

	if !decoded.Active {
		return user.Principal{}, errors.Wrap(usecase.ErrUnauthorized, "inactive token")
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, errors.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
		Name:   decoded.Name,
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
