package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rentacar/internal/domain"
	"rentacar/internal/metrics"
	"rentacar/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TokenSource supplies the stored client token. An empty token is not an error.
// A source that is also a domain.CredentialStore is cleared when the API rejects its token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type (
	tokenKey     struct{}
	anonymousKey struct{}
)

// withoutToken marks ctx so that no bearer token is sent at all.
func withoutToken(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

// WithToken attaches a caller token to ctx; it takes precedence over the TokenSource.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client talks to the remote reservations and vehicles REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient builds a client for baseURL. A zero timeout means models.DefaultUpstreamTimeout.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = models.DefaultUpstreamTimeout
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// UseRedisCache configures optional Redis caching for vehicle reads.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *Client) dropCache(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

// token picks the bearer token for ctx. stored is true when it came from the TokenSource.
func (c *Client) token(ctx context.Context) (token string, stored bool) {
	if anonymous, _ := ctx.Value(anonymousKey{}).(bool); anonymous {
		return "", false
	}
	if token := TokenFromContext(ctx); token != "" {
		return token, false
	}
	if c.tokens == nil {
		return "", false
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("no stored token")
		return "", false
	}
	return token, token != ""
}

// forgetStoredToken drops a stored token the API no longer accepts.
func (c *Client) forgetStoredToken(ctx context.Context) {
	store, ok := c.tokens.(domain.CredentialStore)
	if !ok {
		return
	}
	if err := store.ClearToken(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn().Err(err).Msg("failed to clear rejected token")
		return
	}
	c.logger.Info().Msg("stored token rejected by API, cleared")
}

// call describes one request to the remote API.
type call struct {
	op       string
	method   string
	path     string
	body     any
	fallback string
}

// do executes the call and decodes a JSON response into out. An empty body leaves out untouched.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.ObserveUpstream(cl.op, outcome, time.Since(start))
	}()

	var reader io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			outcome = "error"
			return fmt.Errorf("%s: encode body: %w", cl.op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reader)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("%s: %w", cl.op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	token, stored := c.token(ctx)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "unreachable"
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w: %w", cl.op, ErrUnreachable, ctxErr)
		}
		c.logger.Warn().Err(err).Str("operation", cl.op).Msg("upstream request failed")
		return fmt.Errorf("%s: %w", cl.op, ErrUnreachable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "unreachable"
		return fmt.Errorf("%s: read body: %w", cl.op, ErrUnreachable)
	}

	if resp.StatusCode >= 300 {
		outcome = "rejected"
		if resp.StatusCode == http.StatusUnauthorized && stored {
			c.forgetStoredToken(ctx)
		}
		return decodeAPIError(resp.StatusCode, body, cl.fallback)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		outcome = "error"
		return fmt.Errorf("%s: decode response: %w", cl.op, err)
	}
	return nil
}

// IsUnauthorized reports whether err is a 401 from the remote API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
