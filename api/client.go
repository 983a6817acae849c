// Package api executes requests against the remote shop API: it injects the
// current credential, classifies failures, and retries transient transport
// errors with a bounded constant backoff.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/freshcart/shopkit/domain"
)

// Descriptor describes one request against the remote API. It is a transient
// value; nothing here is persisted.
type Descriptor struct {
	Path         string
	Method       string
	Body         []byte
	RequiresAuth bool
	ContentType  string // empty means application/json
}

// TokenSource supplies the current bearer token. The executor re-reads it on
// every attempt so a credential replaced between retries is picked up.
type TokenSource interface {
	Token() (string, bool)
}

// doer is the transport seam; *fasthttp.Client satisfies it.
type doer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

// Config carries the executor settings.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxRetries     uint64 // retries after the first attempt
	RetryDelay     time.Duration
	Name           string // User-Agent / client name
}

// Client is the authenticated HTTP request executor.
type Client struct {
	baseURL        string
	requestTimeout time.Duration
	maxRetries     uint64
	retryDelay     time.Duration
	http           doer
	tokens         TokenSource
	onUnauthorized func()
	logger         *zap.Logger
}

// New builds a Client over fasthttp with the given settings.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		requestTimeout: cfg.RequestTimeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		http: &fasthttp.Client{
			Name:         cfg.Name,
			ReadTimeout:  cfg.RequestTimeout,
			WriteTimeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// SetTokenSource wires the credential provider. Set after construction to
// break the cycle with the session manager, which itself needs the client.
func (c *Client) SetTokenSource(src TokenSource) {
	c.tokens = src
}

// OnUnauthorized registers the hook invoked once per 401 response. The
// session manager subscribes its invalidation here; the executor never calls
// into session state directly.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// Do executes the described request and returns the raw response body.
// Transport failures are retried up to the configured budget with a fixed
// delay; HTTP-level errors are classified and returned immediately.
func (c *Client) Do(ctx context.Context, d Descriptor) ([]byte, error) {
	target, err := c.endpointURL(d.Path)
	if err != nil {
		return nil, err
	}

	var body []byte
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewConstant(c.retryDelay))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		b, err := c.attempt(ctx, target, d)
		if err != nil {
			if domain.Retryable(err) {
				c.logger.Warn("transient request failure, will retry",
					zap.String("method", d.Method),
					zap.String("url", target),
					zap.Int("attempt", attempt),
					zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) attempt(ctx context.Context, target string, d Descriptor) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrCodeTimeout, "request canceled", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(d.Method)
	if d.ContentType != "" {
		req.Header.SetContentType(d.ContentType)
	} else {
		req.Header.SetContentType("application/json")
		req.Header.Set("Accept", "application/json")
	}
	if d.RequiresAuth {
		// A missing credential is not an error here: the request goes out
		// without the header and the server answers 401 if it cares.
		if tok, ok := c.token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		} else {
			c.logger.Debug("authenticated request without credential",
				zap.String("path", d.Path))
		}
	}
	if len(d.Body) > 0 {
		req.SetBody(d.Body)
	}

	if err := c.http.DoTimeout(req, resp, c.requestTimeout); err != nil {
		return nil, classifyTransport(err)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	return c.handleResponse(status, body)
}

func (c *Client) handleResponse(status int, body []byte) ([]byte, error) {
	switch {
	case status >= 200 && status <= 299:
		return body, nil
	case status == fasthttp.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "unauthorized")
	case status >= 400 && status <= 499:
		return nil, domain.NewHTTPError(domain.ErrCodeClient, status, errorMessage(body, "client error"))
	case status >= 500 && status <= 599:
		return nil, domain.NewHTTPError(domain.ErrCodeServer, status, errorMessage(body, "server error"))
	default:
		return nil, domain.NewHTTPError(domain.ErrCodeInvalidResponse, status, "unexpected status code")
	}
}

func (c *Client) token() (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	return c.tokens.Token()
}

func (c *Client) endpointURL(path string) (string, error) {
	target := c.baseURL + path
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeBadEndpoint, "cannot build request url for "+path, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", domain.NewError(domain.ErrCodeBadEndpoint, "cannot build request url for "+path)
	}
	return target, nil
}

// errorMessage prefers the `message` field of a JSON error body and falls
// back to the raw text.
func errorMessage(body []byte, fallback string) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return fallback
}

// classifyTransport maps a transport-level error to the two retryable
// failure kinds: timeouts stay timeouts, everything else is treated as lost
// connectivity.
func classifyTransport(err error) *domain.Error {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) || os.IsTimeout(err) {
		return domain.WrapError(domain.ErrCodeTimeout, "request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.WrapError(domain.ErrCodeTimeout, "request timed out", err)
	}
	return domain.WrapError(domain.ErrCodeNetworkUnavailable, "network unavailable", err)
}

// call executes the request and decodes the JSON response body into T.
// Decode failures are a contract mismatch, reported as DECODING_FAILED and
// never retried.
func call[T any](ctx context.Context, c *Client, d Descriptor) (T, error) {
	var out T
	body, err := c.Do(ctx, d)
	if err != nil {
		return out, err
	}
	if len(body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		c.logger.Error("response decoding failed",
			zap.String("path", d.Path),
			zap.ByteString("body", body),
			zap.Error(err))
		return out, domain.WrapError(domain.ErrCodeDecodingFailed, "cannot decode response for "+d.Path, err)
	}
	return out, nil
}

// callJSON encodes the request body and decodes the response.
func callJSON[T any](ctx context.Context, c *Client, method, path string, body any, requiresAuth bool) (T, error) {
	var out T
	payload, err := json.Marshal(body)
	if err != nil {
		return out, domain.WrapError(domain.ErrCodeDecodingFailed, "cannot encode request body for "+path, err)
	}
	return call[T](ctx, c, Descriptor{
		Path:         path,
		Method:       method,
		Body:         payload,
		RequiresAuth: requiresAuth,
	})
}
