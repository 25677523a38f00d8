package httpx

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/atomic"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
)

var (
	ErrCircuitOpen    = errors.New("circuit open")
	ErrHostNotAllowed = errors.New("host not allowed")
)

// StatusError is returned for 5xx responses once retries are exhausted.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Client wraps http.Client with retries, a host allowlist and a simple
// consecutive-failure circuit breaker.
type Client struct {
	hc        *http.Client
	opt       Options
	fail      atomic.Int32
	openUntil atomic.Int64 // unix nanos
	now       func() time.Time
}

type Options struct {
	Timeout            time.Duration
	Retry              int
	BackoffMin         time.Duration
	BackoffMax         time.Duration
	HostAllowlist      []string
	MaxConsecutiveFail int
	CircuitOpen        time.Duration
}

func NewFromConfig(cfg *config.HTTPClientConfig) *Client {
	opt := Options{
		Timeout:            1200 * time.Millisecond,
		Retry:              1,
		BackoffMin:         100 * time.Millisecond,
		BackoffMax:         800 * time.Millisecond,
		MaxConsecutiveFail: 5,
		CircuitOpen:        5 * time.Second,
	}
	if cfg != nil {
		if cfg.TimeoutMs > 0 {
			opt.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
		}
		if cfg.Retry > 0 {
			opt.Retry = cfg.Retry
		}
		if cfg.BackoffMinMs > 0 {
			opt.BackoffMin = time.Duration(cfg.BackoffMinMs) * time.Millisecond
		}
		if cfg.BackoffMaxMs > 0 {
			opt.BackoffMax = time.Duration(cfg.BackoffMaxMs) * time.Millisecond
		}
		if cfg.MaxConsecutiveFailures > 0 {
			opt.MaxConsecutiveFail = cfg.MaxConsecutiveFailures
		}
		if cfg.CircuitOpenSeconds > 0 {
			opt.CircuitOpen = time.Duration(cfg.CircuitOpenSeconds) * time.Second
		}
		opt.HostAllowlist = cfg.HostAllowlist
	}
	return New(opt)
}

func New(opt Options) *Client {
	if opt.BackoffMin <= 0 {
		opt.BackoffMin = time.Millisecond
	}
	if opt.MaxConsecutiveFail <= 0 {
		opt.MaxConsecutiveFail = 5
	}
	transport := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: opt.Timeout}).DialContext,
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:    100,
		IdleConnTimeout: 30 * time.Second,
	}
	return &Client{
		hc:  &http.Client{Timeout: opt.Timeout, Transport: transport},
		opt: opt,
		now: time.Now,
	}
}

func (c *Client) allowed(u *url.URL) bool {
	if len(c.opt.HostAllowlist) == 0 {
		return true
	}
	host := u.Hostname()
	for _, h := range c.opt.HostAllowlist {
		if matchHost(h, host) {
			return true
		}
	}
	return false
}

func matchHost(pattern, host string) bool {
	if pattern == "*" || strings.EqualFold(pattern, host) {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		suf := strings.TrimPrefix(pattern, "*.")
		return strings.HasSuffix(host, "."+suf) || host == suf
	}
	return false
}

// Do sends req, retrying transport errors and 5xx responses. 4xx responses
// are returned to the caller untouched. A request body must be replayable
// (req.GetBody set), which http.NewRequest does for in-memory readers.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if !c.allowed(req.URL) {
		logger.Warnf("httpx: blocked outbound host: %s", req.URL.Host)
		return nil, ErrHostNotAllowed
	}
	if c.openUntil.Load() > c.now().UnixNano() {
		return nil, ErrCircuitOpen
	}

	var resp *http.Response
	err := retry.Do(
		func() error {
			attempt := req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return retry.Unrecoverable(err)
				}
				attempt.Body = body
			}
			r, err := c.hc.Do(attempt)
			if err != nil {
				return err
			}
			if r.StatusCode >= 500 {
				msg, _ := io.ReadAll(io.LimitReader(r.Body, 512))
				_ = r.Body.Close()
				return &StatusError{Code: r.StatusCode, Body: strings.TrimSpace(string(msg))}
			}
			resp = r
			return nil
		},
		c.retryOptions(req)...,
	)
	if err == nil {
		c.fail.Store(0)
		return resp, nil
	}
	if c.fail.Inc() >= int32(c.opt.MaxConsecutiveFail) {
		c.openUntil.Store(c.now().Add(c.opt.CircuitOpen).UnixNano())
		c.fail.Store(0)
		logger.Warnf("httpx: circuit opened for %v", c.opt.CircuitOpen)
	}
	return nil, err
}

func (c *Client) retryOptions(req *http.Request) []retry.Option {
	opts := []retry.Option{
		retry.Context(req.Context()),
		retry.Attempts(uint(c.opt.Retry + 1)),
		retry.Delay(c.opt.BackoffMin),
		retry.MaxDelay(c.opt.BackoffMax),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warnf("httpx: request failed (try %d/%d) to %s: %v", n+1, c.opt.Retry+1, req.URL.Redacted(), err)
		}),
	}
	// RandomDelay needs a positive jitter window.
	if jitter := c.opt.BackoffMax - c.opt.BackoffMin; jitter > 0 {
		opts = append(opts,
			retry.MaxJitter(jitter),
			retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)))
	} else {
		opts = append(opts, retry.DelayType(retry.BackOffDelay))
	}
	return opts
}

// PostJSON marshals in, posts it to endpoint and decodes a 2xx body into out.
func (c *Client) PostJSON(ctx context.Context, endpoint string, headers map[string]string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("httpx: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("httpx: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("httpx: decode response: %w", err)
	}
	return nil
}
