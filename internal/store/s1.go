package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	s1KeysPath = "api/v1/keys"
	s1DataPath = "api/v1/data/"

	// maxErrorBody caps how much of an error response is quoted
	maxErrorBody = 200
)

// ErrUnauthorized is wrapped when the store rejects the token
var ErrUnauthorized = errors.New("token rejected")

// S1Options configure the S1 HTTP backend
type S1Options struct {
	Timeout   time.Duration
	UserAgent string

	// Transport overrides the base transport (tests)
	Transport http.RoundTripper
}

// S1Opener opens sessions against an S1 HTTP endpoint
type S1Opener struct {
	opts S1Options
}

// NewS1Opener creates an S1 opener
func NewS1Opener(opts S1Options) *S1Opener {
	return &S1Opener{opts: opts}
}

// Open implements Opener. It performs no request: the first ListKeys call
// validates the token.
func (o *S1Opener) Open(ctx context.Context, credential, baseURL string) (Client, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, &ConnectionError{Endpoint: baseURL, Err: errors.New("token is required")}
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, &ConnectionError{Endpoint: baseURL, Err: fmt.Errorf("invalid URL")}
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	transport := o.opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	// oauth2 picks the base client up from the context
	baseClient := &http.Client{Transport: transport, Timeout: o.opts.Timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, baseClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: credential,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = o.opts.Timeout

	return &S1Client{
		base:      base,
		http:      httpClient,
		userAgent: o.opts.UserAgent,
	}, nil
}

// S1Client talks to an S1 endpoint
type S1Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
}

// ListKeys implements Client
func (c *S1Client) ListKeys(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, s1KeysPath, "", nil)
	if err != nil {
		return nil, wrapOp("list keys", "", err)
	}

	var keys []string
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, &StoreError{Op: "list keys", Err: fmt.Errorf("failed to parse key list: %w", err)}
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// ReadRaw implements Client
func (c *S1Client) ReadRaw(ctx context.Context, key string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, s1DataPath+url.PathEscape(key), key, nil)
	if err != nil {
		return "", wrapOp("read", key, err)
	}
	return string(body), nil
}

// WriteRaw implements Client
func (c *S1Client) WriteRaw(ctx context.Context, key, raw string) error {
	_, err := c.do(ctx, http.MethodPut, s1DataPath+url.PathEscape(key), key, strings.NewReader(raw))
	return wrapOp("write", key, err)
}

// DeleteKey implements Client. Deleting a missing key succeeds.
func (c *S1Client) DeleteKey(ctx context.Context, key string) error {
	_, err := c.do(ctx, http.MethodDelete, s1DataPath+url.PathEscape(key), key, nil)
	if IsNotFound(err) {
		return nil
	}
	return wrapOp("delete", key, err)
}

// Close releases idle connections
func (c *S1Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *S1Client) do(ctx context.Context, method, path, key string, body io.Reader) ([]byte, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	target := c.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && key != "":
		return nil, &NotFoundError{Key: key}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (%s)", ErrUnauthorized, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody-3] + "..."
		}
		if msg == "" {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, msg)
	}

	return data, nil
}
