package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// HTTPToolOption configures the tool returned by [HTTP].
type HTTPToolOption func(*httpToolConfig)

type httpToolConfig struct {
	client          *http.Client
	allowedHosts    []string
	blockedHosts    []string
	maxResponseSize int64
	timeout         time.Duration
	rawHTML         bool
}

// WithHTTPClient replaces the default client. The timeout option is then
// ignored.
func WithHTTPClient(c *http.Client) HTTPToolOption {
	return func(cfg *httpToolConfig) { cfg.client = c }
}

// WithAllowedHosts limits requests to hosts and their subdomains.
func WithAllowedHosts(hosts ...string) HTTPToolOption {
	return func(cfg *httpToolConfig) { cfg.allowedHosts = hosts }
}

// WithBlockedHosts refuses hosts and their subdomains. Blocking wins over
// allowing.
func WithBlockedHosts(hosts ...string) HTTPToolOption {
	return func(cfg *httpToolConfig) { cfg.blockedHosts = hosts }
}

// WithMaxResponseSize truncates bodies to n bytes (default 1 MiB).
func WithMaxResponseSize(n int64) HTTPToolOption {
	return func(cfg *httpToolConfig) { cfg.maxResponseSize = n }
}

// WithHTTPTimeout bounds each request (default 30s).
func WithHTTPTimeout(d time.Duration) HTTPToolOption {
	return func(cfg *httpToolConfig) { cfg.timeout = d }
}

// WithRawHTML keeps HTML bodies as they are instead of converting them to
// Markdown.
func WithRawHTML() HTTPToolOption {
	return func(cfg *httpToolConfig) { cfg.rawHTML = true }
}

func applyHTTPOpts(opts []HTTPToolOption) *httpToolConfig {
	cfg := &httpToolConfig{
		maxResponseSize: 1 << 20,
		timeout:         30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: cfg.timeout}
	}
	return cfg
}

// hostIn reports whether host is one of hosts or a subdomain of one.
func hostIn(host string, hosts []string) bool {
	return slices.ContainsFunc(hosts, func(h string) bool {
		return host == h || strings.HasSuffix(host, "."+h)
	})
}

func (c *httpToolConfig) checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if hostIn(host, c.blockedHosts) {
		return fmt.Errorf("host %q is blocked", host)
	}
	if len(c.allowedHosts) > 0 && !hostIn(host, c.allowedHosts) {
		return fmt.Errorf("host %q is not in allowed list", host)
	}
	return nil
}

// reportedHeaders are the response headers included in observations.
var reportedHeaders = []string{"Content-Type", "Content-Length", "Date", "Server", "Location"}

// HTTPArgs are the arguments of the http_request tool.
type HTTPArgs struct {
	URL     string            `json:"url" desc:"URL to request" required:"true"`
	Method  string            `json:"method" desc:"HTTP method" enum:"GET,POST,PUT,DELETE,PATCH"`
	Headers map[string]string `json:"headers" desc:"Request headers"`
	Body    string            `json:"body" desc:"Request body (for POST/PUT/PATCH)"`
}

// HTTPResponse is the observation returned by the http_request tool.
type HTTPResponse struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	BodySize   int               `json:"body_size"`
}

// HTTP returns a tool named http_request that performs HTTP requests and
// reports the response as JSON. Hosts can be restricted with
// [WithAllowedHosts] and [WithBlockedHosts].
func HTTP(opts ...HTTPToolOption) Tool {
	cfg := applyHTTPOpts(opts)
	return Func("http_request", "Make an HTTP request to a URL and return the status, headers and body.",
		func(ctx context.Context, args HTTPArgs) (string, error) {
			return cfg.do(ctx, args)
		})
}

func (c *httpToolConfig) do(ctx context.Context, args HTTPArgs) (string, error) {
	if err := c.checkURL(args.URL); err != nil {
		return "", err
	}

	method := strings.ToUpper(args.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if args.Body != "" {
		body = bytes.NewBufferString(args.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, args.URL, body)
	if err != nil {
		return "", err
	}
	for k, v := range args.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		return "", err
	}

	result := HTTPResponse{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string),
		Body:       string(respBody),
		BodySize:   len(respBody),
	}
	if !c.rawHTML && strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		if md, err := htmltomarkdown.ConvertString(result.Body); err == nil {
			result.Body = md
		}
	}
	for _, h := range reportedHeaders {
		if v := resp.Header.Get(h); v != "" {
			result.Headers[h] = v
		}
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
